package proactive

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"sahayak-backend/internal/llm"
	"sahayak-backend/internal/logger"
	"sahayak-backend/internal/metrics"
	"sahayak-backend/internal/models"
	"sahayak-backend/internal/prompts"
)

var briefingSchema = &llm.Schema{
	Name: "briefing",
	Definition: `{
  "type": "object",
  "required": ["title", "message", "suggestions"],
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "message": {"type": "string", "minLength": 1},
    "suggestions": {
      "type": "object",
      "required": ["storyIdea", "blackboardIdea"],
      "properties": {
        "storyIdea": {"type": "string"},
        "blackboardIdea": {"type": "string"}
      }
    }
  }
}`,
}

type SyllabusReader interface {
	TopicsForWeek(ctx context.Context, teacherID string, weekNumber int) ([]string, error)
	ListTeacherIDs(ctx context.Context) ([]string, error)
}

type BriefingStore interface {
	Create(ctx context.Context, b *models.Briefing) error
}

// BriefingEngine writes a weekly briefing from each teacher's syllabus plan.
type BriefingEngine struct {
	syllabus    SyllabusReader
	briefings   BriefingStore
	llm         llm.Client
	catalog     *prompts.Catalog
	publisher   Publisher
	metrics     *metrics.Metrics
	logger      *zap.Logger
	concurrency int
}

func NewBriefingEngine(syllabus SyllabusReader, briefings BriefingStore, client llm.Client, catalog *prompts.Catalog, publisher Publisher, m *metrics.Metrics, l *zap.Logger) *BriefingEngine {
	return &BriefingEngine{
		syllabus:    syllabus,
		briefings:   briefings,
		llm:         client,
		catalog:     catalog,
		publisher:   publisher,
		metrics:     m,
		logger:      logger.OrNop(l).Named("briefings"),
		concurrency: defaultConcurrency,
	}
}

// WeekNumber is the ISO-8601 week of t.
func WeekNumber(t time.Time) int {
	_, week := t.ISOWeek()
	return week
}

// RunAll writes briefings for every teacher with a syllabus plan, using the
// ISO week of now.
func (e *BriefingEngine) RunAll(ctx context.Context, now time.Time) (RunStats, error) {
	ids, err := e.syllabus.ListTeacherIDs(ctx)
	if err != nil {
		return RunStats{}, fmt.Errorf("list teachers: %w", err)
	}
	week := WeekNumber(now)

	stats := forEachTeacher(ctx, ids, e.concurrency, func(ctx context.Context, teacherID string) outcome {
		b, err := e.RunForTeacher(ctx, teacherID, week)
		o := outcomeSucceeded
		switch {
		case err != nil:
			o = outcomeFailed
			e.logger.Error("briefing run failed", zap.String("teacher_id", teacherID), zap.Error(err))
		case b == nil:
			o = outcomeSkipped
		}
		e.metrics.IncJobRun("briefings", o.String())
		return o
	})

	e.logger.Info("briefing run finished",
		zap.Int("week", week),
		zap.Int("teachers", stats.Teachers),
		zap.Int("succeeded", stats.Succeeded),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
	)
	return stats, nil
}

// RunForTeacher appends one briefing for week. It returns nil when the
// teacher has nothing planned that week.
func (e *BriefingEngine) RunForTeacher(ctx context.Context, teacherID string, week int) (*models.Briefing, error) {
	topics, err := e.syllabus.TopicsForWeek(ctx, teacherID, week)
	if err != nil {
		return nil, fmt.Errorf("load syllabus topics: %w", err)
	}
	if len(topics) == 0 {
		return nil, nil
	}

	prompt, err := e.catalog.Render(prompts.TemplateBriefing, map[string]any{
		"WeekNumber": week,
		"Topics":     "- " + strings.Join(topics, "\n- "),
	})
	if err != nil {
		return nil, err
	}

	raw, err := e.llm.GenerateJSON(ctx, prompt, nil)
	if err != nil {
		return nil, fmt.Errorf("generate briefing: %w", err)
	}

	b := &models.Briefing{}
	if err := llm.DecodeJSON(raw, briefingSchema, b); err != nil {
		return nil, fmt.Errorf("parse briefing: %w", err)
	}
	b.TeacherID = teacherID
	b.WeekNumber = week
	b.IsNew = true

	if err := e.briefings.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("save briefing: %w", err)
	}

	if e.publisher != nil {
		e.publisher.Publish(ctx, teacherID, models.WSMessage{Type: models.EventBriefingReady, Payload: b})
	}
	return b, nil
}
