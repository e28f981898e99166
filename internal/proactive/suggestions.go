package proactive

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"sahayak-backend/internal/llm"
	"sahayak-backend/internal/logger"
	"sahayak-backend/internal/metrics"
	"sahayak-backend/internal/models"
	"sahayak-backend/internal/prompts"
)

// RecentActivityLimit is how many log entries feed one suggestion run.
const RecentActivityLimit = 10

var suggestionsSchema = &llm.Schema{
	Name: "suggestions",
	Definition: `{
  "type": "array",
  "minItems": 2,
  "maxItems": 3,
  "items": {
    "type": "object",
    "required": ["suggestionText", "actionType", "actionPayload"],
    "properties": {
      "suggestionText": {"type": "string", "minLength": 1},
      "actionType": {"enum": ["generateStory", "explainConcept"]},
      "actionPayload": {
        "type": "object",
        "required": ["topic"],
        "properties": {"topic": {"type": "string", "minLength": 1}}
      }
    }
  }
}`,
}

type ActivityReader interface {
	ListRecent(ctx context.Context, teacherID string, limit int) ([]*models.ActivityLogEntry, error)
	ListTeacherIDs(ctx context.Context) ([]string, error)
}

type SuggestionStore interface {
	ReplaceForTeacher(ctx context.Context, teacherID string, suggestions []*models.Suggestion) error
}

// SuggestionEngine derives follow-up suggestions from each teacher's recent
// activity and replaces their previous set.
type SuggestionEngine struct {
	activity    ActivityReader
	suggestions SuggestionStore
	llm         llm.Client
	catalog     *prompts.Catalog
	publisher   Publisher
	metrics     *metrics.Metrics
	logger      *zap.Logger
	concurrency int
}

func NewSuggestionEngine(activity ActivityReader, suggestions SuggestionStore, client llm.Client, catalog *prompts.Catalog, publisher Publisher, m *metrics.Metrics, l *zap.Logger) *SuggestionEngine {
	return &SuggestionEngine{
		activity:    activity,
		suggestions: suggestions,
		llm:         client,
		catalog:     catalog,
		publisher:   publisher,
		metrics:     m,
		logger:      logger.OrNop(l).Named("suggestions"),
		concurrency: defaultConcurrency,
	}
}

// RunAll refreshes suggestions for every teacher with logged activity.
func (e *SuggestionEngine) RunAll(ctx context.Context) (RunStats, error) {
	ids, err := e.activity.ListTeacherIDs(ctx)
	if err != nil {
		return RunStats{}, fmt.Errorf("list teachers: %w", err)
	}
	stats := forEachTeacher(ctx, ids, e.concurrency, e.runOne)
	e.logger.Info("suggestion run finished",
		zap.Int("teachers", stats.Teachers),
		zap.Int("succeeded", stats.Succeeded),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
	)
	return stats, nil
}

func (e *SuggestionEngine) runOne(ctx context.Context, teacherID string) outcome {
	n, err := e.RunForTeacher(ctx, teacherID)
	o := outcomeSucceeded
	switch {
	case err != nil:
		o = outcomeFailed
		e.logger.Error("suggestion run failed", zap.String("teacher_id", teacherID), zap.Error(err))
	case n == 0:
		o = outcomeSkipped
	}
	e.metrics.IncJobRun("suggestions", o.String())
	return o
}

// RunForTeacher returns the number of suggestions written. A teacher with no
// activity is skipped before anything is deleted.
func (e *SuggestionEngine) RunForTeacher(ctx context.Context, teacherID string) (int, error) {
	entries, err := e.activity.ListRecent(ctx, teacherID, RecentActivityLimit)
	if err != nil {
		return 0, fmt.Errorf("load activity: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	prompt, err := e.catalog.Render(prompts.TemplateSuggestions, map[string]any{
		"Activities": formatActivities(entries),
	})
	if err != nil {
		return 0, err
	}

	raw, err := e.llm.GenerateJSON(ctx, prompt, nil)
	if err != nil {
		return 0, fmt.Errorf("generate suggestions: %w", err)
	}

	var parsed []struct {
		SuggestionText string               `json:"suggestionText"`
		ActionType     string               `json:"actionType"`
		ActionPayload  models.ActionPayload `json:"actionPayload"`
	}
	if err := llm.DecodeJSON(raw, suggestionsSchema, &parsed); err != nil {
		return 0, fmt.Errorf("parse suggestions: %w", err)
	}

	suggestions := make([]*models.Suggestion, 0, len(parsed))
	for _, p := range parsed {
		suggestions = append(suggestions, &models.Suggestion{
			TeacherID:      teacherID,
			SuggestionText: strings.TrimSpace(p.SuggestionText),
			ActionType:     p.ActionType,
			ActionPayload:  models.ActionPayload{Topic: strings.TrimSpace(p.ActionPayload.Topic)},
			IsNew:          true,
		})
	}

	if err := e.suggestions.ReplaceForTeacher(ctx, teacherID, suggestions); err != nil {
		return 0, fmt.Errorf("replace suggestions: %w", err)
	}

	if e.publisher != nil {
		e.publisher.Publish(ctx, teacherID, models.WSMessage{
			Type:    models.EventSuggestionsUpdated,
			Payload: map[string]int{"count": len(suggestions)},
		})
	}
	return len(suggestions), nil
}

func formatActivities(entries []*models.ActivityLogEntry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "- %s: %s", e.ActivityType, e.Topic)
	}
	return b.String()
}
