package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"sahayak-backend/internal/llm"
	"sahayak-backend/internal/logger"
	"sahayak-backend/internal/models"
	"sahayak-backend/internal/prompts"
)

type ArtifactWriter interface {
	Create(ctx context.Context, a *models.Artifact) error
}

type ActivityAppender interface {
	Append(ctx context.Context, e *models.ActivityLogEntry) error
}

type AttendanceReader interface {
	ListSince(ctx context.Context, teacherID string, since time.Time) ([]*models.AttendanceRecord, error)
}

// ToolboxDeps wires a Toolbox. WindowDays defaults to 30 and Now to time.Now.
type ToolboxDeps struct {
	LLM        llm.Client
	Catalog    *prompts.Catalog
	Artifacts  ArtifactWriter
	Activity   ActivityAppender
	Attendance AttendanceReader
	WindowDays int
	Now        func() time.Time
	Logger     *zap.Logger
}

// Toolbox implements the four tool handlers. Handlers never return errors:
// every outcome, including failure, is a Result.
type Toolbox struct {
	llm        llm.Client
	catalog    *prompts.Catalog
	artifacts  ArtifactWriter
	activity   ActivityAppender
	attendance AttendanceReader
	windowDays int
	now        func() time.Time
	logger     *zap.Logger
}

func NewToolbox(deps ToolboxDeps) *Toolbox {
	if deps.WindowDays <= 0 {
		deps.WindowDays = 30
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Toolbox{
		llm:        deps.LLM,
		catalog:    deps.Catalog,
		artifacts:  deps.Artifacts,
		activity:   deps.Activity,
		attendance: deps.Attendance,
		windowDays: deps.WindowDays,
		now:        deps.Now,
		logger:     logger.OrNop(deps.Logger).Named("toolbox"),
	}
}

func (t *Toolbox) GenerateStory(ctx context.Context, teacherID, topic string) Result {
	return t.generateArtifact(ctx, teacherID, topic, artifactJob{
		kind:     models.ArtifactStories,
		template: prompts.TemplateStory,
		activity: models.ActivityGenerateStory,
		summary:  `Story about "%s"`,
	})
}

func (t *Toolbox) ExplainConcept(ctx context.Context, teacherID, concept string) Result {
	return t.generateArtifact(ctx, teacherID, concept, artifactJob{
		kind:     models.ArtifactConcepts,
		template: prompts.TemplateConcept,
		activity: models.ActivityExplainConcept,
		summary:  `Explanation for "%s"`,
	})
}

// RequestWorksheetImage records intent and asks the client for an upload. The
// worksheet itself is produced once the image lands.
func (t *Toolbox) RequestWorksheetImage(ctx context.Context, teacherID, topic string) Result {
	if topic == "" {
		return Failure("missing worksheet topic")
	}
	t.logActivity(ctx, teacherID, models.ActivityRequestWorksheet, topic)
	return UIPrompt(ToolRequestWorksheetImage, topic)
}

func (t *Toolbox) AnalyzeAttendance(ctx context.Context, teacherID, query string) Result {
	answer, err := t.AttendanceAnswer(ctx, teacherID, query)
	if err != nil {
		t.logger.Error("attendance analysis failed", zap.String("teacher_id", teacherID), zap.Error(err))
		return Failure(err.Error())
	}
	return Answer(answer)
}

// ErrEmptyQuery is returned when an attendance question is blank.
var ErrEmptyQuery = errors.New("attendance query is empty")

// AttendanceAnswer answers a question over the teacher's recent attendance.
// With no records in the window it returns a fixed reply without calling the
// model.
func (t *Toolbox) AttendanceAnswer(ctx context.Context, teacherID, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}

	now := t.now()
	since := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -t.windowDays)
	records, err := t.attendance.ListSince(ctx, teacherID, since)
	if err != nil {
		return "", fmt.Errorf("load attendance: %w", err)
	}
	if len(records) == 0 {
		return t.catalog.Message(prompts.MessageNoAttendanceData, map[string]any{"WindowDays": t.windowDays})
	}

	prompt, err := t.catalog.Render(prompts.TemplateAttendanceAnalysis, map[string]any{
		"WindowDays": t.windowDays,
		"Records":    formatAttendance(records),
		"Query":      query,
	})
	if err != nil {
		return "", err
	}
	return t.llm.GenerateText(ctx, prompt)
}

type artifactJob struct {
	kind     models.ArtifactKind
	template string
	activity string
	summary  string
}

func (t *Toolbox) generateArtifact(ctx context.Context, teacherID, topic string, job artifactJob) Result {
	if topic == "" {
		return Failure("missing " + job.activity + " topic")
	}

	prompt, err := t.catalog.Render(job.template, map[string]any{"Topic": topic})
	if err != nil {
		return Failure(err.Error())
	}

	content, err := t.llm.GenerateText(ctx, prompt)
	if err != nil {
		t.logger.Error("generation failed",
			zap.String("tool", job.activity),
			zap.String("teacher_id", teacherID),
			zap.Error(err),
		)
		return Failure(err.Error())
	}

	artifact := &models.Artifact{
		Kind:             job.kind,
		TeacherID:        teacherID,
		UserPrompt:       topic,
		GeneratedContent: content,
	}
	if err := t.artifacts.Create(ctx, artifact); err != nil {
		t.logger.Error("failed to save artifact",
			zap.String("kind", string(job.kind)),
			zap.String("teacher_id", teacherID),
			zap.Error(err),
		)
		return Failure(err.Error())
	}

	t.logActivity(ctx, teacherID, job.activity, topic)
	return Summary(fmt.Sprintf(job.summary, topic))
}

// logActivity appends to the activity log. The log feeds suggestions only, so
// a failed write is logged and otherwise ignored.
func (t *Toolbox) logActivity(ctx context.Context, teacherID, activityType, topic string) {
	entry := &models.ActivityLogEntry{TeacherID: teacherID, ActivityType: activityType, Topic: topic}
	if err := t.activity.Append(ctx, entry); err != nil {
		t.logger.Warn("failed to append activity",
			zap.String("teacher_id", teacherID),
			zap.String("activity_type", activityType),
			zap.Error(err),
		)
	}
}

func formatAttendance(records []*models.AttendanceRecord) string {
	var b strings.Builder
	for i, r := range records {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s, %s, %s", r.Date.Format(models.AttendanceDateLayout), r.StudentName, r.Status)
	}
	return b.String()
}
