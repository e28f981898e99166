package worker

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"sahayak-backend/internal/llm"
	"sahayak-backend/internal/logger"
	"sahayak-backend/internal/models"
	"sahayak-backend/internal/prompts"
)

const syllabusPrefix = "syllabus_uploads/"

type TextExtractor interface {
	Supported(name string) bool
	ExtractText(name string, data []byte) (string, error)
}

type SyllabusStore interface {
	ReplaceForTeacher(ctx context.Context, teacherID string, topics []*models.SyllabusTopic) error
}

// SyllabusPipeline converts an uploaded syllabus document into a weekly plan.
type SyllabusPipeline struct {
	objects   ObjectReader
	extractor TextExtractor
	llm       llm.Client
	catalog   *prompts.Catalog
	syllabus  SyllabusStore
	activity  ActivityAppender
	now       func() time.Time
	logger    *zap.Logger
}

func NewSyllabusPipeline(objects ObjectReader, extractor TextExtractor, client llm.Client, catalog *prompts.Catalog, syllabus SyllabusStore, activity ActivityAppender, l *zap.Logger) *SyllabusPipeline {
	return &SyllabusPipeline{
		objects:   objects,
		extractor: extractor,
		llm:       client,
		catalog:   catalog,
		syllabus:  syllabus,
		activity:  activity,
		now:       time.Now,
		logger:    logger.OrNop(l).Named("syllabus_pipeline"),
	}
}

// Process replaces the teacher's plan with one derived from the document. It
// returns 0 and nil for uploads it does not handle.
func (p *SyllabusPipeline) Process(ctx context.Context, job *models.Job) (int, error) {
	log := p.logger.With(zap.String("path", job.ObjectPath))

	if !strings.HasPrefix(job.ObjectPath, syllabusPrefix) || !p.extractor.Supported(job.ObjectPath) {
		log.Info("skipping upload: not a syllabus document")
		return 0, nil
	}
	teacherID := strings.TrimSpace(job.Metadata["teacherId"])
	if teacherID == "" {
		log.Info("skipping upload: teacherId metadata missing")
		return 0, nil
	}

	data, err := p.objects.Read(ctx, job.ObjectPath)
	if err != nil {
		return 0, fmt.Errorf("read upload: %w", err)
	}
	text, err := p.extractor.ExtractText(job.ObjectPath, data)
	if err != nil {
		return 0, fmt.Errorf("extract syllabus text: %w", err)
	}

	_, week := p.now().ISOWeek()
	prompt, err := p.catalog.Render(prompts.TemplateSyllabusPlan, map[string]any{
		"StartWeek": week,
		"Text":      text,
	})
	if err != nil {
		return 0, err
	}

	raw, err := p.llm.GenerateJSON(ctx, prompt, nil)
	if err != nil {
		return 0, fmt.Errorf("generate syllabus plan: %w", err)
	}
	var items []struct {
		WeekNumber int    `json:"weekNumber"`
		Subject    string `json:"subject"`
		Topic      string `json:"topic"`
	}
	if err := llm.DecodeJSON(raw, syllabusPlanSchema, &items); err != nil {
		return 0, fmt.Errorf("parse syllabus plan: %w", err)
	}

	topics := make([]*models.SyllabusTopic, 0, len(items))
	for _, it := range items {
		topics = append(topics, &models.SyllabusTopic{
			WeekNumber: it.WeekNumber,
			Subject:    strings.TrimSpace(it.Subject),
			Topic:      strings.TrimSpace(it.Topic),
		})
	}
	if err := p.syllabus.ReplaceForTeacher(ctx, teacherID, topics); err != nil {
		return 0, fmt.Errorf("save syllabus plan: %w", err)
	}

	entry := &models.ActivityLogEntry{
		TeacherID:    teacherID,
		ActivityType: models.ActivityUploadSyllabus,
		Topic:        displayName(job.ObjectPath),
	}
	if err := p.activity.Append(ctx, entry); err != nil {
		log.Warn("failed to append activity", zap.Error(err))
	}

	log.Info("syllabus plan saved", zap.String("teacher_id", teacherID), zap.Int("topics", len(topics)))
	return len(topics), nil
}

// displayName strips the "{unixMillis}-" prefix the upload handler adds.
func displayName(objectPath string) string {
	name := path.Base(objectPath)
	if i := strings.IndexByte(name, '-'); i > 0 && strings.Trim(name[:i], "0123456789") == "" {
		return name[i+1:]
	}
	return name
}
