package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"sahayak-backend/internal/llm"
	"sahayak-backend/internal/logger"
	"sahayak-backend/internal/models"
	"sahayak-backend/internal/prompts"
)

const (
	worksheetPrefix     = "uploads/"
	worksheetTotalMarks = 20
)

type ObjectReader interface {
	Read(ctx context.Context, objectPath string) ([]byte, error)
}

type WorksheetStore interface {
	Create(ctx context.Context, w *models.WorksheetArtifact) error
}

type ActivityAppender interface {
	Append(ctx context.Context, e *models.ActivityLogEntry) error
}

// WorksheetPipeline turns an uploaded textbook page into graded worksheets.
type WorksheetPipeline struct {
	objects    ObjectReader
	llm        llm.Client
	catalog    *prompts.Catalog
	worksheets WorksheetStore
	activity   ActivityAppender
	logger     *zap.Logger
}

func NewWorksheetPipeline(objects ObjectReader, client llm.Client, catalog *prompts.Catalog, worksheets WorksheetStore, activity ActivityAppender, l *zap.Logger) *WorksheetPipeline {
	return &WorksheetPipeline{
		objects:    objects,
		llm:        client,
		catalog:    catalog,
		worksheets: worksheets,
		activity:   activity,
		logger:     logger.OrNop(l).Named("worksheet_pipeline"),
	}
}

// Process handles one finalized upload. It returns a nil artifact and nil
// error when the object is not a worksheet request; such uploads are common
// and are only logged.
func (p *WorksheetPipeline) Process(ctx context.Context, job *models.Job) (*models.WorksheetArtifact, error) {
	log := p.logger.With(zap.String("path", job.ObjectPath))

	if !strings.HasPrefix(job.ObjectPath, worksheetPrefix) || !strings.HasPrefix(job.ContentType, "image/") {
		log.Info("skipping upload: not an image under uploads/", zap.String("content_type", job.ContentType))
		return nil, nil
	}
	teacherID := strings.TrimSpace(job.Metadata["teacherId"])
	topic := strings.TrimSpace(job.Metadata["topic"])
	if teacherID == "" || topic == "" {
		log.Info("skipping upload: teacherId or topic metadata missing")
		return nil, nil
	}

	data, err := p.objects.Read(ctx, job.ObjectPath)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	prompt, err := p.catalog.Render(prompts.TemplateWorksheet, map[string]any{"Topic": topic})
	if err != nil {
		return nil, err
	}
	img := &llm.Image{MIMEType: job.ContentType, Data: data}

	content, err := p.generate(ctx, prompt, img)
	var invalid *llm.ErrInvalidResponse
	if errors.As(err, &invalid) && invalid.Parsed {
		log.Warn("worksheet reply rejected, retrying once", zap.Error(err))
		content, err = p.generate(ctx, prompt, img)
	}
	if err != nil {
		return nil, fmt.Errorf("generate worksheets: %w", err)
	}

	artifact := &models.WorksheetArtifact{
		TeacherID:         teacherID,
		Topic:             topic,
		OriginalImagePath: job.ObjectPath,
		GeneratedContent:  content,
	}
	if err := p.worksheets.Create(ctx, artifact); err != nil {
		return nil, fmt.Errorf("save worksheet: %w", err)
	}

	entry := &models.ActivityLogEntry{TeacherID: teacherID, ActivityType: models.ActivityCreateWorksheet, Topic: topic}
	if err := p.activity.Append(ctx, entry); err != nil {
		log.Warn("failed to append activity", zap.Error(err))
	}

	log.Info("worksheet saved", zap.String("teacher_id", teacherID), zap.Stringer("worksheet_id", artifact.ID))
	return artifact, nil
}

// generate returns the validated reply as the model wrote it.
func (p *WorksheetPipeline) generate(ctx context.Context, prompt string, img *llm.Image) (json.RawMessage, error) {
	raw, err := p.llm.GenerateJSON(ctx, prompt, img)
	if err != nil {
		return nil, err
	}
	content, err := llm.ValidateJSON(raw, worksheetSchema)
	if err != nil {
		return nil, err
	}
	var view models.WorksheetContent
	if err := json.Unmarshal(content, &view); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: raw, Parsed: true, Err: err}
	}
	if err := checkMarks(&view); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: raw, Parsed: true, Err: err}
	}
	return content, nil
}

// checkMarks verifies each worksheet's question marks add up to its total.
func checkMarks(c *models.WorksheetContent) error {
	for i, ws := range c.Worksheets {
		sum := 0
		for _, q := range ws.Questions {
			sum += q.Marks
		}
		if sum != ws.TotalMarks || sum != worksheetTotalMarks {
			return fmt.Errorf("worksheet %d: marks sum to %d, want %d", i+1, sum, worksheetTotalMarks)
		}
	}
	return nil
}
