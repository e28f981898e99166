package services

import (
	"context"
	"fmt"
	"strings"

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

// ContentService backs the direct generator pages: free-form generation with
// optional saving, and chalkboard drawing aids.
type ContentService struct {
	llm       llm.Client
	catalog   *prompts.Catalog
	artifacts ArtifactWriter
	activity  ActivityAppender
	logger    *zap.Logger
}

func NewContentService(client llm.Client, catalog *prompts.Catalog, artifacts ArtifactWriter, activity ActivityAppender, l *zap.Logger) *ContentService {
	return &ContentService{
		llm:       client,
		catalog:   catalog,
		artifacts: artifacts,
		activity:  activity,
		logger:    logger.OrNop(l).Named("content"),
	}
}

var collectionActivity = map[string]string{
	string(models.ArtifactStories):  models.ActivityGenerateStory,
	string(models.ArtifactConcepts): models.ActivityExplainConcept,
}

// GenerateText sends req.Prompt to the model. When a save collection is
// given the result is stored as an artifact and logged as activity.
func (s *ContentService) GenerateText(ctx context.Context, teacherID string, req *models.GenerateTextRequest) (*models.GenerateTextResponse, error) {
	req.Prompt = strings.TrimSpace(req.Prompt)
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}

	content, err := s.llm.GenerateText(ctx, req.Prompt)
	if err != nil {
		return nil, fmt.Errorf("generate text: %w", err)
	}
	resp := &models.GenerateTextResponse{Content: content}

	if req.SaveOptions == nil || req.SaveOptions.Collection == "" {
		return resp, nil
	}

	userPrompt := strings.TrimSpace(req.UserPrompt)
	if userPrompt == "" {
		userPrompt = req.Prompt
	}
	artifact := &models.Artifact{
		Kind:             models.ArtifactKind(req.SaveOptions.Collection),
		TeacherID:        teacherID,
		UserPrompt:       userPrompt,
		GeneratedContent: content,
	}
	if err := s.artifacts.Create(ctx, artifact); err != nil {
		return nil, fmt.Errorf("save artifact: %w", err)
	}
	id := artifact.ID.String()
	resp.ArtifactID = &id

	s.logActivity(ctx, teacherID, collectionActivity[req.SaveOptions.Collection], userPrompt)
	return resp, nil
}

// Chalkboard generates and stores blackboard drawing instructions.
func (s *ContentService) Chalkboard(ctx context.Context, teacherID string, req *models.ChalkboardRequest) (*models.Artifact, error) {
	req.Prompt = strings.TrimSpace(req.Prompt)
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}

	prompt, err := s.catalog.Render(prompts.TemplateChalkboard, map[string]any{"Topic": req.Prompt})
	if err != nil {
		return nil, err
	}
	content, err := s.llm.GenerateText(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate chalkboard aid: %w", err)
	}

	artifact := &models.Artifact{
		Kind:             models.ArtifactChalkboardAids,
		TeacherID:        teacherID,
		UserPrompt:       req.Prompt,
		GeneratedContent: content,
	}
	if err := s.artifacts.Create(ctx, artifact); err != nil {
		return nil, fmt.Errorf("save chalkboard aid: %w", err)
	}

	s.logActivity(ctx, teacherID, models.ActivityCreateChalkboardAid, req.Prompt)
	return artifact, nil
}

func (s *ContentService) logActivity(ctx context.Context, teacherID, activityType, topic string) {
	entry := &models.ActivityLogEntry{TeacherID: teacherID, ActivityType: activityType, Topic: topic}
	if err := s.activity.Append(ctx, entry); err != nil {
		s.logger.Warn("failed to append activity",
			zap.String("teacher_id", teacherID),
			zap.String("activity_type", activityType),
			zap.Error(err),
		)
	}
}
