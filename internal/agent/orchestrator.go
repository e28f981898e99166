package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"sahayak-backend/internal/llm"
	"sahayak-backend/internal/logger"
	"sahayak-backend/internal/models"
	"sahayak-backend/internal/services"
)

// Orchestrator is the chat entry point: classify, dispatch, aggregate.
type Orchestrator struct {
	classifier *Classifier
	dispatcher *Dispatcher
	logger     *zap.Logger
}

func NewOrchestrator(classifier *Classifier, dispatcher *Dispatcher, l *zap.Logger) *Orchestrator {
	return &Orchestrator{
		classifier: classifier,
		dispatcher: dispatcher,
		logger:     logger.OrNop(l).Named("orchestrator"),
	}
}

func (o *Orchestrator) Handle(ctx context.Context, teacherID, userPrompt string) (*models.AgentResponse, error) {
	if strings.TrimSpace(teacherID) == "" {
		return nil, &services.UnauthorizedError{Message: "Teacher identity is required"}
	}

	cls, err := o.classifier.Classify(ctx, userPrompt)
	if err != nil {
		return nil, err
	}

	if len(cls.Calls) == 0 {
		if cls.FreeText == "" {
			return nil, fmt.Errorf("classify request: %w", llm.ErrEmptyResponse)
		}
		return &models.AgentResponse{Type: models.ResponseTypeText, Content: cls.FreeText}, nil
	}

	names := make([]string, len(cls.Calls))
	for i, c := range cls.Calls {
		names[i] = string(c.Name)
	}
	o.logger.Info("dispatching tools", zap.String("teacher_id", teacherID), zap.Strings("tools", names))

	results := o.dispatcher.Dispatch(ctx, teacherID, cls.Calls)
	resp := Aggregate(results)
	return &resp, nil
}
