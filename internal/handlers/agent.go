package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"sahayak-backend/internal/logger"
	"sahayak-backend/internal/middleware"
	"sahayak-backend/internal/models"
)

type orchestrator interface {
	Handle(ctx context.Context, teacherID, userPrompt string) (*models.AgentResponse, error)
}

type AgentHandler struct {
	orchestrator orchestrator
	logger       *zap.Logger
}

func NewAgentHandler(o orchestrator, l *zap.Logger) *AgentHandler {
	return &AgentHandler{orchestrator: o, logger: logger.OrNop(l).Named("agent_handler")}
}

func (h *AgentHandler) Orchestrate(w http.ResponseWriter, r *http.Request) {
	var req models.OrchestrateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	teacherID := middleware.GetTeacherID(r.Context())
	if forbiddenTeacher(req.TeacherID, teacherID) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}

	resp, err := h.orchestrator.Handle(r.Context(), teacherID, req.UserPrompt)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
