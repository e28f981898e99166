package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"sahayak-backend/internal/logger"
	"sahayak-backend/internal/middleware"
	"sahayak-backend/internal/models"
)

type contentService interface {
	GenerateText(ctx context.Context, teacherID string, req *models.GenerateTextRequest) (*models.GenerateTextResponse, error)
	Chalkboard(ctx context.Context, teacherID string, req *models.ChalkboardRequest) (*models.Artifact, error)
}

type ContentHandler struct {
	content contentService
	logger  *zap.Logger
}

func NewContentHandler(content contentService, l *zap.Logger) *ContentHandler {
	return &ContentHandler{content: content, logger: logger.OrNop(l).Named("content_handler")}
}

func (h *ContentHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateTextRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.content.GenerateText(r.Context(), middleware.GetTeacherID(r.Context()), &req)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ContentHandler) Chalkboard(w http.ResponseWriter, r *http.Request) {
	var req models.ChalkboardRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	artifact, err := h.content.Chalkboard(r.Context(), middleware.GetTeacherID(r.Context()), &req)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, artifact)
}
