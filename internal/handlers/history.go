package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"sahayak-backend/internal/logger"
	"sahayak-backend/internal/middleware"
	"sahayak-backend/internal/models"
)

type artifactLister interface {
	ListByTeacher(ctx context.Context, kind models.ArtifactKind, teacherID string, limit, offset int) ([]*models.Artifact, error)
}

type worksheetLister interface {
	ListByTeacher(ctx context.Context, teacherID string, limit, offset int) ([]*models.WorksheetArtifact, error)
}

type activityLister interface {
	ListRecent(ctx context.Context, teacherID string, limit int) ([]*models.ActivityLogEntry, error)
}

type syllabusLister interface {
	ListByTeacher(ctx context.Context, teacherID string) ([]*models.SyllabusTopic, error)
}

// HistoryHandler serves the read-only history pages.
type HistoryHandler struct {
	artifacts  artifactLister
	worksheets worksheetLister
	activity   activityLister
	syllabus   syllabusLister
	logger     *zap.Logger
}

func NewHistoryHandler(artifacts artifactLister, worksheets worksheetLister, activity activityLister, syllabus syllabusLister, l *zap.Logger) *HistoryHandler {
	return &HistoryHandler{
		artifacts:  artifacts,
		worksheets: worksheets,
		activity:   activity,
		syllabus:   syllabus,
		logger:     logger.OrNop(l).Named("history_handler"),
	}
}

func (h *HistoryHandler) Artifacts(w http.ResponseWriter, r *http.Request) {
	kind := models.ArtifactKind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Unknown collection", r))
		return
	}

	limit, offset := pagination(r)
	items, err := h.artifacts.ListByTeacher(r.Context(), kind, middleware.GetTeacherID(r.Context()), limit, offset)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	if items == nil {
		items = []*models.Artifact{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items, "limit": limit, "offset": offset})
}

func (h *HistoryHandler) Worksheets(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	items, err := h.worksheets.ListByTeacher(r.Context(), middleware.GetTeacherID(r.Context()), limit, offset)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	if items == nil {
		items = []*models.WorksheetArtifact{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items, "limit": limit, "offset": offset})
}

func (h *HistoryHandler) Activity(w http.ResponseWriter, r *http.Request) {
	limit, _ := pagination(r)
	items, err := h.activity.ListRecent(r.Context(), middleware.GetTeacherID(r.Context()), limit)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	if items == nil {
		items = []*models.ActivityLogEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *HistoryHandler) Syllabus(w http.ResponseWriter, r *http.Request) {
	items, err := h.syllabus.ListByTeacher(r.Context(), middleware.GetTeacherID(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	if items == nil {
		items = []*models.SyllabusTopic{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}
