package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"sahayak-backend/internal/logger"
	"sahayak-backend/internal/middleware"
	"sahayak-backend/internal/models"
	"sahayak-backend/internal/repository"
)

type suggestionReader interface {
	ListByTeacher(ctx context.Context, teacherID string) ([]*models.Suggestion, error)
	MarkSeen(ctx context.Context, id uuid.UUID, teacherID string) error
}

type briefingReader interface {
	Latest(ctx context.Context, teacherID string) (*models.Briefing, error)
	MarkRead(ctx context.Context, id uuid.UUID, teacherID string) error
}

// DashboardHandler serves the proactive suggestions and the daily briefing.
type DashboardHandler struct {
	suggestions suggestionReader
	briefings   briefingReader
	logger      *zap.Logger
}

func NewDashboardHandler(suggestions suggestionReader, briefings briefingReader, l *zap.Logger) *DashboardHandler {
	return &DashboardHandler{suggestions: suggestions, briefings: briefings, logger: logger.OrNop(l).Named("dashboard_handler")}
}

func (h *DashboardHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.suggestions.ListByTeacher(r.Context(), middleware.GetTeacherID(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	views := make([]models.SuggestionView, 0, len(suggestions))
	for _, s := range suggestions {
		views = append(views, models.SuggestionView{Suggestion: s, FollowUpPrompt: s.FollowUpPrompt()})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": views})
}

func (h *DashboardHandler) MarkSuggestionSeen(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.suggestions.MarkSeen(r.Context(), id, middleware.GetTeacherID(r.Context())); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LatestBriefing returns the newest briefing, or the welcome briefing when
// none has been generated yet.
func (h *DashboardHandler) LatestBriefing(w http.ResponseWriter, r *http.Request) {
	b, err := h.briefings.Latest(r.Context(), middleware.GetTeacherID(r.Context()))
	if errors.Is(err, repository.ErrNotFound) {
		writeJSON(w, http.StatusOK, models.DefaultBriefing())
		return
	}
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *DashboardHandler) MarkBriefingRead(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.briefings.MarkRead(r.Context(), id, middleware.GetTeacherID(r.Context())); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid ID", r))
		return uuid.Nil, false
	}
	return id, true
}
