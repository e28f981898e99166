package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sahayak-backend/internal/agent"
	"sahayak-backend/internal/middleware"
	"sahayak-backend/internal/models"
	"sahayak-backend/internal/repository"
	"sahayak-backend/internal/services"
)

func newRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(middleware.WithTeacherID(req.Context(), "teacher-1"))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) models.APIError {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp.Error
}

// ─── Error mapping ───

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", services.Invalid("userPrompt", "is required"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"wrapped validation", fmt.Errorf("classify: %w", services.Invalid("x", "y")), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"empty attendance query", agent.ErrEmptyQuery, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"not found", &services.NotFoundError{Message: "nope"}, http.StatusNotFound, "NOT_FOUND"},
		{"repository not found", repository.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"unauthorized", &services.UnauthorizedError{Message: "who?"}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", &services.ForbiddenError{Message: "no"}, http.StatusForbidden, "FORBIDDEN"},
		{"rate limited", &services.RateLimitError{Message: "slow down"}, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"internal", errors.New("pq: connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Request-ID", "req-42")

			handleServiceError(rr, req, nil, tc.err)

			assert.Equal(t, tc.status, rr.Code)
			apiErr := decodeError(t, rr)
			assert.Equal(t, tc.code, apiErr.Code)
			assert.Equal(t, "req-42", apiErr.RequestID)
			assert.NotContains(t, apiErr.Message, "connection refused")
		})
	}
}

func TestPagination(t *testing.T) {
	limit, offset := pagination(httptest.NewRequest(http.MethodGet, "/?limit=500&offset=40", nil))
	assert.Equal(t, maxPageSize, limit)
	assert.Equal(t, 40, offset)

	limit, offset = pagination(httptest.NewRequest(http.MethodGet, "/?limit=abc&offset=-1", nil))
	assert.Equal(t, defaultPageSize, limit)
	assert.Zero(t, offset)
}

// ─── Agent ───

type stubOrchestrator struct {
	teacherID string
	prompt    string
	resp      *models.AgentResponse
	err       error
}

func (s *stubOrchestrator) Handle(ctx context.Context, teacherID, userPrompt string) (*models.AgentResponse, error) {
	s.teacherID, s.prompt = teacherID, userPrompt
	return s.resp, s.err
}

func TestAgentOrchestrate(t *testing.T) {
	o := &stubOrchestrator{resp: &models.AgentResponse{
		Type:     models.ResponseTypeFinal,
		Content:  `Great! I can create a worksheet on "photosynthesis". Please upload an image of the textbook page you'd like me to use.`,
		UIPrompt: &models.UIPrompt{Tool: "requestWorksheetImage", Topic: "photosynthesis"},
	}}
	h := NewAgentHandler(o, nil)

	rr := httptest.NewRecorder()
	h.Orchestrate(rr, newRequest(t, http.MethodPost, "/api/v1/agent/orchestrate", models.OrchestrateRequest{
		TeacherID:  "teacher-1",
		UserPrompt: "make a worksheet on photosynthesis",
	}))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "teacher-1", o.teacherID)
	assert.Equal(t, "make a worksheet on photosynthesis", o.prompt)

	var got models.AgentResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	require.NotNil(t, got.UIPrompt)
	assert.Equal(t, "photosynthesis", got.UIPrompt.Topic)
}

func TestAgentOrchestrateRejectsOtherTeacher(t *testing.T) {
	o := &stubOrchestrator{}
	h := NewAgentHandler(o, nil)

	rr := httptest.NewRecorder()
	h.Orchestrate(rr, newRequest(t, http.MethodPost, "/", models.OrchestrateRequest{TeacherID: "someone-else", UserPrompt: "hi"}))

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Empty(t, o.prompt)
}

func TestAgentOrchestrateMapsValidation(t *testing.T) {
	h := NewAgentHandler(&stubOrchestrator{err: services.Invalid("userPrompt", "is required")}, nil)

	rr := httptest.NewRecorder()
	h.Orchestrate(rr, newRequest(t, http.MethodPost, "/", models.OrchestrateRequest{}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "is required", decodeError(t, rr).Fields["userPrompt"])
}

// ─── Attendance ───

type stubAttendance struct {
	query   string
	answer  string
	records []*models.AttendanceRecord
}

func (s *stubAttendance) AttendanceAnswer(ctx context.Context, teacherID, query string) (string, error) {
	s.query = query
	if query == "" {
		return "", agent.ErrEmptyQuery
	}
	return s.answer, nil
}

func (s *stubAttendance) CreateBatch(ctx context.Context, records []*models.AttendanceRecord) (int64, error) {
	s.records = append(s.records, records...)
	return int64(len(records)), nil
}

func TestAttendanceAnalyze(t *testing.T) {
	stub := &stubAttendance{answer: "Riya was absent twice."}
	h := NewAttendanceHandler(stub, stub, nil)

	rr := httptest.NewRecorder()
	h.Analyze(rr, newRequest(t, http.MethodPost, "/", models.AnalyzeAttendanceRequest{UserQuery: "  who was absent?  "}))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "who was absent?", stub.query)
	var got models.AnalyzeAttendanceResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, "Riya was absent twice.", got.Answer)
}

func TestAttendanceAnalyzeRequiresQuery(t *testing.T) {
	stub := &stubAttendance{}
	h := NewAttendanceHandler(stub, stub, nil)

	rr := httptest.NewRecorder()
	h.Analyze(rr, newRequest(t, http.MethodPost, "/", models.AnalyzeAttendanceRequest{UserQuery: "   "}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeError(t, rr).Fields, "userQuery")
}

func TestAttendanceRecord(t *testing.T) {
	stub := &stubAttendance{}
	h := NewAttendanceHandler(stub, stub, nil)

	rr := httptest.NewRecorder()
	h.Record(rr, newRequest(t, http.MethodPost, "/", models.RecordAttendanceRequest{Records: []models.AttendanceEntryInput{
		{StudentID: 1, StudentName: "Aarav", Date: "2026-07-14", Status: "Present", Grade: "Grade 1"},
		{StudentID: 2, StudentName: "Diya", Date: "2026-07-14", Status: "Late", Grade: "Grade 1"},
	}}))

	require.Equal(t, http.StatusCreated, rr.Code)
	require.Len(t, stub.records, 2)
	assert.Equal(t, "teacher-1", stub.records[0].TeacherID)
	assert.Equal(t, 14, stub.records[1].Date.Day())
}

func TestAttendanceRecordValidation(t *testing.T) {
	stub := &stubAttendance{}
	h := NewAttendanceHandler(stub, stub, nil)

	rr := httptest.NewRecorder()
	h.Record(rr, newRequest(t, http.MethodPost, "/", models.RecordAttendanceRequest{Records: []models.AttendanceEntryInput{
		{StudentID: 1, StudentName: "Aarav", Date: "14/07/2026", Status: "Sleeping"},
	}}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	fields := decodeError(t, rr).Fields
	assert.Contains(t, fields, "date")
	assert.Contains(t, fields, "status")
	assert.Empty(t, stub.records)
}

// ─── Dashboard ───

type stubDashboard struct {
	suggestions []*models.Suggestion
	briefing    *models.Briefing
	seen        uuid.UUID
}

func (s *stubDashboard) ListByTeacher(ctx context.Context, teacherID string) ([]*models.Suggestion, error) {
	return s.suggestions, nil
}

func (s *stubDashboard) MarkSeen(ctx context.Context, id uuid.UUID, teacherID string) error {
	for _, sg := range s.suggestions {
		if sg.ID == id {
			s.seen = id
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *stubDashboard) Latest(ctx context.Context, teacherID string) (*models.Briefing, error) {
	if s.briefing == nil {
		return nil, repository.ErrNotFound
	}
	return s.briefing, nil
}

func (s *stubDashboard) MarkRead(ctx context.Context, id uuid.UUID, teacherID string) error {
	return repository.ErrNotFound
}

func TestDashboardSuggestionsCarryFollowUp(t *testing.T) {
	stub := &stubDashboard{suggestions: []*models.Suggestion{
		{ID: uuid.New(), ActionType: "explainConcept", ActionPayload: models.ActionPayload{Topic: "refraction"}},
		{ID: uuid.New(), ActionType: "generateStory", ActionPayload: models.ActionPayload{Topic: "C.V. Raman"}},
	}}
	h := NewDashboardHandler(stub, stub, nil)

	rr := httptest.NewRecorder()
	h.Suggestions(rr, newRequest(t, http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var got struct {
		Items []struct {
			FollowUpPrompt string `json:"followUpPrompt"`
		} `json:"items"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Explain the concept of refraction", got.Items[0].FollowUpPrompt)
	assert.Equal(t, "Tell a story about C.V. Raman", got.Items[1].FollowUpPrompt)
}

func TestDashboardMarkSuggestionSeen(t *testing.T) {
	id := uuid.New()
	stub := &stubDashboard{suggestions: []*models.Suggestion{{ID: id}}}
	h := NewDashboardHandler(stub, stub, nil)

	rr := httptest.NewRecorder()
	h.MarkSuggestionSeen(rr, withURLParam(newRequest(t, http.MethodPut, "/", nil), "id", id.String()))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, id, stub.seen)

	rr = httptest.NewRecorder()
	h.MarkSuggestionSeen(rr, withURLParam(newRequest(t, http.MethodPut, "/", nil), "id", uuid.NewString()))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	h.MarkSuggestionSeen(rr, withURLParam(newRequest(t, http.MethodPut, "/", nil), "id", "not-a-uuid"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDashboardLatestBriefingFallsBackToDefault(t *testing.T) {
	h := NewDashboardHandler(&stubDashboard{}, &stubDashboard{}, nil)

	rr := httptest.NewRecorder()
	h.LatestBriefing(rr, newRequest(t, http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var got models.Briefing
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, "Welcome to your Dashboard!", got.Title)
	assert.True(t, got.IsDefault)
}

func TestDashboardLatestBriefing(t *testing.T) {
	stub := &stubDashboard{briefing: &models.Briefing{ID: uuid.New(), Title: "Week 29", WeekNumber: 29, IsNew: true}}
	h := NewDashboardHandler(stub, stub, nil)

	rr := httptest.NewRecorder()
	h.LatestBriefing(rr, newRequest(t, http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var got models.Briefing
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, 29, got.WeekNumber)
	assert.False(t, got.IsDefault)
}

// ─── History ───

type stubHistory struct {
	kind   models.ArtifactKind
	limit  int
	offset int
}

func (s *stubHistory) ListByTeacher(ctx context.Context, kind models.ArtifactKind, teacherID string, limit, offset int) ([]*models.Artifact, error) {
	s.kind, s.limit, s.offset = kind, limit, offset
	return []*models.Artifact{{Kind: kind, TeacherID: teacherID, UserPrompt: "kites"}}, nil
}

func TestHistoryArtifacts(t *testing.T) {
	stub := &stubHistory{}
	h := NewHistoryHandler(stub, nil, nil, nil, nil)

	rr := httptest.NewRecorder()
	h.Artifacts(rr, withURLParam(newRequest(t, http.MethodGet, "/?limit=5&offset=10", nil), "kind", "stories"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, models.ArtifactStories, stub.kind)
	assert.Equal(t, 5, stub.limit)
	assert.Equal(t, 10, stub.offset)

	rr = httptest.NewRecorder()
	h.Artifacts(rr, withURLParam(newRequest(t, http.MethodGet, "/", nil), "kind", "poems"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
