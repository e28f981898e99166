package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"sahayak-backend/internal/logger"
	"sahayak-backend/internal/middleware"
	"sahayak-backend/internal/models"
	"sahayak-backend/internal/services"
)

type attendanceAnswerer interface {
	AttendanceAnswer(ctx context.Context, teacherID, query string) (string, error)
}

type attendanceWriter interface {
	CreateBatch(ctx context.Context, records []*models.AttendanceRecord) (int64, error)
}

type AttendanceHandler struct {
	answerer attendanceAnswerer
	store    attendanceWriter
	logger   *zap.Logger
}

func NewAttendanceHandler(answerer attendanceAnswerer, store attendanceWriter, l *zap.Logger) *AttendanceHandler {
	return &AttendanceHandler{answerer: answerer, store: store, logger: logger.OrNop(l).Named("attendance_handler")}
}

// Analyze answers a natural-language question about the teacher's recent
// attendance without going through tool selection.
func (h *AttendanceHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeAttendanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	teacherID := middleware.GetTeacherID(r.Context())
	if forbiddenTeacher(req.TeacherID, teacherID) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}
	req.UserQuery = strings.TrimSpace(req.UserQuery)
	if err := services.ValidateStruct(&req); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	answer, err := h.answerer.AttendanceAnswer(r.Context(), teacherID, req.UserQuery)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, models.AnalyzeAttendanceResponse{Answer: answer})
}

// Record stores a batch of attendance rows for the authenticated teacher.
func (h *AttendanceHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req models.RecordAttendanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := services.ValidateStruct(&req); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	teacherID := middleware.GetTeacherID(r.Context())
	records := make([]*models.AttendanceRecord, 0, len(req.Records))
	for _, in := range req.Records {
		date, err := time.Parse(models.AttendanceDateLayout, in.Date)
		if err != nil {
			handleServiceError(w, r, h.logger, services.Invalid("date", "must be a date formatted as "+models.AttendanceDateLayout))
			return
		}
		records = append(records, &models.AttendanceRecord{
			TeacherID:   teacherID,
			StudentID:   in.StudentID,
			StudentName: strings.TrimSpace(in.StudentName),
			Date:        date,
			Status:      in.Status,
			Grade:       in.Grade,
		})
	}

	n, err := h.store.CreateBatch(r.Context(), records)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"inserted": n})
}
