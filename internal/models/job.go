package models

import (
	"time"

	"github.com/google/uuid"
)

// Job types consumed by the worker pool.
const (
	JobWorksheetGeneration = "worksheet-generation"
	JobSyllabusProcessing  = "syllabus-processing"
)

// Job wraps a finalized storage object waiting to be processed.
type Job struct {
	ID          uuid.UUID         `json:"id"`
	Type        string            `json:"type"`
	ObjectPath  string            `json:"object_path"`
	ContentType string            `json:"content_type"`
	Metadata    map[string]string `json:"metadata"`
	CreatedAt   time.Time         `json:"created_at"`
}

// TeacherID returns the teacherId metadata key, or "" when absent.
func (j *Job) TeacherID() string {
	if j.Metadata == nil {
		return ""
	}
	return j.Metadata["teacherId"]
}

// WebSocket message types
const (
	EventWorksheetReady     = "worksheet_ready"
	EventSyllabusReady      = "syllabus_ready"
	EventSuggestionsUpdated = "suggestions_updated"
	EventBriefingReady      = "briefing_ready"
	EventJobFailed          = "job_failed"
)

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type CompletedEvent struct {
	JobID      uuid.UUID `json:"job_id,omitempty"`
	ResultID   uuid.UUID `json:"result_id"`
	ResultType string    `json:"result_type"`
	Topic      string    `json:"topic,omitempty"`
}

type ErrorEvent struct {
	JobID        uuid.UUID `json:"job_id"`
	ErrorCode    string    `json:"error_code"`
	ErrorMessage string    `json:"error_message"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
