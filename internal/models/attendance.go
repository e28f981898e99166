package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AttendancePresent = "Present"
	AttendanceAbsent  = "Absent"
	AttendanceLate    = "Late"
	AttendanceExcused = "Excused"
)

// AttendanceDateLayout is the calendar-day format used on the wire.
const AttendanceDateLayout = "2006-01-02"

type AttendanceRecord struct {
	ID          uuid.UUID `json:"id"`
	TeacherID   string    `json:"teacherId"`
	StudentID   int       `json:"studentId"`
	StudentName string    `json:"studentName"`
	Date        time.Time `json:"date"`
	Status      string    `json:"status"`
	Grade       string    `json:"grade"`
	CreatedAt   time.Time `json:"createdAt"`
}

type AttendanceEntryInput struct {
	StudentID   int    `json:"studentId" validate:"required,gt=0"`
	StudentName string `json:"studentName" validate:"required"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Status      string `json:"status" validate:"required,oneof=Present Absent Late Excused"`
	Grade       string `json:"grade"`
}

type RecordAttendanceRequest struct {
	Records []AttendanceEntryInput `json:"records" validate:"required,min=1,dive"`
}

type AnalyzeAttendanceRequest struct {
	TeacherID string `json:"teacherId"`
	UserQuery string `json:"userQuery" validate:"required"`
}

type AnalyzeAttendanceResponse struct {
	Answer string `json:"answer"`
}
