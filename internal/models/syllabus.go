package models

import (
	"time"

	"github.com/google/uuid"
)

// SyllabusTopic is one row of a teacher's week-by-week syllabus plan.
type SyllabusTopic struct {
	ID         uuid.UUID `json:"id"`
	TeacherID  string    `json:"teacherId"`
	WeekNumber int       `json:"weekNumber"`
	Subject    string    `json:"subject"`
	Topic      string    `json:"topic"`
	CreatedAt  time.Time `json:"createdAt"`
}
