package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity types written to the activity log. Tool-driven entries reuse the
// tool name so suggestions can relate back to what was generated.
const (
	ActivityGenerateStory       = "generateStory"
	ActivityExplainConcept      = "explainConcept"
	ActivityRequestWorksheet    = "requestWorksheet"
	ActivityCreateWorksheet     = "createWorksheet"
	ActivityCreateChalkboardAid = "createChalkboardAid"
	ActivityUploadSyllabus      = "uploadSyllabus"
)

type ActivityLogEntry struct {
	ID           uuid.UUID `json:"id"`
	TeacherID    string    `json:"teacherId"`
	ActivityType string    `json:"activityType"`
	Topic        string    `json:"topic"`
	CreatedAt    time.Time `json:"createdAt"`
}
