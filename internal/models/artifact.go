package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ArtifactKind names a plain-text artifact collection.
type ArtifactKind string

const (
	ArtifactStories        ArtifactKind = "stories"
	ArtifactConcepts       ArtifactKind = "concepts"
	ArtifactChalkboardAids ArtifactKind = "chalkboardAids"
)

func (k ArtifactKind) Valid() bool {
	switch k {
	case ArtifactStories, ArtifactConcepts, ArtifactChalkboardAids:
		return true
	}
	return false
}

// Artifact is a story, concept explanation or chalkboard aid.
type Artifact struct {
	ID               uuid.UUID    `json:"id"`
	Kind             ArtifactKind `json:"kind"`
	TeacherID        string       `json:"teacherId"`
	UserPrompt       string       `json:"userPrompt"`
	GeneratedContent string       `json:"generatedContent"`
	CreatedAt        time.Time    `json:"createdAt"`
}

type WorksheetArtifact struct {
	ID                uuid.UUID       `json:"id"`
	TeacherID         string          `json:"teacherId"`
	Topic             string          `json:"topic"`
	OriginalImagePath string          `json:"originalImagePath"`
	GeneratedContent  json.RawMessage `json:"generatedContent"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// WorksheetContent is the typed view of a worksheet reply used for checks.
// The stored GeneratedContent keeps every key the model wrote.
type WorksheetContent struct {
	Worksheets []GradeWorksheet `json:"worksheets"`
}

type GradeWorksheet struct {
	Title      string     `json:"title"`
	GradeLevel string     `json:"gradeLevel"`
	TotalMarks int        `json:"totalMarks"`
	Questions  []Question `json:"questions"`
}

type Question struct {
	QuestionNumber int      `json:"questionNumber"`
	Type           string   `json:"type"` // "mcq" | "short_answer" | "fill_blank" | "true_false"
	Question       string   `json:"question"`
	Options        []string `json:"options,omitempty"`
	Answer         any      `json:"answer"` // string, number or boolean
	Marks          int      `json:"marks"`
}
