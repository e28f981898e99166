package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"sahayak-backend/internal/models"
)

type memObjects map[string][]byte

func (m memObjects) Read(ctx context.Context, objectPath string) ([]byte, error) {
	data, ok := m[objectPath]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

type memRepo struct {
	mu         sync.Mutex
	worksheets []*models.WorksheetArtifact
	activity   []*models.ActivityLogEntry
	syllabus   map[string][]*models.SyllabusTopic
}

func (r *memRepo) Create(ctx context.Context, w *models.WorksheetArtifact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w.ID = uuid.New()
	w.CreatedAt = time.Now()
	r.worksheets = append(r.worksheets, w)
	return nil
}

func (r *memRepo) Append(ctx context.Context, e *models.ActivityLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activity = append(r.activity, e)
	return nil
}

func (r *memRepo) ReplaceForTeacher(ctx context.Context, teacherID string, topics []*models.SyllabusTopic) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.syllabus == nil {
		r.syllabus = make(map[string][]*models.SyllabusTopic)
	}
	r.syllabus[teacherID] = topics
	return nil
}

func (r *memRepo) writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.worksheets) + len(r.activity) + len(r.syllabus)
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages map[string][]models.WSMessage
}

func (p *recordingPublisher) Publish(ctx context.Context, teacherID string, msg models.WSMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.messages == nil {
		p.messages = make(map[string][]models.WSMessage)
	}
	p.messages[teacherID] = append(p.messages[teacherID], msg)
}

// worksheetReply builds a well-formed model reply with three 5-question
// worksheets whose marks sum to 20.
func worksheetReply(marks ...int) string {
	if len(marks) == 0 {
		marks = []int{4, 4, 4, 4, 4}
	}
	content := models.WorksheetContent{}
	for _, grade := range []string{"Grades 1-2", "Grades 3-4", "Grades 5-6"} {
		ws := models.GradeWorksheet{Title: "Photosynthesis " + grade, GradeLevel: grade, TotalMarks: 20}
		for i, m := range marks {
			ws.Questions = append(ws.Questions, models.Question{
				QuestionNumber: i + 1,
				Type:           "short_answer",
				Question:       fmt.Sprintf("Question %d?", i+1),
				Answer:         "Answer",
				Marks:          m,
			})
		}
		content.Worksheets = append(content.Worksheets, ws)
	}
	data, _ := json.Marshal(content)
	return string(data)
}

// looseWorksheetReply is a valid reply carrying keys outside the typed view
// and non-string answers.
func looseWorksheetReply() string {
	answers := []any{true, 42, "photosynthesis", 3.5, false}
	var worksheets []map[string]any
	for _, grade := range []string{"Grades 1-2", "Grades 3-4", "Grades 5-6"} {
		var questions []map[string]any
		for i, a := range answers {
			questions = append(questions, map[string]any{
				"questionNumber": i + 1,
				"type":           "true_false",
				"question":       fmt.Sprintf("Question %d?", i+1),
				"answer":         a,
				"marks":          4,
				"hint":           "Look at the diagram",
			})
		}
		worksheets = append(worksheets, map[string]any{
			"title":        "Photosynthesis " + grade,
			"gradeLevel":   grade,
			"totalMarks":   20,
			"instructions": "Read carefully",
			"questions":    questions,
		})
	}
	data, _ := json.Marshal(map[string]any{"worksheets": worksheets, "subject": "Science"})
	return string(data)
}
