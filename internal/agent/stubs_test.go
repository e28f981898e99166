package agent

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"sahayak-backend/internal/models"
)

type memStore struct {
	mu         sync.Mutex
	artifacts  []*models.Artifact
	activity   []*models.ActivityLogEntry
	attendance []*models.AttendanceRecord
	since      time.Time
	failCreate bool
}

func (s *memStore) Create(ctx context.Context, a *models.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate {
		return errors.New("insert failed")
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	s.artifacts = append(s.artifacts, a)
	return nil
}

func (s *memStore) Append(ctx context.Context, e *models.ActivityLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	s.activity = append(s.activity, e)
	return nil
}

func (s *memStore) ListSince(ctx context.Context, teacherID string, since time.Time) ([]*models.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.since = since
	var out []*models.AttendanceRecord
	for _, r := range s.attendance {
		if r.TeacherID == teacherID && !r.Date.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) artifactsOf(kind models.ArtifactKind) []*models.Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Artifact
	for _, a := range s.artifacts {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

func (s *memStore) activityTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.activity))
	for _, e := range s.activity {
		out = append(out, e.ActivityType+":"+e.Topic)
	}
	return out
}
