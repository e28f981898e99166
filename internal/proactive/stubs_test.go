package proactive

import (
	"context"
	"errors"
	"sync"
	"time"

	"sahayak-backend/internal/models"
)

type memActivity struct {
	byTeacher map[string][]*models.ActivityLogEntry
}

func (m *memActivity) ListRecent(ctx context.Context, teacherID string, limit int) ([]*models.ActivityLogEntry, error) {
	entries := m.byTeacher[teacherID]
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (m *memActivity) ListTeacherIDs(ctx context.Context) ([]string, error) {
	var ids []string
	for id := range m.byTeacher {
		ids = append(ids, id)
	}
	return ids, nil
}

type memSuggestions struct {
	mu        sync.Mutex
	byTeacher map[string][]*models.Suggestion
	replaces  int
}

func (m *memSuggestions) ReplaceForTeacher(ctx context.Context, teacherID string, s []*models.Suggestion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byTeacher == nil {
		m.byTeacher = make(map[string][]*models.Suggestion)
	}
	m.byTeacher[teacherID] = s
	m.replaces++
	return nil
}

type memSyllabus struct {
	topics map[string]map[int][]string
}

func (m *memSyllabus) TopicsForWeek(ctx context.Context, teacherID string, week int) ([]string, error) {
	return m.topics[teacherID][week], nil
}

func (m *memSyllabus) ListTeacherIDs(ctx context.Context) ([]string, error) {
	var ids []string
	for id := range m.topics {
		ids = append(ids, id)
	}
	return ids, nil
}

type memBriefings struct {
	mu    sync.Mutex
	saved []*models.Briefing
}

func (m *memBriefings) Create(ctx context.Context, b *models.Briefing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, b)
	return nil
}

type fakeLocker struct {
	mu     sync.Mutex
	held   map[string]bool
	failOn error
}

func (f *fakeLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != nil {
		return nil, false, f.failOn
	}
	if f.held == nil {
		f.held = make(map[string]bool)
	}
	if f.held[key] {
		return nil, false, nil
	}
	f.held[key] = true
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.held, key)
	}, true, nil
}

var errRedisDown = errors.New("redis down")
