package proactive

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"sahayak-backend/internal/models"
)

const defaultConcurrency = 4

type Publisher interface {
	Publish(ctx context.Context, teacherID string, msg models.WSMessage)
}

// RunStats summarizes one pass over all teachers.
type RunStats struct {
	Teachers  int
	Succeeded int
	Skipped   int
	Failed    int
}

type outcome int

const (
	outcomeSucceeded outcome = iota
	outcomeSkipped
	outcomeFailed
)

func (o outcome) String() string {
	switch o {
	case outcomeSucceeded:
		return "succeeded"
	case outcomeSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// forEachTeacher runs fn for every teacher with bounded concurrency. fn's
// outcome is tallied; one teacher's failure never stops the others.
func forEachTeacher(ctx context.Context, teacherIDs []string, limit int, fn func(ctx context.Context, teacherID string) outcome) RunStats {
	if limit <= 0 {
		limit = defaultConcurrency
	}

	var (
		mu    sync.Mutex
		stats = RunStats{Teachers: len(teacherIDs)}
	)
	var g errgroup.Group
	g.SetLimit(limit)
	for _, id := range teacherIDs {
		g.Go(func() error {
			o := fn(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			switch o {
			case outcomeSucceeded:
				stats.Succeeded++
			case outcomeSkipped:
				stats.Skipped++
			default:
				stats.Failed++
			}
			return nil
		})
	}
	_ = g.Wait()
	return stats
}
