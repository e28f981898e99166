package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"sahayak-backend/internal/models"
)

type ActivityRepo struct {
	pool *pgxpool.Pool
}

func NewActivityRepo(pool *pgxpool.Pool) *ActivityRepo {
	return &ActivityRepo{pool: pool}
}

// Append inserts a log entry. created_at comes from clock_timestamp() so
// entries written later never sort before earlier ones.
func (r *ActivityRepo) Append(ctx context.Context, e *models.ActivityLogEntry) error {
	e.ID = uuid.New()

	query := `INSERT INTO user_activity_log (id, teacher_id, activity_type, topic)
		VALUES ($1, $2, $3, $4) RETURNING created_at`

	return r.pool.QueryRow(ctx, query, e.ID, e.TeacherID, e.ActivityType, e.Topic).Scan(&e.CreatedAt)
}

// ListRecent returns up to limit entries, newest first.
func (r *ActivityRepo) ListRecent(ctx context.Context, teacherID string, limit int) ([]*models.ActivityLogEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, teacher_id, activity_type, topic, created_at
		FROM user_activity_log WHERE teacher_id = $1
		ORDER BY created_at DESC LIMIT $2`,
		teacherID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.ActivityLogEntry
	for rows.Next() {
		e := &models.ActivityLogEntry{}
		if err := rows.Scan(&e.ID, &e.TeacherID, &e.ActivityType, &e.Topic, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListTeacherIDs returns every teacher that has at least one log entry.
func (r *ActivityRepo) ListTeacherIDs(ctx context.Context) ([]string, error) {
	return queryStrings(ctx, r.pool, `SELECT DISTINCT teacher_id FROM user_activity_log ORDER BY teacher_id`)
}

func queryStrings(ctx context.Context, pool *pgxpool.Pool, query string, args ...any) ([]string, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
