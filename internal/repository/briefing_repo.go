package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"sahayak-backend/internal/models"
)

type BriefingRepo struct {
	pool *pgxpool.Pool
}

func NewBriefingRepo(pool *pgxpool.Pool) *BriefingRepo {
	return &BriefingRepo{pool: pool}
}

// Create appends a briefing. Earlier briefings are kept.
func (r *BriefingRepo) Create(ctx context.Context, b *models.Briefing) error {
	ideas, err := json.Marshal(b.Suggestions)
	if err != nil {
		return err
	}
	b.ID = uuid.New()
	b.IsNew = true

	query := `INSERT INTO briefings (id, teacher_id, title, message, suggestions, week_number, is_new)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		b.ID, b.TeacherID, b.Title, b.Message, ideas, b.WeekNumber,
	).Scan(&b.CreatedAt)
}

// Latest returns the newest briefing or ErrNotFound.
func (r *BriefingRepo) Latest(ctx context.Context, teacherID string) (*models.Briefing, error) {
	b := &models.Briefing{}
	var ideas []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, teacher_id, title, message, suggestions, week_number, is_new, created_at
		FROM briefings WHERE teacher_id = $1 ORDER BY created_at DESC LIMIT 1`,
		teacherID,
	).Scan(&b.ID, &b.TeacherID, &b.Title, &b.Message, &ideas, &b.WeekNumber, &b.IsNew, &b.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	if err := json.Unmarshal(ideas, &b.Suggestions); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *BriefingRepo) MarkRead(ctx context.Context, id uuid.UUID, teacherID string) error {
	tag, err := r.pool.Exec(ctx,
		"UPDATE briefings SET is_new = FALSE WHERE id = $1 AND teacher_id = $2",
		id, teacherID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
