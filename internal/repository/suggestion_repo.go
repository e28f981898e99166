package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sahayak-backend/internal/models"
)

type SuggestionRepo struct {
	pool *pgxpool.Pool
}

func NewSuggestionRepo(pool *pgxpool.Pool) *SuggestionRepo {
	return &SuggestionRepo{pool: pool}
}

// ReplaceForTeacher deletes every existing suggestion of the teacher and
// inserts the new set in one transaction. Readers see either the old set or
// the new one, never an empty list in between.
func (r *SuggestionRepo) ReplaceForTeacher(ctx context.Context, teacherID string, suggestions []*models.Suggestion) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM proactive_suggestions WHERE teacher_id = $1", teacherID); err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for _, s := range suggestions {
			s.ID = uuid.New()
			s.TeacherID = teacherID
			s.IsNew = true
			payload, err := json.Marshal(s.ActionPayload)
			if err != nil {
				return err
			}
			batch.Queue(
				`INSERT INTO proactive_suggestions (id, teacher_id, suggestion_text, action_type, action_payload, is_new)
				VALUES ($1, $2, $3, $4, $5, TRUE) RETURNING created_at`,
				s.ID, teacherID, s.SuggestionText, s.ActionType, payload,
			).QueryRow(func(row pgx.Row) error {
				return row.Scan(&s.CreatedAt)
			})
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (r *SuggestionRepo) ListByTeacher(ctx context.Context, teacherID string) ([]*models.Suggestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, teacher_id, suggestion_text, action_type, action_payload, is_new, created_at
		FROM proactive_suggestions WHERE teacher_id = $1 ORDER BY created_at DESC`,
		teacherID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suggestions []*models.Suggestion
	for rows.Next() {
		s := &models.Suggestion{}
		var payload []byte
		if err := rows.Scan(&s.ID, &s.TeacherID, &s.SuggestionText, &s.ActionType, &payload, &s.IsNew, &s.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &s.ActionPayload); err != nil {
			return nil, err
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, rows.Err()
}

// MarkSeen clears the isNew flag on one of the teacher's suggestions.
func (r *SuggestionRepo) MarkSeen(ctx context.Context, id uuid.UUID, teacherID string) error {
	tag, err := r.pool.Exec(ctx,
		"UPDATE proactive_suggestions SET is_new = FALSE WHERE id = $1 AND teacher_id = $2",
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
