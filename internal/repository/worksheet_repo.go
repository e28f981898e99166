package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"sahayak-backend/internal/models"
)

type WorksheetRepo struct {
	pool *pgxpool.Pool
}

func NewWorksheetRepo(pool *pgxpool.Pool) *WorksheetRepo {
	return &WorksheetRepo{pool: pool}
}

func (r *WorksheetRepo) Create(ctx context.Context, w *models.WorksheetArtifact) error {
	if !json.Valid(w.GeneratedContent) {
		return fmt.Errorf("worksheet content is not valid JSON")
	}
	content := []byte(w.GeneratedContent)
	w.ID = uuid.New()

	query := `INSERT INTO worksheets (id, teacher_id, topic, original_image_path, generated_content)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at`

	return r.pool.QueryRow(ctx, query, w.ID, w.TeacherID, w.Topic, w.OriginalImagePath, content).Scan(&w.CreatedAt)
}

func (r *WorksheetRepo) ListByTeacher(ctx context.Context, teacherID string, limit, offset int) ([]*models.WorksheetArtifact, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, teacher_id, topic, original_image_path, generated_content, created_at
		FROM worksheets WHERE teacher_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		teacherID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var worksheets []*models.WorksheetArtifact
	for rows.Next() {
		w := &models.WorksheetArtifact{}
		var content []byte
		if err := rows.Scan(&w.ID, &w.TeacherID, &w.Topic, &w.OriginalImagePath, &content, &w.CreatedAt); err != nil {
			return nil, err
		}
		w.GeneratedContent = json.RawMessage(content)
		worksheets = append(worksheets, w)
	}
	return worksheets, rows.Err()
}
