package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"sahayak-backend/internal/models"
)

// artifactTables maps each text artifact kind to its table. Table names are
// never taken from user input.
var artifactTables = map[models.ArtifactKind]string{
	models.ArtifactStories:        "stories",
	models.ArtifactConcepts:       "concepts",
	models.ArtifactChalkboardAids: "chalkboard_aids",
}

type ArtifactRepo struct {
	pool *pgxpool.Pool
}

func NewArtifactRepo(pool *pgxpool.Pool) *ArtifactRepo {
	return &ArtifactRepo{pool: pool}
}

func tableFor(kind models.ArtifactKind) (string, error) {
	table, ok := artifactTables[kind]
	if !ok {
		return "", fmt.Errorf("unknown artifact kind %q", kind)
	}
	return table, nil
}

// Create stores the artifact exactly as given; content is never rewritten.
func (r *ArtifactRepo) Create(ctx context.Context, a *models.Artifact) error {
	table, err := tableFor(a.Kind)
	if err != nil {
		return err
	}
	a.ID = uuid.New()

	query := fmt.Sprintf(`INSERT INTO %s (id, teacher_id, user_prompt, generated_content)
		VALUES ($1, $2, $3, $4) RETURNING created_at`, table)

	return r.pool.QueryRow(ctx, query, a.ID, a.TeacherID, a.UserPrompt, a.GeneratedContent).Scan(&a.CreatedAt)
}

// ListByTeacher returns artifacts newest first.
func (r *ArtifactRepo) ListByTeacher(ctx context.Context, kind models.ArtifactKind, teacherID string, limit, offset int) ([]*models.Artifact, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT id, teacher_id, user_prompt, generated_content, created_at
		FROM %s WHERE teacher_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, table)

	rows, err := r.pool.Query(ctx, query, teacherID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var artifacts []*models.Artifact
	for rows.Next() {
		a := &models.Artifact{Kind: kind}
		if err := rows.Scan(&a.ID, &a.TeacherID, &a.UserPrompt, &a.GeneratedContent, &a.CreatedAt); err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}
