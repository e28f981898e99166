package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sahayak-backend/internal/models"
)

type SyllabusRepo struct {
	pool *pgxpool.Pool
}

func NewSyllabusRepo(pool *pgxpool.Pool) *SyllabusRepo {
	return &SyllabusRepo{pool: pool}
}

// ReplaceForTeacher swaps the teacher's whole plan for topics.
func (r *SyllabusRepo) ReplaceForTeacher(ctx context.Context, teacherID string, topics []*models.SyllabusTopic) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM syllabus_plan WHERE teacher_id = $1", teacherID); err != nil {
			return err
		}

		rows := make([][]any, 0, len(topics))
		for _, t := range topics {
			t.ID = uuid.New()
			t.TeacherID = teacherID
			rows = append(rows, []any{t.ID, teacherID, t.WeekNumber, t.Subject, t.Topic})
		}
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"syllabus_plan"},
			[]string{"id", "teacher_id", "week_number", "subject", "topic"},
			pgx.CopyFromRows(rows),
		)
		return err
	})
}

// TopicsForWeek returns the topic strings planned for weekNumber.
func (r *SyllabusRepo) TopicsForWeek(ctx context.Context, teacherID string, weekNumber int) ([]string, error) {
	return queryStrings(ctx, r.pool,
		`SELECT topic FROM syllabus_plan WHERE teacher_id = $1 AND week_number = $2 ORDER BY subject, topic`,
		teacherID, weekNumber,
	)
}

func (r *SyllabusRepo) ListByTeacher(ctx context.Context, teacherID string) ([]*models.SyllabusTopic, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, teacher_id, week_number, subject, topic, created_at
		FROM syllabus_plan WHERE teacher_id = $1 ORDER BY week_number, subject, topic`,
		teacherID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []*models.SyllabusTopic
	for rows.Next() {
		t := &models.SyllabusTopic{}
		if err := rows.Scan(&t.ID, &t.TeacherID, &t.WeekNumber, &t.Subject, &t.Topic, &t.CreatedAt); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

// ListTeacherIDs returns every teacher with a syllabus plan.
func (r *SyllabusRepo) ListTeacherIDs(ctx context.Context) ([]string, error) {
	return queryStrings(ctx, r.pool, `SELECT DISTINCT teacher_id FROM syllabus_plan ORDER BY teacher_id`)
}
