package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sahayak-backend/internal/models"
)

type AttendanceRepo struct {
	pool *pgxpool.Pool
}

func NewAttendanceRepo(pool *pgxpool.Pool) *AttendanceRepo {
	return &AttendanceRepo{pool: pool}
}

// CreateBatch bulk-inserts records with COPY.
func (r *AttendanceRepo) CreateBatch(ctx context.Context, records []*models.AttendanceRecord) (int64, error) {
	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		rec.ID = uuid.New()
		rows = append(rows, []any{rec.ID, rec.TeacherID, rec.StudentID, rec.StudentName, rec.Date, rec.Status, rec.Grade})
	}

	return r.pool.CopyFrom(ctx,
		pgx.Identifier{"attendance"},
		[]string{"id", "teacher_id", "student_id", "student_name", "date", "status", "grade"},
		pgx.CopyFromRows(rows),
	)
}

// ListSince returns the teacher's rows dated on or after since, oldest first.
func (r *AttendanceRepo) ListSince(ctx context.Context, teacherID string, since time.Time) ([]*models.AttendanceRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, teacher_id, student_id, student_name, date, status, grade, created_at
		FROM attendance WHERE teacher_id = $1 AND date >= $2
		ORDER BY date, student_id`,
		teacherID, since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.AttendanceRecord
	for rows.Next() {
		rec := &models.AttendanceRecord{}
		if err := rows.Scan(&rec.ID, &rec.TeacherID, &rec.StudentID, &rec.StudentName,
			&rec.Date, &rec.Status, &rec.Grade, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
