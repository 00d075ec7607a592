package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/strawhatacademy/academy-api/internal/models"
)

// GradeRepository handles grade persistence.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository creates a new grade repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// ListByStudent returns all grades recorded for a student, including
// enrollment sentinel rows, with the subject name resolved.
func (r *GradeRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.Grade, error) {
	const query = `SELECT g.grade_id, g.student_id, g.subject_id, g.grade_value, g.date_recorded, g.type, s.subject_name
        FROM grades g
        JOIN subjects s ON s.subject_id = g.subject_id
        WHERE g.student_id = $1
        ORDER BY g.grade_id`
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query, studentID); err != nil {
		return nil, fmt.Errorf("list student grades: %w", err)
	}
	return grades, nil
}

// ListByTeacher returns grades for subjects owned by the teacher, with the
// student's display name resolved through the profiles table.
func (r *GradeRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]models.TeacherGradeRow, error) {
	const query = `SELECT g.grade_id, g.student_id, g.subject_id, g.grade_value, g.date_recorded, g.type, s.subject_name,
        p.first_name || ' ' || p.last_name AS student_name
        FROM grades g
        JOIN subjects s ON s.subject_id = g.subject_id
        JOIN profiles p ON p.user_id = g.student_id
        WHERE s.teacher_id = $1
        ORDER BY g.grade_id`
	var rows []models.TeacherGradeRow
	if err := r.db.SelectContext(ctx, &rows, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher grades: %w", err)
	}
	return rows, nil
}

// FindByID returns a single grade by its id.
func (r *GradeRepository) FindByID(ctx context.Context, id int64) (*models.Grade, error) {
	const query = `SELECT grade_id, student_id, subject_id, grade_value, date_recorded, type
        FROM grades WHERE grade_id = $1`
	var grade models.Grade
	if err := r.db.GetContext(ctx, &grade, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find grade by id: %w", err)
	}
	return &grade, nil
}

// Create persists a new grade and writes back the generated id.
func (r *GradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	const query = `INSERT INTO grades (student_id, subject_id, grade_value, date_recorded, type)
        VALUES ($1, $2, $3, $4, $5) RETURNING grade_id`
	if err := r.db.GetContext(ctx, &grade.ID, query, grade.StudentID, grade.SubjectID, grade.Value, grade.DateRecorded, grade.Type); err != nil {
		return fmt.Errorf("create grade: %w", err)
	}
	return nil
}

// Update modifies the mutable fields of a grade, keyed by its id. The
// student and subject references are never touched.
func (r *GradeRepository) Update(ctx context.Context, grade *models.Grade) error {
	const query = `UPDATE grades SET grade_value = $2, date_recorded = $3, type = $4 WHERE grade_id = $1`
	result, err := r.db.ExecContext(ctx, query, grade.ID, grade.Value, grade.DateRecorded, grade.Type)
	if err != nil {
		return fmt.Errorf("update grade: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
