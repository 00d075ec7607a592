package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/strawhatacademy/academy-api/internal/models"
)

// SubjectRepository handles persistence for subjects and enrollment rows.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new repository instance.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// List returns all subjects in storage order.
func (r *SubjectRepository) List(ctx context.Context) ([]models.Subject, error) {
	const query = `SELECT subject_id, subject_name, teacher_id FROM subjects`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// ListByTeacher returns subjects owned by the given teacher.
func (r *SubjectRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]models.Subject, error) {
	const query = `SELECT subject_id, subject_name, teacher_id FROM subjects WHERE teacher_id = $1`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher subjects: %w", err)
	}
	return subjects, nil
}

// FindByID returns a subject by id.
func (r *SubjectRepository) FindByID(ctx context.Context, id int64) (*models.Subject, error) {
	const query = `SELECT subject_id, subject_name, teacher_id FROM subjects WHERE subject_id = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find subject by id: %w", err)
	}
	return &subject, nil
}

// Create persists a new subject and writes back the generated id.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	const query = `INSERT INTO subjects (subject_name, teacher_id) VALUES ($1, $2) RETURNING subject_id`
	if err := r.db.GetContext(ctx, &subject.ID, query, subject.Name, subject.TeacherID); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// Delete removes a subject record.
func (r *SubjectRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM subjects WHERE subject_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountGrades returns the number of grade rows referencing the subject.
// Deletion is blocked while this is non-zero.
func (r *SubjectRepository) CountGrades(ctx context.Context, subjectID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM grades WHERE subject_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, subjectID); err != nil {
		return 0, fmt.Errorf("count subject grades: %w", err)
	}
	return count, nil
}

// Enroll records a student's registration in a subject as a sentinel grade
// row: value 0, type Registered, dated now. No prior-enrollment check is
// performed; calling it twice for the same pair inserts two rows.
func (r *SubjectRepository) Enroll(ctx context.Context, studentID, subjectID int64) (*models.Grade, error) {
	grade := &models.Grade{
		StudentID:    studentID,
		SubjectID:    subjectID,
		Value:        0,
		DateRecorded: time.Now().UTC(),
		Type:         models.GradeTypeRegistered,
	}
	const query = `INSERT INTO grades (student_id, subject_id, grade_value, date_recorded, type)
        VALUES ($1, $2, $3, $4, $5) RETURNING grade_id`
	if err := r.db.GetContext(ctx, &grade.ID, query, grade.StudentID, grade.SubjectID, grade.Value, grade.DateRecorded, grade.Type); err != nil {
		return nil, fmt.Errorf("enroll student: %w", err)
	}
	return grade, nil
}
