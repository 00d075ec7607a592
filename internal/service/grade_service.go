package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/strawhatacademy/academy-api/internal/models"
	appErrors "github.com/strawhatacademy/academy-api/pkg/errors"
)

// gradeDateLayout is the wire format for grade dates.
const gradeDateLayout = "2006-01-02"

type gradeRepository interface {
	ListByStudent(ctx context.Context, studentID int64) ([]models.Grade, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]models.TeacherGradeRow, error)
	FindByID(ctx context.Context, id int64) (*models.Grade, error)
	Create(ctx context.Context, grade *models.Grade) error
	Update(ctx context.Context, grade *models.Grade) error
}

// CreateGradeRequest captures a new grade entry.
type CreateGradeRequest struct {
	StudentID    int64   `json:"student_id" validate:"required,gt=0"`
	SubjectID    int64   `json:"subject_id" validate:"required,gt=0"`
	Value        float64 `json:"value" validate:"gte=0"`
	Type         string  `json:"type" validate:"required"`
	DateRecorded string  `json:"date_recorded"`
}

// UpdateGradeRequest carries the mutable grade fields. The student and
// subject references cannot be changed once the grade exists.
type UpdateGradeRequest struct {
	Value        float64 `json:"value" validate:"gte=0"`
	Type         string  `json:"type" validate:"required"`
	DateRecorded string  `json:"date_recorded"`
}

// GradeService handles grade workflows and the student role view.
type GradeService struct {
	repo      gradeRepository
	users     userFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService creates a grade service.
func NewGradeService(repo gradeRepository, users userFinder, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{repo: repo, users: users, validator: validate, logger: logger}
}

// StudentRecord builds the student role view: identity, grades and the
// derived average. Enrollment sentinel rows are part of the grade sequence.
func (s *GradeService) StudentRecord(ctx context.Context, studentID int64) (*models.StudentRecord, error) {
	user, err := s.users.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, storeError(err, "failed to load student")
	}
	if user.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	grades, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, storeError(err, "failed to list student grades")
	}

	return &models.StudentRecord{User: *user, Grades: grades}, nil
}

// TeacherGrades returns grade rows for the subjects a teacher owns, each
// carrying the student's display name.
func (s *GradeService) TeacherGrades(ctx context.Context, teacherID int64) ([]models.TeacherGradeRow, error) {
	rows, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, storeError(err, "failed to list teacher grades")
	}
	return rows, nil
}

// Get returns a single grade by id.
func (s *GradeService) Get(ctx context.Context, id int64) (*models.Grade, error) {
	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, storeError(err, "failed to load grade")
	}
	return grade, nil
}

// Create records a new grade for a student in a subject.
func (s *GradeService) Create(ctx context.Context, req CreateGradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}

	gradeType := models.GradeType(req.Type)
	if !gradeType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown grade type")
	}

	date, err := parseGradeDate(req.DateRecorded)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date_recorded must be YYYY-MM-DD")
	}

	grade := &models.Grade{
		StudentID:    req.StudentID,
		SubjectID:    req.SubjectID,
		Value:        req.Value,
		DateRecorded: date,
		Type:         gradeType,
	}

	if err := s.repo.Create(ctx, grade); err != nil {
		return nil, storeError(err, "failed to create grade")
	}

	s.logger.Info("grade recorded",
		zap.Int64("grade_id", grade.ID),
		zap.Int64("student_id", grade.StudentID),
		zap.Int64("subject_id", grade.SubjectID),
		zap.String("type", string(grade.Type)),
	)
	return grade, nil
}

// Update changes the value, date and type of an existing grade. The stored
// student and subject ids are kept as-is.
func (s *GradeService) Update(ctx context.Context, id int64, req UpdateGradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}

	gradeType := models.GradeType(req.Type)
	if !gradeType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown grade type")
	}

	date, err := parseGradeDate(req.DateRecorded)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date_recorded must be YYYY-MM-DD")
	}

	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, storeError(err, "failed to load grade")
	}

	grade.Value = req.Value
	grade.DateRecorded = date
	grade.Type = gradeType

	if err := s.repo.Update(ctx, grade); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, storeError(err, "failed to update grade")
	}

	return grade, nil
}

func parseGradeDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse(gradeDateLayout, raw)
}
