package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/strawhatacademy/academy-api/internal/models"
	appErrors "github.com/strawhatacademy/academy-api/pkg/errors"
)

const subjectListCacheKey = "subjects:all"

type subjectRepository interface {
	List(ctx context.Context) ([]models.Subject, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]models.Subject, error)
	FindByID(ctx context.Context, id int64) (*models.Subject, error)
	Create(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id int64) error
	CountGrades(ctx context.Context, subjectID int64) (int, error)
	Enroll(ctx context.Context, studentID, subjectID int64) (*models.Grade, error)
}

type subjectCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type userFinder interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// CreateSubjectRequest captures fields for creating subjects.
type CreateSubjectRequest struct {
	Name      string `json:"name" validate:"required"`
	TeacherID int64  `json:"teacher_id" validate:"required,gt=0"`
}

// SubjectService handles subject workflows including enrollment.
type SubjectService struct {
	repo      subjectRepository
	users     userFinder
	cache     subjectCache
	cacheTTL  time.Duration
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService creates a new subject service. cache and metrics may be
// nil, in which case listings always hit the database.
func NewSubjectService(repo subjectRepository, users userFinder, cache subjectCache, cacheTTL time.Duration, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{
		repo:      repo,
		users:     users,
		cache:     cache,
		cacheTTL:  cacheTTL,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// List returns all subjects, read through the cache when available.
func (s *SubjectService) List(ctx context.Context) ([]models.Subject, error) {
	if s.cache != nil {
		var cached []models.Subject
		start := time.Now()
		err := s.cache.Get(ctx, subjectListCacheKey, &cached)
		s.metrics.RecordCacheOperation(err == nil, time.Since(start))
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("subject cache read failed", zap.Error(err))
		}
	}

	queryStart := time.Now()
	subjects, err := s.repo.List(ctx)
	s.metrics.ObserveDBQuery("subjects_list", time.Since(queryStart))
	if err != nil {
		return nil, storeError(err, "failed to list subjects")
	}

	if s.cache != nil {
		start := time.Now()
		if err := s.cache.Set(ctx, subjectListCacheKey, subjects, s.cacheTTL); err != nil {
			s.logger.Warn("subject cache write failed", zap.Error(err))
		}
		s.metrics.ObserveCacheWrite(time.Since(start))
	}

	return subjects, nil
}

// ListByTeacher returns the subjects owned by a teacher.
func (s *SubjectService) ListByTeacher(ctx context.Context, teacherID int64) ([]models.Subject, error) {
	subjects, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, storeError(err, "failed to list teacher subjects")
	}
	return subjects, nil
}

// TeacherRecord builds the teacher role view: identity plus owned subjects.
func (s *SubjectService) TeacherRecord(ctx context.Context, teacherID int64) (*models.TeacherRecord, error) {
	user, err := s.users.FindByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, storeError(err, "failed to load teacher")
	}
	if user.Role != models.RoleTeacher {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}

	subjects, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, storeError(err, "failed to list teacher subjects")
	}

	return &models.TeacherRecord{User: *user, SubjectsTaught: subjects}, nil
}

// Create adds a new subject owned by the given teacher.
func (s *SubjectService) Create(ctx context.Context, req CreateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}

	subject := &models.Subject{
		Name:      strings.TrimSpace(req.Name),
		TeacherID: req.TeacherID,
	}

	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, storeError(err, "failed to create subject")
	}

	s.invalidateListCache(ctx)
	return subject, nil
}

// Delete removes a subject. The referential guard is load-bearing: deletion
// fails with CONFLICT while any grade row, enrollment sentinels included,
// still references the subject.
func (s *SubjectService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return storeError(err, "failed to load subject")
	}

	count, err := s.repo.CountGrades(ctx, id)
	if err != nil {
		return storeError(err, "failed to check subject references")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "subject has recorded grades")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return storeError(err, "failed to delete subject")
	}

	s.invalidateListCache(ctx)
	return nil
}

// Enroll registers a student in a subject by inserting the sentinel grade
// row. A second enrollment for the same pair inserts a second sentinel row;
// rejecting duplicates is an open product decision.
func (s *SubjectService) Enroll(ctx context.Context, studentID, subjectID int64) (*models.Grade, error) {
	if _, err := s.repo.FindByID(ctx, subjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, storeError(err, "failed to load subject")
	}

	grade, err := s.repo.Enroll(ctx, studentID, subjectID)
	if err != nil {
		return nil, storeError(err, "failed to enroll student")
	}

	s.logger.Info("student enrolled",
		zap.Int64("student_id", studentID),
		zap.Int64("subject_id", subjectID),
	)
	return grade, nil
}

func (s *SubjectService) invalidateListCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, subjectListCacheKey); err != nil {
		s.logger.Warn("subject cache invalidation failed", zap.Error(err))
	}
}
