package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strawhatacademy/academy-api/internal/models"
)

func newGradeMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestGradeRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newGradeMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	recorded := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"grade_id", "student_id", "subject_id", "grade_value", "date_recorded", "type", "subject_name"}).
		AddRow(int64(1), int64(5), int64(3), 0.0, recorded, "Registered", "Navigation").
		AddRow(int64(2), int64(5), int64(3), 92.5, recorded, "Exam", "Navigation")
	mock.ExpectQuery("SELECT g.grade_id, g.student_id, g.subject_id, g.grade_value, g.date_recorded, g.type, s.subject_name").
		WithArgs(int64(5)).
		WillReturnRows(rows)

	grades, err := repo.ListByStudent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, grades, 2)
	assert.True(t, grades[0].IsEnrollment())
	assert.Equal(t, 92.5, grades[1].Value)
	assert.Equal(t, "Navigation", grades[1].SubjectName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryListByTeacher(t *testing.T) {
	db, mock, cleanup := newGradeMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	recorded := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"grade_id", "student_id", "subject_id", "grade_value", "date_recorded", "type", "subject_name", "student_name"}).
		AddRow(int64(2), int64(5), int64(3), 88.0, recorded, "Quiz", "Navigation", "Nami Navigator")
	mock.ExpectQuery("WHERE s.teacher_id = \\$1").
		WithArgs(int64(2)).
		WillReturnRows(rows)

	teacherRows, err := repo.ListByTeacher(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, teacherRows, 1)
	assert.Equal(t, "Nami Navigator", teacherRows[0].StudentName)
	assert.Equal(t, 88.0, teacherRows[0].Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newGradeMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectQuery("SELECT grade_id, student_id, subject_id").
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	grade, err := repo.FindByID(context.Background(), 404)
	assert.Nil(t, grade)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newGradeMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	recorded := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO grades").
		WithArgs(int64(5), int64(3), 95.0, recorded, models.GradeTypeExam).
		WillReturnRows(sqlmock.NewRows([]string{"grade_id"}).AddRow(int64(11)))

	grade := &models.Grade{StudentID: 5, SubjectID: 3, Value: 95.0, DateRecorded: recorded, Type: models.GradeTypeExam}
	err := repo.Create(context.Background(), grade)
	require.NoError(t, err)
	assert.Equal(t, int64(11), grade.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newGradeMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	recorded := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE grades SET grade_value = $2, date_recorded = $3, type = $4 WHERE grade_id = $1")).
		WithArgs(int64(11), 97.0, recorded, models.GradeTypeFinal).
		WillReturnResult(sqlmock.NewResult(0, 1))

	grade := &models.Grade{ID: 11, StudentID: 5, SubjectID: 3, Value: 97.0, DateRecorded: recorded, Type: models.GradeTypeFinal}
	require.NoError(t, repo.Update(context.Background(), grade))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newGradeMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectExec("UPDATE grades SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	grade := &models.Grade{ID: 404, Type: models.GradeTypeQuiz}
	err := repo.Update(context.Background(), grade)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
