package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strawhatacademy/academy-api/internal/models"
	"github.com/strawhatacademy/academy-api/internal/service"
)

type gradeRepoStub struct {
	grades      []models.Grade
	teacherRows []models.TeacherGradeRow
}

func (s *gradeRepoStub) ListByStudent(ctx context.Context, studentID int64) ([]models.Grade, error) {
	var out []models.Grade
	for _, g := range s.grades {
		if g.StudentID == studentID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *gradeRepoStub) ListByTeacher(ctx context.Context, teacherID int64) ([]models.TeacherGradeRow, error) {
	return s.teacherRows, nil
}

func (s *gradeRepoStub) FindByID(ctx context.Context, id int64) (*models.Grade, error) {
	for _, g := range s.grades {
		if g.ID == id {
			copied := g
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *gradeRepoStub) Create(ctx context.Context, grade *models.Grade) error {
	grade.ID = int64(len(s.grades) + 1)
	s.grades = append(s.grades, *grade)
	return nil
}

func (s *gradeRepoStub) Update(ctx context.Context, grade *models.Grade) error {
	for i, g := range s.grades {
		if g.ID == grade.ID {
			s.grades[i] = *grade
			return nil
		}
	}
	return sql.ErrNoRows
}

func newGradeHandler(repo *gradeRepoStub, users *userFinderStub) *GradeHandler {
	svc := service.NewGradeService(repo, users, nil, nil)
	return NewGradeHandler(svc)
}

func TestGradeHandlerStudentGradesMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorded := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	repo := &gradeRepoStub{grades: []models.Grade{
		{ID: 1, StudentID: 5, SubjectID: 3, Value: 0, DateRecorded: recorded, Type: models.GradeTypeRegistered, SubjectName: "Navigation"},
		{ID: 2, StudentID: 5, SubjectID: 3, Value: 92.5, DateRecorded: recorded, Type: models.GradeTypeExam, SubjectName: "Navigation"},
	}}
	users := &userFinderStub{users: map[int64]*models.User{
		5: {ID: 5, Username: "luffy", Role: models.RoleStudent, FirstName: "Monkey", LastName: "Luffy"},
	}}
	handler := newGradeHandler(repo, users)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/students/5/grades", nil)
	c.Params = gin.Params{{Key: "id", Value: "5"}}

	handler.StudentGrades(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.StudentRecord   `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Grades, 2)
	assert.InDelta(t, 46.25, envelope.Meta["average_grade"].(float64), 0.0001)
}

func TestGradeHandlerStudentGradesInvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newGradeHandler(&gradeRepoStub{}, &userFinderStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/students/abc/grades", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	handler.StudentGrades(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGradeHandlerStudentGradesUnknownStudent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newGradeHandler(&gradeRepoStub{}, &userFinderStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/students/404/grades", nil)
	c.Params = gin.Params{{Key: "id", Value: "404"}}

	handler.StudentGrades(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGradeHandlerUpdateIgnoresReferenceFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorded := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	repo := &gradeRepoStub{grades: []models.Grade{
		{ID: 1, StudentID: 5, SubjectID: 3, Value: 80, DateRecorded: recorded, Type: models.GradeTypeQuiz},
	}}
	handler := newGradeHandler(repo, &userFinderStub{})

	// student_id and subject_id in the payload have no matching request
	// fields, so the stored references survive the update.
	body := `{"value": 97, "type": "Final", "date_recorded": "2025-06-01", "student_id": 999, "subject_id": 999}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPut, "/grades/1", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.Update(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(5), repo.grades[0].StudentID)
	assert.Equal(t, int64(3), repo.grades[0].SubjectID)
	assert.Equal(t, 97.0, repo.grades[0].Value)
}
