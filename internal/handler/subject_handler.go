package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/strawhatacademy/academy-api/internal/service"
	appErrors "github.com/strawhatacademy/academy-api/pkg/errors"
	"github.com/strawhatacademy/academy-api/pkg/response"
)

// SubjectHandler handles subject and enrollment endpoints.
type SubjectHandler struct {
	service *service.SubjectService
}

// NewSubjectHandler constructs a subject handler.
func NewSubjectHandler(svc *service.SubjectService) *SubjectHandler {
	return &SubjectHandler{service: svc}
}

// List godoc
// @Summary List all subjects
// @Tags Subjects
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /subjects [get]
func (h *SubjectHandler) List(c *gin.Context) {
	subjects, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects)
}

// TeacherSubjects godoc
// @Summary Teacher role view with owned subjects
// @Tags Subjects
// @Produce json
// @Param id path int true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/subjects [get]
func (h *SubjectHandler) TeacherSubjects(c *gin.Context) {
	teacherID, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	record, err := h.service.TeacherRecord(c.Request.Context(), teacherID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// Create godoc
// @Summary Create subject
// @Tags Subjects
// @Accept json
// @Produce json
// @Param payload body service.CreateSubjectRequest true "Subject payload"
// @Success 201 {object} response.Envelope
// @Router /subjects [post]
func (h *SubjectHandler) Create(c *gin.Context) {
	var req service.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	subject, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, subject)
}

// Delete godoc
// @Summary Delete subject when no grades reference it
// @Tags Subjects
// @Produce json
// @Param id path int true "Subject ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /subjects/{id} [delete]
func (h *SubjectHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Enroll godoc
// @Summary Enroll the authenticated student in a subject
// @Tags Subjects
// @Produce json
// @Param id path int true "Subject ID"
// @Success 201 {object} response.Envelope
// @Router /subjects/{id}/enroll [post]
func (h *SubjectHandler) Enroll(c *gin.Context) {
	subjectID, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	grade, err := h.service.Enroll(c.Request.Context(), claims.UserID, subjectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, grade)
}
