package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/satlab/sat-prep-api/internal/models"
	"github.com/satlab/sat-prep-api/internal/service"
	appErrors "github.com/satlab/sat-prep-api/pkg/errors"
	"github.com/satlab/sat-prep-api/pkg/response"
)

// ExamHandler exposes the practice exam catalog and submission endpoints.
type ExamHandler struct {
	service *service.ExamService
}

// NewExamHandler creates a new handler.
func NewExamHandler(svc *service.ExamService) *ExamHandler {
	return &ExamHandler{service: svc}
}

// List godoc
// @Summary List practice exams
// @Description Returns the active practice exam catalog
// @Tags Exams
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /exams [get]
func (h *ExamHandler) List(c *gin.Context) {
	exams, err := h.service.ListExams(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, exams, nil)
}

// Submit godoc
// @Summary Submit a completed exam
// @Description Records per-question attempts for a finished practice exam
// @Tags Exams
// @Accept json
// @Produce json
// @Param payload body models.ExamSubmissionRequest true "Exam submission"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exams/submissions [post]
func (h *ExamHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.ExamSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid exam submission"))
		return
	}

	result, err := h.service.SubmitExam(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}
