package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/satlab/sat-prep-api/internal/models"
	"github.com/satlab/sat-prep-api/internal/service"
	appErrors "github.com/satlab/sat-prep-api/pkg/errors"
	"github.com/satlab/sat-prep-api/pkg/response"
)

// QuizHandler exposes the topic catalog and quiz submission endpoints.
type QuizHandler struct {
	service *service.QuizService
}

// NewQuizHandler creates a new handler.
func NewQuizHandler(svc *service.QuizService) *QuizHandler {
	return &QuizHandler{service: svc}
}

// ListTopics godoc
// @Summary List quiz topics
// @Description Returns active topics, optionally filtered by section
// @Tags Quizzes
// @Produce json
// @Param section query string false "Section filter" Enums(MATH, READING, WRITING)
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /quizzes/topics [get]
func (h *QuizHandler) ListTopics(c *gin.Context) {
	section := models.Section(c.Query("section"))

	topics, err := h.service.ListTopics(c.Request.Context(), section)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, topics, nil)
}

// Submit godoc
// @Summary Submit a quiz run
// @Description Records a graded quiz run against the caller's topic counters
// @Tags Quizzes
// @Accept json
// @Produce json
// @Param payload body models.QuizSubmissionRequest true "Quiz submission"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /quizzes/submissions [post]
func (h *QuizHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.QuizSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid quiz submission"))
		return
	}

	result, err := h.service.SubmitQuiz(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}
