package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unisphere/unisphere-api/internal/service"
	"github.com/unisphere/unisphere-api/pkg/response"
)

// QuizHandler serves the virtual quiz generator and grader.
type QuizHandler struct {
	service *service.QuizService
}

// NewQuizHandler constructs the handler.
func NewQuizHandler(svc *service.QuizService) *QuizHandler {
	return &QuizHandler{service: svc}
}

// Generate godoc
// @Summary Generate quiz questions
// @Description Asks the completion backend for questions. Missing questions are filled with placeholders and flagged with fallback=true.
// @Tags VirtualQuiz
// @Accept json
// @Produce json
// @Param payload body service.GenerateQuizRequest true "Topic or content"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /virtual-quiz/generate [post]
func (h *QuizHandler) Generate(c *gin.Context) {
	var req service.GenerateQuizRequest
	if !bindJSON(c, &req) {
		return
	}
	generated, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, generated, nil)
}

// Check godoc
// @Summary Check one answer
// @Tags VirtualQuiz
// @Accept json
// @Produce json
// @Param payload body service.CheckAnswerRequest true "Answer"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /virtual-quiz/check [post]
func (h *QuizHandler) Check(c *gin.Context) {
	var req service.CheckAnswerRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.service.Check(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Grade godoc
// @Summary Grade a quiz attempt
// @Tags VirtualQuiz
// @Accept json
// @Produce json
// @Param payload body service.GradeQuizRequest true "Answers"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /virtual-quiz/grade [post]
func (h *QuizHandler) Grade(c *gin.Context) {
	var req service.GradeQuizRequest
	if !bindJSON(c, &req) {
		return
	}
	grade, err := h.service.Grade(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}
