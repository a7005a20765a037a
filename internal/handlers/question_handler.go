package handlers

import (
	"errors"
	"net/http"

	"exam-service/internal/logger"
	"exam-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type QuestionHandler struct {
	Catalog     *service.QuestionService
	Submissions *service.SubmissionService
}

func NewQuestionHandler(catalog *service.QuestionService, submissions *service.SubmissionService) *QuestionHandler {
	return &QuestionHandler{Catalog: catalog, Submissions: submissions}
}

func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	questions, err := h.Catalog.ListQuestions(c.Request.Context(), c.Query("examId"))
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Exam not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, questions)
}

// SubmitExam handles PATCH /exams/questions/submit-exam/:id.
func (h *QuestionHandler) SubmitExam(c *gin.Context) {
	var req service.SubmitExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Submissions.SubmitExam(c.Request.Context(), c.Param("id"), req); err != nil {
		h.submissionError(c, err)
		return
	}
	c.JSON(http.StatusOK, "Responses submitted successfully")
}

// SubmitFeedback handles PATCH /exams/questions/submit-feedback/:id.
func (h *QuestionHandler) SubmitFeedback(c *gin.Context) {
	var req service.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Submissions.SubmitFeedback(c.Request.Context(), c.Param("id"), req); err != nil {
		h.submissionError(c, err)
		return
	}
	c.JSON(http.StatusOK, "Feedback submitted successfully")
}

func (h *QuestionHandler) submissionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExamNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Exam not found"})
	case errors.Is(err, service.ErrQuestionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
	case errors.Is(err, service.ErrDuplicateSubmission):
		c.JSON(http.StatusBadRequest, gin.H{"error": "User has already completed this exam"})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Log.Error("submission failed", zap.String("examId", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}
}
