package handlers

import (
	"context"
	"errors"
	"net/http"

	"exam-service/internal/ai"
	"exam-service/internal/logger"
	"exam-service/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// errorFeedbackText is returned with a 200 when the model replied but the
// reply was empty or unparseable, so the UI always has something to show.
const errorFeedbackText = "Error generating AI feedback"

const externalFailureText = "Failed to process feedback. Please try again later."

// FeedbackGenerator is the AI client surface the handler needs.
type FeedbackGenerator interface {
	GenerateFeedback(ctx context.Context, prompt string) (*ai.FeedbackResult, error)
}

// FeedbackHandler serves the per-question-type AI feedback endpoints.
type FeedbackHandler struct {
	Compositor *ai.Compositor
	Client     FeedbackGenerator
}

func NewFeedbackHandler(compositor *ai.Compositor, client FeedbackGenerator) *FeedbackHandler {
	return &FeedbackHandler{Compositor: compositor, Client: client}
}

type writtenFeedbackRequest struct {
	Text         string              `json:"text"`
	Prompt       string              `json:"prompt"`
	MediaPrompt1 *models.MediaPrompt `json:"mediaPrompt1"`
	MediaPrompt2 *models.MediaPrompt `json:"mediaPrompt2"`
	MediaPrompt3 *models.MediaPrompt `json:"mediaPrompt3"`
}

type audioFeedbackRequest struct {
	AudioURL     string              `json:"audioUrl"`
	Prompt       string              `json:"prompt"`
	MediaPrompt1 *models.MediaPrompt `json:"mediaPrompt1"`
	MediaPrompt2 *models.MediaPrompt `json:"mediaPrompt2"`
	MediaPrompt3 *models.MediaPrompt `json:"mediaPrompt3"`
}

type multiChoiceFeedbackRequest struct {
	Text               string                `json:"text"`
	Prompt             string                `json:"prompt"`
	MultiChoiceOptions []models.ChoiceOption `json:"multiChoiceOptions"`
	MediaPrompt1       *models.MediaPrompt   `json:"mediaPrompt1"`
	MediaPrompt2       *models.MediaPrompt   `json:"mediaPrompt2"`
	MediaPrompt3       *models.MediaPrompt   `json:"mediaPrompt3"`
}

type reorderFeedbackRequest struct {
	Text                        string                `json:"text"`
	Prompt                      string                `json:"prompt"`
	ReorderSentenceQuestionList []models.SentenceItem `json:"reorderSentenceQuestionList"`
	MediaPrompt1                *models.MediaPrompt   `json:"mediaPrompt1"`
	MediaPrompt2                *models.MediaPrompt   `json:"mediaPrompt2"`
	MediaPrompt3                *models.MediaPrompt   `json:"mediaPrompt3"`
}

type matchFeedbackRequest struct {
	Text                    string              `json:"text"`
	Prompt                  string              `json:"prompt"`
	MatchOptionQuestionList []models.MatchPair  `json:"matchOptionQuestionList"`
	MediaPrompt1            *models.MediaPrompt `json:"mediaPrompt1"`
	MediaPrompt2            *models.MediaPrompt `json:"mediaPrompt2"`
	MediaPrompt3            *models.MediaPrompt `json:"mediaPrompt3"`
}

type fillBlanksFeedbackRequest struct {
	Text                   string                   `json:"text"`
	Prompt                 string                   `json:"prompt"`
	FillBlanksQuestionList []models.FillBlanksGroup `json:"fillBlanksQuestionList"`
	CaseSensitive          bool                     `json:"caseSensitive"`
	MediaPrompt1           *models.MediaPrompt      `json:"mediaPrompt1"`
	MediaPrompt2           *models.MediaPrompt      `json:"mediaPrompt2"`
	MediaPrompt3           *models.MediaPrompt      `json:"mediaPrompt3"`
}

// WrittenQuestion handles POST .../written-question.
func (h *FeedbackHandler) WrittenQuestion(c *gin.Context) {
	var req writtenFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text is required"})
		return
	}
	prompt := h.Compositor.WrittenQuestion(c.Request.Context(), req.Prompt, req.Text,
		req.MediaPrompt1, req.MediaPrompt2, req.MediaPrompt3)
	h.respond(c, prompt)
}

// AudioQuestion handles POST .../audio-question.
func (h *FeedbackHandler) AudioQuestion(c *gin.Context) {
	var req audioFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.AudioURL == "" || req.Prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Audio link and prompt are required"})
		return
	}
	prompt, err := h.Compositor.AudioQuestion(c.Request.Context(), req.Prompt, req.AudioURL,
		req.MediaPrompt1, req.MediaPrompt2, req.MediaPrompt3)
	if err != nil {
		h.externalFailure(c, err)
		return
	}
	h.respond(c, prompt)
}

// RepeatSentence handles POST .../repeat-sentence.
func (h *FeedbackHandler) RepeatSentence(c *gin.Context) {
	var req audioFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.AudioURL == "" || req.Prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Audio link and prompt are required"})
		return
	}
	prompt, err := h.Compositor.RepeatSentence(c.Request.Context(), req.Prompt, req.AudioURL, req.MediaPrompt1)
	if err != nil {
		h.externalFailure(c, err)
		return
	}
	h.respond(c, prompt)
}

// ReadOutloud handles POST .../read-outloud.
func (h *FeedbackHandler) ReadOutloud(c *gin.Context) {
	var req audioFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.AudioURL == "" || req.Prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Audio link and prompt are required"})
		return
	}
	prompt, err := h.Compositor.ReadOutloud(c.Request.Context(), req.Prompt, req.AudioURL)
	if err != nil {
		h.externalFailure(c, err)
		return
	}
	h.respond(c, prompt)
}

// MultiChoice handles POST .../multi-choice.
func (h *FeedbackHandler) MultiChoice(c *gin.Context) {
	var req multiChoiceFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Text == "" || req.Prompt == "" || len(req.MultiChoiceOptions) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text, prompt and options are required"})
		return
	}
	prompt := h.Compositor.MultiChoice(c.Request.Context(), req.Prompt, req.Text, req.MultiChoiceOptions,
		req.MediaPrompt1, req.MediaPrompt2, req.MediaPrompt3)
	h.respond(c, prompt)
}

// ReorderSentence handles POST .../reorder-sentence.
func (h *FeedbackHandler) ReorderSentence(c *gin.Context) {
	var req reorderFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Text == "" || req.Prompt == "" || len(req.ReorderSentenceQuestionList) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text, prompt and options are required"})
		return
	}
	prompt, err := h.Compositor.ReorderSentence(c.Request.Context(), req.Prompt, req.Text,
		req.ReorderSentenceQuestionList, req.MediaPrompt1, req.MediaPrompt2, req.MediaPrompt3)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, prompt)
}

// MatchOptions handles POST .../match-options.
func (h *FeedbackHandler) MatchOptions(c *gin.Context) {
	var req matchFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Text == "" || req.Prompt == "" || len(req.MatchOptionQuestionList) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text, prompt and options are required"})
		return
	}
	prompt := h.Compositor.MatchOptions(c.Request.Context(), req.Prompt, req.Text,
		req.MediaPrompt1, req.MediaPrompt2, req.MediaPrompt3)
	h.respond(c, prompt)
}

// FillBlanks handles POST .../fill-blanks.
func (h *FeedbackHandler) FillBlanks(c *gin.Context) {
	var req fillBlanksFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Text == "" || req.Prompt == "" || len(req.FillBlanksQuestionList) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text, prompt and blanks are required"})
		return
	}
	prompt, err := h.Compositor.FillBlanks(c.Request.Context(), req.Prompt, req.Text,
		req.FillBlanksQuestionList, req.CaseSensitive,
		req.MediaPrompt1, req.MediaPrompt2, req.MediaPrompt3)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, prompt)
}

// respond runs the LLM call and maps its three failure modes: transport
// failures are a 500, while empty or malformed replies soft-fail as a 200
// with a placeholder feedback string.
func (h *FeedbackHandler) respond(c *gin.Context, prompt string) {
	result, err := h.Client.GenerateFeedback(c.Request.Context(), prompt)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, result)
	case errors.Is(err, ai.ErrEmptyReply), errors.Is(err, ai.ErrMalformedReply):
		logger.Log.Warn("ai feedback degraded", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"feedback": errorFeedbackText})
	default:
		logger.Log.Error("ai feedback failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": externalFailureText})
	}
}

func (h *FeedbackHandler) externalFailure(c *gin.Context, err error) {
	logger.Log.Error("transcription failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": externalFailureText})
}
