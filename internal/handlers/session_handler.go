package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ieltsprep/exam-service/internal/models"
	"github.com/ieltsprep/exam-service/internal/services"
	"github.com/ieltsprep/exam-service/internal/utils"
)

// SessionHandler exposes the live attempt: start, answers, navigation,
// the countdown and completion.
type SessionHandler struct {
	BaseHandler
	examService services.ExamService
}

func NewSessionHandler(examService services.ExamService, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler: NewBaseHandler(logger),
		examService: examService,
	}
}

// ===== REQUEST STRUCTURES =====

type StartSessionRequest struct {
	TestID uint `json:"test_id" binding:"required"`
}

// SubmitAnswerRequest carries exactly one payload shape: an option
// pick, a unit map, or free text. WordCount marks the text as an essay.
type SubmitAnswerRequest struct {
	QuestionID     uint              `json:"question_id" binding:"required"`
	SubQuestionID  *uint             `json:"sub_question_id,omitempty"`
	SelectedOption *string           `json:"selected_option,omitempty"`
	Answers        map[string]string `json:"answers,omitempty"`
	Text           *string           `json:"text,omitempty"`
	WordCount      *int              `json:"word_count,omitempty"`
	Similarity     *float64          `json:"similarity,omitempty"`
	TimeSpent      int               `json:"time_spent,omitempty"`
}

type JumpSectionRequest struct {
	Section int `json:"section"`
}

type UpdateTimeRequest struct {
	TimeRemaining int `json:"time_remaining"`
}

type ScoreEssayRequest struct {
	QuestionID uint `json:"question_id" binding:"required"`
}

type SimilarityRequest struct {
	Reference string `json:"reference" binding:"required"`
	Candidate string `json:"candidate" binding:"required"`
}

// ===== HANDLERS =====

func (h *SessionHandler) StartSession(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Starting test session", "test_id", req.TestID)

	progress, err := h.examService.Start(c.Request.Context(), userID, req.TestID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, progress)
}

func (h *SessionHandler) GetProgress(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	progress, err := h.examService.Progress(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	payload := req.toPayload()
	if payload == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Answer payload missing: provide selected_option, answers or text",
		})
		return
	}

	answer, err := h.examService.SubmitAnswer(c.Request.Context(), userID, req.QuestionID, req.SubQuestionID, payload)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

func (r *SubmitAnswerRequest) toPayload() any {
	switch {
	case r.SelectedOption != nil:
		return models.SelectionAnswer{
			SelectedOption: *r.SelectedOption,
			TimeSpent:      r.TimeSpent,
		}
	case r.Answers != nil:
		return models.UnitAnswers{
			Answers:   r.Answers,
			TimeSpent: r.TimeSpent,
		}
	case r.Text != nil && r.WordCount != nil:
		return models.WritingAnswer{
			Text:      *r.Text,
			WordCount: *r.WordCount,
			TimeSpent: r.TimeSpent,
		}
	case r.Text != nil:
		return models.TextAnswer{
			Text:       *r.Text,
			Similarity: r.Similarity,
			TimeSpent:  r.TimeSpent,
		}
	}
	return nil
}

func (h *SessionHandler) NextSection(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	progress, err := h.examService.NextSection(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *SessionHandler) PreviousSection(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	progress, err := h.examService.PreviousSection(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *SessionHandler) JumpToSection(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req JumpSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	progress, err := h.examService.JumpToSection(c.Request.Context(), userID, req.Section)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *SessionHandler) UpdateTime(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req UpdateTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	if err := h.examService.UpdateTime(c.Request.Context(), userID, req.TimeRemaining); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Time updated"})
}

func (h *SessionHandler) CompleteSession(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Completing test session")

	result, err := h.examService.Complete(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SessionHandler) ResetSession(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	if err := h.examService.Reset(c.Request.Context(), userID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Session reset"})
}

// ScoreEssay triggers AI scoring for a submitted writing answer and
// returns the updated answer record.
func (h *SessionHandler) ScoreEssay(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req ScoreEssayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Scoring essay", "question_id", req.QuestionID)

	answer, err := h.examService.ScoreEssay(c.Request.Context(), userID, req.QuestionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

// Similarity proxies a reference/candidate pair to the AI scorer.
func (h *SessionHandler) Similarity(c *gin.Context) {
	if _, ok := h.currentUserID(c); !ok {
		return
	}

	var req SimilarityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	similarity, err := h.examService.Similarity(c.Request.Context(), req.Reference, req.Candidate)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"similarity": similarity})
}
