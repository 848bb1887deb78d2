package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ieltsprep/exam-service/internal/repositories"
	"github.com/ieltsprep/exam-service/internal/services"
	"github.com/ieltsprep/exam-service/internal/utils"
)

// ResultHandler serves stored test results.
type ResultHandler struct {
	BaseHandler
	resultService services.ResultService
}

func NewResultHandler(resultService services.ResultService, logger utils.Logger) *ResultHandler {
	return &ResultHandler{
		BaseHandler:   NewBaseHandler(logger),
		resultService: resultService,
	}
}

func (h *ResultHandler) GetResult(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Missing result token"})
		return
	}

	result, err := h.resultService.GetByToken(c.Request.Context(), token, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ResultHandler) ListResults(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	filters := repositories.ResultFilters{UserID: &userID}
	if testID, err := strconv.ParseUint(c.Query("test_id"), 10, 32); err == nil {
		id := uint(testID)
		filters.TestID = &id
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		filters.Limit = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil {
		filters.Offset = offset
	}

	results, total, err := h.resultService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"total":   total,
	})
}
