package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ieltsprep/exam-service/internal/models"
	"github.com/ieltsprep/exam-service/internal/services"
	"github.com/ieltsprep/exam-service/internal/utils"
)

// CurriculumHandler exposes course and course session endpoints.
type CurriculumHandler struct {
	BaseHandler
	curriculumService services.CurriculumService
}

func NewCurriculumHandler(curriculumService services.CurriculumService, logger utils.Logger) *CurriculumHandler {
	return &CurriculumHandler{
		BaseHandler:       NewBaseHandler(logger),
		curriculumService: curriculumService,
	}
}

type ReorderSessionsRequest struct {
	SessionIDs []uint `json:"session_ids" binding:"required,min=1"`
}

func (h *CurriculumHandler) CreateCourse(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var course models.Course
	if err := c.ShouldBindJSON(&course); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	created, err := h.curriculumService.CreateCourse(c.Request.Context(), &course, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *CurriculumHandler) GetCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	course, err := h.curriculumService.GetCourse(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *CurriculumHandler) UpdateCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var course models.Course
	if err := c.ShouldBindJSON(&course); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}
	course.ID = id

	updated, err := h.curriculumService.UpdateCourse(c.Request.Context(), &course, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *CurriculumHandler) DeleteCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	if err := h.curriculumService.DeleteCourse(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Course deleted"})
}

func (h *CurriculumHandler) ListCourses(c *gin.Context) {
	if _, ok := h.currentUserID(c); !ok {
		return
	}

	courses, err := h.curriculumService.ListCourses(c.Request.Context(), c.Query("created_by"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

func (h *CurriculumHandler) AddSession(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var sess models.CourseSession
	if err := c.ShouldBindJSON(&sess); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	created, err := h.curriculumService.AddSession(c.Request.Context(), courseID, &sess, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *CurriculumHandler) UpdateSession(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}
	sessionID := h.parseIDParam(c, "session_id")
	if sessionID == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var sess models.CourseSession
	if err := c.ShouldBindJSON(&sess); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}
	sess.ID = sessionID

	updated, err := h.curriculumService.UpdateSession(c.Request.Context(), courseID, &sess, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *CurriculumHandler) RemoveSession(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}
	sessionID := h.parseIDParam(c, "session_id")
	if sessionID == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	if err := h.curriculumService.RemoveSession(c.Request.Context(), courseID, sessionID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Session removed"})
}

func (h *CurriculumHandler) ReorderSessions(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req ReorderSessionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	if err := h.curriculumService.ReorderSessions(c.Request.Context(), courseID, req.SessionIDs, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Sessions reordered"})
}
