package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ieltsprep/exam-service/internal/registry"
	"github.com/ieltsprep/exam-service/internal/services"
	"github.com/ieltsprep/exam-service/internal/utils"
)

type HandlerManager struct {
	testHandler         *TestHandler
	sessionHandler      *SessionHandler
	resultHandler       *ResultHandler
	curriculumHandler   *CurriculumHandler
	questionTypeHandler *QuestionTypeHandler
}

func NewHandlerManager(
	testService services.TestService,
	examService services.ExamService,
	resultService services.ResultService,
	curriculumService services.CurriculumService,
	importService services.ImportExportService,
	reg *registry.Registry,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		testHandler:         NewTestHandler(testService, importService, logger),
		sessionHandler:      NewSessionHandler(examService, logger),
		resultHandler:       NewResultHandler(resultService, logger),
		curriculumHandler:   NewCurriculumHandler(curriculumService, logger),
		questionTypeHandler: NewQuestionTypeHandler(reg, logger),
	}
}

// SetupRoutes sets up all API routes. Middleware passed here guards
// the whole /api/v1 surface; /health stays open for probes.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, middleware ...gin.HandlerFunc) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(middleware...)
	{
		// Question type registry
		v1.GET("/question-types", hm.questionTypeHandler.ListQuestionTypes)

		// Test authoring routes
		tests := v1.Group("/tests")
		{
			tests.POST("", hm.testHandler.CreateTest)
			tests.GET("", hm.testHandler.ListTests)
			tests.GET("/:id", hm.testHandler.GetTest)
			tests.PUT("/:id", hm.testHandler.UpdateTest)
			tests.DELETE("/:id", hm.testHandler.DeleteTest)
			tests.POST("/:id/publish", hm.testHandler.PublishTest)
			tests.POST("/:id/archive", hm.testHandler.ArchiveTest)
			tests.POST("/import", hm.testHandler.ImportTest)
			tests.GET("/:id/results/export", hm.testHandler.ExportResults)
		}

		// Live session routes
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.sessionHandler.StartSession)
			sessions.GET("/current", hm.sessionHandler.GetProgress)
			sessions.POST("/current/answers", hm.sessionHandler.SubmitAnswer)
			sessions.POST("/current/next", hm.sessionHandler.NextSection)
			sessions.POST("/current/previous", hm.sessionHandler.PreviousSection)
			sessions.POST("/current/jump", hm.sessionHandler.JumpToSection)
			sessions.PUT("/current/time", hm.sessionHandler.UpdateTime)
			sessions.POST("/current/complete", hm.sessionHandler.CompleteSession)
			sessions.POST("/current/reset", hm.sessionHandler.ResetSession)
		}

		// AI scoring routes
		scoring := v1.Group("/scoring")
		{
			scoring.POST("/essay", hm.sessionHandler.ScoreEssay)
			scoring.POST("/similarity", hm.sessionHandler.Similarity)
		}

		// Result routes
		results := v1.Group("/results")
		{
			results.GET("", hm.resultHandler.ListResults)
			results.GET("/:token", hm.resultHandler.GetResult)
		}

		// Curriculum routes
		curricula := v1.Group("/curricula")
		{
			curricula.POST("", hm.curriculumHandler.CreateCourse)
			curricula.GET("", hm.curriculumHandler.ListCourses)
			curricula.GET("/:id", hm.curriculumHandler.GetCourse)
			curricula.PUT("/:id", hm.curriculumHandler.UpdateCourse)
			curricula.DELETE("/:id", hm.curriculumHandler.DeleteCourse)
			curricula.POST("/:id/sessions", hm.curriculumHandler.AddSession)
			curricula.PUT("/:id/sessions/:session_id", hm.curriculumHandler.UpdateSession)
			curricula.DELETE("/:id/sessions/:session_id", hm.curriculumHandler.RemoveSession)
			curricula.PUT("/:id/sessions/reorder", hm.curriculumHandler.ReorderSessions)
		}
	}
}

// HealthCheck returns service health status
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "exam-service",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
