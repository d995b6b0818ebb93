package handlers

import (
	"github.com/SAP-F-2025/quiz-import-service/internal/services"
	"github.com/SAP-F-2025/quiz-import-service/internal/utils"
	"github.com/SAP-F-2025/quiz-import-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	importHandler   *ImportHandler
	questionHandler *QuestionHandler
	tokenParser     TokenParser
	logger          utils.Logger
}

// NewHandlerManager wires handlers to services. A nil tokenParser disables token checks.
func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	tokenParser TokenParser,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		importHandler:   NewImportHandler(serviceManager.Import(), logger),
		questionHandler: NewQuestionHandler(serviceManager.Question(), validator, logger),
		tokenParser:     tokenParser,
		logger:          logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.Use(utils.ContextLogger(hm.logger))

	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware(hm.tokenParser))
	{
		imports := v1.Group("/imports")
		imports.Use(AdminMiddleware())
		{
			imports.POST("/text", hm.importHandler.ImportText)
			imports.POST("/file", hm.importHandler.ImportFile)
			imports.GET("", hm.importHandler.ListImportJobs)
			imports.GET("/:id", hm.importHandler.GetImportJob)
		}

		questions := v1.Group("/questions")
		{
			questions.GET("", hm.questionHandler.ListQuestions)
			questions.GET("/export", hm.questionHandler.ExportQuestions)
			questions.GET("/subjects", hm.questionHandler.SubjectCounts)
			questions.GET("/:id", hm.questionHandler.GetQuestion)

			// Curation
			questions.POST("", AdminMiddleware(), hm.questionHandler.CreateQuestion)
			questions.PUT("/:id", AdminMiddleware(), hm.questionHandler.UpdateQuestion)
			questions.PUT("/:id/answer", AdminMiddleware(), hm.questionHandler.SetCorrectAnswer)
			questions.DELETE("/:id", AdminMiddleware(), hm.questionHandler.DeleteQuestion)
		}
	}
}
