package main

import (
	"context"
	"time"

	"exam-service/internal/ai"
	"exam-service/internal/config"
	"exam-service/internal/db"
	"exam-service/internal/event"
	"exam-service/internal/handlers"
	"exam-service/internal/logger"
	"exam-service/internal/repository"
	"exam-service/internal/service"
	"exam-service/internal/storage"
	"exam-service/internal/transcribe"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.GinMode)
	defer logger.Log.Sync()

	if err := db.InitMongo(cfg.MongoURI); err != nil {
		logger.Log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer db.Close()
	database := db.Client.Database(cfg.MongoDatabase)

	// RabbitMQ event publisher
	var publisher *event.EventPublisher
	if cfg.RabbitMQURI != "" && cfg.RabbitMQExchange != "" {
		var err error
		publisher, err = event.NewEventPublisher(cfg.RabbitMQURI, cfg.RabbitMQExchange)
		if err != nil {
			logger.Log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer publisher.Close()
	} else {
		logger.Log.Info("RabbitMQ not configured, exam events will not be published")
	}

	objectStore, err := storage.New(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to create object storage client", zap.Error(err))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := objectStore.EnsureBucket(ctx); err != nil {
		cancel()
		logger.Log.Fatal("Failed to ensure media bucket", zap.Error(err))
	}
	cancel()

	transcriber := transcribe.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	compositor := ai.NewCompositor(transcriber)
	aiClient := ai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.ChatModel)

	examRepo := repository.NewExamRepository(database)
	questionRepo := repository.NewQuestionRepository(database)
	completionRepo := repository.NewCompletionRepository(database)
	idxCtx, idxCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := completionRepo.EnsureIndexes(idxCtx); err != nil {
		idxCancel()
		logger.Log.Fatal("Failed to ensure completion indexes", zap.Error(err))
	}
	idxCancel()

	examService := service.NewExamService(examRepo)
	questionService := service.NewQuestionService(questionRepo, examRepo)
	submissionService := service.NewSubmissionService(examRepo, questionRepo, completionRepo, objectStore)

	examHandler := handlers.NewExamHandler(examService)
	questionHandler := handlers.NewQuestionHandler(questionService, submissionService)
	feedbackHandler := handlers.NewFeedbackHandler(compositor, aiClient)

	gin.SetMode(cfg.GinMode)
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/exams", examHandler.ListExams)
	r.GET("/questions", questionHandler.ListQuestions)

	exams := r.Group("/exams")
	{
		exams.PATCH("/questions/submit-exam/:id", func(c *gin.Context) {
			questionHandler.SubmitExam(c)
			if publisher != nil && c.Writer.Status() < 400 {
				publisher.Publish("exam.submitted", gin.H{
					"examId":    c.Param("id"),
					"timestamp": time.Now(),
				})
			}
		})
		exams.PATCH("/questions/submit-feedback/:id", func(c *gin.Context) {
			questionHandler.SubmitFeedback(c)
			if publisher != nil && c.Writer.Status() < 400 {
				publisher.Publish("exam.feedback_submitted", gin.H{
					"examId":    c.Param("id"),
					"timestamp": time.Now(),
				})
			}
		})
	}

	withFeedbackEvent := func(questionType string, handler gin.HandlerFunc) gin.HandlerFunc {
		return func(c *gin.Context) {
			handler(c)
			if publisher != nil && c.Writer.Status() < 400 {
				publisher.Publish("exam.ai_feedback_generated", gin.H{
					"questionType": questionType,
					"timestamp":    time.Now(),
				})
			}
		}
	}

	aiFeedback := r.Group("/ai-exam-feedback/generate-ai-exam-feedback")
	{
		aiFeedback.POST("/written-question", withFeedbackEvent("written-question", feedbackHandler.WrittenQuestion))
		aiFeedback.POST("/audio-question", withFeedbackEvent("audio-question", feedbackHandler.AudioQuestion))
		aiFeedback.POST("/repeat-sentence", withFeedbackEvent("repeat-sentence", feedbackHandler.RepeatSentence))
		aiFeedback.POST("/read-outloud", withFeedbackEvent("read-outloud", feedbackHandler.ReadOutloud))
		aiFeedback.POST("/multi-choice", withFeedbackEvent("multi-choice", feedbackHandler.MultiChoice))
		aiFeedback.POST("/reorder-sentence", withFeedbackEvent("reorder-sentence", feedbackHandler.ReorderSentence))
		aiFeedback.POST("/match-options", withFeedbackEvent("match-options", feedbackHandler.MatchOptions))
		aiFeedback.POST("/fill-blanks", withFeedbackEvent("fill-blanks", feedbackHandler.FillBlanks))
	}

	logger.Log.Info("exam service listening", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Log.Fatal("Server exited", zap.Error(err))
	}
}
