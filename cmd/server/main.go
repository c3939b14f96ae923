package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/promoagente/promoagente-backend/docs"
	"github.com/promoagente/promoagente-backend/internal/database"
	"github.com/promoagente/promoagente-backend/internal/database/repository"
	"github.com/promoagente/promoagente-backend/internal/handlers"
	"github.com/promoagente/promoagente-backend/internal/router"
	"github.com/promoagente/promoagente-backend/internal/services"
	"github.com/promoagente/promoagente-backend/internal/services/excel"
	"github.com/promoagente/promoagente-backend/internal/services/llm"
	"github.com/promoagente/promoagente-backend/internal/utils"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// @title PromoAgente API
// @version 1.0
// @description Conversational collection of B2B retail promotions

// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Enter `ApiKey ` followed by your API key (e.g. "ApiKey <key>")

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	basePath := getEnv("BASE_PATH", "")
	docs.SwaggerInfo.BasePath = basePath

	configureLogging()
	utils.InitSentry()

	db, err := database.InitDB()
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}

	// Persistence layer
	sessionRepo := repository.NewSessionRepository(db)
	promotionRepo := repository.NewPromotionRepository(db)
	memory := services.NewMemoryService(sessionRepo)

	// Language model collaborators
	llmClient := llm.NewClientFromEnv()
	extractor := llm.NewExtractor(llmClient)
	validator := llm.NewValidator(llmClient)
	summarizer := llm.NewSummarizer(llmClient)
	classifier := services.NewClassifier(llmClient.Chat)

	exportsDir := getEnv("EXPORTS_DIR", "./exports")
	excelService := excel.NewExcelService(exportsDir)

	// Event publishing is optional: without a broker finalized promotions
	// are only archived in the database.
	var publisher services.EventPublisher
	rabbitMQService, err := services.NewRabbitMQService()
	if err != nil {
		logrus.Warnf("Failed to initialize RabbitMQ: %v", err)
	} else {
		logrus.Info("RabbitMQ service initialized")
		defer rabbitMQService.Close()
		publisher = rabbitMQService
	}

	orchestrator := services.NewOrchestrator(
		extractor,
		validator,
		summarizer,
		excelService,
		classifier,
		memory,
		promotionRepo,
		publisher,
	)

	r := router.SetupRouter(router.Handlers{
		Chat:    handlers.NewChatHandler(orchestrator),
		Session: handlers.NewSessionHandler(memory, promotionRepo),
		Export:  handlers.NewExportHandler(exportsDir),
	})

	port := getEnv("PORT", "8080")
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: r,
	}

	go func() {
		logrus.Infof("Server starting on port %s", port)
		logrus.Infof("API Health Check: http://localhost:%s/api/v1/health", port)
		logrus.Infof("Swagger UI: http://localhost:%s/swagger/index.html", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited properly")
}

func configureLogging() {
	logLevel := getEnv("LOG_LEVEL", "info")
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
