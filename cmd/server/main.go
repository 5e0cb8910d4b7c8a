package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codexa/internal/api"
	"codexa/internal/app/service"
	"codexa/internal/common/security"
	"codexa/internal/domain/repository"
	"codexa/internal/judge"
	"codexa/internal/platform/cache"
	"codexa/internal/platform/config"
	"codexa/internal/platform/database"

	"go.uber.org/zap"
)

func main() {
	config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Could not initialize logger: %v", err)
	}
	defer logger.Sync()

	security.InitJWT()

	database.Connect()
	defer database.Close()
	logger.Info("database connected")

	cache.ConnectRedis()
	defer cache.CloseRedis()
	logger.Info("redis connected")

	userRepo := repository.NewPgUserRepository(database.DB)
	problemRepo := repository.NewPgProblemRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRepository(database.DB)
	videoRepo := repository.NewPgVideoRepository(database.DB)

	judgeClient := judge.NewClient(
		config.AppConfig.JudgeBaseURL,
		config.AppConfig.JudgeAPIKey,
		config.AppConfig.JudgeAPIHost,
		config.AppConfig.JudgePollInterval,
		logger,
	)

	authService := service.NewAuthService(userRepo, submissionRepo, cache.RDB, database.DB)
	problemService := service.NewProblemService(problemRepo, userRepo, videoRepo, judgeClient, config.AppConfig.JudgePollTimeout, logger)
	submissionService := service.NewSubmissionService(submissionRepo, problemRepo, userRepo, judgeClient, config.AppConfig.JudgePollTimeout, logger)
	aiService := service.NewAIService(config.AppConfig.GeminiBaseURL, config.AppConfig.GeminiAPIKey, config.AppConfig.GeminiModel, logger)
	videoService := service.NewVideoService(videoRepo, problemRepo,
		config.AppConfig.CloudinaryCloudName, config.AppConfig.CloudinaryAPIKey, config.AppConfig.CloudinaryAPISecret, logger)

	router := api.NewRouter(authService, problemService, submissionService, aiService, videoService, cache.RDB)

	// Submits poll the judge synchronously, so writes must outlive the poll
	// deadline.
	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: config.AppConfig.JudgePollTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("port", config.AppConfig.APIPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-stop

	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server shutdown failed", zap.Error(err))
	}

	logger.Info("server stopped gracefully")
}
