package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/quiz-import-service/internal/cache"
	"github.com/SAP-F-2025/quiz-import-service/internal/config"
	"github.com/SAP-F-2025/quiz-import-service/internal/handlers"
	"github.com/SAP-F-2025/quiz-import-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/quiz-import-service/internal/services"
	"github.com/SAP-F-2025/quiz-import-service/internal/utils"
	"github.com/SAP-F-2025/quiz-import-service/internal/validator"
	"github.com/SAP-F-2025/quiz-import-service/pkg"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.NewLogger("production").LogError(err, "Failed to load config")
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Environment)
	slogger := utils.ToSlogLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.LogError(err, "Failed to initialize database")
		os.Exit(1)
	}
	defer pkg.CloseDatabase(db)

	redisClient, err := pkg.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.LogError(err, "Failed to connect to redis")
		os.Exit(1)
	}
	defer redisClient.Close()

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.LogError(err, "Failed to create event publisher")
		os.Exit(1)
	}
	defer publisher.Close()

	v := validator.New()
	serviceManager := services.NewServiceManager(
		postgres.NewRepository(db),
		cache.NewRedisCache(redisClient, slogger),
		publisher,
		slogger,
		v,
		services.ImportOptions{
			DefaultSubject: cfg.DefaultSubject,
			MaxUploadBytes: cfg.MaxUploadBytes,
			CacheTTL:       cfg.ImportCacheTTL,
		},
	)

	var tokenParser handlers.TokenParser
	if cfg.Auth.Enabled {
		tokenParser = handlers.NewTokenParser(cfg.Auth)
	} else {
		logger.Warn("Authentication disabled, trusting X-User-ID header")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.MaxMultipartMemory = cfg.MaxUploadBytes
	router.Use(gin.Recovery(), utils.LoggerMiddleware(logger))
	handlers.NewHandlerManager(serviceManager, v, tokenParser, logger).SetupRoutes(router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "addr", srv.Addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.LogError(err, "Server error")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.LogError(err, "Shutdown error")
	}
}
