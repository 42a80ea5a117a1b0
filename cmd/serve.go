package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"anydl/config"
	"anydl/internal/cache"
	"anydl/internal/extractor"
	"anydl/internal/handler"
	"anydl/internal/history"
	"anydl/internal/service"
	"anydl/internal/storage"
	"anydl/pkg/logger"
	"anydl/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	cfg := config.Load()

	if err := logger.Init(&cfg.Logging); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port))

	// History backend: MySQL when a DSN is configured, in-memory otherwise.
	var repo history.Repository
	if cfg.History.MysqlDSN != "" {
		var err error
		repo, err = history.OpenGorm(cfg.History.MysqlDSN)
		if err != nil {
			return fmt.Errorf("open history database: %w", err)
		}
		logger.Logger.Info("History backed by MySQL")
	} else {
		repo = history.NewMemory()
		logger.Logger.Info("History kept in memory")
	}

	metaCache := cache.New(&cfg.Redis)
	defer metaCache.Close()
	if metaCache.Enabled() {
		logger.Logger.Info("Metadata cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	storageManager := storage.NewManager(&cfg.Storage)
	if err := storageManager.EnsureDownloadDir(); err != nil {
		return fmt.Errorf("create download directory: %w", err)
	}
	storageManager.Start()
	defer storageManager.Stop()

	ex := extractor.New(&cfg.Extractor)
	videoService := service.NewVideoService(ex, metaCache)
	downloadService := service.NewDownloadService(ex, repo, storageManager)

	quotaService := service.NewQuotaService(&cfg.Quota)
	rateLimitService := service.NewRateLimitService(&cfg.RateLimit)
	defer rateLimitService.Stop()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(logger.GinLogger())

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimitMiddleware(rateLimitService))
		logger.Logger.Info("Rate limiting enabled",
			zap.Int("requests_per_minute", cfg.RateLimit.RequestsPerMinute))
	}

	router.Static("/static", filepath.Join(cfg.Server.FrontendDir, "static"))
	router.StaticFile("/", filepath.Join(cfg.Server.FrontendDir, "index.html"))

	videoHandler := handler.NewVideoHandler(videoService, cfg)
	downloadHandler := handler.NewDownloadHandler(downloadService, quotaService, cfg)
	historyHandler := handler.NewHistoryHandler(downloadService, cfg.History.ListMax)

	api := router.Group("/api")
	{
		api.POST("/video-info", videoHandler.GetVideoInfo)
		api.POST("/download", downloadHandler.StartDownload)
		api.GET("/download-file/:id", downloadHandler.GetFile)
		api.GET("/check-status/:id", downloadHandler.CheckStatus)
		api.GET("/history", historyHandler.List)
		api.GET("/health", videoHandler.HealthCheck)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.Timeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.Timeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Logger.Info("Server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server stopped")
	return nil
}
