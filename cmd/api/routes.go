package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/gated-files/internal/auth"
	"github.com/yourusername/gated-files/internal/config"
	"github.com/yourusername/gated-files/internal/files"
	"github.com/yourusername/gated-files/internal/metrics"
	"github.com/yourusername/gated-files/internal/middleware"
	"github.com/yourusername/gated-files/internal/pathx"
	"github.com/yourusername/gated-files/internal/storage"
)

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "gated-files",
		"version": "0.1.0",
	})
}

// buildRouter は設定から依存関係を組み立て、ルーティング済みの gin.Engine を返します。
func buildRouter(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*gin.Engine, error) {
	store, err := newStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := checkPublicDir(cfg, store); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(logger),
		middleware.SecurityHeaders(cfg.GinMode == gin.ReleaseMode),
	)
	if cfg.MetricsEnabled {
		router.Use(metrics.Middleware())
	}

	// ログインページを別オリジンに置く場合のみ CORS を有効にする
	if origins := cfg.AllowedOrigins(); len(origins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
		router.Use(cors.New(corsConfig))
	}

	authManager := auth.NewManager(cfg, logger)
	fileService := files.NewService(store, files.Options{
		Prefix:       files.DefaultPrefix,
		ContentSniff: cfg.ContentSniff,
	}, logger)

	setupRoutes(router, cfg, authManager, fileService, logger)
	return router, nil
}

// setupRoutes は API グループと保護ファイルの配線を行います。
func setupRoutes(router *gin.Engine, cfg *config.Config, authManager *auth.Manager, fileService *files.Service, logger *slog.Logger) {
	router.GET("/health", handleHealth)
	if cfg.MetricsEnabled {
		router.GET("/metrics", metrics.Handler())
	}

	api := router.Group("/api")
	{
		api.POST("/auth/login", authManager.Login)
	}
	// Netlify Functions 前提のフロントエンドをそのまま使えるようにする
	router.POST("/.netlify/functions/validate-password", authManager.Login)

	protected := router.Group(files.DefaultPrefix)
	protected.Use(authManager.RequireToken())
	{
		serve := files.Handler(fileService, logger)
		protected.GET("/*filepath", serve)
		protected.HEAD("/*filepath", serve)
	}

	if cfg.PublicDir != "" {
		router.NoRoute(publicHandler(cfg.PublicDir))
	}
}

// publicHandler は PUBLIC_DIR を GET/HEAD のみで配信します。
func publicHandler(dir string) gin.HandlerFunc {
	fileServer := http.FileServer(http.Dir(dir))
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.String(http.StatusNotFound, "Not found")
			return
		}
		fileServer.ServeHTTP(c.Writer, c.Request)
	}
}

func newStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	switch cfg.StorageBackend {
	case config.StorageLocal:
		return storage.NewLocalStorage(cfg.ProtectedRoot, logger)
	case config.StorageS3:
		return storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// checkPublicDir は公開ディレクトリが保護ファイルを含んでいないことを確認します。
func checkPublicDir(cfg *config.Config, store storage.Storage) error {
	if cfg.PublicDir == "" || cfg.StorageBackend != config.StorageLocal {
		return nil
	}
	publicDir, err := filepath.Abs(cfg.PublicDir)
	if err != nil {
		return fmt.Errorf("failed to resolve public dir: %w", err)
	}
	if pathx.WithinRoot(publicDir, store.Root()) {
		return fmt.Errorf("PUBLIC_DIR %s must not contain PROTECTED_ROOT %s", publicDir, store.Root())
	}
	return nil
}
