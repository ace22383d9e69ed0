package files

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/gated-files/internal/metrics"
	"github.com/yourusername/gated-files/internal/middleware"
)

// Handler は GET /protected/*filepath のハンドラーを返します。
// 認証は前段の auth.Manager.RequireToken で済んでいる前提です。
// エラー時の本文は固定文言のみで、内部のパスや原因はログにだけ残します。
func Handler(svc *Service, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := svc.Open(c.Request.Context(), c.Request.URL.EscapedPath())
		if err != nil {
			respondWithError(c, logger, err)
			return
		}

		metrics.FileRequests.WithLabelValues("served").Inc()
		metrics.FileBytesServed.Add(float64(len(file.Data)))

		c.Header("Cache-Control", "private, no-store")
		c.Header("X-Content-Type-Options", "nosniff")
		if !file.LastModified.IsZero() {
			c.Header("Last-Modified", file.LastModified.UTC().Format(http.TimeFormat))
		}
		c.Data(http.StatusOK, file.ContentType, file.Data)
	}
}

func respondWithError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, ErrForbidden):
		metrics.FileRequests.WithLabelValues("forbidden").Inc()
		logger.Warn("rejected protected path",
			"path", c.Request.URL.Path,
			"request_id", middleware.GetRequestID(c),
		)
		c.String(http.StatusForbidden, "Forbidden")
	case errors.Is(err, ErrNotFound):
		metrics.FileRequests.WithLabelValues("not_found").Inc()
		c.String(http.StatusNotFound, "Not found")
	default:
		metrics.FileRequests.WithLabelValues("error").Inc()
		logger.Error("failed to serve protected file",
			"path", c.Request.URL.Path,
			"request_id", middleware.GetRequestID(c),
			"error", err,
		)
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "Server error")
	}
}
