package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/gated-files/internal/metrics"
)

type loginRequest struct {
	Password string `json:"password"`
}

// Login は /api/auth/login のハンドラーです。
// 成功時は authToken クッキーを発行し {"success": true} を返します。
func (m *Manager) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		m.respondWithError(c, &Error{
			Code:    "INVALID_INPUT",
			Message: "Invalid request body",
			Err:     errors.Join(ErrBadRequest, err),
		})
		return
	}

	token, _, err := m.Issue(req.Password)
	if err != nil {
		m.respondWithError(c, err)
		return
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	http.SetCookie(c.Writer, SessionCookie(token, m.SessionMaxAgeSeconds()))
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (m *Manager) respondWithError(c *gin.Context, err error) {
	var authErr *Error
	switch {
	case errors.Is(err, ErrBadRequest) && errors.As(err, &authErr):
		metrics.LoginAttempts.WithLabelValues("bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  authErr.Code,
			"error": authErr.Message,
		})
	case errors.Is(err, ErrInvalidCredentials) && errors.As(err, &authErr):
		metrics.LoginAttempts.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":  authErr.Code,
			"error": authErr.Message,
		})
	case errors.Is(err, ErrNotConfigured) && errors.As(err, &authErr):
		metrics.LoginAttempts.WithLabelValues("misconfigured").Inc()
		m.logger.Error("login rejected: server misconfigured", "reason", authErr.Message)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  authErr.Code,
			"error": authErr.Message,
		})
	default:
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		m.logger.Error("login failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  "INTERNAL_ERROR",
			"error": err.Error(),
		})
	}
}
