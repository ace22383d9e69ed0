package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/gated-files/internal/metrics"
)

// LoginPath は未認証時のリダイレクト先です。
const LoginPath = "/"

// RequireToken は authToken クッキーを検証するミドルウェアを返します。
// 欠落・不正・期限切れはいずれも区別せず、302 で LoginPath へ戻します。
func (m *Manager) RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookies := ParseCookies(strings.Join(c.Request.Header.Values("Cookie"), "; "))
		token := cookies[CookieName]
		if token == "" {
			m.redirectToLogin(c, "missing")
			return
		}

		claims, err := m.Verify(token)
		if err != nil {
			if errors.Is(err, ErrNotConfigured) {
				m.logger.Error("cannot verify session token: signing secret not configured")
				m.redirectToLogin(c, "misconfigured")
				return
			}
			m.redirectToLogin(c, "invalid")
			return
		}

		c.Set(ContextClaimsKey, claims)
		c.Next()
	}
}

func (m *Manager) redirectToLogin(c *gin.Context, reason string) {
	metrics.TokenRejections.WithLabelValues(reason).Inc()
	c.Header("Location", LoginPath)
	c.Header("Cache-Control", "no-store")
	c.AbortWithStatus(http.StatusFound)
}
