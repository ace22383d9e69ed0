// Package auth はパスワード認証とセッショントークンの発行・検証を提供します。
package auth

import (
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/gated-files/internal/config"
)

// ContextClaimsKey は、検証済みトークンのクレームをハンドラー間で共有するためのキーです。
const ContextClaimsKey = "auth.claims"

// Manager は認証処理をまとめた構造体です。
// 保持する値は起動時に決まり、以降は変更しません。
type Manager struct {
	passwordHash string
	signer       *Signer
	logger       *slog.Logger
}

// NewManager は認証マネージャーを作成します。
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	return &Manager{
		passwordHash: cfg.PasswordHash,
		signer:       NewSigner([]byte(cfg.JWTSecret), TokenTTL),
		logger:       logger,
	}
}

// SessionMaxAgeSeconds はクッキーの Max-Age に利用する秒数を返します。
func (m *Manager) SessionMaxAgeSeconds() int {
	return int(m.signer.TTL().Seconds())
}

// Issue はパスワードを検証し、一致すればセッショントークンを発行します。
func (m *Manager) Issue(password string) (string, time.Time, error) {
	if m.passwordHash == "" {
		return "", time.Time{}, notConfigured("Password not configured")
	}

	err := bcrypt.CompareHashAndPassword([]byte(m.passwordHash), []byte(password))
	switch {
	case err == nil:
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword), errors.Is(err, bcrypt.ErrPasswordTooLong):
		return "", time.Time{}, &Error{Code: "INVALID_CREDENTIALS", Message: "Invalid password", Err: ErrInvalidCredentials}
	default:
		// ハッシュの形式が壊れている場合は設定ミスとして扱う
		m.logger.Error("stored password hash is unusable", "error", err)
		return "", time.Time{}, notConfigured("Password not configured")
	}

	return m.signer.Sign()
}

// Verify はトークン文字列を検証します。
func (m *Manager) Verify(token string) (*Claims, error) {
	return m.signer.Verify(token)
}
