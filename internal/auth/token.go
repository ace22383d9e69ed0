package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// CookieName はセッショントークンを運ぶクッキー名です。
	CookieName = "authToken"
	// TokenTTL はセッショントークンの有効期間です。
	TokenTTL = 2 * time.Hour
)

// Claims はセッショントークンに埋め込む内容です。
type Claims struct {
	LoggedIn bool `json:"loggedIn"`
	jwt.RegisteredClaims
}

// Signer は HS256 でセッショントークンを署名・検証します。
// 生成後は読み取り専用なので、複数のリクエストから同時に使えます。
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner は Signer を作成します。ttl が 0 以下なら TokenTTL を使います。
func NewSigner(secret []byte, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = TokenTTL
	}
	return &Signer{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL はトークンの有効期間を返します。
func (s *Signer) TTL() time.Duration {
	return s.ttl
}

// Sign はログイン済みを示すトークンを発行し、その有効期限とともに返します。
func (s *Signer) Sign() (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, notConfigured("Signing secret not configured")
	}

	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		LoggedIn: true,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify は署名と有効期限を検証してクレームを返します。
// 失敗理由にかかわらず ErrInvalidToken を返します（未設定時のみ ErrNotConfigured）。
func (s *Signer) Verify(tokenString string) (*Claims, error) {
	if len(s.secret) == 0 {
		return nil, ErrNotConfigured
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid || !claims.LoggedIn {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
