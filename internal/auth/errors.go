package auth

import "errors"

var (
	// ErrBadRequest はリクエストボディが解釈できない場合のエラーです。
	ErrBadRequest = errors.New("invalid request body")
	// ErrNotConfigured はパスワードハッシュや署名鍵が設定されていない場合のエラーです。
	ErrNotConfigured = errors.New("credentials not configured")
	// ErrInvalidCredentials はパスワードが一致しない場合のエラーです。
	ErrInvalidCredentials = errors.New("invalid password")
	// ErrInvalidToken はトークンの欠落・改ざん・期限切れをまとめて表します。
	ErrInvalidToken = errors.New("invalid session token")
)

// Error はクライアントへ返すコードとメッセージを持つ認証エラーです。
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func notConfigured(message string) error {
	return &Error{Code: "SERVER_MISCONFIGURATION", Message: message, Err: ErrNotConfigured}
}
