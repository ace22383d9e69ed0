package files

import "errors"

var (
	// ErrForbidden はパスが Protected Root の外を指す場合のエラーです。
	ErrForbidden = errors.New("path escapes protected root")
	// ErrNotFound はファイルが存在しない場合のエラーです。
	ErrNotFound = errors.New("file not found")
)

// Error はクライアントに返すステータス判定用のコードと、ログ用の原因を持ちます。
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func forbidden(cause error) error {
	return &Error{Code: "FORBIDDEN", Message: "Forbidden", Err: errors.Join(ErrForbidden, cause)}
}

func notFound(cause error) error {
	return &Error{Code: "NOT_FOUND", Message: "Not found", Err: errors.Join(ErrNotFound, cause)}
}
