package auth

import (
	"net/http"
	"net/url"
	"strings"
)

// ParseCookies は Cookie ヘッダーを名前と値のマップに分解します。
// 値は URL デコードし、デコードできない場合はそのまま使います。
// 同名のクッキーが複数ある場合は最初のものを採用します。
func ParseCookies(header string) map[string]string {
	cookies := make(map[string]string)
	for _, part := range strings.Split(header, ";") {
		name, value, _ := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, seen := cookies[name]; seen {
			continue
		}
		value = strings.TrimSpace(value)
		if decoded, err := url.PathUnescape(value); err == nil {
			value = decoded
		}
		cookies[name] = value
	}
	return cookies
}

// SessionCookie はトークンを載せる Set-Cookie を組み立てます。
// HttpOnly / Secure / SameSite=Lax / Path=/ は固定です。
func SessionCookie(token string, maxAgeSeconds int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAgeSeconds,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}
