package auth

import (
	"net/http"
	"strings"
	"testing"
)

func TestParseCookies(t *testing.T) {
	got := ParseCookies("theme=dark; authToken=abc.def.ghi;  empty=; =orphan; note=hello%20world; authToken=second")

	cases := map[string]string{
		"theme":     "dark",
		"authToken": "abc.def.ghi",
		"empty":     "",
		"note":      "hello world",
	}
	for name, want := range cases {
		if got[name] != want {
			t.Fatalf("cookie %q = %q, want %q", name, got[name], want)
		}
	}
	if _, ok := got[""]; ok {
		t.Fatal("nameless cookie should be ignored")
	}
}

func TestParseCookiesKeepsEqualsInValue(t *testing.T) {
	got := ParseCookies("data=a=b=c")
	if got["data"] != "a=b=c" {
		t.Fatalf("unexpected value: %q", got["data"])
	}
}

func TestParseCookiesBadEscapeKeepsRaw(t *testing.T) {
	got := ParseCookies("x=%zz")
	if got["x"] != "%zz" {
		t.Fatalf("unexpected value: %q", got["x"])
	}
}

func TestParseCookiesEmptyHeader(t *testing.T) {
	if got := ParseCookies(""); len(got) != 0 {
		t.Fatalf("expected empty map, got %#v", got)
	}
}

func TestSessionCookieAttributes(t *testing.T) {
	header := SessionCookie("tok", 7200).String()

	for _, want := range []string{"authToken=tok", "Path=/", "Max-Age=7200", "HttpOnly", "Secure", "SameSite=Lax"} {
		if !strings.Contains(header, want) {
			t.Fatalf("Set-Cookie %q missing %q", header, want)
		}
	}

	c := SessionCookie("tok", 7200)
	if c.SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected SameSite: %v", c.SameSite)
	}
}
