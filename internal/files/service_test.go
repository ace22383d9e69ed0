package files

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yourusername/gated-files/internal/logging"
	"github.com/yourusername/gated-files/internal/storage"
)

// newFixture は <tmp>/protected-files を Root とし、その隣に兄弟ディレクトリと機密ファイルを置きます。
func newFixture(t *testing.T) (*Service, string) {
	t.Helper()
	base := t.TempDir()
	root := filepath.Join(base, "protected-files")
	writeFile(t, filepath.Join(root, "notes.txt"), "my notes")
	writeFile(t, filepath.Join(root, "docs", "guide.html"), "<h1>guide</h1>")
	writeFile(t, filepath.Join(root, "with space.txt"), "spaced")
	writeFile(t, filepath.Join(base, "package.json"), `{"name":"secret"}`)
	writeFile(t, filepath.Join(base, "protected-files-evil", "loot.txt"), "loot")

	store, err := storage.NewLocalStorage(root, logging.Discard())
	if err != nil {
		t.Fatalf("NewLocalStorage error: %v", err)
	}
	return NewService(store, Options{}, logging.Discard()), base
}

func writeFile(t *testing.T, name, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

func TestResolve(t *testing.T) {
	svc, _ := newFixture(t)
	cases := map[string]string{
		"/protected/notes.txt":            "notes.txt",
		"/protected//notes.txt":           "notes.txt",
		"/protected/./docs/../notes.txt":  "notes.txt",
		"/protected/docs/guide.html":      "docs/guide.html",
		"/protected/docs%2Fguide.html":    "docs/guide.html",
		"/protected/with%20space.txt":     "with space.txt",
		"/protected/docs\\guide.html":     "docs/guide.html",
		"/protected/docs/x/../guide.html": "docs/guide.html",
	}
	for in, want := range cases {
		got, err := svc.Resolve(in)
		if err != nil {
			t.Fatalf("Resolve(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("Resolve(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveForbidsEscapes(t *testing.T) {
	svc, _ := newFixture(t)
	paths := []string{
		"/protected/../package.json",
		"/protected/../../package.json",
		"/protected/..%2f..%2fpackage.json",
		"/protected/..%2F..%2F..%2Fetc%2Fpasswd",
		"/protected/%2e%2e/package.json",
		"/protected/docs/../../package.json",
		"/protected/..\\package.json",
		"/protected/../protected-files-evil/loot.txt",
		"/protected/notes%00.txt",
	}
	for _, p := range paths {
		_, err := svc.Resolve(p)
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("Resolve(%q): expected ErrForbidden, got %v", p, err)
		}
		var fileErr *Error
		if !errors.As(err, &fileErr) || fileErr.Code != "FORBIDDEN" {
			t.Fatalf("Resolve(%q): expected *Error with FORBIDDEN, got %#v", p, err)
		}
	}
}

func TestResolveRootAndBadEscape(t *testing.T) {
	svc, _ := newFixture(t)
	for _, p := range []string{"/protected", "/protected/", "/protected/docs/..", "/protected/%zz"} {
		if _, err := svc.Resolve(p); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Resolve(%q): expected ErrNotFound, got %v", p, err)
		}
	}
}

func TestOpen(t *testing.T) {
	svc, _ := newFixture(t)
	file, err := svc.Open(context.Background(), "/protected/notes.txt")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if string(file.Data) != "my notes" || file.ContentType != "text/plain" || file.Key != "notes.txt" {
		t.Fatalf("unexpected file: %#v", file)
	}
	if file.LastModified.IsZero() {
		t.Fatal("expected LastModified")
	}
}

func TestOpenNotFound(t *testing.T) {
	svc, _ := newFixture(t)
	for _, p := range []string{"/protected/missing.txt", "/protected/docs", "/protected/notes.txt/x"} {
		if _, err := svc.Open(context.Background(), p); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Open(%q): expected ErrNotFound, got %v", p, err)
		}
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	svc, _ := newFixture(t)
	first, err := svc.Open(context.Background(), "/protected/docs/guide.html")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := svc.Open(context.Background(), "/protected/docs/guide.html")
		if err != nil {
			t.Fatalf("Open error: %v", err)
		}
		if string(again.Data) != string(first.Data) || again.ContentType != first.ContentType {
			t.Fatalf("response changed between calls: %#v vs %#v", again, first)
		}
	}
}

type stubStorage struct {
	root    string
	statErr error
	readErr error
	data    []byte
	reads   int
}

func (s *stubStorage) Root() string { return s.root }

func (s *stubStorage) Stat(ctx context.Context, key string) (storage.ObjectInfo, error) {
	return storage.ObjectInfo{Key: key}, s.statErr
}

func (s *stubStorage) Read(ctx context.Context, key string) ([]byte, storage.ObjectInfo, error) {
	s.reads++
	if s.readErr != nil {
		return nil, storage.ObjectInfo{}, s.readErr
	}
	return s.data, storage.ObjectInfo{Key: key}, nil
}

func TestOpenClassifiesStorageErrors(t *testing.T) {
	ioErr := errors.New("input/output error")
	cases := []struct {
		name    string
		store   *stubStorage
		want    error
		wantErr error
	}{
		{"stat missing", &stubStorage{root: "/srv/files", statErr: &storage.StorageError{Op: "Stat", Err: storage.ErrNotFound}}, ErrNotFound, nil},
		{"read raced delete", &stubStorage{root: "/srv/files", readErr: &storage.StorageError{Op: "Read", Err: storage.ErrNotFound}}, ErrNotFound, nil},
		{"symlink escape", &stubStorage{root: "/srv/files", statErr: &storage.StorageError{Op: "Stat", Err: storage.ErrInvalidKey}}, ErrForbidden, nil},
		{"io failure", &stubStorage{root: "/srv/files", readErr: ioErr}, nil, ioErr},
	}
	for _, tc := range cases {
		svc := NewService(tc.store, Options{}, logging.Discard())
		_, err := svc.Open(context.Background(), "/protected/a.txt")
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
		if tc.wantErr != nil {
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("%s: expected %v, got %v", tc.name, tc.wantErr, err)
			}
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
				t.Fatalf("%s: io failure must not be classified as client error", tc.name)
			}
		}
	}
}

func TestOpenForbiddenSkipsStorage(t *testing.T) {
	store := &stubStorage{root: "/srv/files", data: []byte("x")}
	svc := NewService(store, Options{}, logging.Discard())
	if _, err := svc.Open(context.Background(), "/protected/../files-evil/x"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if store.reads != 0 {
		t.Fatal("storage must not be read for forbidden paths")
	}
}

func TestCustomPrefixAndSniff(t *testing.T) {
	store := &stubStorage{root: "/srv/files", data: []byte("%PDF-1.4\n")}
	svc := NewService(store, Options{Prefix: "/members/", ContentSniff: true}, logging.Discard())

	file, err := svc.Open(context.Background(), "/members/report")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if file.Key != "report" {
		t.Fatalf("unexpected key: %q", file.Key)
	}
	if file.ContentType != "application/pdf" {
		t.Fatalf("unexpected content type: %q", file.ContentType)
	}
}
