// Package files は認証済みリクエストに対して保護ファイルを返します。
package files

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/yourusername/gated-files/internal/pathx"
	"github.com/yourusername/gated-files/internal/storage"
)

// DefaultPrefix は保護ファイルを公開する URL の接頭辞です。
const DefaultPrefix = "/protected"

// File は配信するファイルの内容です。
type File struct {
	Key          string
	ContentType  string
	Data         []byte
	LastModified time.Time
}

// Options は Service の挙動を調整します。
type Options struct {
	Prefix       string // URL 接頭辞（省略時 DefaultPrefix）
	ContentSniff bool   // 対応表にない拡張子を中身から判定するか
}

// Service はリクエストパスを解決し、ストレージからファイルを読み出します。
type Service struct {
	store  storage.Storage
	root   string
	prefix string
	sniff  bool
	logger *slog.Logger
}

// NewService は Service を作成します。
func NewService(store storage.Storage, opts Options, logger *slog.Logger) *Service {
	prefix := strings.TrimSuffix(opts.Prefix, "/")
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Service{
		store:  store,
		root:   filepath.Clean(store.Root()),
		prefix: prefix,
		sniff:  opts.ContentSniff,
		logger: logger,
	}
}

// Resolve はリクエストパス（エスケープ済みの URL パス）を Protected Root からの相対キーに変換します。
//
//  1. URL 接頭辞を取り除く
//  2. URL デコードする（1回のみ）
//  3. バックスラッシュを区切り文字として扱い、. と .. を畳み込む
//  4. Root に結合し、セグメント単位で Root 配下にあることを確認する
//
// Root より上に出るパスは切り詰めずに ErrForbidden とします。
func (s *Service) Resolve(requestPath string) (string, error) {
	rest := strings.TrimPrefix(requestPath, s.prefix)

	decoded, err := url.PathUnescape(rest)
	if err != nil {
		return "", notFound(fmt.Errorf("undecodable path: %w", err))
	}
	if strings.ContainsRune(decoded, 0) {
		return "", forbidden(errors.New("path contains NUL"))
	}

	decoded = strings.ReplaceAll(decoded, `\`, "/")
	cleaned := path.Clean(strings.TrimLeft(decoded, "/"))

	target := filepath.Join(s.root, filepath.FromSlash(cleaned))
	if !pathx.WithinRoot(s.root, target) {
		return "", forbidden(nil)
	}

	rel, err := filepath.Rel(s.root, target)
	if err != nil {
		return "", forbidden(err)
	}
	if rel == "." {
		// Root 自体はファイルではない
		return "", notFound(nil)
	}
	return filepath.ToSlash(rel), nil
}

// Open はリクエストパスに対応するファイルを読み込みます。
// 返すエラーは ErrForbidden / ErrNotFound を包んだ *Error、またはそれ以外の内部エラーです。
func (s *Service) Open(ctx context.Context, requestPath string) (*File, error) {
	key, err := s.Resolve(requestPath)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.Stat(ctx, key); err != nil {
		return nil, s.classify(err)
	}

	data, info, err := s.store.Read(ctx, key)
	if err != nil {
		return nil, s.classify(err)
	}

	return &File{
		Key:          key,
		ContentType:  DetectContentType(key, data, s.sniff),
		Data:         data,
		LastModified: info.LastModified,
	}, nil
}

func (s *Service) classify(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return notFound(err)
	case errors.Is(err, storage.ErrInvalidKey):
		return forbidden(err)
	default:
		return err
	}
}
