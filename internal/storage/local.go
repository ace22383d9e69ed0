package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/yourusername/gated-files/internal/pathx"
)

// LocalStorage はローカルディレクトリ配下のファイルを読み出します。
// シンボリックリンクは解決後のパスでも Root 配下にあることを確認します。
type LocalStorage struct {
	root     string // 絶対パス
	realRoot string // シンボリックリンク解決後の絶対パス
	logger   *slog.Logger
}

// NewLocalStorage は LocalStorage を作成します。root は存在するディレクトリである必要があります。
func NewLocalStorage(root string, logger *slog.Logger) (*LocalStorage, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve protected root: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("protected root is not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("protected root %s is not a directory", absRoot)
	}

	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve protected root: %w", err)
	}

	logger.Info("initialized local storage", "root", absRoot)

	return &LocalStorage{
		root:     absRoot,
		realRoot: realRoot,
		logger:   logger,
	}, nil
}

// Root は Protected Root の絶対パスを返します。
func (s *LocalStorage) Root() string {
	return s.root
}

// Stat はファイル情報を返します。
func (s *LocalStorage) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	if ctx.Err() != nil {
		return ObjectInfo{}, ctx.Err()
	}

	filePath, err := s.resolvePath(key)
	if err != nil {
		return ObjectInfo{}, &StorageError{Op: "Stat", Key: key, Err: err}
	}

	info, err := os.Stat(filePath)
	if err != nil {
		return ObjectInfo{}, &StorageError{Op: "Stat", Key: key, Err: classifyOSError(err)}
	}
	if info.IsDir() {
		return ObjectInfo{}, &StorageError{Op: "Stat", Key: key, Err: ErrNotFound}
	}

	return ObjectInfo{
		Key:          key,
		Size:         info.Size(),
		LastModified: info.ModTime(),
	}, nil
}

// Read はファイル全体を読み込みます。
func (s *LocalStorage) Read(ctx context.Context, key string) ([]byte, ObjectInfo, error) {
	info, err := s.Stat(ctx, key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}

	filePath, err := s.resolvePath(key)
	if err != nil {
		return nil, ObjectInfo{}, &StorageError{Op: "Read", Key: key, Err: err}
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, ObjectInfo{}, &StorageError{Op: "Read", Key: key, Err: classifyOSError(err)}
	}
	info.Size = int64(len(data))

	s.logger.Debug("read protected file", "key", key, "size", info.Size)
	return data, info, nil
}

// resolvePath はキーを絶対パスに変換し、Root の外を指していないか確認します。
func (s *LocalStorage) resolvePath(key string) (string, error) {
	if key == "" || strings.ContainsRune(key, 0) {
		return "", ErrInvalidKey
	}

	absPath := filepath.Join(s.root, filepath.FromSlash(key))
	if !pathx.WithinRoot(s.root, absPath) {
		return "", ErrInvalidKey
	}

	realPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		// 存在しない等の判定は呼び出し側の os.Stat に任せる
		return absPath, nil
	}
	if !pathx.WithinRoot(s.realRoot, realPath) {
		return "", ErrInvalidKey
	}
	return realPath, nil
}

func classifyOSError(err error) error {
	switch {
	case isNotExist(err):
		return ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		return errors.Join(ErrAccessDenied, err)
	default:
		return err
	}
}

// isNotExist は途中の要素がファイルだった場合（ENOTDIR）も存在しないとみなします。
func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}
