// Package storage は保護ファイルを読み出すための読み取り専用ストレージを提供します。
//
// キーは Protected Root からの相対パス（スラッシュ区切り、正規化済み）です。
// 実装:
//   - LocalStorage: ローカルファイルシステム
//   - S3Storage: S3 互換オブジェクトストレージ
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Storage は保護ファイルの読み出しを抽象化します。
type Storage interface {
	// Root はキーを結合する基準となる絶対パスを返します。
	// S3 の場合は /<bucket>/<prefix> という仮想的なパスです。
	Root() string

	// Stat はキーに対応するファイルの情報を返します。
	// 存在しない場合やディレクトリの場合は ErrNotFound を返します。
	Stat(ctx context.Context, key string) (ObjectInfo, error)

	// Read はファイル全体を読み込みます。
	Read(ctx context.Context, key string) ([]byte, ObjectInfo, error)
}

// ObjectInfo はファイルのメタデータです。
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ETag         string
}

var (
	// ErrNotFound はファイルが存在しない場合のエラーです。
	ErrNotFound = errors.New("object not found")
	// ErrInvalidKey はキーが Root の外を指す場合のエラーです。
	ErrInvalidKey = errors.New("invalid storage key")
	// ErrAccessDenied はストレージ側でアクセスが拒否された場合のエラーです。
	ErrAccessDenied = errors.New("access denied")
)

// StorageError は操作名とキーを付けてエラーを包みます。
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
