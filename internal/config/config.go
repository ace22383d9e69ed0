// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// StorageLocal はローカルファイルシステムを保護ファイルの置き場として使います。
	StorageLocal = "local"
	// StorageS3 は S3 互換ストレージを保護ファイルの置き場として使います。
	StorageS3 = "s3"
)

// Config はアプリケーションの設定を保持する構造体です。
// Load 後は読み取り専用として扱い、実行中に書き換えません。
type Config struct {
	// 認証設定
	PasswordHash string // bcryptでハッシュ化されたパスワード
	JWTSecret    string // セッショントークン署名用の秘密鍵

	// サーバー設定
	Port     string // APIサーバーのポート番号
	GinMode  string // Ginの実行モード (debug, release, test)
	LogLevel string // slog のログレベル (debug, info, warn, error)

	ShutdownTimeoutSeconds int // グレースフルシャットダウンの待ち時間（秒）

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り、空なら無効）

	// ファイル配信設定
	ProtectedRoot  string // 保護ファイルのルートディレクトリ
	PublicDir      string // ログインページなど公開ファイルのディレクトリ（任意）
	ContentSniff   bool   // 未知の拡張子を中身から判定するか
	MetricsEnabled bool   // /metrics を公開するか

	// ストレージ設定
	StorageBackend    string // local または s3
	S3Bucket          string // S3バケット名
	S3Prefix          string // バケット内のキー接頭辞
	S3Region          string // S3リージョン
	S3Endpoint        string // S3互換エンドポイント（MinIO, R2 など）
	S3AccessKeyID     string // 静的クレデンシャル（空ならデフォルトチェーン）
	S3SecretAccessKey string
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	loadEnvFile()

	config := &Config{
		PasswordHash: getEnv("SITE_PASSWORD_HASH", getEnv("NETLIFY_PASSWORD", "")),
		JWTSecret:    getEnv("JWT_SECRET", ""),

		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		ShutdownTimeoutSeconds: getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 10),

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", ""),

		ProtectedRoot:  getEnv("PROTECTED_ROOT", "protected-files"),
		PublicDir:      getEnv("PUBLIC_DIR", ""),
		ContentSniff:   getEnvAsBool("CONTENT_SNIFF", false),
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),

		StorageBackend:    strings.ToLower(getEnv("STORAGE_BACKEND", StorageLocal)),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Prefix:          getEnv("S3_PREFIX", ""),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageLocal:
		if c.ProtectedRoot == "" {
			return fmt.Errorf("PROTECTED_ROOT is required for local storage")
		}
	case StorageS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for s3 storage")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	// ローカル開発では認証設定が欠けていても起動だけはできる
	// （ログイン時に 500 を返す）
	if c.GinMode == "release" {
		if c.PasswordHash == "" {
			return fmt.Errorf("SITE_PASSWORD_HASH is required in release mode")
		}
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in release mode")
		}
	}

	return nil
}

// AllowedOrigins は CORS_ALLOWED_ORIGINS を分解して返します。
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool は環境変数を真偽値として取得します。
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
