package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Config は S3 互換ストレージの接続設定です。
type S3Config struct {
	Bucket string
	// Prefix はバケット内で Protected Root として扱うキー接頭辞です（空ならバケット全体）。
	Prefix string
	Region string
	// Endpoint は MinIO や R2 など S3 互換サービスの URL です。空なら AWS を使います。
	Endpoint string
	// AccessKeyID と SecretAccessKey が空の場合は SDK のデフォルトクレデンシャルチェーンを使います。
	AccessKeyID     string
	SecretAccessKey string
}

// s3API は S3Storage が使う S3 クライアントのメソッドです。
type s3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Storage はバケット内のオブジェクトを保護ファイルとして読み出します。
type S3Storage struct {
	client s3API
	bucket string
	prefix string
	logger *slog.Logger
}

// NewS3Storage は S3Storage を作成します。
func NewS3Storage(ctx context.Context, cfg S3Config, logger *slog.Logger) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" || cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	logger.Info("initialized s3 storage",
		"bucket", cfg.Bucket,
		"prefix", cfg.Prefix,
		"endpoint", cfg.Endpoint,
	)

	return newS3Storage(client, cfg.Bucket, cfg.Prefix, logger), nil
}

func newS3Storage(client s3API, bucket, prefix string, logger *slog.Logger) *S3Storage {
	return &S3Storage{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: logger,
	}
}

// Root は /<bucket>/<prefix> を返します。
func (s *S3Storage) Root() string {
	return path.Join("/", s.bucket, s.prefix)
}

// Stat は HeadObject でオブジェクトの情報を取得します。
func (s *S3Storage) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return ObjectInfo{}, &StorageError{Op: "Stat", Key: key, Err: err}
	}

	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return ObjectInfo{}, &StorageError{Op: "Stat", Key: key, Err: wrapS3Error(err)}
	}

	return ObjectInfo{
		Key:          key,
		Size:         aws.ToInt64(out.ContentLength),
		LastModified: aws.ToTime(out.LastModified),
		ETag:         aws.ToString(out.ETag),
	}, nil
}

// Read は GetObject でオブジェクト全体を読み込みます。
func (s *S3Storage) Read(ctx context.Context, key string) ([]byte, ObjectInfo, error) {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return nil, ObjectInfo{}, &StorageError{Op: "Read", Key: key, Err: err}
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return nil, ObjectInfo{}, &StorageError{Op: "Read", Key: key, Err: wrapS3Error(err)}
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, ObjectInfo{}, &StorageError{Op: "Read", Key: key, Err: fmt.Errorf("failed to read object body: %w", err)}
	}

	s.logger.Debug("read protected object", "key", key, "size", len(data))
	return data, ObjectInfo{
		Key:          key,
		Size:         int64(len(data)),
		LastModified: aws.ToTime(out.LastModified),
		ETag:         aws.ToString(out.ETag),
	}, nil
}

// objectKey は相対キーにバケット内の接頭辞を付けます。
func (s *S3Storage) objectKey(key string) (string, error) {
	if key == "" || key == "." || strings.ContainsRune(key, 0) {
		return "", ErrNotFound
	}
	cleaned := path.Clean("/" + key)
	if cleaned != "/"+key {
		return "", ErrInvalidKey
	}
	return strings.TrimPrefix(path.Join(s.prefix, key), "/"), nil
}

// wrapS3Error は S3 のエラーを番兵エラーに変換します。
func wrapS3Error(err error) error {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return ErrNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return ErrNotFound
		case "AccessDenied", "Forbidden":
			return ErrAccessDenied
		}
	}
	return err
}
