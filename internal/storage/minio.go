// Package storage keeps uploaded image files in an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config configures a MinioStore.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL is the base URL objects are served from. Defaults to the
	// endpoint with the bucket as first path segment.
	PublicURL string
}

// MinioStore implements BlobStore on MinIO or any S3-compatible service.
type MinioStore struct {
	client *minio.Client
	bucket string
	base   string
	logger *slog.Logger
}

// NewMinioStore connects and creates the bucket if it is missing.
func NewMinioStore(ctx context.Context, cfg Config, logger *slog.Logger) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info("created blob bucket", "bucket", cfg.Bucket)
	}

	return &MinioStore{
		client: client,
		bucket: cfg.Bucket,
		base:   PublicBase(cfg),
		logger: logger,
	}, nil
}

// PublicBase returns the URL prefix objects are served under, ending in "/".
func PublicBase(cfg Config) string {
	if cfg.PublicURL != "" {
		return strings.TrimRight(cfg.PublicURL, "/") + "/"
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/", scheme, strings.TrimRight(cfg.Endpoint, "/"), cfg.Bucket)
}

// Put uploads an object and returns its public URL.
func (s *MinioStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=31536000, immutable",
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.base + objectPath(key), nil
}

// Delete removes the object behind url. URLs outside this store are ignored.
func (s *MinioStore) Delete(ctx context.Context, rawURL string) error {
	key, ok := KeyFromURL(s.base, rawURL)
	if !ok {
		s.logger.Debug("skipping blob outside store", "url", rawURL)
		return nil
	}
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}

// KeyFromURL recovers the object key from a URL produced under base.
func KeyFromURL(base, rawURL string) (string, bool) {
	if !strings.HasPrefix(rawURL, base) {
		return "", false
	}
	key, err := url.PathUnescape(strings.TrimPrefix(rawURL, base))
	if err != nil || key == "" {
		return "", false
	}
	return key, true
}

func objectPath(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
