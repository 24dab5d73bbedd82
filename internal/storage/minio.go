// Package storage hands out presigned upload URLs for object storage.
package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"dukan/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinIOStore presigns uploads into one bucket of a MinIO or S3 endpoint.
type MinIOStore struct {
	client   *minio.Client
	bucket   string
	endpoint string
	useSSL   bool
	log      *zap.Logger
}

// NewMinIOStore connects and makes sure the bucket exists.
func NewMinIOStore(ctx context.Context, cfg config.MinIOConfig, log *zap.Logger) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", cfg.Endpoint, err)
	}

	if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
		exists, existsErr := client.BucketExists(ctx, cfg.Bucket)
		if existsErr != nil || !exists {
			return nil, fmt.Errorf("failed to make/verify bucket %s: (make: %v / exists_check: %v)", cfg.Bucket, err, existsErr)
		}
	}
	log.Info("object storage ready", zap.String("endpoint", cfg.Endpoint), zap.String("bucket", cfg.Bucket))

	return &MinIOStore{
		client:   client,
		bucket:   cfg.Bucket,
		endpoint: cfg.Endpoint,
		useSSL:   cfg.UseSSL,
		log:      log,
	}, nil
}

// PresignPut returns a URL the client can PUT the object to until expiry.
func (s *MinIOStore) PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedPutObject(ctx, s.bucket, key, expiry)
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return u.String(), nil
}

// ObjectURL is where key can be read once uploaded.
func (s *MinIOStore) ObjectURL(key string) string {
	return ObjectURL(s.endpoint, s.bucket, key, s.useSSL)
}

// ObjectURL builds the path-style URL of key in bucket.
func ObjectURL(endpoint, bucket, key string, useSSL bool) string {
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	u := url.URL{
		Scheme: scheme,
		Host:   strings.TrimSuffix(endpoint, "/"),
		Path:   "/" + bucket + "/" + strings.TrimPrefix(key, "/"),
	}
	return u.String()
}
