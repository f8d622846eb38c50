package minio

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/roamio-app/roamio-backend/internal/repository/ports"
)

func NewClient(endpoint, key, secret string, useSSL bool) (*minio.Client, error) {
	return minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(key, secret, ""),
		Secure: useSSL,
	})
}

// Storage uploads photo blobs and derives a retrievable URL. When publicBase
// is set it overrides the endpoint-derived URL (MinIO behind a CDN or reverse
// proxy).
type Storage struct {
	client     *minio.Client
	publicBase string
	useSSL     bool
}

func NewStorage(client *minio.Client, publicBase string, useSSL bool) *Storage {
	return &Storage{
		client:     client,
		publicBase: strings.TrimRight(strings.TrimSpace(publicBase), "/"),
		useSSL:     useSSL,
	}
}

func (s *Storage) Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error) {
	_, err := s.client.PutObject(ctx, bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s/%s: %w", bucket, objectName, err)
	}

	if s.publicBase != "" {
		return s.publicBase + "/" + bucket + "/" + objectName, nil
	}

	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.client.EndpointURL().Host, bucket, objectName), nil
}

var _ ports.ObjectStorage = (*Storage)(nil)
