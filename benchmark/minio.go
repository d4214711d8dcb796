package benchmark

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"storagebench/config"
)

// NewMinioClient creates a MinIO client for the storage endpoint.
func NewMinioClient(storage config.StorageTarget) (*minio.Client, error) {
	u, err := url.Parse(storage.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", storage.Endpoint, err)
	}

	lookup := minio.BucketLookupDNS
	if storage.PathStyle {
		lookup = minio.BucketLookupPath
	}

	client, err := minio.New(u.Host, &minio.Options{
		Creds:        credentials.NewStaticV4(storage.AccessID, storage.SecretKey, ""),
		Secure:       u.Scheme == "https",
		Region:       storage.Region,
		BucketLookup: lookup,
		MaxRetries:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	return client, nil
}

// NewMinioUploader creates an uploader backed by a MinIO client.
func NewMinioUploader(storage config.StorageTarget, client *minio.Client, opts ...Option) Uploader {
	return newMinioUploader(storage, client, newTransferConfig(opts))
}

func newMinioUploader(storage config.StorageTarget, client *minio.Client, cfg *transferConfig) Uploader {
	putter := &minioPutter{
		client:    client,
		endpoint:  storage.Endpoint,
		bucket:    storage.Bucket,
		pathStyle: storage.PathStyle,
	}
	return newUploader(storage, putter, cfg)
}

type minioPutter struct {
	client    *minio.Client
	endpoint  string
	bucket    string
	pathStyle bool
}

func (p *minioPutter) putObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	info, err := p.client.PutObject(ctx, p.bucket, key, body, size, minio.PutObjectOptions{
		ContentType:      contentType,
		DisableMultipart: true,
		UserMetadata: map[string]string{
			"x-amz-acl": "public-read",
		},
	})
	if err != nil {
		return "", err
	}
	if info.Key == "" {
		return "", nil
	}
	if info.Location != "" {
		return info.Location, nil
	}
	return objectURL(p.endpoint, p.bucket, info.Key, p.pathStyle), nil
}
