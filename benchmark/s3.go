package benchmark

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"storagebench/config"
)

// S3API is the part of the S3 client an upload trial needs.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client creates an S3 client for an S3-compatible endpoint with static
// credentials. SDK retries are disabled so a trial times exactly one request.
func NewS3Client(storage config.StorageTarget, httpClient *http.Client) *s3.Client {
	cfg := aws.Config{
		Region:      storage.Region,
		Credentials: credentials.NewStaticCredentialsProvider(storage.AccessID, storage.SecretKey, ""),
		Retryer: func() aws.Retryer {
			return aws.NopRetryer{}
		},
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(storage.Endpoint)
		o.UsePathStyle = storage.PathStyle
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})
}

// NewS3Uploader creates an uploader backed by client.
func NewS3Uploader(storage config.StorageTarget, client S3API, opts ...Option) Uploader {
	return newS3Uploader(storage, client, newTransferConfig(opts))
}

func newS3Uploader(storage config.StorageTarget, client S3API, cfg *transferConfig) Uploader {
	putter := &s3Putter{
		client:    client,
		endpoint:  storage.Endpoint,
		bucket:    storage.Bucket,
		pathStyle: storage.PathStyle,
	}
	return newUploader(storage, putter, cfg)
}

type s3Putter struct {
	client    S3API
	endpoint  string
	bucket    string
	pathStyle bool
}

func (p *s3Putter) putObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	out, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		ACL:           types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", err
	}
	if out == nil {
		return "", nil
	}
	return objectURL(p.endpoint, p.bucket, key, p.pathStyle), nil
}

// objectURL is the public URL of key, in path style
// (<endpoint>/<bucket>/<key>) or virtual-host style (<bucket>.<host>/<key>).
func objectURL(endpoint, bucket, key string, pathStyle bool) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return ""
	}
	base := strings.TrimRight(u.Path, "/")
	if pathStyle {
		u.Path = base + "/" + bucket + "/" + key
	} else {
		u.Host = bucket + "." + u.Host
		u.Path = base + "/" + key
	}
	u.RawPath = ""
	return u.String()
}
