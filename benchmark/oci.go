package benchmark

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/objectstorage"
	"github.com/sirupsen/logrus"

	"storagebench/config"
)

// OCIObjectStorage is the part of the OCI Object Storage client an upload
// trial needs.
type OCIObjectStorage interface {
	PutObject(ctx context.Context, request objectstorage.PutObjectRequest) (objectstorage.PutObjectResponse, error)
}

// NewOCIUploader creates an uploader for an OCI bucket. host is the service
// base URL the public object URL is built from.
//
// Object visibility is a bucket setting in OCI, so public-read has to be
// configured on the bucket itself.
func NewOCIUploader(storage config.StorageTarget, client OCIObjectStorage, host, namespace string, opts ...Option) Uploader {
	return newOCIUploader(storage, client, host, namespace, newTransferConfig(opts))
}

func newOCIUploader(storage config.StorageTarget, client OCIObjectStorage, host, namespace string, cfg *transferConfig) Uploader {
	putter := &ociPutter{
		client:    client,
		host:      strings.TrimRight(host, "/"),
		namespace: namespace,
		bucket:    storage.Bucket,
	}
	return newUploader(storage, putter, cfg)
}

// newOCIUploaderFromConfig loads the OCI config profile, initializes the
// ObjectStorage client and resolves the namespace when it is not configured.
func newOCIUploaderFromConfig(ctx context.Context, storage config.StorageTarget, cfg *transferConfig) (Uploader, error) {
	provider, err := config.LoadOCIConfig(storage)
	if err != nil {
		return nil, err
	}

	client, err := objectstorage.NewObjectStorageClientWithConfigurationProvider(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create Object Storage client: %w", err)
	}

	// Use the endpoint override if provided, otherwise use the SDK default
	if storage.Endpoint != "" {
		client.Host = storage.Endpoint
	}

	// Determine namespace: Use provided namespace, or fetch it via API
	namespace := storage.Namespace
	if namespace == "" {
		resp, err := client.GetNamespace(ctx, objectstorage.GetNamespaceRequest{})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch namespace: %w", err)
		}
		if resp.Value == nil {
			return nil, fmt.Errorf("failed to fetch namespace: %w", ErrIncompleteResponse)
		}
		namespace = *resp.Value
		cfg.log.WithFields(logrus.Fields{
			"storage":   storage.Name,
			"namespace": namespace,
		}).Debug("Fetched namespace")
	}

	return newOCIUploader(storage, client, client.Host, namespace, cfg), nil
}

type ociPutter struct {
	client    OCIObjectStorage
	host      string
	namespace string
	bucket    string
}

func (p *ociPutter) putObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	request := objectstorage.PutObjectRequest{
		NamespaceName: common.String(p.namespace),
		BucketName:    common.String(p.bucket),
		ObjectName:    common.String(key),
		ContentLength: common.Int64(size),
		ContentType:   common.String(contentType),
		PutObjectBody: io.NopCloser(body),
	}

	response, err := p.client.PutObject(ctx, request)
	if err != nil {
		return "", err
	}

	// Handle nil response case
	if response.HTTPResponse() == nil {
		return "", nil
	}

	return fmt.Sprintf("%s/n/%s/b/%s/o/%s",
		p.host, url.PathEscape(p.namespace), url.PathEscape(p.bucket), url.PathEscape(key)), nil
}
