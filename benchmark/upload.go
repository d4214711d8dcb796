package benchmark

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"

	"storagebench/config"
)

// Uploader writes one local file to a storage target per call.
type Uploader interface {
	Upload(ctx context.Context, file config.FileSource) Outcome
}

// objectPutter is the driver-specific single-call put. It returns the public
// URL of the stored object.
type objectPutter interface {
	putObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) (location string, err error)
}

type uploader struct {
	storage config.StorageTarget
	putter  objectPutter
	cfg     *transferConfig
}

func newUploader(storage config.StorageTarget, putter objectPutter, cfg *transferConfig) *uploader {
	return &uploader{storage: storage, putter: putter, cfg: cfg}
}

// NewUploader builds the uploader for the storage's driver.
func NewUploader(ctx context.Context, storage config.StorageTarget, opts ...Option) (Uploader, error) {
	cfg := newTransferConfig(opts)
	switch storage.Driver {
	case config.DriverS3, "":
		return newS3Uploader(storage, NewS3Client(storage, cfg.httpClient), cfg), nil
	case config.DriverMinio:
		client, err := NewMinioClient(storage)
		if err != nil {
			return nil, err
		}
		return newMinioUploader(storage, client, cfg), nil
	case config.DriverOCI:
		return newOCIUploaderFromConfig(ctx, storage, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", storage.Driver)
	}
}

// Upload puts file into the bucket under a randomized key. It never returns
// an error: every problem becomes a failed Outcome.
func (u *uploader) Upload(ctx context.Context, file config.FileSource) Outcome {
	key := u.cfg.names.ObjectKey(file.Path)
	log := u.cfg.log.WithFields(logrus.Fields{
		"storage": u.storage.Name,
		"bucket":  u.storage.Bucket,
		"key":     key,
		"file":    file.Path,
	})

	f, err := os.Open(file.Path)
	if err != nil {
		log.WithError(err).Warn("File uploading stream error")
		return failed(KindUpload, err)
	}
	defer f.Close()

	size := file.Size
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	contentType, err := detectContentType(f)
	if err != nil {
		log.WithError(err).Warn("File uploading stream error")
		return failed(KindUpload, err)
	}

	if u.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.cfg.timeout)
		defer cancel()
	}

	startedOn := u.cfg.now()
	location, err := u.putter.putObject(ctx, key, f, size, contentType)
	if err != nil {
		err = &TransferError{Op: "upload", Bucket: u.storage.Bucket, Key: key, Err: err}
		log.WithError(err).Warn("Storage uploading error")
		return failed(KindUpload, err)
	}
	if location == "" {
		err = &TransferError{Op: "upload", Bucket: u.storage.Bucket, Key: key, Err: ErrIncompleteResponse}
		log.WithError(err).Warn("Storage response lacks object location")
		return failed(KindUpload, err)
	}
	finishedOn := u.cfg.now()

	return succeeded(KindUpload, startedOn, finishedOn, file.Path, location)
}

// detectContentType sniffs the head of f and rewinds it.
func detectContentType(f *os.File) (string, error) {
	mt, detectErr := mimetype.DetectReader(f)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	if detectErr != nil || mt == nil {
		return "application/octet-stream", nil
	}
	return mt.String(), nil
}

// failingUploader stands in for a storage whose client could not be built, so
// its trials are still recorded.
type failingUploader struct {
	err error
}

func (u failingUploader) Upload(context.Context, config.FileSource) Outcome {
	return failed(KindUpload, u.err)
}
