package benchmark

import (
	"errors"
	"fmt"
)

var (
	// ErrRedirectLimitExceeded is returned when a download keeps redirecting
	// past the configured number of hops.
	ErrRedirectLimitExceeded = errors.New("redirect limit exceeded")

	// ErrMissingLocation is returned for a 301/302 response without a
	// Location header.
	ErrMissingLocation = errors.New("redirect without Location header")

	// ErrUnexpectedStatus is matched by every *StatusError.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrIncompleteResponse is returned when a storage service accepted an
	// upload but the response does not identify the stored object.
	ErrIncompleteResponse = errors.New("incomplete storage response")
)

// StatusError reports a download response outside the accepted range.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP status code is not 2xx, 301, or 302. Status Code: %d. URL: %s", e.StatusCode, e.URL)
}

// Is makes errors.Is(err, ErrUnexpectedStatus) match.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// TransferError carries the target of a failed upload.
type TransferError struct {
	Op     string
	Bucket string
	Key    string
	Err    error
}

func (e *TransferError) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}
