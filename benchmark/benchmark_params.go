package benchmark

import (
	"time"

	"storagebench/config"
)

// BenchmarkParams holds the parameters for all benchmarks
type BenchmarkParams struct {
	NumberUpload           int           // Trials per (storage, file) pair
	NumberDownload         int           // Trials per download URL
	UploadResultLocation   string        // Upload report path template
	DownloadResultLocation string        // Download report path template
	DownloadDirectory      string        // Where downloaded files are written
	IsUpload               bool          // Run the upload benchmark
	IsDownload             bool          // Run the download benchmark
	TrialsPerSecond        float64       // Trial pacing, 0 means no pacing
	MaxRedirects           int           // Redirect hops followed per download
	RequestTimeout         time.Duration // Per-transfer timeout, 0 means none
}

// NewParams converts the test section of a configuration.
func NewParams(t config.TestConfig) BenchmarkParams {
	maxRedirects := config.DefaultMaxRedirects
	if t.MaxRedirects != nil {
		maxRedirects = *t.MaxRedirects
	}
	return BenchmarkParams{
		NumberUpload:           t.NumberUpload,
		NumberDownload:         t.NumberDownload,
		UploadResultLocation:   t.UploadResultLocation,
		DownloadResultLocation: t.DownloadResultLocation,
		DownloadDirectory:      t.DownloadDirectory,
		IsUpload:               t.IsUpload,
		IsDownload:             t.IsDownload,
		TrialsPerSecond:        t.TrialsPerSecond,
		MaxRedirects:           maxRedirects,
		RequestTimeout:         time.Duration(t.RequestTimeoutSeconds) * time.Second,
	}
}
