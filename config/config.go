// Package config loads the benchmark configuration file and resolves it into
// the storages, files and download targets a run works on.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Storage drivers.
const (
	DriverS3    = "s3"
	DriverMinio = "minio"
	DriverOCI   = "oci"
)

// DefaultMaxRedirects bounds the redirect chain followed by one download.
const DefaultMaxRedirects = 10

// Config mirrors the JSON configuration file.
type Config struct {
	Storages  []StorageConfig  `json:"storages"`
	Files     []FileConfig     `json:"files"`
	Downloads []DownloadConfig `json:"downloads"`
	Test      TestConfig       `json:"test"`
}

// StorageConfig names a bucket and the credential file holding its access keys.
type StorageConfig struct {
	Name    string `json:"name"`
	EnvFile string `json:"envFile"`
	// IsUsed defaults to true when omitted.
	IsUsed *bool `json:"isUsed,omitempty"`
	// Driver defaults to "s3" when omitted.
	Driver string `json:"driver,omitempty"`
}

// FileConfig is a local file uploaded to every storage.
type FileConfig struct {
	Location string `json:"location"`
	// IsUsed defaults to true when omitted.
	IsUsed *bool `json:"isUsed,omitempty"`
}

// DownloadConfig is a URL fetched repeatedly.
type DownloadConfig struct {
	FileURL string `json:"fileUrl"`
	// IsUsed defaults to true when omitted.
	IsUsed *bool `json:"isUsed,omitempty"`
}

// TestConfig holds the trial counts and output locations of a run.
type TestConfig struct {
	NumberUpload           int    `json:"numberUpload"`
	NumberDownload         int    `json:"numberDownload"`
	UploadResultLocation   string `json:"uploadResultLocation"`
	DownloadResultLocation string `json:"downloadResultLocation"`
	DownloadDirectory      string `json:"downloadDirectory"`
	IsUpload               bool   `json:"isUpload"`
	IsDownload             bool   `json:"isDownload"`

	// TrialsPerSecond paces trial starts. Zero disables pacing.
	TrialsPerSecond float64 `json:"trialsPerSecond,omitempty"`
	// MaxRedirects defaults to DefaultMaxRedirects when omitted.
	MaxRedirects *int `json:"maxRedirects,omitempty"`
	// RequestTimeoutSeconds bounds a single transfer. Zero means no timeout.
	RequestTimeoutSeconds int `json:"requestTimeoutSeconds,omitempty"`
}

// Enabled reports whether the storage takes part in the run.
func (s StorageConfig) Enabled() bool { return enabled(s.IsUsed) }

// Enabled reports whether the file takes part in the run.
func (f FileConfig) Enabled() bool { return enabled(f.IsUsed) }

// Enabled reports whether the download takes part in the run.
func (d DownloadConfig) Enabled() bool { return enabled(d.IsUsed) }

func enabled(flag *bool) bool {
	return flag == nil || *flag
}

// Load reads, defaults and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a configuration document, applies defaults and validates it.
func Parse(data []byte) (*Config, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	for i := range c.Storages {
		if c.Storages[i].Driver == "" {
			c.Storages[i].Driver = DriverS3
		}
		c.Storages[i].Driver = strings.ToLower(c.Storages[i].Driver)
	}
	if c.Test.MaxRedirects == nil {
		n := DefaultMaxRedirects
		c.Test.MaxRedirects = &n
	}
}

// Validate reports every problem in the configuration at once.
func (c *Config) Validate() error {
	var errs []error

	for i, s := range c.Storages {
		if s.Name == "" {
			errs = append(errs, fmt.Errorf("storages[%d]: name is required", i))
		}
		if s.EnvFile == "" {
			errs = append(errs, fmt.Errorf("storages[%d]: envFile is required", i))
		}
		switch s.Driver {
		case DriverS3, DriverMinio, DriverOCI:
		default:
			errs = append(errs, fmt.Errorf("storages[%d]: unknown driver %q", i, s.Driver))
		}
	}

	for i, f := range c.Files {
		if f.Location == "" {
			errs = append(errs, fmt.Errorf("files[%d]: location is required", i))
		}
	}

	for i, d := range c.Downloads {
		if err := validateDownloadURL(d.FileURL); err != nil {
			errs = append(errs, fmt.Errorf("downloads[%d]: %w", i, err))
		}
	}

	t := c.Test
	if t.NumberUpload < 0 {
		errs = append(errs, errors.New("test.numberUpload must not be negative"))
	}
	if t.NumberDownload < 0 {
		errs = append(errs, errors.New("test.numberDownload must not be negative"))
	}
	if t.TrialsPerSecond < 0 {
		errs = append(errs, errors.New("test.trialsPerSecond must not be negative"))
	}
	if t.RequestTimeoutSeconds < 0 {
		errs = append(errs, errors.New("test.requestTimeoutSeconds must not be negative"))
	}
	if t.MaxRedirects != nil && *t.MaxRedirects < 0 {
		errs = append(errs, errors.New("test.maxRedirects must not be negative"))
	}
	if t.IsUpload && t.UploadResultLocation == "" {
		errs = append(errs, errors.New("test.uploadResultLocation is required when isUpload is set"))
	}
	if t.IsDownload {
		if t.DownloadResultLocation == "" {
			errs = append(errs, errors.New("test.downloadResultLocation is required when isDownload is set"))
		}
		if t.DownloadDirectory == "" {
			errs = append(errs, errors.New("test.downloadDirectory is required when isDownload is set"))
		}
	}

	return errors.Join(errs...)
}

func validateDownloadURL(raw string) error {
	if raw == "" {
		return errors.New("fileUrl is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid fileUrl %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("fileUrl %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("fileUrl %q has no host", raw)
	}
	return nil
}
