package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// StorageTarget is a resolved bucket with the credentials needed to write to it.
type StorageTarget struct {
	Name   string
	Driver string

	Endpoint  string
	Bucket    string
	AccessID  string
	SecretKey string
	Region    string
	PathStyle bool

	// OCI only.
	OCIConfigFile string
	OCIProfile    string
	Namespace     string
}

// FileSource is a local file uploaded by the benchmark.
type FileSource struct {
	Path string
	Size int64
}

// DownloadTarget is a URL fetched into Directory.
type DownloadTarget struct {
	URL       string
	Directory string
}

// Plan is the resolved, enabled subset of a Config.
type Plan struct {
	Storages  []StorageTarget
	Files     []FileSource
	Downloads []DownloadTarget
	Test      TestConfig
}

// Resolve filters out disabled entries, loads storage credentials and stats
// the source files. Relative paths are resolved against baseDir.
func Resolve(cfg *Config, baseDir string) (*Plan, error) {
	plan := &Plan{Test: cfg.Test}
	var errs []error

	for _, s := range cfg.Storages {
		if !s.Enabled() {
			continue
		}
		target, err := LoadCredentials(resolvePath(baseDir, s.EnvFile), s.Driver)
		if err != nil {
			errs = append(errs, fmt.Errorf("storage %q: %w", s.Name, err))
			continue
		}
		target.Name = s.Name
		plan.Storages = append(plan.Storages, target)
	}

	for _, f := range cfg.Files {
		if !f.Enabled() {
			continue
		}
		fullPath := resolvePath(baseDir, f.Location)
		info, err := os.Stat(fullPath)
		if err != nil {
			errs = append(errs, fmt.Errorf("file %q: %w", f.Location, err))
			continue
		}
		if info.IsDir() {
			errs = append(errs, fmt.Errorf("file %q: is a directory", f.Location))
			continue
		}
		plan.Files = append(plan.Files, FileSource{Path: fullPath, Size: info.Size()})
	}

	downloadDir := cfg.Test.DownloadDirectory
	if downloadDir != "" {
		downloadDir = resolvePath(baseDir, downloadDir)
	}
	plan.Test.DownloadDirectory = downloadDir
	for _, d := range cfg.Downloads {
		if !d.Enabled() {
			continue
		}
		plan.Downloads = append(plan.Downloads, DownloadTarget{URL: d.FileURL, Directory: downloadDir})
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return plan, nil
}

func resolvePath(baseDir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(baseDir, p)
}
