// Package report writes benchmark results to JSON files and prints a
// console summary.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// TimePlaceholder is substituted with epoch milliseconds in result paths.
const TimePlaceholder = "{time}"

// ResolvePath substitutes the run timestamp into a result path template.
func ResolvePath(template string, now time.Time) string {
	return strings.ReplaceAll(template, TimePlaceholder, strconv.FormatInt(now.UnixMilli(), 10))
}

// Write serializes v as indented JSON to the path derived from template and
// returns that path. Missing parent directories are created.
func Write(template string, now time.Time, v any) (string, error) {
	path := ResolvePath(template, now)

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return path, fmt.Errorf("failed to encode results: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return path, fmt.Errorf("failed to create result directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return path, fmt.Errorf("failed to write results to %s: %w", path, err)
	}
	return path, nil
}
