package benchmark

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testEpoch = time.UnixMilli(1_700_000_000_000)

// trialClock returns a clock whose readings come in start/finish pairs, each
// pair the given duration apart.
func trialClock(durations ...time.Duration) Clock {
	var (
		mu    sync.Mutex
		times []time.Time
		i     int
	)
	at := testEpoch
	for _, d := range durations {
		times = append(times, at, at.Add(d))
		at = at.Add(d + time.Second)
	}
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		if i >= len(times) {
			return at
		}
		t := times[i]
		i++
		return t
	}
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func writeTestFile(t *testing.T, path string, data []byte) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

type countingProgress struct {
	steps int
	done  int
}

func (p *countingProgress) Step() { p.steps++ }
func (p *countingProgress) Done() { p.done++ }
