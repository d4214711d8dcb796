package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const s3Env = `BUCKET_ENDPOINT=http://127.0.0.1:9000
BUCKET_NAME=bench
BUCKET_ACCESS_ID=AKIDEXAMPLE
BUCKET_SECRET_KEY=secret
`

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "primary.env"), s3Env)
	writeFile(t, filepath.Join(dir, "data", "small.bin"), string(make([]byte, 1024)))

	disabled := false
	cfg := &Config{
		Storages: []StorageConfig{
			{Name: "primary", EnvFile: "primary.env", Driver: DriverS3},
			{Name: "unused", EnvFile: "does-not-exist.env", Driver: DriverS3, IsUsed: &disabled},
		},
		Files: []FileConfig{
			{Location: "data/small.bin"},
			{Location: "data/missing.bin", IsUsed: &disabled},
		},
		Downloads: []DownloadConfig{
			{FileURL: "https://example.com/a.bin"},
			{FileURL: "https://example.com/b.bin", IsUsed: &disabled},
		},
		Test: TestConfig{DownloadDirectory: "downloads"},
	}

	plan, err := Resolve(cfg, dir)
	require.NoError(t, err)

	require.Len(t, plan.Storages, 1)
	st := plan.Storages[0]
	assert.Equal(t, "primary", st.Name)
	assert.Equal(t, DriverS3, st.Driver)
	assert.Equal(t, "http://127.0.0.1:9000", st.Endpoint)
	assert.Equal(t, "bench", st.Bucket)
	assert.Equal(t, "AKIDEXAMPLE", st.AccessID)
	assert.Equal(t, "secret", st.SecretKey)

	require.Len(t, plan.Files, 1)
	assert.Equal(t, filepath.Join(dir, "data", "small.bin"), plan.Files[0].Path)
	assert.Equal(t, int64(1024), plan.Files[0].Size)

	require.Len(t, plan.Downloads, 1)
	assert.Equal(t, "https://example.com/a.bin", plan.Downloads[0].URL)
	assert.Equal(t, filepath.Join(dir, "downloads"), plan.Downloads[0].Directory)
	assert.Equal(t, filepath.Join(dir, "downloads"), plan.Test.DownloadDirectory)
}

func TestResolve_ReportsEveryProblem(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "adir"), 0o755))

	cfg := &Config{
		Storages: []StorageConfig{{Name: "ghost", EnvFile: "ghost.env", Driver: DriverS3}},
		Files: []FileConfig{
			{Location: "nope.bin"},
			{Location: "adir"},
		},
	}

	_, err := Resolve(cfg, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `storage "ghost"`)
	assert.Contains(t, err.Error(), `file "nope.bin"`)
	assert.Contains(t, err.Error(), `file "adir": is a directory`)
}

func TestResolve_AbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "abs.bin")
	writeFile(t, file, "hello")

	plan, err := Resolve(&Config{Files: []FileConfig{{Location: file}}}, "/somewhere/else")
	require.NoError(t, err)
	require.Len(t, plan.Files, 1)
	assert.Equal(t, file, plan.Files[0].Path)
	assert.Equal(t, int64(5), plan.Files[0].Size)
}
