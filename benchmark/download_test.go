package benchmark

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storagebench/config"
)

func newTestDownloader(t *testing.T, opts ...Option) *Downloader {
	t.Helper()
	opts = append([]Option{
		WithClock(trialClock(40 * time.Millisecond)),
		WithNames(NewSeededNameGenerator(5, 6)),
	}, opts...)
	d, err := NewDownloader(opts...)
	require.NoError(t, err)
	return d
}

func TestDownload_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello world"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	target := config.DownloadTarget{URL: srv.URL + "/files/data.txt", Directory: dir}

	o := newTestDownloader(t).Download(context.Background(), target)

	require.NoError(t, o.Err)
	assert.Equal(t, KindDownload, o.Kind)
	assert.Equal(t, target.URL, o.Source)
	assert.Empty(t, o.RedirectedTo)
	assert.Equal(t, 40*time.Millisecond, o.Duration)
	assert.Equal(t, dir, filepath.Dir(o.Result))
	assert.Regexp(t, `^test-\d+data\.txt$`, filepath.Base(o.Result))

	data, err := os.ReadFile(o.Result)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestDownload_StatusNotAccepted(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	dir := t.TempDir()
	o := newTestDownloader(t).Download(context.Background(), config.DownloadTarget{URL: srv.URL + "/missing", Directory: dir})

	require.Error(t, o.Err)
	assert.ErrorIs(t, o.Err, ErrUnexpectedStatus)

	var statusErr *StatusError
	require.True(t, errors.As(o.Err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Contains(t, statusErr.Error(), "Status Code: 404")
	assert.Empty(t, listDir(t, dir))
}

func TestDownload_FollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final/file.bin", http.StatusFound)
	})
	mux.HandleFunc("/final/file.bin", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("0123456789"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	target := config.DownloadTarget{URL: srv.URL + "/start", Directory: dir}

	o := newTestDownloader(t).Download(context.Background(), target)

	require.NoError(t, o.Err)
	assert.Equal(t, target.URL, o.Source)
	assert.Equal(t, srv.URL+"/final/file.bin", o.RedirectedTo)
	assert.Regexp(t, `^test-\d+file\.bin$`, filepath.Base(o.Result))

	data, err := os.ReadFile(o.Result)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(data))
}

func TestDownload_RelativeAndPermanentRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/a/b/start", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "../c/moved.txt")
		w.WriteHeader(http.StatusMovedPermanently)
	})
	mux.HandleFunc("/a/c/moved.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("moved"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	o := newTestDownloader(t).Download(context.Background(), config.DownloadTarget{URL: srv.URL + "/a/b/start", Directory: t.TempDir()})

	require.NoError(t, o.Err)
	assert.Equal(t, srv.URL+"/a/c/moved.txt", o.RedirectedTo)
}

func TestDownload_RedirectWithoutLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	o := newTestDownloader(t).Download(context.Background(), config.DownloadTarget{URL: srv.URL, Directory: dir})

	assert.ErrorIs(t, o.Err, ErrMissingLocation)
	assert.Empty(t, listDir(t, dir))
}

func TestDownload_RedirectLimit(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		http.Redirect(w, r, "/loop", http.StatusFound)
	}))
	defer srv.Close()

	o := newTestDownloader(t, WithMaxRedirects(3)).Download(context.Background(), config.DownloadTarget{URL: srv.URL + "/loop", Directory: t.TempDir()})

	assert.ErrorIs(t, o.Err, ErrRedirectLimitExceeded)
	assert.Equal(t, int32(4), requests.Load())
}

func TestDownload_NoRedirectsAllowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
	}))
	defer srv.Close()

	o := newTestDownloader(t, WithMaxRedirects(0)).Download(context.Background(), config.DownloadTarget{URL: srv.URL, Directory: t.TempDir()})

	assert.ErrorIs(t, o.Err, ErrRedirectLimitExceeded)
}

func TestDownload_EmptyBodyIsSaved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dir := t.TempDir()
	o := newTestDownloader(t).Download(context.Background(), config.DownloadTarget{URL: srv.URL + "/empty.bin", Directory: dir})

	require.NoError(t, o.Err)
	info, err := os.Stat(o.Result)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
	assert.Len(t, listDir(t, dir), 1)
}

func TestDownload_MultipleChoicesIsSaved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMultipleChoices)
		_, _ = w.Write([]byte("choices"))
	}))
	defer srv.Close()

	o := newTestDownloader(t).Download(context.Background(), config.DownloadTarget{URL: srv.URL + "/c.html", Directory: t.TempDir()})

	require.NoError(t, o.Err)
	data, err := os.ReadFile(o.Result)
	require.NoError(t, err)
	assert.Equal(t, "choices", string(data))
}

func TestDownload_LongNameIsTruncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()

	long := strings.Repeat("n", 50) + ".dat"
	o := newTestDownloader(t).Download(context.Background(), config.DownloadTarget{URL: srv.URL + "/" + long, Directory: t.TempDir()})

	require.NoError(t, o.Err)
	_, base := numeralOf(t, downloadNamePattern, filepath.Base(o.Result))
	assert.Equal(t, long[len(long)-40:], base)
}

func TestDownload_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	o := newTestDownloader(t, WithTimeout(50*time.Millisecond)).Download(context.Background(), config.DownloadTarget{URL: srv.URL, Directory: t.TempDir()})

	assert.ErrorIs(t, o.Err, context.DeadlineExceeded)
}

func TestDownload_MissingDirectory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "absent")
	o := newTestDownloader(t).Download(context.Background(), config.DownloadTarget{URL: srv.URL + "/x", Directory: dir})

	assert.Error(t, o.Err)
	assert.False(t, o.Succeeded())
}
