package benchmark

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"storagebench/config"
)

// Downloader fetches a URL into a directory and times the transfer.
type Downloader struct {
	cfg *transferConfig
}

// NewDownloader creates a Downloader. Without WithHTTPClient it uses
// NewHTTPClient.
func NewDownloader(opts ...Option) (*Downloader, error) {
	cfg := newTransferConfig(opts)
	if cfg.httpClient == nil {
		client, err := NewHTTPClient()
		if err != nil {
			return nil, err
		}
		cfg.httpClient = client
	}
	return &Downloader{cfg: cfg}, nil
}

// Download performs one GET of target.URL, following up to the configured
// number of 301/302 redirects, and writes the body under target.Directory.
// It never returns an error: every problem becomes a failed Outcome.
func (d *Downloader) Download(ctx context.Context, target config.DownloadTarget) Outcome {
	log := d.cfg.log.WithField("url", target.URL)

	if d.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.timeout)
		defer cancel()
	}

	current := target.URL
	startedOn := d.cfg.now()

	for hops := 0; ; hops++ {
		resp, err := d.get(ctx, current)
		if err != nil {
			log.WithError(err).Warn("HTTP request error")
			return failed(KindDownload, err)
		}

		status := resp.StatusCode
		if status < http.StatusOK || status > http.StatusFound {
			drainAndClose(resp.Body)
			err := &StatusError{StatusCode: status, URL: current}
			log.WithField("status", status).Warn(err.Error())
			return failed(KindDownload, err)
		}

		if status == http.StatusMovedPermanently || status == http.StatusFound {
			location := resp.Header.Get("Location")
			drainAndClose(resp.Body)

			if location == "" {
				log.WithField("status", status).Warn("Redirection without destination")
				return failed(KindDownload, ErrMissingLocation)
			}
			if hops >= d.cfg.maxRedirects {
				log.WithField("hops", hops).Warn("Too many redirects")
				return failed(KindDownload, fmt.Errorf("%w: more than %d hops", ErrRedirectLimitExceeded, d.cfg.maxRedirects))
			}

			next, err := resolveLocation(current, location)
			if err != nil {
				log.WithError(err).Warn("Invalid redirect location")
				return failed(KindDownload, err)
			}
			log.WithFields(logrus.Fields{"status": status, "location": next}).Debug("Following redirect")
			current = next
			continue
		}

		return d.save(resp, target, current, startedOn, log)
	}
}

func (d *Downloader) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return d.cfg.httpClient.Do(req)
}

// save reads the body into memory, stops the clock and writes the file.
func (d *Downloader) save(resp *http.Response, target config.DownloadTarget, finalURL string, startedOn time.Time, log logrus.FieldLogger) Outcome {
	buf := getBuffer()
	defer putBuffer(buf)

	_, err := buf.ReadFrom(resp.Body)
	resp.Body.Close()
	if err != nil {
		log.WithError(err).Warn("Error reading response body")
		return failed(KindDownload, err)
	}
	finishedOn := d.cfg.now()

	output := filepath.Join(target.Directory, d.cfg.names.DownloadFileName(finalURL))
	if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
		log.WithError(err).WithField("output", output).Warn("Error writing downloaded file")
		return failed(KindDownload, err)
	}

	outcome := succeeded(KindDownload, startedOn, finishedOn, target.URL, output)
	if finalURL != target.URL {
		outcome.RedirectedTo = finalURL
	}
	return outcome
}

func resolveLocation(base, location string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	l, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("invalid Location %q: %w", location, err)
	}
	next := b.ResolveReference(l)
	if next.Scheme != "http" && next.Scheme != "https" {
		return "", fmt.Errorf("unsupported redirect scheme in %q", location)
	}
	return next.String(), nil
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	body.Close()
}
