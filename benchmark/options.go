package benchmark

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"storagebench/config"
)

// Option configures an uploader or a downloader.
type Option func(*transferConfig)

type transferConfig struct {
	now          Clock
	names        *NameGenerator
	log          logrus.FieldLogger
	httpClient   *http.Client
	maxRedirects int
	timeout      time.Duration
}

func newTransferConfig(opts []Option) *transferConfig {
	cfg := &transferConfig{
		now:          time.Now,
		maxRedirects: config.DefaultMaxRedirects,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.names == nil {
		cfg.names = NewNameGenerator()
	}
	if cfg.log == nil {
		cfg.log = logrus.StandardLogger()
	}
	return cfg
}

// WithClock replaces time.Now for trial timing.
func WithClock(now Clock) Option {
	return func(c *transferConfig) { c.now = now }
}

// WithNames sets the generator for object keys and download file names.
func WithNames(names *NameGenerator) Option {
	return func(c *transferConfig) { c.names = names }
}

// WithLogger sets the logger failures are reported to.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *transferConfig) { c.log = log }
}

// WithHTTPClient sets the client used for downloads and storage requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *transferConfig) { c.httpClient = client }
}

// WithMaxRedirects bounds the redirect hops of one download.
func WithMaxRedirects(n int) Option {
	return func(c *transferConfig) { c.maxRedirects = n }
}

// WithTimeout bounds a single transfer. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *transferConfig) { c.timeout = d }
}
