// Package robusthttp builds the outbound HTTP client used by the partner and
// template lookups: pooled transport, bounded retries and a hard timeout.
package robusthttp

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
)

// LeveledSlog lets retryablehttp log through slog. Intermediate failures are
// retried, so they are logged as WARN rather than ERROR.
type LeveledSlog struct {
	inner *slog.Logger
}

var _ retryablehttp.LeveledLogger = LeveledSlog{}

func (l LeveledSlog) Error(msg string, kv ...any) { l.inner.Warn(msg, kv...) }
func (l LeveledSlog) Warn(msg string, kv ...any)  { l.inner.Warn(msg, kv...) }
func (l LeveledSlog) Info(msg string, kv ...any)  { l.inner.Info(msg, kv...) }
func (l LeveledSlog) Debug(msg string, kv ...any) { l.inner.Debug(msg, kv...) }

type settings struct {
	rc      *retryablehttp.Client
	timeout time.Duration
}

type Option func(*settings)

func WithMaxRetries(n int) Option {
	return func(s *settings) { s.rc.RetryMax = n }
}

// WithRetryWait bounds the backoff between attempts.
func WithRetryWait(lo, hi time.Duration) Option {
	return func(s *settings) {
		s.rc.RetryWaitMin = lo
		s.rc.RetryWaitMax = hi
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.rc.Logger = LeveledSlog{inner: l} }
}

func WithTransport(rt http.RoundTripper) Option {
	return func(s *settings) { s.rc.HTTPClient.Transport = rt }
}

// WithTimeout bounds a whole request, retries included.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

// NewClient returns a stdlib *http.Client backed by retryablehttp. It retries
// connection errors and 5xx (except 501), never 4xx, and gives up after
// 2 retries or 10s overall by default.
func NewClient(opts ...Option) *http.Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient.Transport = cleanhttp.DefaultPooledTransport()
	rc.RetryMax = 2
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = LeveledSlog{inner: slog.Default().With("subsystem", "aimcache-http")}
	rc.CheckRetry = RetryPolicy

	s := &settings{rc: rc, timeout: 10 * time.Second}
	for _, o := range opts {
		o(s)
	}

	c := rc.StandardClient()
	c.Timeout = s.timeout
	return c
}

// RetryPolicy is retryablehttp.DefaultRetryPolicy except that 429 is handed
// back to the caller instead of being retried.
func RetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil && resp.StatusCode == http.StatusTooManyRequests {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}
