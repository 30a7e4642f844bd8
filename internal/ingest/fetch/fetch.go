// Package fetch downloads the published incident datasets over HTTP with
// retry and rate limiting. HDX throttles aggressive clients, so downloads go
// through a shared limiter and back off exponentially on failures.
package fetch

import (
	"context"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Options configures the dataset fetcher.
type Options struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	// RequestsPerSecond caps the request rate against the data host.
	RequestsPerSecond float64
}

// Fetcher downloads dataset files with retry and rate limiting.
type Fetcher struct {
	client  *http.Client
	opts    Options
	limiter *rate.Limiter
}

// New creates a Fetcher with the given options, filling in defaults.
func New(opts Options) *Fetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "insecurity-dashboard/1.0"
	}
	if opts.RequestsPerSecond == 0 {
		opts.RequestsPerSecond = 2
	}
	return &Fetcher{
		client:  &http.Client{Timeout: opts.Timeout},
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 2),
	}
}

// Download fetches the URL and returns the response body.
func (f *Fetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.doWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, eris.Errorf("fetch: unexpected status %d from %s", resp.StatusCode, rawURL)
	}
	return resp.Body, nil
}

// DownloadToFile fetches the URL and writes it to path, returning the number
// of bytes written.
func (f *Fetcher) DownloadToFile(ctx context.Context, rawURL, path string) (int64, error) {
	body, err := f.Download(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	defer body.Close() //nolint:errcheck

	file, err := os.Create(path)
	if err != nil {
		return 0, eris.Wrap(err, "fetch: create file")
	}
	defer file.Close() //nolint:errcheck

	n, err := io.Copy(file, body)
	if err != nil {
		return n, eris.Wrap(err, "fetch: write file")
	}
	return n, nil
}

func (f *Fetcher) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := range f.opts.MaxRetries {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "fetch: rate limiter wait")
		}

		resp, err := f.client.Do(req.Clone(ctx))
		if err != nil {
			lastErr = err
			zap.L().Warn("fetch: request failed, retrying",
				zap.String("url", req.URL.String()),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			f.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("fetch: http %d from %s", resp.StatusCode, req.URL.String())
			zap.L().Warn("fetch: server busy, retrying",
				zap.String("url", req.URL.String()),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			f.backoff(ctx, attempt)
			continue
		}

		return resp, nil
	}
	return nil, eris.Wrap(lastErr, "fetch: all retries exhausted")
}

func (f *Fetcher) backoff(ctx context.Context, attempt int) {
	base := time.Second
	maxBackoff := 30 * time.Second
	d := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	if d > maxBackoff {
		d = maxBackoff
	}
	d += time.Duration(rand.Int64N(int64(d) / 2))

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
