// Package fetch retrieves page content over HTTP, retrying transient
// failures with an exponential backoff.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Result is the outcome of a successful fetch.
type Result struct {
	URL         string
	ContentType string
	Body        []byte
}

// Fetcher retrieves URLs over HTTP with a bounded number of retries on
// transient (5xx, network) errors.
type Fetcher struct {
	Client     *http.Client
	UserAgent  string
	MaxRetries uint64
}

// New returns a Fetcher with the given timeout and retry budget.
func New(timeout time.Duration, maxRetries uint64, userAgent string) *Fetcher {
	return &Fetcher{
		Client:     &http.Client{Timeout: timeout},
		UserAgent:  userAgent,
		MaxRetries: maxRetries,
	}
}

// Get fetches url, retrying on transient errors up to MaxRetries times.
func (f *Fetcher) Get(ctx context.Context, url string) (Result, error) {
	var result Result

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		if f.UserAgent != "" {
			req.Header.Set("User-Agent", f.UserAgent)
		}

		resp, err := f.Client.Do(req)
		if err != nil {
			return err // network errors are retried
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("fetch %s: server error %d", url, resp.StatusCode)
		}
		if resp.StatusCode >= 400 {
			return backoff.Permanent(fmt.Errorf("fetch %s: client error %d", url, resp.StatusCode))
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		result = Result{
			URL:         url,
			ContentType: resp.Header.Get("Content-Type"),
			Body:        body,
		}
		return nil
	}

	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), f.MaxRetries)
	bo = backoff.WithContext(bo, ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return Result{}, err
	}
	return result, nil
}
