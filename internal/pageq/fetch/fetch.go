// Package fetch retrieves check documents from local files or HTTP URLs.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pageq/pageq/internal/pageq/dom"
)

// ErrFetch indicates a document retrieval failure.
var ErrFetch = errors.New("fetch failed")

// Fetcher loads documents. Remote fetches share a rate limiter so repeated
// runs against live pages stay polite.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	baseDir string
}

// New creates a fetcher. requestsPerSecond of 0 or less disables rate
// limiting; baseDir anchors relative document paths.
func New(client *http.Client, requestsPerSecond float64, baseDir string) *Fetcher {
	return &Fetcher{
		client:  client,
		limiter: newRateLimiter(requestsPerSecond),
		baseDir: baseDir,
	}
}

func newRateLimiter(requestsPerSecond float64) *rate.Limiter {
	if requestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
}

// IsURL reports whether a document reference is remote.
func IsURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// Document retrieves and parses a document reference: an http(s) URL or a
// file path, relative paths resolved against the configured base directory.
func (f *Fetcher) Document(ctx context.Context, ref string) (*dom.Document, error) {
	if IsURL(ref) {
		return f.remote(ctx, ref)
	}
	return f.local(ref)
}

func (f *Fetcher) local(path string) (*dom.Document, error) {
	if !filepath.IsAbs(path) && f.baseDir != "" {
		path = filepath.Join(f.baseDir, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer file.Close()

	doc, err := dom.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, path, err)
	}
	return doc, nil
}

func (f *Fetcher) remote(ctx context.Context, url string) (*dom.Document, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiting interrupted: %v", ErrFetch, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrFetch, url, resp.StatusCode)
	}

	doc, err := dom.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, url, err)
	}
	return doc, nil
}
