// Package apt retrieves package index files from apt repositories.
//
// A repository publishes its binary package listing as a gzip-compressed
// control file at <base>/Packages.gz, e.g.
//
//	http://archive.ubuntu.com/ubuntu/dists/focal/main/binary-amd64/Packages.gz
//
// The client downloads and decompresses that file, caching the decoded
// text so repeated invocations against the same repository skip the
// network entirely.
package apt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/aptgraph/aptgraph/pkg/cache"
)

const (
	indexFile   = "Packages.gz"
	httpTimeout = 60 * time.Second

	retryAttempts = 3
	retryDelay    = time.Second
)

// DefaultCacheTTL is how long a fetched index stays fresh. Repository
// metadata for a released distribution changes on the order of days.
const DefaultCacheTTL = 24 * time.Hour

// Client fetches package indexes over HTTP with caching and retries.
// It is safe for concurrent use.
type Client struct {
	http  *http.Client
	cache cache.Cache
	ttl   time.Duration

	// retry knobs, overridable in tests
	attempts int
	delay    time.Duration
}

// NewClient creates a Client using the given cache backend. Pass
// cache.NewNullCache() to disable caching.
func NewClient(c cache.Cache, ttl time.Duration) *Client {
	return &Client{
		http:     &http.Client{Timeout: httpTimeout},
		cache:    c,
		ttl:      ttl,
		attempts: retryAttempts,
		delay:    retryDelay,
	}
}

// FetchIndex downloads and decompresses the Packages.gz index of the
// repository at repoURL, returning the decoded text. If refresh is
// false, a cached copy is returned when available.
//
// Failures are wrapped in ErrFetch. Transport errors and 5xx responses
// are retried with exponential backoff before giving up.
func (c *Client) FetchIndex(ctx context.Context, repoURL string, refresh bool) (string, error) {
	url := strings.TrimRight(repoURL, "/") + "/" + indexFile

	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, url); ok {
			return string(data), nil
		}
	}

	var text string
	err := retry(ctx, c.attempts, c.delay, func() error {
		var err error
		text, err = c.download(ctx, url)
		return err
	})
	if err != nil {
		return "", err
	}

	_ = c.cache.Set(ctx, url, []byte(text), c.ttl)
	return text, nil
}

func (c *Client) download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &retryableError{err: fmt.Errorf("%w: %v", ErrFetch, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: %s: status %d", ErrFetch, url, resp.StatusCode)
		if resp.StatusCode >= 500 {
			return "", &retryableError{err: err}
		}
		return "", err
	}

	text, err := decompress(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: decompress %s: %v", ErrFetch, url, err)
	}
	return text, nil
}

// ReadIndexFile reads a package index from a local file instead of the
// network. Files ending in .gz are decompressed; anything else is
// treated as plain control text.
func ReadIndexFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer f.Close()

	if !strings.HasSuffix(path, ".gz") {
		data, err := io.ReadAll(f)
		if err != nil {
			return "", fmt.Errorf("%w: read %s: %v", ErrFetch, path, err)
		}
		return string(data), nil
	}

	text, err := decompress(f)
	if err != nil {
		return "", fmt.Errorf("%w: decompress %s: %v", ErrFetch, path, err)
	}
	return text, nil
}

func decompress(r io.Reader) (string, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return "", err
	}
	defer gz.Close()

	data, err := io.ReadAll(gz)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
