package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/dtnitsch/sweep-schedules/pkg/caching"
)

// Fetcher downloads source documents and hands back a local file path,
// which is what the PDF reader needs.
type Fetcher struct {
	client *http.Client
	cache  *caching.Cache
}

func NewFetcher(cache *caching.Cache) *Fetcher {
	return &Fetcher{
		client: &http.Client{},
		cache:  cache,
	}
}

// Fetch returns a local path for rawURL. Local paths and file:// URLs are
// used in place; remote documents are downloaded into the cache unless a
// fresh copy is already there.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	switch u.Scheme {
	case "", "file":
		path := u.Path
		if u.Scheme == "" {
			path = rawURL
		}
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("failed to open local document: %w", err)
		}
		return path, nil
	}

	if f.cache.Fresh(rawURL) {
		return f.cache.Path(rawURL), nil
	}

	body, err := f.GetBytes(ctx, rawURL)
	if err != nil {
		return "", err
	}
	if err := f.cache.Set(rawURL, body); err != nil {
		return "", err
	}
	return f.cache.Path(rawURL), nil
}

// GetBytes downloads rawURL and returns the body.
func (f *Fetcher) GetBytes(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch document, status code: %d", resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return bodyBytes, nil
}
