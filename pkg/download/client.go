// Package download fetches book archives: a catalog of available
// downloads, single-archive fetches, and a bounded-concurrency batch mode
// that feeds the import pipeline.
package download

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Download is one catalog entry: an archive available for fetching.
type Download struct {
	BookID        string `json:"bookId"`
	BookTitle     string `json:"bookTitle"`
	Volume        int    `json:"volume"`
	URL           string `json:"downloadUrl"`
	SizeFormatted string `json:"sizeFormatted"`
	Language      string `json:"language,omitempty"`
}

// DownloadError wraps a transport failure for one URL.
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string { return fmt.Sprintf("download %s: %v", e.URL, e.Err) }
func (e *DownloadError) Unwrap() error { return e.Err }

// Client fetches catalogs and archive blobs over HTTP. It makes no policy
// decisions beyond timeouts and size limits; callers decide what to fetch.
type Client struct {
	HTTP      *http.Client
	UserAgent string
	// MaxArchiveBytes caps a single archive read to avoid OOM from a
	// misbehaving server.
	MaxArchiveBytes int64
}

// NewClient returns a client with a 60s timeout and a 64 MB archive cap.
func NewClient() *Client {
	return &Client{
		HTTP:            &http.Client{Timeout: 60 * time.Second},
		UserAgent:       "hadith-hub",
		MaxArchiveBytes: 64 << 20,
	}
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &DownloadError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", c.UserAgent)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &DownloadError{URL: url, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &DownloadError{URL: url, Err: fmt.Errorf("status %s", resp.Status)}
	}
	return resp, nil
}

// Catalog fetches and decodes the available-download listing.
func (c *Client) Catalog(ctx context.Context, url string) ([]Download, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var entries []Download
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, &DownloadError{URL: url, Err: fmt.Errorf("decode catalog: %w", err)}
	}
	return entries, nil
}

// Fetch downloads one archive blob.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	limit := c.MaxArchiveBytes
	if limit <= 0 {
		limit = 64 << 20
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, &DownloadError{URL: url, Err: err}
	}
	if int64(len(data)) > limit {
		return nil, &DownloadError{URL: url, Err: fmt.Errorf("archive exceeds %d byte limit", limit)}
	}
	return data, nil
}
