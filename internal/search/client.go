// Package search indexes published events into a Meilisearch-compatible
// search service shared with the rest of the site.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/parish-calendar/backend/internal/config"
)

// IndexName is the shared site search index events are published into.
const IndexName = "parish_search"

// Connection holds the resolved search service endpoint.
type Connection struct {
	URL string
	Key string
}

// Configured reports whether indexing is enabled. An unconfigured connection
// disables indexing silently; it is not an error.
func (c Connection) Configured() bool {
	return c.URL != "" && c.Key != ""
}

// ResolveConnection looks up the search endpoint through the settings
// provider. The site-wide search settings are tried first, then the
// events-specific fallbacks.
func ResolveConnection(ctx context.Context, settings config.Provider) Connection {
	url, ok := settings.Get(ctx, config.KeySearchAPIURL)
	if !ok {
		url, _ = settings.Get(ctx, config.KeyEventsAPIURL)
	}

	key, ok := settings.Get(ctx, config.KeySearchAdminKey)
	if !ok {
		key, _ = settings.Get(ctx, config.KeyEventsAdminKey)
	}

	return Connection{URL: strings.TrimRight(url, "/"), Key: key}
}

// Client is a minimal client for the search service's document API.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a search API client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// IndexDocuments adds or replaces documents in the index.
func (c *Client) IndexDocuments(ctx context.Context, conn Connection, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	body, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("encoding documents: %w", err)
	}

	url := fmt.Sprintf("%s/indexes/%s/documents", conn.URL, IndexName)
	return c.do(ctx, conn, http.MethodPut, url, body)
}

// DeleteDocument removes a single document from the index.
func (c *Client) DeleteDocument(ctx context.Context, conn Connection, docID string) error {
	url := fmt.Sprintf("%s/indexes/%s/documents/%s", conn.URL, IndexName, docID)
	return c.do(ctx, conn, http.MethodDelete, url, nil)
}

func (c *Client) do(ctx context.Context, conn Connection, method, url string, body []byte) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("building search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+conn.Key)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling search service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("search service returned %d: %s", resp.StatusCode, msg)
	}

	// Drain so the connection can be reused.
	io.Copy(io.Discard, resp.Body)
	return nil
}
