// Package matdb fetches reference crystal structures from an external
// materials database over HTTP.
package matdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"surfgen/internal/core"
)

// Client resolves an external material identifier (e.g. "mp-30") to its
// bulk crystal structure. Every failure satisfies
// errors.Is(err, core.ErrRemoteLookup).
type Client interface {
	FetchBulkStructure(ctx context.Context, externalID string) (core.Structure, error)
}

// HTTPClient is the production Client. Transient failures (network errors,
// 5xx, 429) are retried with exponential backoff; definitive answers (404,
// auth rejection) are not.
type HTTPClient struct {
	Endpoint   string
	APIKey     string
	HTTP       *http.Client
	MaxRetries uint64
}

// NewHTTPClient builds a client for the database at endpoint.
func NewHTTPClient(endpoint, apiKey string) *HTTPClient {
	return &HTTPClient{
		Endpoint:   strings.TrimRight(endpoint, "/"),
		APIKey:     apiKey,
		HTTP:       &http.Client{Timeout: 30 * time.Second},
		MaxRetries: 4,
	}
}

func (c *HTTPClient) FetchBulkStructure(ctx context.Context, externalID string) (core.Structure, error) {
	if externalID == "" {
		return core.Structure{}, core.InvalidParameterf("empty material id")
	}
	if c.Endpoint == "" {
		return core.Structure{}, core.RemoteLookupf("material %s: database endpoint not configured", externalID)
	}

	var doc core.Document
	op := func() error {
		return c.fetch(ctx, externalID, &doc)
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.MaxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return core.Structure{}, core.RemoteLookupf("material %s: %v", externalID, err)
	}

	s, err := core.DocumentToStructure(doc)
	if err != nil {
		return core.Structure{}, core.RemoteLookupf("material %s: %v", externalID, err)
	}
	return s, nil
}

// fetch performs one attempt. Errors wrapped in backoff.Permanent stop the
// retry loop immediately.
func (c *HTTPClient) fetch(ctx context.Context, externalID string, doc *core.Document) error {
	url := fmt.Sprintf("%s/v1/materials/%s/structure", c.Endpoint, externalID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	if c.APIKey != "" {
		req.Header.Set("X-API-Key", c.APIKey)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(doc); err != nil {
			return backoff.Permanent(fmt.Errorf("decoding structure: %w", err))
		}
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return backoff.Permanent(fmt.Errorf("not found"))
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return backoff.Permanent(fmt.Errorf("authentication rejected (status %d)", resp.StatusCode))
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("status %d", resp.StatusCode)
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return backoff.Permanent(fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))))
	}
}
