package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/creditmesh/netview/internal/domain/model"
)

const defaultHTTPTimeout = 30 * time.Second

// HTTPClient fetches snapshots and clearing cycles from an upstream console
// backend over JSON.
type HTTPClient struct {
	base   string
	client *http.Client
}

// HTTPOption applies a configuration option to the HTTPClient.
type HTTPOption func(*HTTPClient)

// WithHTTPTimeout overrides the request timeout.
func WithHTTPTimeout(d time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		if hc != nil {
			c.client = hc
		}
	}
}

// NewHTTPClient creates an HTTP source client for the given base URL.
func NewHTTPClient(base string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadSnapshot requests GET {base}/snapshot with the filters as query
// parameters.
func (c *HTTPClient) LoadSnapshot(ctx context.Context, f Filters) (*model.Snapshot, error) {
	q := url.Values{}
	if f.Equivalent != "" {
		q.Set("equivalent", f.Equivalent)
	}
	if f.FocusPID != "" {
		q.Set("focus", f.FocusPID)
		q.Set("depth", strconv.Itoa(f.FocusDepth))
	}

	endpoint := c.base + "/snapshot"
	if enc := q.Encode(); enc != "" {
		endpoint += "?" + enc
	}

	var snap model.Snapshot
	if err := c.getJSON(ctx, endpoint, &snap); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotLoad, err)
	}
	return &snap, nil
}

// FetchClearingCycles requests GET {base}/participants/{pid}/cycles.
func (c *HTTPClient) FetchClearingCycles(ctx context.Context, pid string) ([]model.ClearingCycle, error) {
	endpoint := c.base + "/participants/" + url.PathEscape(pid) + "/cycles"

	var cycles []model.ClearingCycle
	if err := c.getJSON(ctx, endpoint, &cycles); err != nil {
		return nil, err
	}
	return cycles, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrUnknownPID
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request %s: unexpected status %d", endpoint, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}
