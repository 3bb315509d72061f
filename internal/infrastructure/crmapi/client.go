package crmapi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"CRMDashboard/internal/config"
	"CRMDashboard/internal/logging"
	"CRMDashboard/internal/ports"
)

const maxBodyBytes = 16 << 20

// Client reads collections from the CRM REST backend.
type Client struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
	logger     *slog.Logger
	recorder   ports.Recorder
	now        func() time.Time
}

var _ ports.CRMSource = (*Client)(nil)

// NewClient builds a client from configuration. recorder may be nil.
func NewClient(cfg config.APIConfig, logger *slog.Logger, recorder ports.Recorder) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, fmt.Errorf("crm api base url is empty")
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse crm api base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL:    base,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.Component(logger, "crmapi"),
		recorder:   recorder,
		now:        time.Now,
	}, nil
}

// get issues a GET against a path relative to the base URL and returns the body.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	endpoint := c.baseURL.ResolveReference(&url.URL{Path: path, RawQuery: query.Encode()})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("get %s: unexpected status %s: %s", path, resp.Status, strings.TrimSpace(string(snippet)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return body, nil
}

// fetchPage GETs a list endpoint and normalizes its envelope.
func fetchPage[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	body, err := c.get(ctx, path, query)
	if err != nil {
		return nil, err
	}

	page := DecodePage[T](body)
	if page.Skipped > 0 {
		c.logger.Warn("skipped malformed records", "path", path, "skipped", page.Skipped)
	}
	return page.Items, nil
}
