// Package storage talks to the practice storage service.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/snow-ghost/validator/core"
	"github.com/snow-ghost/validator/pkg/limiter"
)

// ErrNotFound is returned when the storage service has no such record.
var ErrNotFound = errors.New("not found")

const service = "storage"

// Client is an HTTP client for the storage API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	protection *limiter.ProtectionManager
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithProtection routes calls through pm, which must know the "storage" service.
func WithProtection(pm *limiter.ProtectionManager) Option {
	return func(cl *Client) { cl.protection = pm }
}

// NewClient creates a client for the storage service at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.protection == nil {
		c.protection = limiter.NewProtectionManager(limiter.StoragePolicy())
	}
	return c
}

// GetPractice fetches one practice. Some deployments return the record as a
// JSON encoded string; both forms are accepted.
func (c *Client) GetPractice(ctx context.Context, id string) (core.Practice, error) {
	var practice core.Practice
	status, body, err := c.do(ctx, http.MethodGet, c.practiceURL(id), nil)
	if err != nil {
		return practice, fmt.Errorf("get practice %s: %w", id, err)
	}
	if status == http.StatusNotFound {
		return practice, fmt.Errorf("get practice %s: %w", id, ErrNotFound)
	}

	if err := decodePractice(body, &practice); err != nil {
		return practice, fmt.Errorf("get practice %s: %w", id, err)
	}
	if practice.ID == "" {
		practice.ID = id
	}
	return practice, nil
}

func decodePractice(body []byte, practice *core.Practice) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return fmt.Errorf("failed to decode practice string: %w", err)
		}
		trimmed = []byte(inner)
	}
	if err := json.Unmarshal(trimmed, practice); err != nil {
		return fmt.Errorf("failed to decode practice: %w", err)
	}
	return nil
}

// ListPracticeIDs returns the ids of every stored practice.
func (c *Client) ListPracticeIDs(ctx context.Context) ([]string, error) {
	status, body, err := c.do(ctx, http.MethodGet, c.baseURL+"/practices", nil)
	if err != nil {
		return nil, fmt.Errorf("list practices: %w", err)
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("list practices: %w", ErrNotFound)
	}

	var page struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to decode practice list: %w", err)
	}

	ids := make([]string, 0, len(page.Items))
	for _, item := range page.Items {
		if item.ID != "" {
			ids = append(ids, item.ID)
		}
	}
	return ids, nil
}

// UpsertValidation stores report as the validation of practice id, creating
// the record when none exists and patching it otherwise.
func (c *Client) UpsertValidation(ctx context.Context, id string, report core.ValidationReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal validation report: %w", err)
	}

	target := c.practiceURL(id) + "/validation"
	status, _, err := c.do(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("check validation %s: %w", id, err)
	}

	method := http.MethodPatch
	if status == http.StatusNotFound {
		method = http.MethodPost
	}
	status, _, err = c.do(ctx, method, target, payload)
	if err != nil {
		return fmt.Errorf("store validation %s: %w", id, err)
	}
	if status == http.StatusNotFound {
		return fmt.Errorf("store validation %s: %w", id, ErrNotFound)
	}

	slog.InfoContext(ctx, "validation stored", "practice_id", id, "method", method, "decision", report.Decision)
	return nil
}

func (c *Client) practiceURL(id string) string {
	return c.baseURL + "/practices/" + url.PathEscape(id)
}

type response struct {
	status int
	body   []byte
}

// do performs one protected request. 404 is returned as a status so callers
// can branch on it; other non-2xx answers become limiter.HTTPError.
func (c *Client) do(ctx context.Context, method, target string, payload []byte) (int, []byte, error) {
	resp, err := limiter.Do(ctx, c.protection, service, func(ctx context.Context) (response, error) {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, body)
		if err != nil {
			return response{}, fmt.Errorf("failed to create HTTP request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		httpResp, err := c.httpClient.Do(req)
		if err != nil {
			return response{}, fmt.Errorf("storage request failed: %w", err)
		}
		defer httpResp.Body.Close()

		data, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return response{}, fmt.Errorf("failed to read storage response: %w", err)
		}
		if httpResp.StatusCode == http.StatusNotFound || httpResp.StatusCode/100 == 2 {
			return response{status: httpResp.StatusCode, body: data}, nil
		}
		return response{}, limiter.NewHTTPError(httpResp.StatusCode, http.StatusText(httpResp.StatusCode), string(data))
	})
	if err != nil {
		return 0, nil, err
	}
	return resp.status, resp.body, nil
}
