package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ArticlePublisher/internal/domain"
)

const userAgent = "ArticlePublisher/1.0"

// Client talks to the commerce backend's JSON API.
type Client struct {
	endpoint    string
	storeURL    string
	accessToken string
	pageSize    int
	http        *http.Client
}

// NewClient builds a client; a nil httpClient gets a 20s timeout.
func NewClient(endpoint, storeURL, accessToken string, pageSize int, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	if pageSize <= 0 {
		pageSize = 250
	}
	return &Client{
		endpoint:    strings.TrimSuffix(endpoint, "/"),
		storeURL:    strings.TrimSuffix(storeURL, "/"),
		accessToken: accessToken,
		pageSize:    pageSize,
		http:        httpClient,
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload any, v any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", domain.ErrTransientIO, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		statusErr := fmt.Errorf("%s %s returned %s: %s", method, path, resp.Status, strings.TrimSpace(string(snippet)))
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %v", domain.ErrTransientIO, statusErr)
		}
		return statusErr
	}

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
