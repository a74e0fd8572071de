package exports

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hippo-backend/internal/shared/apperr"
)

const maxResponseBody = 64 << 10

// GASClient posts export batches to the spreadsheet/drive web app.
type GASClient struct {
	url        string
	secret     string
	httpClient *http.Client
}

// NewGASClient returns nil when the endpoint is not configured.
func NewGASClient(endpoint, secret string) *GASClient {
	if strings.TrimSpace(endpoint) == "" || strings.TrimSpace(secret) == "" {
		return nil
	}
	return &GASClient{
		url:    endpoint,
		secret: secret,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Send posts payload and returns the raw response text.
func (c *GASClient) Send(ctx context.Context, payload Payload) (string, error) {
	endpoint, err := url.Parse(c.url)
	if err != nil {
		return "", fmt.Errorf("parse export url: %w", err)
	}
	q := endpoint.Query()
	q.Set("secret", c.secret)
	endpoint.RawQuery = q.Encode()

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperr.Upstream("export request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", apperr.Upstream("export response unreadable", err)
	}
	text := string(raw)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apperr.Upstream("GAS error", fmt.Errorf("status %d: %s", resp.StatusCode, text))
	}
	return text, nil
}
