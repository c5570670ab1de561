package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPFetcher talks to the content-generation service over JSON HTTP.
type HTTPFetcher struct {
	url    string
	client *http.Client
}

// NewHTTPFetcher creates a fetcher for the service at the given base URL.
func NewHTTPFetcher(url string, timeoutSec int) *HTTPFetcher {
	if timeoutSec <= 0 {
		timeoutSec = 30
	}
	return &HTTPFetcher{
		url:    url,
		client: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}
}

// Thumbnail requests a thumbnail image URL for a topic.
func (f *HTTPFetcher) Thumbnail(ctx context.Context, topic string) (string, error) {
	var result struct {
		URL string `json:"url"`
	}
	if err := f.post(ctx, "/v1/thumbnail", map[string]any{"topic": topic}, &result); err != nil {
		return "", err
	}
	return result.URL, nil
}

// Script requests a narration script for a topic at the given difficulty.
func (f *HTTPFetcher) Script(ctx context.Context, topic string, difficulty int) (string, error) {
	var result struct {
		Script string `json:"script"`
	}
	req := map[string]any{"topic": topic, "difficulty": difficulty}
	if err := f.post(ctx, "/v1/script", req, &result); err != nil {
		return "", err
	}
	return result.Script, nil
}

func (f *HTTPFetcher) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", f.url+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("content api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("content api status %d: %s", resp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
