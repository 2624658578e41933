package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const yandexModel = "yandexgpt"

// YandexOptions tune the Yandex client. Zero values pick defaults.
type YandexOptions struct {
	MaxRetries  int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	HTTPTimeout time.Duration
	MaxTokens   int
}

func (o YandexOptions) withDefaults() YandexOptions {
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = 800 * time.Millisecond
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = 6 * time.Second
	}
	if o.HTTPTimeout <= 0 {
		o.HTTPTimeout = 30 * time.Second
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = 2000
	}
	return o
}

// YandexClient calls the Yandex GPT completion endpoint. The response is
// treated as a failure when the result field is absent or empty.
type YandexClient struct {
	httpClient *http.Client
	url        string
	apiKey     string
	folderID   string
	opts       YandexOptions
}

// NewYandexClient builds a client for the given endpoint and credentials.
func NewYandexClient(url, apiKey, folderID string, opts YandexOptions) (*YandexClient, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("url is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("apiKey is required")
	}
	if strings.TrimSpace(folderID) == "" {
		return nil, fmt.Errorf("folderID is required")
	}
	opts = opts.withDefaults()
	return &YandexClient{
		httpClient: &http.Client{Timeout: opts.HTTPTimeout},
		url:        url,
		apiKey:     strings.TrimSpace(apiKey),
		folderID:   strings.TrimSpace(folderID),
		opts:       opts,
	}, nil
}

// Summarize sends the comment and returns the extracted key points.
// Transient failures are retried with capped exponential backoff.
func (c *YandexClient) Summarize(ctx context.Context, comment string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.opts.MaxRetries; attempt++ {
		out, err := c.summarizeOnce(ctx, comment)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if attempt == c.opts.MaxRetries {
			break
		}

		delay := c.opts.BaseDelay * time.Duration(1<<(attempt-1))
		if delay > c.opts.MaxDelay {
			delay = c.opts.MaxDelay
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	return "", lastErr
}

func (c *YandexClient) summarizeOnce(ctx context.Context, comment string) (string, error) {
	payload := map[string]any{
		"model":     yandexModel,
		"folderId":  c.folderID,
		"prompt":    SummaryPrompt + comment,
		"maxTokens": c.opts.MaxTokens,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Api-Key "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("yandex gpt status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	result := strings.TrimSpace(gjson.GetBytes(respBody, "result").String())
	if result == "" {
		return "", fmt.Errorf("yandex gpt returned no result")
	}
	return result, nil
}
