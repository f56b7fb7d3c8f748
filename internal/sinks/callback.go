package sinks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/spacesedan/moodflow/internal/models"
)

const userAgent = "moodflow-callback/1.0"

// CallbackSink POSTs the bare EmotionResult as JSON to a caller-supplied URL.
type CallbackSink struct {
	client *http.Client
	url    string
}

func NewCallbackSink(client *http.Client, url string, timeout time.Duration) *CallbackSink {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &CallbackSink{client: client, url: url}
}

func (c *CallbackSink) Send(ctx context.Context, result models.SessionEmotionResult) error {
	body, err := json.Marshal(result.EmotionResult)
	if err != nil {
		return fmt.Errorf("failed to marshal callback body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("callback request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("callback returned status code %d", resp.StatusCode)
	}

	slog.Debug("[CallbackSink] Result delivered",
		slog.String("url", c.url),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}
