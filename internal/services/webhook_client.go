package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// WebhookClient delivers marketplace notifications to an external
// endpoint (chat bridge, email gateway). Used by the notify-bridge
// binary.
type WebhookClient struct {
	url        string
	httpClient *http.Client
	log        *zap.Logger
}

func NewWebhookClient(url string, log *zap.Logger) *WebhookClient {
	return &WebhookClient{
		url: strings.TrimRight(url, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log,
	}
}

type Notification struct {
	Kind      string         `json:"kind"`
	Recipient string         `json:"recipient,omitempty"` // wallet address, empty for broadcast
	Payload   map[string]any `json:"payload"`
}

// Send posts one notification, retrying transient failures twice.
func (c *WebhookClient) Send(ctx context.Context, n Notification) error {
	if c.url == "" {
		return nil
	}
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/notify", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("webhook unavailable: %w", err)
			continue
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			resp.Body.Close()
			return nil
		}
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("webhook returned %d: %s", resp.StatusCode, string(respBody))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			break // not retryable
		}
	}
	c.log.Warn("notification delivery failed", zap.String("kind", n.Kind), zap.Error(lastErr))
	return lastErr
}
