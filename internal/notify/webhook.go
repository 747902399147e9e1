package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// WebhookPublisher POSTs race events as JSON
type WebhookPublisher struct {
	url    string
	token  string
	client *Client
}

// NewWebhookPublisher creates a publisher for url. An empty token sends no Authorization header.
func NewWebhookPublisher(url, token string, client *Client) *WebhookPublisher {
	return &WebhookPublisher{url: url, token: token, client: client}
}

// Name identifies the sink in logs and metrics
func (w *WebhookPublisher) Name() string {
	return "webhook"
}

// Publish delivers the event; any non-2xx response is an error
func (w *WebhookPublisher) Publish(ctx context.Context, event RaceEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling race event: %w", err)
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	if w.token != "" {
		headers.Set("Authorization", "Bearer "+w.token)
	}

	resp, err := w.client.Post(ctx, w.url, headers, body)
	if err != nil {
		return fmt.Errorf("posting race event: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded with status %d", resp.StatusCode)
	}
	return nil
}
