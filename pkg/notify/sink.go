package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Notification is a user-facing message rendered by a Sink.
type Notification struct {
	Title   string          `json:"title"`
	Body    string          `json:"body,omitempty"`
	Options json.RawMessage `json:"options,omitempty"`
}

// Sink renders notifications to the user. A Show error means the
// notification could not be displayed and should be queued for replay.
type Sink interface {
	Show(ctx context.Context, n Notification) error
}

// LogSink writes notifications to the structured log. It is the default
// sink and never fails.
type LogSink struct {
	logger *logrus.Logger
}

func NewLogSink(logger *logrus.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Show(ctx context.Context, n Notification) error {
	s.logger.WithFields(logrus.Fields{
		"title": n.Title,
		"body":  n.Body,
	}).Info("Notification")
	return nil
}

// WebhookSink POSTs notifications to a local endpoint, typically the UI
// shell's toast bridge. Display fails when the shell is not running.
type WebhookSink struct {
	url    string
	client *http.Client
	logger *logrus.Logger
}

func NewWebhookSink(url string, logger *logrus.Logger) *WebhookSink {
	return &WebhookSink{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

func (s *WebhookSink) Show(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned status %d", resp.StatusCode)
	}

	s.logger.WithField("title", n.Title).Debug("Notification delivered")
	return nil
}
