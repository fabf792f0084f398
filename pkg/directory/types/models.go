package types

import (
	"encoding/json"
	"time"
)

// ClientConfig configures the directory API client.
type ClientConfig struct {
	BaseURL      string
	HealthPath   string
	Timeout      time.Duration
	ProbeTimeout time.Duration
}

// ReplayRequest is a single mutation sent to the directory API, either as
// an immediate online attempt or as a queued-action replay.
type ReplayRequest struct {
	Method         string
	URL            string
	Body           json.RawMessage
	Token          string
	IdempotencyKey string
}

// ReplayResponse carries the outcome of a replay request. StatusCode is
// always set when the request reached the server, even on non-2xx.
type ReplayResponse struct {
	StatusCode int
	Body       json.RawMessage
}
