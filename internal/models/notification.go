package models

import (
	"encoding/json"
	"time"
)

// QueuedNotification is a user-facing notification that could not be
// displayed when it was generated and is waiting for the next replay pass.
// Notifications carry the same bounded retry bookkeeping as actions so a
// permanently failing display path cannot grow the partition forever.
type QueuedNotification struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Body       string          `json:"body,omitempty"`
	Options    json.RawMessage `json:"options,omitempty"`
	RetryCount int             `json:"retryCount"`
	MaxRetries int             `json:"maxRetries"`
	CreatedAt  time.Time       `json:"createdAt"`
}
