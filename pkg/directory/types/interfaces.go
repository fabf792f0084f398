package types

import "context"

// Client is the outbound surface to the directory REST API. The sync
// engine and the enqueue path share one implementation; tests substitute
// their own.
type Client interface {
	// Do sends the request and returns the response. A non-2xx status is
	// returned as an error alongside the response so callers can inspect
	// the status code.
	Do(ctx context.Context, req ReplayRequest) (*ReplayResponse, error)

	// Ping probes the API health endpoint. A nil error means the backend
	// is reachable, which the network monitor treats as "online".
	Ping(ctx context.Context) error
}
