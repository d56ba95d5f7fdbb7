package adapter

import "context"

// PaymentBackend fabricates gateway-shaped responses in place of a real
// server. Every call is preceded by an artificial latency window; the backend
// never mutates persisted state.
type PaymentBackend interface {
	// SimulateRequest routes an endpoint path plus JSON payload to a handler
	// and returns the fabricated JSON response body.
	SimulateRequest(ctx context.Context, endpoint string, payload []byte) ([]byte, error)
}
