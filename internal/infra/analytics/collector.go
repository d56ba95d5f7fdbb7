// Package analytics batches behavioral events and ships them to the
// analytics endpoint, falling back to local storage when delivery fails.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"healthcare-storefront/internal/infra/kv"
	"healthcare-storefront/internal/infra/metrics"
)

const (
	userIDKey   = "storefront_user_id"
	fallbackKey = "storefront_analytics"

	// Oldest events are discarded beyond this cap.
	fallbackCap = 100

	endpointURL = "http://storefront.local/api/analytics/events"
)

// Event categories that flush immediately instead of waiting for the ticker.
var criticalCategories = map[string]bool{
	"error":      true,
	"payment":    true,
	"conversion": true,
}

// Event is a single tracked occurrence.
type Event struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id"`
	UserID    string         `json:"user_id"`
	Timestamp int64          `json:"timestamp"`
	Category  string         `json:"category"`
	Action    string         `json:"action"`
	Data      map[string]any `json:"data,omitempty"`
}

// Collector accumulates events per browser-equivalent session. The session id
// is fresh per process; the user id persists across runs through the storage
// gateway.
type Collector struct {
	client     *http.Client
	gw         *kv.Gateway
	log        *zerolog.Logger
	clock      func() time.Time
	flushEvery time.Duration
	entropy    *ulid.MonotonicEntropy

	sessionID string
	userID    string

	mu     sync.Mutex
	events []Event
}

func New(ctx context.Context, client *http.Client, gateway *kv.Gateway, flushEvery time.Duration, logger *zerolog.Logger) *Collector {
	l := logger.With().Str("component", "analytics").Logger()
	c := &Collector{
		client:     client,
		gw:         gateway,
		log:        &l,
		clock:      time.Now,
		flushEvery: flushEvery,
		entropy:    ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
	c.sessionID = "session_" + c.newULID()
	c.userID = c.loadOrCreateUserID(ctx)
	return c
}

func (c *Collector) newULID() string {
	return ulid.MustNew(ulid.Timestamp(c.clock()), c.entropy).String()
}

func (c *Collector) loadOrCreateUserID(ctx context.Context) string {
	var id string
	if c.gw.GetJSON(ctx, userIDKey, &id) && id != "" {
		return id
	}
	id = "user_" + c.newULID()
	c.gw.SetJSON(ctx, userIDKey, id)
	return id
}

// SessionID returns the per-process session identifier.
func (c *Collector) SessionID() string { return c.sessionID }

// UserID returns the persistent user identifier.
func (c *Collector) UserID() string { return c.userID }

// Track queues an event. Critical categories flush the queue immediately.
func (c *Collector) Track(ctx context.Context, category, action string, data map[string]any) {
	ev := Event{
		ID:        c.newULID(),
		SessionID: c.sessionID,
		UserID:    c.userID,
		Timestamp: c.clock().UnixMilli(),
		Category:  category,
		Action:    action,
		Data:      data,
	}

	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()

	if criticalCategories[category] {
		c.Flush(ctx)
	}
}

// Flush ships queued events in one batch. Delivery is best effort: on any
// failure the batch lands in the local fallback queue and is not retried over
// the network.
func (c *Collector) Flush(ctx context.Context) {
	c.mu.Lock()
	if len(c.events) == 0 {
		c.mu.Unlock()
		return
	}
	batch := c.events
	c.events = nil
	c.mu.Unlock()

	payload, err := json.Marshal(map[string]any{"events": batch})
	if err != nil {
		c.log.Warn().Err(err).Msg("analytics batch marshal failed")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL, bytes.NewReader(payload))
	if err != nil {
		c.storeLocally(ctx, batch)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.storeLocally(ctx, batch)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.storeLocally(ctx, batch)
		return
	}
	c.log.Debug().Int("count", len(batch)).Msg("analytics batch delivered")
}

// storeLocally appends undeliverable events to the capped fallback queue,
// dropping the oldest entries past the cap.
func (c *Collector) storeLocally(ctx context.Context, batch []Event) {
	var stored []Event
	c.gw.GetJSON(ctx, fallbackKey, &stored)
	stored = append(stored, batch...)
	if over := len(stored) - fallbackCap; over > 0 {
		stored = stored[over:]
		metrics.IncAnalyticsDropped(over)
	}
	c.gw.SetJSON(ctx, fallbackKey, stored)
	c.log.Debug().Int("queued", len(stored)).Msg("analytics batch stored locally")
}

// Stored returns the events currently parked in the fallback queue.
func (c *Collector) Stored(ctx context.Context) []Event {
	var stored []Event
	c.gw.GetJSON(ctx, fallbackKey, &stored)
	return stored
}

// Run flushes on a fixed cadence until the context ends, then flushes one
// last time.
func (c *Collector) Run(ctx context.Context) {
	ticker := time.NewTicker(c.flushEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			c.Flush(context.Background())
			return
		case <-ticker.C:
			c.Flush(ctx)
		}
	}
}

// PurchaseAttempt records a started payment attempt.
func (c *Collector) PurchaseAttempt(planID, planName string, price float64, method string) {
	c.Track(context.Background(), "payment", "purchase_attempt", map[string]any{
		"plan_id":   planID,
		"plan_name": planName,
		"price":     price,
		"method":    method,
	})
}

// PurchaseSuccess records a completed purchase.
func (c *Collector) PurchaseSuccess(txnID, planID, planName string, price float64, method string) {
	c.Track(context.Background(), "conversion", "purchase_success", map[string]any{
		"transaction_id": txnID,
		"plan_id":        planID,
		"plan_name":      planName,
		"price":          price,
		"method":         method,
	})
}

// DemoAccess records a granted trial.
func (c *Collector) DemoAccess(product string) {
	c.Track(context.Background(), "business", "demo_access_granted", map[string]any{
		"product": product,
	})
}
