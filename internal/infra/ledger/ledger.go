// Package ledger tracks time-boxed demo access grants on top of the local
// storage gateway.
package ledger

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"healthcare-storefront/internal/domain/model"
	"healthcare-storefront/internal/infra/kv"
)

const keyPrefix = "demo_access:"

// Ledger grants, queries and expires trial tokens, one active grant per
// product. Expired grants are deleted lazily on the next read, never swept
// proactively outside of the explicit startup sweep.
type Ledger struct {
	kv    *kv.Gateway
	clock func() time.Time
	log   *zerolog.Logger
}

func New(gateway *kv.Gateway, clock func() time.Time, logger *zerolog.Logger) *Ledger {
	if clock == nil {
		clock = time.Now
	}
	l := logger.With().Str("component", "demo-ledger").Logger()
	return &Ledger{kv: gateway, clock: clock, log: &l}
}

// Grant issues a fresh 24h grant for the product, overwriting any prior grant
// for the same product.
func (l *Ledger) Grant(ctx context.Context, product, targetURL string) (*model.DemoGrant, error) {
	g, err := model.NewDemoGrant(product, targetURL, l.clock())
	if err != nil {
		return nil, err
	}
	l.kv.SetJSON(ctx, keyPrefix+product, g)
	l.log.Info().Str("product", product).Time("expires_at", g.ExpiresAt).Msg("demo access granted")
	return g, nil
}

// Get returns the active grant for a product, deleting it lazily when it has
// already expired.
func (l *Ledger) Get(ctx context.Context, product string) *model.DemoGrant {
	var g model.DemoGrant
	if !l.kv.GetJSON(ctx, keyPrefix+product, &g) {
		return nil
	}
	if g.IsExpired(l.clock()) {
		l.kv.Remove(ctx, keyPrefix+product)
		return nil
	}
	return &g
}

// IsExpired reports whether the grant has run out against the ledger's clock.
func (l *Ledger) IsExpired(g *model.DemoGrant) bool {
	return g.IsExpired(l.clock())
}

// SweepExpired enumerates all persisted grants, deletes the expired ones and
// calls visit for each grant that is still valid. Called once per session
// load so the UI can restore "active" trial controls.
func (l *Ledger) SweepExpired(ctx context.Context, visit func(*model.DemoGrant)) int {
	removed := 0
	for _, key := range l.kv.Keys(ctx, keyPrefix) {
		var g model.DemoGrant
		if !l.kv.GetJSON(ctx, key, &g) {
			continue
		}
		if g.IsExpired(l.clock()) {
			l.kv.Remove(ctx, key)
			removed++
			continue
		}
		if visit != nil {
			visit(&g)
		}
	}
	if removed > 0 {
		l.log.Info().Int("count", removed).Msg("expired demo grants removed")
	}
	return removed
}
