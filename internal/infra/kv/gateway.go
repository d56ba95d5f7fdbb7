package kv

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"healthcare-storefront/internal/domain"
	"healthcare-storefront/internal/domain/ports/repository"
)

// Gateway is the local storage gateway: a thin JSON codec over the key/value
// port with silent-failure semantics. Losing a demo grant or a queued
// analytics event is non-fatal, so a broken store degrades every operation to
// a logged no-op instead of propagating ErrStorageUnavailable upward.
type Gateway struct {
	store repository.KeyValueStore
	log   *zerolog.Logger
}

func NewGateway(store repository.KeyValueStore, logger *zerolog.Logger) *Gateway {
	l := logger.With().Str("component", "kv-gateway").Logger()
	return &Gateway{store: store, log: &l}
}

// GetJSON decodes the value at key into out. Returns false when the key is
// absent, the store is unavailable, or the stored document is corrupt.
func (g *Gateway) GetJSON(ctx context.Context, key string, out any) bool {
	raw, err := g.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			g.log.Warn().Err(err).Str("key", key).Msg("storage read degraded to no-op")
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		g.log.Warn().Err(err).Str("key", key).Msg("stored document is not valid JSON; dropping")
		_ = g.store.Remove(ctx, key)
		return false
	}
	return true
}

// SetJSON encodes v and writes it at key, last-write-wins.
func (g *Gateway) SetJSON(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		g.log.Warn().Err(err).Str("key", key).Msg("value not serializable; write dropped")
		return
	}
	if err := g.store.Set(ctx, key, string(raw)); err != nil {
		g.log.Warn().Err(err).Str("key", key).Msg("storage write degraded to no-op")
	}
}

func (g *Gateway) Remove(ctx context.Context, key string) {
	if err := g.store.Remove(ctx, key); err != nil {
		g.log.Warn().Err(err).Str("key", key).Msg("storage remove degraded to no-op")
	}
}

// Keys lists stored keys under prefix; unavailable storage yields an empty
// enumeration rather than an error.
func (g *Gateway) Keys(ctx context.Context, prefix string) []string {
	keys, err := g.store.Keys(ctx, prefix)
	if err != nil {
		g.log.Warn().Err(err).Str("prefix", prefix).Msg("storage scan degraded to no-op")
		return nil
	}
	return keys
}
