package repository

import "context"

// KeyValueStore is the raw persistence port behind the local storage gateway.
// Implementations are last-write-wins and carry no transactional guarantees.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	// Keys enumerates stored keys with the given prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
