package domain

import "context"

// KVStore is the opaque string key/value store the persisted document
// lives in. Get returns ErrNotFound for a missing key. Implementations can
// be in-memory, a file, SQLite, Postgres or Redis.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Notifier delivers messages to the user. Delivery is fire-and-forget:
// implementations can write to stdout or forward to a push channel.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}
