package metadata

import "context"

// Repository is a small persisted key/value table for client state that must
// survive restarts: the auto-sync toggle, the last-sync timestamp, and the
// user's backend URL override.
type Repository interface {
	// Get returns the stored value, or ("", false, nil) when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
