// Package credentials is the local credential cache: per-email password
// verification material used only for offline login, plus small device
// flags. Entries are created lazily and never deleted by normal flows.
package credentials

import "context"

// Repository stores salted verification keys keyed by email.
//
// Presence of an entry means offline login for that email is possible;
// absence means offline login must fail closed.
type Repository interface {
	Get(ctx context.Context, email string) (salt, key []byte, err error)
	Set(ctx context.Context, email string, salt, key []byte) error
	Delete(ctx context.Context, email string) error

	// Device flags are an unrelated key-value area sharing the cache
	// (e.g. the last successful sync timestamp). GetFlag returns nil
	// for a missing flag.
	GetFlag(ctx context.Context, key string) ([]byte, error)
	SetFlag(ctx context.Context, key string, value []byte) error
}
