package repository

import "context"

// Keys used in client-local persistence.
const (
	KeyTheme      = "theme"
	KeySeedMarker = "seeded"
)

// LocalStore is a small key-value port for flags that survive reloads but are
// not shared across devices. Get returns ("", false, nil) for a missing key.
type LocalStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}
