package repository

import "context"

// ChangeFeed tells subscribers that a collection was written to. Stores that
// cannot push on their own publish here after every write and re-read the
// collection when notified.
type ChangeFeed interface {
	Publish(ctx context.Context, collection string) error
	Subscribe(ctx context.Context, collection string, fn func()) (Unsubscribe, error)
}
