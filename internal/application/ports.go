package application

import (
	"context"

	"github.com/oksasatya/vendor-directory/internal/domain/auth"
	"github.com/oksasatya/vendor-directory/internal/domain/entity"
)

// Notifier delivers templated messages. A failed Send aborts the operation
// that needed it; nothing retries.
type Notifier interface {
	Send(ctx context.Context, templateID, to string, params map[string]any) error
}

// ChallengeStore holds pending two-factor challenges. Take removes the
// challenge and returns nil when none is pending.
type ChallengeStore interface {
	Put(ctx context.Context, key string, c auth.Challenge) error
	Take(ctx context.Context, key string) (*auth.Challenge, error)
}

// Locator approximates the caller position; it never fails.
type Locator interface {
	CurrentLocation(ctx context.Context, ip string) entity.Location
}

// AddressResolver turns a postal code into an address inside the served area.
type AddressResolver interface {
	Resolve(ctx context.Context, postalCode string) (entity.PostalAddress, error)
}

// PhotoStore uploads an image given as a data URI and returns its public URL.
type PhotoStore interface {
	Upload(ctx context.Context, folder, ownerID, dataURI string) (string, error)
}

// VendorIndex is the full-text mirror of the vendor collection.
type VendorIndex interface {
	Sync(ctx context.Context, vendors []entity.Vendor) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q string, limit int) ([]string, error)
}
