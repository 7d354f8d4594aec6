package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/vendor-directory/internal/domain/entity"
)

// Collection names shared by every store implementation.
const (
	ColUsers   = "users"
	ColVendors = "vendors"
	ColBanned  = "banned"
	ColConfig  = "config"

	// AppConfigID is the id of the singleton config document.
	AppConfigID = "app"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Unsubscribe tears down a subscription. It is safe to call more than once.
type Unsubscribe func()

// RemoteStore is the synchronized document service every session talks to.
//
// Find* return (nil, nil) when nothing matches. Upserts merge: fields present in
// the record overwrite, nil pointer fields are written as explicit nulls.
// Subscribe* invoke fn immediately with the current snapshot and again after
// every change, until the returned Unsubscribe is called or ctx ends.
type RemoteStore interface {
	FindUser(ctx context.Context, field string, value any) (*entity.User, error)
	FindVendor(ctx context.Context, field string, value any) (*entity.Vendor, error)

	UpsertUser(ctx context.Context, u *entity.User) error
	UpsertVendor(ctx context.Context, v *entity.Vendor) error
	DeleteUser(ctx context.Context, id string) error
	DeleteVendor(ctx context.Context, id string) error

	Ban(ctx context.Context, value string) error
	Unban(ctx context.Context, value string) error
	IsBanned(ctx context.Context, value string) (bool, error)

	SaveAppConfig(ctx context.Context, cfg *entity.AppConfig) error

	SubscribeUsers(ctx context.Context, fn func([]entity.User)) (Unsubscribe, error)
	SubscribeVendors(ctx context.Context, fn func([]entity.Vendor)) (Unsubscribe, error)
	SubscribeBanned(ctx context.Context, fn func([]string)) (Unsubscribe, error)
	SubscribeAppConfig(ctx context.Context, fn func(entity.AppConfig)) (Unsubscribe, error)
}
