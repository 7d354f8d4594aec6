// Package state holds the session projection of every entity and the pure
// reducer that moves it forward one action at a time.
package state

import (
	"github.com/oksasatya/vendor-directory/internal/domain/entity"
	"github.com/oksasatya/vendor-directory/internal/domain/listing"
)

// Theme is the persisted color scheme flag.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// MaxSecurityLogs bounds the session audit trail; the oldest entries drop first.
const MaxSecurityLogs = 500

// DefaultRecoveryPassword is what MASTER_RESET_PASSWORD writes when the action
// does not carry an explicit value.
const DefaultRecoveryPassword = "123456"

// State is the authoritative in-memory projection for one session.
// Values are treated as immutable: Reduce never writes into a slice it received.
type State struct {
	Users     []entity.User
	Vendors   []entity.Vendor
	Banned    []string
	AppConfig entity.AppConfig

	CurrentUser  *entity.User
	SecurityLogs []entity.SecurityLog // newest first

	Search       string
	Category     string
	Neighborhood string
	Subtype      entity.Subtype
	MaxDistance  *float64
	Location     *entity.Location

	Theme Theme
}

// Initial returns the state a fresh session starts from.
func Initial() State {
	return State{
		AppConfig: entity.DefaultAppConfig(),
		Subtype:   entity.SubtypeAll,
		Theme:     ThemeLight,
	}
}

// Filters converts the session facets into listing filters.
func (s State) Filters() listing.Filters {
	return listing.Filters{
		Search:       s.Search,
		Category:     s.Category,
		Neighborhood: s.Neighborhood,
		Subtype:      s.Subtype,
		MaxDistance:  s.MaxDistance,
	}
}

// UserByID returns a copy of the user with id.
func (s State) UserByID(id string) (entity.User, bool) {
	for _, u := range s.Users {
		if u.ID == id {
			return u, true
		}
	}
	return entity.User{}, false
}

// UserByEmail does an exact, case-sensitive lookup.
func (s State) UserByEmail(email string) (entity.User, bool) {
	for _, u := range s.Users {
		if u.Email == email {
			return u, true
		}
	}
	return entity.User{}, false
}

// VendorByID returns a copy of the vendor with id.
func (s State) VendorByID(id string) (entity.Vendor, bool) {
	for _, v := range s.Vendors {
		if v.ID == id {
			return v.Clone(), true
		}
	}
	return entity.Vendor{}, false
}

// IsBanned reports whether value is in the deny-list.
func (s State) IsBanned(value string) bool {
	if value == "" {
		return false
	}
	for _, b := range s.Banned {
		if b == value {
			return true
		}
	}
	return false
}
