package handlers

import (
	"time"

	"github.com/oksasatya/vendor-directory/internal/domain/entity"
	"github.com/oksasatya/vendor-directory/internal/domain/listing"
	"github.com/oksasatya/vendor-directory/internal/domain/state"
)

type FiltersView struct {
	Search       string         `json:"search"`
	Category     string         `json:"category"`
	Neighborhood string         `json:"neighborhood"`
	Subtype      entity.Subtype `json:"subtype"`
	MaxDistance  *float64       `json:"maxDistance"`
}

// StateView is what a client may see of its session. Passwords never leave
// the server; the account list, deny-list and audit trail are only shown to
// ADMIN and MASTER.
type StateView struct {
	CurrentUser  *entity.User         `json:"currentUser"`
	Vendors      []entity.Vendor      `json:"vendors"`
	AppConfig    entity.AppConfig     `json:"appConfig"`
	Filters      FiltersView          `json:"filters"`
	Location     *entity.Location     `json:"location"`
	Theme        state.Theme          `json:"theme"`
	Users        []entity.User        `json:"users,omitempty"`
	Banned       []string             `json:"banned,omitempty"`
	SecurityLogs []entity.SecurityLog `json:"securityLogs,omitempty"`
}

// NewStateView projects st for its own viewer. Vendors come filtered and in
// display order; contact fields are masked unless the viewer owns the
// listing or administers the directory.
func NewStateView(st state.State, now time.Time) StateView {
	v := StateView{
		AppConfig: st.AppConfig,
		Location:  st.Location,
		Theme:     st.Theme,
		Filters: FiltersView{
			Search:       st.Search,
			Category:     st.Category,
			Neighborhood: st.Neighborhood,
			Subtype:      st.Subtype,
			MaxDistance:  st.MaxDistance,
		},
	}

	privileged := false
	ownID := ""
	if cu := st.CurrentUser; cu != nil {
		pub := cu.Public()
		v.CurrentUser = &pub
		privileged = cu.Type.Privileged()
		ownID = cu.ID
	}

	vendors := listing.Query(st.Vendors, st.Filters(), now)
	v.Vendors = make([]entity.Vendor, len(vendors))
	for i, vd := range vendors {
		if privileged || vd.ID == ownID {
			v.Vendors[i] = vd
			continue
		}
		v.Vendors[i] = vd.Public()
	}

	if privileged {
		v.Users = make([]entity.User, len(st.Users))
		for i, u := range st.Users {
			v.Users[i] = u.Public()
		}
		v.Banned = append([]string{}, st.Banned...)
		v.SecurityLogs = append([]entity.SecurityLog{}, st.SecurityLogs...)
	}
	return v
}
