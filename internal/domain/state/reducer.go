package state

import (
	"github.com/oksasatya/vendor-directory/internal/domain/entity"
	"github.com/oksasatya/vendor-directory/internal/domain/listing"
)

// Reduce returns the state that results from applying a to s. It never fails:
// unknown actions and actions naming missing records leave s unchanged.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SetUsers:
		s.Users = a.Users
		s = withCurrentUser(s)
	case SetVendors:
		s.Vendors = a.Vendors
		s = withDistances(s)
	case SetBanned:
		s.Banned = dedupe(a.Values)
	case SetAppConfig:
		s.AppConfig = a.Config

	case Login:
		u := a.User
		s.CurrentUser = &u
	case Logout:
		s.CurrentUser = nil
	case SetSearch:
		s.Search = a.Query
	case SetCategory:
		s.Category = a.Category
	case SetNeighborhood:
		s.Neighborhood = a.Neighborhood
	case SetSubtype:
		s.Subtype = a.Subtype
		if s.Subtype == "" {
			s.Subtype = entity.SubtypeAll
		}
	case SetMaxDistance:
		if a.Km == nil {
			s.MaxDistance = nil
		} else {
			km := *a.Km
			s.MaxDistance = &km
		}
	case SetLocation:
		loc := a.Location
		s.Location = &loc
		s = withDistances(s)
	case ToggleTheme:
		if s.Theme == ThemeDark {
			s.Theme = ThemeLight
		} else {
			s.Theme = ThemeDark
		}
	case AddSecurityLog:
		logs := make([]entity.SecurityLog, 0, len(s.SecurityLogs)+1)
		logs = append(logs, a.Log)
		logs = append(logs, s.SecurityLogs...)
		if len(logs) > MaxSecurityLogs {
			logs = logs[:MaxSecurityLogs]
		}
		s.SecurityLogs = logs
	case ClearSecurityLogs:
		s.SecurityLogs = nil

	case AddUser:
		s.Users = append(append([]entity.User(nil), s.Users...), a.User)
	case UpdateUser:
		s = replaceUser(s, a.User.ID, func(u *entity.User) { *u = a.User })
	case DeleteUser:
		s.Users = filterUsers(s.Users, a.ID)
		if s.CurrentUser != nil && s.CurrentUser.ID == a.ID {
			s.CurrentUser = nil
		}
	case AddVendor:
		s.Vendors = append(append([]entity.Vendor(nil), s.Vendors...), a.Vendor.Clone())
		s = withDistances(s)
	case UpdateVendor:
		v := a.Vendor.Clone()
		s = replaceVendor(s, v.ID, func(dst *entity.Vendor) { *dst = v })
		s = withDistances(s)
	case DeleteVendor:
		s.Vendors = filterVendors(s.Vendors, a.ID)

	case BanDocument:
		if a.Value != "" && !s.IsBanned(a.Value) {
			s.Banned = append(append([]string(nil), s.Banned...), a.Value)
		}
	case UnbanDocument:
		s.Banned = filterStrings(s.Banned, a.Value)

	case AddReview:
		s = replaceVendor(s, a.VendorID, func(v *entity.Vendor) {
			v.Reviews = append([]entity.Review{a.Review}, v.Reviews...)
			RecomputeRating(v)
		})
	case ReplyReview:
		s = replaceVendor(s, a.VendorID, func(v *entity.Vendor) {
			for i := range v.Reviews {
				if v.Reviews[i].ID == a.ReviewID {
					reply, date := a.Reply, a.ReplyDate
					v.Reviews[i].Reply = &reply
					v.Reviews[i].ReplyDate = &date
					return
				}
			}
		})

	case MasterResetPassword:
		pwd := a.Password
		if pwd == "" {
			pwd = DefaultRecoveryPassword
		}
		s = replaceUser(s, a.UserID, func(u *entity.User) { u.Password = pwd })
	case ChangeOwnPassword:
		s = replaceUser(s, a.UserID, func(u *entity.User) { u.Password = a.NewPassword })
	case UnlockUser:
		s = replaceUser(s, a.UserID, func(u *entity.User) {
			u.FailedLoginAttempts = 0
			u.LockedUntil = 0
		})
	case FeatureVendor:
		s = replaceVendor(s, a.VendorID, func(v *entity.Vendor) { v.FeaturedUntil = a.Until })
	case UpdateAppConfig:
		s.AppConfig = a.Config
	}
	return s
}

// RecomputeRating restores the review invariants on v.
func RecomputeRating(v *entity.Vendor) {
	v.ReviewCount = len(v.Reviews)
	if v.ReviewCount == 0 {
		v.Rating = 0
		return
	}
	sum := 0
	for _, r := range v.Reviews {
		sum += r.Rating
	}
	v.Rating = float64(sum) / float64(v.ReviewCount)
}

// replaceUser applies fn to a copy of the user with id, refreshing CurrentUser
// when it points at the same account.
func replaceUser(s State, id string, fn func(*entity.User)) State {
	idx := -1
	for i := range s.Users {
		if s.Users[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s
	}
	users := append([]entity.User(nil), s.Users...)
	fn(&users[idx])
	s.Users = users
	if s.CurrentUser != nil && s.CurrentUser.ID == id {
		u := users[idx]
		s.CurrentUser = &u
	}
	return s
}

// withCurrentUser points CurrentUser at its record in Users, signing the
// session out when the account no longer exists.
func withCurrentUser(s State) State {
	if s.CurrentUser == nil {
		return s
	}
	if u, ok := s.UserByID(s.CurrentUser.ID); ok {
		s.CurrentUser = &u
	} else {
		s.CurrentUser = nil
	}
	return s
}

// replaceVendor applies fn to a deep copy of the vendor with id.
func replaceVendor(s State, id string, fn func(*entity.Vendor)) State {
	for i := range s.Vendors {
		if s.Vendors[i].ID != id {
			continue
		}
		vendors := append([]entity.Vendor(nil), s.Vendors...)
		v := vendors[i].Clone()
		fn(&v)
		vendors[i] = v
		s.Vendors = vendors
		return s
	}
	return s
}

func withDistances(s State) State {
	if s.Location == nil || len(s.Vendors) == 0 {
		return s
	}
	s.Vendors, _ = listing.RecomputeDistances(s.Vendors, *s.Location)
	return s
}

func filterUsers(users []entity.User, id string) []entity.User {
	out := make([]entity.User, 0, len(users))
	for _, u := range users {
		if u.ID != id {
			out = append(out, u)
		}
	}
	return out
}

func filterVendors(vendors []entity.Vendor, id string) []entity.Vendor {
	out := make([]entity.Vendor, 0, len(vendors))
	for _, v := range vendors {
		if v.ID != id {
			out = append(out, v)
		}
	}
	return out
}

func filterStrings(values []string, drop string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != drop {
			out = append(out, v)
		}
	}
	return out
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
