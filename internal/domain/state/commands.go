package state

import (
	"github.com/oksasatya/vendor-directory/internal/domain/entity"
	"github.com/oksasatya/vendor-directory/internal/domain/repository"
)

// CommandKind names a side effect the session controller must perform.
type CommandKind string

const (
	CmdUpsertUser    CommandKind = "upsert_user"
	CmdDeleteUser    CommandKind = "delete_user"
	CmdUpsertVendor  CommandKind = "upsert_vendor"
	CmdDeleteVendor  CommandKind = "delete_vendor"
	CmdBan           CommandKind = "ban"
	CmdUnban         CommandKind = "unban"
	CmdSaveAppConfig CommandKind = "save_app_config"
	CmdSaveLocal     CommandKind = "save_local"
)

// Command is a single persistence write derived from a state transition.
type Command struct {
	Kind   CommandKind
	ID     string
	User   *entity.User
	Vendor *entity.Vendor
	Config *entity.AppConfig
	Key    string
	Value  string
}

// Commands lists the writes that mirror the transition prev -> next caused by a.
// Pure actions yield nil. Records are read from next so derived fields
// (rating, reviewCount, cleared lock counters) are persisted as computed.
func Commands(prev, next State, a Action) []Command {
	switch a := a.(type) {
	case AddUser:
		u := a.User
		return []Command{{Kind: CmdUpsertUser, ID: u.ID, User: &u}}
	case UpdateUser:
		return userUpsert(next, a.User.ID)
	case DeleteUser:
		return []Command{{Kind: CmdDeleteUser, ID: a.ID}}
	case AddVendor:
		v := a.Vendor.Clone()
		return []Command{{Kind: CmdUpsertVendor, ID: v.ID, Vendor: &v}}
	case UpdateVendor:
		v := a.Vendor.Clone()
		return []Command{{Kind: CmdUpsertVendor, ID: v.ID, Vendor: &v}}
	case DeleteVendor:
		return []Command{{Kind: CmdDeleteVendor, ID: a.ID}}

	case BanDocument:
		if a.Value == "" {
			return nil
		}
		return []Command{{Kind: CmdBan, Value: a.Value}}
	case UnbanDocument:
		if a.Value == "" {
			return nil
		}
		return []Command{{Kind: CmdUnban, Value: a.Value}}

	case AddReview:
		return vendorUpsert(next, a.VendorID)
	case ReplyReview:
		return vendorUpsert(next, a.VendorID)
	case FeatureVendor:
		return vendorUpsert(next, a.VendorID)

	case MasterResetPassword:
		return userUpsert(next, a.UserID)
	case ChangeOwnPassword:
		return userUpsert(next, a.UserID)
	case UnlockUser:
		return userUpsert(next, a.UserID)

	case UpdateAppConfig:
		cfg := next.AppConfig
		return []Command{{Kind: CmdSaveAppConfig, ID: repository.AppConfigID, Config: &cfg}}
	case ToggleTheme:
		if prev.Theme == next.Theme {
			return nil
		}
		return []Command{{Kind: CmdSaveLocal, Key: repository.KeyTheme, Value: string(next.Theme)}}
	}
	return nil
}

func vendorUpsert(s State, id string) []Command {
	v, ok := s.VendorByID(id)
	if !ok {
		return nil
	}
	return []Command{{Kind: CmdUpsertVendor, ID: id, Vendor: &v}}
}

func userUpsert(s State, id string) []Command {
	u, ok := s.UserByID(id)
	if !ok {
		return nil
	}
	return []Command{{Kind: CmdUpsertUser, ID: id, User: &u}}
}
