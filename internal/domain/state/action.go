package state

import "github.com/oksasatya/vendor-directory/internal/domain/entity"

// ActionType names an action for logging and metrics.
type ActionType string

const (
	TypeSetUsers          ActionType = "SET_USERS"
	TypeSetVendors        ActionType = "SET_VENDORS"
	TypeSetBanned         ActionType = "SET_BANNED"
	TypeSetAppConfig      ActionType = "SET_APP_CONFIG"
	TypeLogin             ActionType = "LOGIN"
	TypeLogout            ActionType = "LOGOUT"
	TypeSetSearch         ActionType = "SET_SEARCH"
	TypeSetCategory       ActionType = "SET_CATEGORY"
	TypeSetNeighborhood   ActionType = "SET_NEIGHBORHOOD"
	TypeSetSubtype        ActionType = "SET_SUBTYPE"
	TypeSetMaxDistance    ActionType = "SET_MAX_DISTANCE"
	TypeSetLocation       ActionType = "SET_LOCATION"
	TypeToggleTheme       ActionType = "TOGGLE_THEME"
	TypeAddSecurityLog    ActionType = "ADD_SECURITY_LOG"
	TypeClearSecurityLogs ActionType = "CLEAR_SECURITY_LOGS"

	TypeAddUser             ActionType = "ADD_USER"
	TypeUpdateUser          ActionType = "UPDATE_USER"
	TypeDeleteUser          ActionType = "DELETE_USER"
	TypeAddVendor           ActionType = "ADD_VENDOR"
	TypeUpdateVendor        ActionType = "UPDATE_VENDOR"
	TypeDeleteVendor        ActionType = "DELETE_VENDOR"
	TypeBanDocument         ActionType = "BAN_DOCUMENT"
	TypeUnbanDocument       ActionType = "UNBAN_DOCUMENT"
	TypeAddReview           ActionType = "ADD_REVIEW"
	TypeReplyReview         ActionType = "REPLY_REVIEW"
	TypeMasterResetPassword ActionType = "MASTER_RESET_PASSWORD"
	TypeChangeOwnPassword   ActionType = "CHANGE_OWN_PASSWORD"
	TypeUnlockUser          ActionType = "UNLOCK_USER"
	TypeFeatureVendor       ActionType = "FEATURE_VENDOR"
	TypeUpdateAppConfig     ActionType = "UPDATE_APP_CONFIG"
)

// Action is anything the reducer can be handed. Types the reducer does not
// know are ignored.
type Action interface {
	Type() ActionType
}

// Snapshot replacements pushed by subscriptions.
type (
	SetUsers     struct{ Users []entity.User }
	SetVendors   struct{ Vendors []entity.Vendor }
	SetBanned    struct{ Values []string }
	SetAppConfig struct{ Config entity.AppConfig }
)

// Session and UI actions.
type (
	Login             struct{ User entity.User }
	Logout            struct{}
	SetSearch         struct{ Query string }
	SetCategory       struct{ Category string }
	SetNeighborhood   struct{ Neighborhood string }
	SetSubtype        struct{ Subtype entity.Subtype }
	SetMaxDistance    struct{ Km *float64 }
	SetLocation       struct{ Location entity.Location }
	ToggleTheme       struct{}
	AddSecurityLog    struct{ Log entity.SecurityLog }
	ClearSecurityLogs struct{}
)

// Persisted actions.
type (
	AddUser      struct{ User entity.User }
	UpdateUser   struct{ User entity.User }
	DeleteUser   struct{ ID string }
	AddVendor    struct{ Vendor entity.Vendor }
	UpdateVendor struct{ Vendor entity.Vendor }
	DeleteVendor struct{ ID string }

	BanDocument   struct{ Value string }
	UnbanDocument struct{ Value string }

	AddReview struct {
		VendorID string
		Review   entity.Review
	}
	// ReplyReview carries ReplyDate already formatted for display.
	ReplyReview struct {
		VendorID  string
		ReviewID  string
		Reply     string
		ReplyDate string
	}

	MasterResetPassword struct {
		UserID   string
		Password string
	}
	ChangeOwnPassword struct {
		UserID      string
		NewPassword string
	}
	UnlockUser struct{ UserID string }

	FeatureVendor struct {
		VendorID string
		Until    int64
	}
	UpdateAppConfig struct{ Config entity.AppConfig }
)

func (SetUsers) Type() ActionType          { return TypeSetUsers }
func (SetVendors) Type() ActionType        { return TypeSetVendors }
func (SetBanned) Type() ActionType         { return TypeSetBanned }
func (SetAppConfig) Type() ActionType      { return TypeSetAppConfig }
func (Login) Type() ActionType             { return TypeLogin }
func (Logout) Type() ActionType            { return TypeLogout }
func (SetSearch) Type() ActionType         { return TypeSetSearch }
func (SetCategory) Type() ActionType       { return TypeSetCategory }
func (SetNeighborhood) Type() ActionType   { return TypeSetNeighborhood }
func (SetSubtype) Type() ActionType        { return TypeSetSubtype }
func (SetMaxDistance) Type() ActionType    { return TypeSetMaxDistance }
func (SetLocation) Type() ActionType       { return TypeSetLocation }
func (ToggleTheme) Type() ActionType       { return TypeToggleTheme }
func (AddSecurityLog) Type() ActionType    { return TypeAddSecurityLog }
func (ClearSecurityLogs) Type() ActionType { return TypeClearSecurityLogs }

func (AddUser) Type() ActionType             { return TypeAddUser }
func (UpdateUser) Type() ActionType          { return TypeUpdateUser }
func (DeleteUser) Type() ActionType          { return TypeDeleteUser }
func (AddVendor) Type() ActionType           { return TypeAddVendor }
func (UpdateVendor) Type() ActionType        { return TypeUpdateVendor }
func (DeleteVendor) Type() ActionType        { return TypeDeleteVendor }
func (BanDocument) Type() ActionType         { return TypeBanDocument }
func (UnbanDocument) Type() ActionType       { return TypeUnbanDocument }
func (AddReview) Type() ActionType           { return TypeAddReview }
func (ReplyReview) Type() ActionType         { return TypeReplyReview }
func (MasterResetPassword) Type() ActionType { return TypeMasterResetPassword }
func (ChangeOwnPassword) Type() ActionType   { return TypeChangeOwnPassword }
func (UnlockUser) Type() ActionType          { return TypeUnlockUser }
func (FeatureVendor) Type() ActionType       { return TypeFeatureVendor }
func (UpdateAppConfig) Type() ActionType     { return TypeUpdateAppConfig }
