package entity

// SecurityAction enumerates audited events.
type SecurityAction string

const (
	ActionLoginSuccess   SecurityAction = "LOGIN_SUCCESS"
	ActionLoginFail      SecurityAction = "LOGIN_FAIL"
	ActionPasswordChange SecurityAction = "PASSWORD_CHANGE"
	ActionPasswordReset  SecurityAction = "PASSWORD_RESET"
	ActionConfigUpdate   SecurityAction = "CONFIG_UPDATE"
	ActionUnlockUser     SecurityAction = "UNLOCK_USER"
	ActionFeatureVendor  SecurityAction = "FEATURE_VENDOR"
	ActionBan            SecurityAction = "BAN_ACTION"
	ActionUserDelete     SecurityAction = "USER_DELETE"
	ActionVendorDelete   SecurityAction = "VENDOR_DELETE"
	ActionLogoutIdle     SecurityAction = "LOGOUT_IDLE"
)

// SecurityLog is an append-only audit entry. Entries live only in session state.
type SecurityLog struct {
	ID        string         `json:"id"`
	Timestamp int64          `json:"timestamp"`
	Action    SecurityAction `json:"action"`
	Details   string         `json:"details"`
}
