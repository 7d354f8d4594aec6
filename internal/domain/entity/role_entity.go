package entity

// UserType is the authorization role carried by every account.
// Exactly one MASTER account exists; it is identified by a configured email.
type UserType string

const (
	UserTypeUser   UserType = "USER"
	UserTypeVendor UserType = "VENDOR"
	UserTypeAdmin  UserType = "ADMIN"
	UserTypeMaster UserType = "MASTER"
)

// Valid reports whether t is one of the known roles.
func (t UserType) Valid() bool {
	switch t {
	case UserTypeUser, UserTypeVendor, UserTypeAdmin, UserTypeMaster:
		return true
	}
	return false
}

// Privileged reports whether the role may use the administrative surface.
func (t UserType) Privileged() bool {
	return t == UserTypeAdmin || t == UserTypeMaster
}
