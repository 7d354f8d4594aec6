package entity

import "time"

// User is the identity record shared by ordinary users, vendors and administrators.
//
// Password holds whatever the account was created or last changed with; it may be
// a legacy plaintext value or a bcrypt hash (see helpers.CheckPassword).
// LockedUntil and the review/featured timestamps are epoch milliseconds, 0 meaning unset.
type User struct {
	ID                  string   `json:"id" bson:"_id"`
	Name                string   `json:"name" bson:"name"`
	Email               string   `json:"email" bson:"email"`
	CPF                 string   `json:"cpf" bson:"cpf"`
	Address             string   `json:"address" bson:"address"`
	Type                UserType `json:"type" bson:"type"`
	PhotoURL            *string  `json:"photoUrl" bson:"photoUrl"`
	Password            string   `json:"password,omitempty" bson:"password"`
	FailedLoginAttempts int      `json:"failedLoginAttempts" bson:"failedLoginAttempts"`
	LockedUntil         int64    `json:"lockedUntil" bson:"lockedUntil"`
}

// IsLocked reports whether the account is locked at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil > 0 && u.LockedUntil > now.UnixMilli()
}

// LockRemaining returns how long the lock still holds at now (zero when unlocked).
func (u *User) LockRemaining(now time.Time) time.Duration {
	if !u.IsLocked(now) {
		return 0
	}
	return time.Duration(u.LockedUntil-now.UnixMilli()) * time.Millisecond
}

// Public returns a copy without the password, suitable for responses.
func (u User) Public() User {
	u.Password = ""
	return u
}
