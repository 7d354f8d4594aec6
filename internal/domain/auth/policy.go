// Package auth holds the stateless login rules: ban and lockout checks,
// password comparison and the admin surface gate.
package auth

import (
	"errors"
	"time"
)

// Outcome is the result class of a login attempt.
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomeBadCredentials Outcome = "bad_credentials"
	OutcomeLocked         Outcome = "locked"
	OutcomeBanned         Outcome = "banned"
	OutcomeNotAuthorized  Outcome = "not_authorized"
)

var (
	ErrBadCredentials = errors.New("invalid credentials")
	ErrLocked         = errors.New("account temporarily locked")
	ErrBanned         = errors.New("account banned")
	ErrNotAuthorized  = errors.New("not authorized for the admin area")
)

// Err maps the outcome to its sentinel error; success yields nil.
func (o Outcome) Err() error {
	switch o {
	case OutcomeSuccess:
		return nil
	case OutcomeLocked:
		return ErrLocked
	case OutcomeBanned:
		return ErrBanned
	case OutcomeNotAuthorized:
		return ErrNotAuthorized
	}
	return ErrBadCredentials
}

// LockoutPolicy describes when repeated failures block further attempts.
// Window is only used by the admin policy, which counts failures in the
// session security log instead of on the user record.
type LockoutPolicy struct {
	Threshold int
	Window    time.Duration
	Duration  time.Duration
}

func DefaultUserPolicy() LockoutPolicy {
	return LockoutPolicy{Threshold: 3, Duration: 5 * time.Minute}
}

func DefaultAdminPolicy() LockoutPolicy {
	return LockoutPolicy{Threshold: 5, Window: 15 * time.Minute, Duration: 15 * time.Minute}
}
