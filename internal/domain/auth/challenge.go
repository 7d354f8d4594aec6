package auth

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Purpose names what a two-factor challenge authorizes.
type Purpose string

const (
	PurposeAdminLogin     Purpose = "admin_login"
	PurposePasswordChange Purpose = "password_change"
)

var (
	ErrChallengeMissing  = errors.New("no pending verification code")
	ErrChallengeExpired  = errors.New("verification code expired")
	ErrChallengeMismatch = errors.New("verification code does not match")
)

// Challenge is a one-shot emailed code.
type Challenge struct {
	Code        string    `json:"code"`
	Destination string    `json:"destination"`
	Purpose     Purpose   `json:"purpose"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

func NewChallenge(code, destination string, purpose Purpose, ttl time.Duration, now time.Time) Challenge {
	return Challenge{
		Code:        code,
		Destination: destination,
		Purpose:     purpose,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
}

// Verify checks code against the challenge. Callers discard the challenge
// whatever the result: there is a single attempt.
func (c Challenge) Verify(code string, now time.Time) error {
	if !now.Before(c.ExpiresAt) {
		return ErrChallengeExpired
	}
	if code != c.Code {
		return ErrChallengeMismatch
	}
	return nil
}

// ResetLink builds the password reset URL. It carries the bare user id, so
// anyone holding the link can set a new password.
func ResetLink(baseURL, userID string) string {
	return fmt.Sprintf("%s/reset-password?uid=%s", strings.TrimRight(baseURL, "/"), url.QueryEscape(userID))
}
