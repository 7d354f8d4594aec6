package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/vendor-directory/internal/domain/entity"
	"github.com/oksasatya/vendor-directory/pkg/helpers"
)

// Directory is the read side a login needs. state.State satisfies it.
type Directory interface {
	UserByEmail(email string) (entity.User, bool)
	IsBanned(value string) bool
}

// Result describes a login attempt. User is the matched (or provisioned)
// account with its counters already updated; when Persist is set the caller
// must write it back even if the attempt failed.
type Result struct {
	Outcome       Outcome
	User          *entity.User
	Persist       bool
	Provisioned   bool
	LockRemaining time.Duration
	AttemptsLeft  int
}

// Evaluator applies the login rules. The zero value is not usable; build one
// with NewEvaluator.
type Evaluator struct {
	User             LockoutPolicy
	Admin            LockoutPolicy
	MasterEmail      string
	BootstrapSecret  string
	FallbackPassword string

	// NewID generates ids for provisioned accounts.
	NewID func() string
}

func NewEvaluator(user, admin LockoutPolicy, masterEmail, bootstrapSecret, fallbackPassword string) *Evaluator {
	return &Evaluator{
		User:             user,
		Admin:            admin,
		MasterEmail:      masterEmail,
		BootstrapSecret:  bootstrapSecret,
		FallbackPassword: fallbackPassword,
		NewID:            uuid.NewString,
	}
}

// Login evaluates an ordinary sign-in: lookup, ban, lock, then password.
func (e *Evaluator) Login(dir Directory, email, password string, now time.Time) Result {
	found, ok := dir.UserByEmail(email)
	if !ok {
		return Result{Outcome: OutcomeBadCredentials}
	}
	u := found
	if isBanned(dir, &u) {
		return Result{Outcome: OutcomeBanned, User: &u}
	}
	if u.IsLocked(now) {
		return Result{Outcome: OutcomeLocked, User: &u, LockRemaining: u.LockRemaining(now)}
	}

	dirty := false
	if u.LockedUntil > 0 {
		// expired lock: counting restarts
		u.LockedUntil = 0
		u.FailedLoginAttempts = 0
		dirty = true
	}

	if e.passwordMatches(u.Password, password) {
		if u.FailedLoginAttempts > 0 {
			u.FailedLoginAttempts = 0
			dirty = true
		}
		return Result{Outcome: OutcomeSuccess, User: &u, Persist: dirty}
	}

	u.FailedLoginAttempts++
	threshold := e.User.Threshold
	if threshold <= 0 {
		threshold = DefaultUserPolicy().Threshold
	}
	if u.FailedLoginAttempts >= threshold {
		u.LockedUntil = now.Add(e.User.Duration).UnixMilli()
		return Result{Outcome: OutcomeLocked, User: &u, Persist: true, LockRemaining: e.User.Duration}
	}
	return Result{
		Outcome:      OutcomeBadCredentials,
		User:         &u,
		Persist:      true,
		AttemptsLeft: threshold - u.FailedLoginAttempts,
	}
}

// AdminLogin evaluates a sign-in to the admin surface. logs is the session
// security log; failures are counted there rather than on the user record.
func (e *Evaluator) AdminLogin(dir Directory, logs []entity.SecurityLog, email, password string, now time.Time) Result {
	master := e.IsMasterEmail(email)

	found, ok := dir.UserByEmail(email)
	if !ok && master {
		found, ok = dir.UserByEmail(e.MasterEmail)
	}
	if !ok {
		if master && e.BootstrapSecret != "" && password == e.BootstrapSecret {
			u := entity.User{
				ID:       e.NewID(),
				Name:     "Master",
				Email:    e.MasterEmail,
				Type:     entity.UserTypeMaster,
				Password: e.BootstrapSecret,
			}
			return Result{Outcome: OutcomeSuccess, User: &u, Persist: true, Provisioned: true}
		}
		return Result{Outcome: OutcomeBadCredentials}
	}
	u := found

	if isBanned(dir, &u) {
		return Result{Outcome: OutcomeBanned, User: &u}
	}
	if until, blocked := e.AdminBlockedUntil(logs, now); blocked {
		return Result{Outcome: OutcomeLocked, User: &u, LockRemaining: until.Sub(now)}
	}
	if !u.Type.Privileged() {
		return Result{Outcome: OutcomeNotAuthorized, User: &u}
	}
	if !e.passwordMatches(u.Password, password) {
		return Result{Outcome: OutcomeBadCredentials, User: &u}
	}
	return Result{Outcome: OutcomeSuccess, User: &u}
}

// AdminBlockedUntil reports whether the admin policy blocks attempts at now,
// and until when: Duration after the latest failure inside the window.
func (e *Evaluator) AdminBlockedUntil(logs []entity.SecurityLog, now time.Time) (time.Time, bool) {
	p := e.Admin
	if p.Threshold <= 0 {
		return time.Time{}, false
	}
	since := now.Add(-p.Window).UnixMilli()
	count := 0
	var latest int64
	for _, l := range logs {
		if l.Action != entity.ActionLoginFail || l.Timestamp < since {
			continue
		}
		count++
		if l.Timestamp > latest {
			latest = l.Timestamp
		}
	}
	if count < p.Threshold {
		return time.Time{}, false
	}
	until := time.UnixMilli(latest).Add(p.Duration)
	if !now.Before(until) {
		return time.Time{}, false
	}
	return until, true
}

// IsMasterEmail compares case-insensitively against the configured MASTER email.
func (e *Evaluator) IsMasterEmail(email string) bool {
	return e.MasterEmail != "" && strings.EqualFold(strings.TrimSpace(email), e.MasterEmail)
}

// PasswordMatches compares a stored password with a submitted one.
func (e *Evaluator) PasswordMatches(stored, given string) bool {
	return e.passwordMatches(stored, given)
}

func (e *Evaluator) passwordMatches(stored, given string) bool {
	if stored == "" {
		return e.FallbackPassword != "" && given == e.FallbackPassword
	}
	return helpers.CheckPassword(stored, given)
}

// isBanned checks the document and the email; bans on emails are stored lowercased.
func isBanned(dir Directory, u *entity.User) bool {
	return dir.IsBanned(u.CPF) || dir.IsBanned(u.Email) || dir.IsBanned(strings.ToLower(u.Email))
}
