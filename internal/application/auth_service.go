package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vendor-directory/internal/domain/auth"
	"github.com/oksasatya/vendor-directory/internal/domain/entity"
	"github.com/oksasatya/vendor-directory/internal/domain/state"
	"github.com/oksasatya/vendor-directory/pkg/helpers"
)

// LoginError is a rejected sign-in. It unwraps to the auth sentinel for its outcome.
type LoginError struct {
	Outcome       auth.Outcome
	LockRemaining time.Duration
	AttemptsLeft  int
}

func (e *LoginError) Error() string {
	switch {
	case e.Outcome == auth.OutcomeLocked && e.LockRemaining > 0:
		return fmt.Sprintf("%v: try again in %d min", e.Outcome.Err(), minutesCeil(e.LockRemaining))
	case e.Outcome == auth.OutcomeBadCredentials && e.AttemptsLeft > 0:
		return fmt.Sprintf("%v: %d attempt(s) left", e.Outcome.Err(), e.AttemptsLeft)
	}
	return e.Outcome.Err().Error()
}

func (e *LoginError) Unwrap() error { return e.Outcome.Err() }

// PendingChallenge tells the caller a code was sent and must be confirmed.
type PendingChallenge struct {
	Purpose     auth.Purpose `json:"purpose"`
	Destination string       `json:"destination"`
	ExpiresAt   time.Time    `json:"expiresAt"`
}

// ChangePasswordInput is a signed-in password change. Privileged accounts
// must also pass the emailed Code.
type ChangePasswordInput struct {
	Current string
	New     string
	Confirm string
	Code    string
}

type AuthService struct {
	*Deps
	Eval *auth.Evaluator

	TwoFactorTTL time.Duration
	ResetBaseURL string
}

func NewAuthService(d *Deps, eval *auth.Evaluator, twoFactorTTL time.Duration, resetBaseURL string) *AuthService {
	if twoFactorTTL <= 0 {
		twoFactorTTL = 10 * time.Minute
	}
	return &AuthService{Deps: d, Eval: eval, TwoFactorTTL: twoFactorTTL, ResetBaseURL: resetBaseURL}
}

// Login signs an ordinary account in. Counter changes are persisted even when
// the attempt is rejected.
func (a *AuthService) Login(ctx context.Context, s *Session, email, password string) (*entity.User, error) {
	email = strings.TrimSpace(email)
	r := a.Eval.Login(s.State(), email, password, a.now())
	a.Metrics.Login("user", string(r.Outcome))
	if r.Persist && r.User != nil {
		s.Dispatch(state.UpdateUser{User: *r.User})
	}

	fields := logrus.Fields{"session": s.ID, "email": email, "outcome": r.Outcome}
	if r.Outcome != auth.OutcomeSuccess {
		a.logger().WithFields(fields).Info("login rejected")
		return nil, &LoginError{Outcome: r.Outcome, LockRemaining: r.LockRemaining, AttemptsLeft: r.AttemptsLeft}
	}
	s.Dispatch(state.Login{User: *r.User})
	s.Touch()
	a.logger().WithFields(fields).Info("login")
	return r.User, nil
}

// AdminLogin checks credentials for the admin surface and, when they pass,
// emails a verification code. The session is signed in by VerifyAdminLogin.
func (a *AuthService) AdminLogin(ctx context.Context, s *Session, email, password string) (*PendingChallenge, error) {
	email = strings.TrimSpace(email)
	st := s.State()
	r := a.Eval.AdminLogin(st, st.SecurityLogs, email, password, a.now())
	a.Metrics.Login("admin", string(r.Outcome))

	fields := logrus.Fields{"session": s.ID, "email": email, "outcome": r.Outcome}
	if r.Outcome != auth.OutcomeSuccess {
		// blocked attempts are not counted again
		if r.Outcome != auth.OutcomeLocked {
			a.audit(s, entity.ActionLoginFail, fmt.Sprintf("admin login failed for %s (%s)", email, r.Outcome))
		}
		a.logger().WithFields(fields).Info("admin login rejected")
		return nil, &LoginError{Outcome: r.Outcome, LockRemaining: r.LockRemaining}
	}

	u := *r.User
	if r.Provisioned {
		hashed, err := a.hash(u.Password)
		if err != nil {
			return nil, err
		}
		u.Password = hashed
		s.Dispatch(state.AddUser{User: u})
		a.logger().WithFields(fields).Warn("master account provisioned")
	}

	pending, err := a.startChallenge(ctx, s, u, auth.PurposeAdminLogin)
	if err != nil {
		return nil, err
	}
	a.logger().WithFields(fields).Info("admin login code sent")
	return pending, nil
}

// VerifyAdminLogin consumes the pending admin login code.
func (a *AuthService) VerifyAdminLogin(ctx context.Context, s *Session, code string) (*entity.User, error) {
	c, err := a.takeChallenge(ctx, s, auth.PurposeAdminLogin)
	if err != nil {
		return nil, err
	}
	if err := c.Verify(strings.TrimSpace(code), a.now()); err != nil {
		a.Metrics.Login("admin", "bad_code")
		a.audit(s, entity.ActionLoginFail, "admin verification failed for "+c.Destination)
		return nil, err
	}
	u, ok := s.State().UserByEmail(c.Destination)
	if !ok {
		return nil, ErrUserNotFound
	}
	s.Dispatch(state.Login{User: u})
	s.Touch()
	a.audit(s, entity.ActionLoginSuccess, "admin login: "+u.Email)
	a.logger().WithFields(logrus.Fields{"session": s.ID, "email": u.Email}).Info("admin login")
	return &u, nil
}

func (a *AuthService) Logout(s *Session) {
	st := s.State()
	if st.CurrentUser != nil {
		a.logger().WithFields(logrus.Fields{"session": s.ID, "email": st.CurrentUser.Email}).Info("logout")
	}
	s.Dispatch(state.Logout{})
}

// LogoutIdle ends a privileged session that went quiet.
func (a *AuthService) LogoutIdle(s *Session) {
	st := s.State()
	if st.CurrentUser == nil {
		return
	}
	a.audit(s, entity.ActionLogoutIdle, "signed out after inactivity: "+st.CurrentUser.Email)
	s.Dispatch(state.Logout{})
	a.Metrics.IdleLogout()
	a.logger().WithFields(logrus.Fields{"session": s.ID, "email": st.CurrentUser.Email}).Info("idle logout")
}

// RequestPasswordReset emails a reset link for the account with email.
func (a *AuthService) RequestPasswordReset(ctx context.Context, s *Session, email string) error {
	u, ok := s.State().UserByEmail(strings.TrimSpace(email))
	if !ok {
		return ErrUserNotFound
	}
	link := auth.ResetLink(a.ResetBaseURL, u.ID)
	if err := a.notify(ctx, TemplatePasswordReset, u.Email, map[string]any{
		"Name": u.Name,
		"Link": link,
	}); err != nil {
		return err
	}
	a.audit(s, entity.ActionPasswordReset, "reset link sent to "+u.Email)
	return nil
}

// ResetPassword completes a reset started from an emailed link.
func (a *AuthService) ResetPassword(ctx context.Context, s *Session, userID, password, confirm string) error {
	if err := checkNewPassword(password, confirm); err != nil {
		return err
	}
	u, ok := s.State().UserByID(userID)
	if !ok {
		return ErrUserNotFound
	}
	hashed, err := a.hash(password)
	if err != nil {
		return err
	}
	s.Dispatch(state.ChangeOwnPassword{UserID: u.ID, NewPassword: hashed})
	a.audit(s, entity.ActionPasswordReset, "password reset for "+u.Email)
	return nil
}

// RequestPasswordChangeCode emails the code a privileged account needs to
// change its password.
func (a *AuthService) RequestPasswordChangeCode(ctx context.Context, s *Session) (*PendingChallenge, error) {
	u, err := currentUser(s.State())
	if err != nil {
		return nil, err
	}
	return a.startChallenge(ctx, s, u, auth.PurposePasswordChange)
}

func (a *AuthService) ChangePassword(ctx context.Context, s *Session, in ChangePasswordInput) error {
	u, err := currentUser(s.State())
	if err != nil {
		return err
	}
	if err := checkNewPassword(in.New, in.Confirm); err != nil {
		return err
	}
	if !a.Eval.PasswordMatches(u.Password, in.Current) {
		return ErrWrongPassword
	}
	if u.Type.Privileged() {
		if strings.TrimSpace(in.Code) == "" {
			return ErrTwoFactorRequired
		}
		c, err := a.takeChallenge(ctx, s, auth.PurposePasswordChange)
		if err != nil {
			return err
		}
		if err := c.Verify(strings.TrimSpace(in.Code), a.now()); err != nil {
			return err
		}
	}

	hashed, err := a.hash(in.New)
	if err != nil {
		return err
	}
	s.Dispatch(state.ChangeOwnPassword{UserID: u.ID, NewPassword: hashed})
	s.Touch()
	a.audit(s, entity.ActionPasswordChange, "password changed by "+u.Email)
	return nil
}

func (a *AuthService) startChallenge(ctx context.Context, s *Session, u entity.User, purpose auth.Purpose) (*PendingChallenge, error) {
	if a.Challenges == nil {
		return nil, fmt.Errorf("%w: no challenge store", ErrNotificationFailed)
	}
	code, err := helpers.GenOTPCode()
	if err != nil {
		return nil, err
	}
	c := auth.NewChallenge(code, u.Email, purpose, a.TwoFactorTTL, a.now())
	key := challengeKey(s, purpose)
	if err := a.Challenges.Put(ctx, key, c); err != nil {
		return nil, err
	}
	if err := a.notify(ctx, TemplateTwoFactor, u.Email, map[string]any{
		"Name":             u.Name,
		"Code":             code,
		"Purpose":          string(purpose),
		"ExpiresInMinutes": minutesCeil(a.TwoFactorTTL),
		"ExpiresAt":        c.ExpiresAt,
	}); err != nil {
		_, _ = a.Challenges.Take(ctx, key)
		return nil, err
	}
	return &PendingChallenge{Purpose: purpose, Destination: maskEmail(u.Email), ExpiresAt: c.ExpiresAt}, nil
}

// takeChallenge removes the pending challenge: there is a single attempt.
func (a *AuthService) takeChallenge(ctx context.Context, s *Session, purpose auth.Purpose) (*auth.Challenge, error) {
	if a.Challenges == nil {
		return nil, auth.ErrChallengeMissing
	}
	c, err := a.Challenges.Take(ctx, challengeKey(s, purpose))
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, auth.ErrChallengeMissing
	}
	return c, nil
}

func challengeKey(s *Session, purpose auth.Purpose) string {
	return helpers.KeyChallenge(s.ID, string(purpose))
}

// maskEmail keeps the first letter of the local part: j***@example.com.
func maskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return email
	}
	return email[:1] + "***" + email[at:]
}

func minutesCeil(d time.Duration) int {
	m := int(d / time.Minute)
	if d%time.Minute != 0 {
		m++
	}
	return m
}
