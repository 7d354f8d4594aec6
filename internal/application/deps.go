package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vendor-directory/internal/domain/entity"
	"github.com/oksasatya/vendor-directory/internal/domain/state"
	"github.com/oksasatya/vendor-directory/pkg/helpers"
	"github.com/oksasatya/vendor-directory/pkg/metrics"
)

// Notification templates.
const (
	TemplateTwoFactor     = "two_factor_code"
	TemplatePasswordReset = "password_reset"
	TemplateFeedback      = "feedback"
)

// MinPasswordLength matches the shortest password the fallback rules accept.
const MinPasswordLength = 6

// Deps are the collaborators shared by the services. Nil optional ports
// disable the feature that needs them.
type Deps struct {
	Notifier   Notifier
	Challenges ChallengeStore
	Locator    Locator
	Addresses  AddressResolver
	Photos     PhotoStore
	Index      VendorIndex
	Logger     *logrus.Logger
	Metrics    *metrics.Metrics
	Now        func() time.Time

	// HashPasswords stores new passwords as bcrypt hashes.
	HashPasswords bool
}

func (d *Deps) logger() *logrus.Logger {
	if d.Logger == nil {
		return logrus.StandardLogger()
	}
	return d.Logger
}

func (d *Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// audit appends an entry to the session security log.
func (d *Deps) audit(s *Session, action entity.SecurityAction, details string) {
	s.Dispatch(state.AddSecurityLog{Log: entity.SecurityLog{
		ID:        uuid.NewString(),
		Timestamp: d.now().UnixMilli(),
		Action:    action,
		Details:   details,
	}})
}

func (d *Deps) notify(ctx context.Context, template, to string, params map[string]any) error {
	if d.Notifier == nil {
		return fmt.Errorf("%w: no notifier configured", ErrNotificationFailed)
	}
	data := make(map[string]any, len(params)+3)
	for k, v := range params {
		data[k] = v
	}
	data["TimeAt"] = d.now().UTC()
	if c, ok := helpers.ClientFrom(ctx); ok {
		data["IP"] = c.IP
		data["UserAgent"] = c.UserAgent
	}
	err := d.Notifier.Send(ctx, template, to, data)
	d.Metrics.Notification(template, err)
	if err != nil {
		d.logger().WithError(err).WithFields(logrus.Fields{"template": template, "to": to}).Warn("notification failed")
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	return nil
}

func (d *Deps) hash(password string) (string, error) {
	if !d.HashPasswords {
		return password, nil
	}
	return helpers.HashPassword(password)
}

func (d *Deps) uploadPhoto(ctx context.Context, folder, ownerID, dataURI string) (*string, error) {
	if dataURI == "" {
		return nil, nil
	}
	if d.Photos == nil {
		return nil, ErrPhotoUploadDisabled
	}
	url, err := d.Photos.Upload(ctx, folder, ownerID, dataURI)
	if err != nil {
		return nil, err
	}
	return &url, nil
}

// currentUser returns the fresh record of the signed-in user. An account
// deleted elsewhere counts as signed out.
func currentUser(st state.State) (entity.User, error) {
	if st.CurrentUser == nil {
		return entity.User{}, ErrNotLoggedIn
	}
	u, ok := st.UserByID(st.CurrentUser.ID)
	if !ok {
		return entity.User{}, ErrNotLoggedIn
	}
	return u, nil
}

func requirePrivileged(st state.State) (entity.User, error) {
	u, err := currentUser(st)
	if err != nil {
		return u, err
	}
	if !u.Type.Privileged() {
		return u, ErrForbidden
	}
	return u, nil
}

func checkNewPassword(password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// displayDate is the dd/mm/yyyy form reviews carry.
func displayDate(t time.Time) string {
	return t.Format("02/01/2006")
}
