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
	"github.com/oksasatya/vendor-directory/pkg/validation"
)

type CreateAdminInput struct {
	Name     string `json:"name" binding:"required,min=2,max=120"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

// UserPatch is an admin edit of an account; nil fields are left alone.
type UserPatch struct {
	Name    *string          `json:"name" binding:"omitempty,min=2,max=120"`
	Email   *string          `json:"email" binding:"omitempty,email"`
	Address *string          `json:"address" binding:"omitempty,max=300"`
	Type    *entity.UserType `json:"type" binding:"omitempty,oneof=USER VENDOR ADMIN"`
}

type ConfigInput struct {
	AppName          string           `json:"appName" binding:"required,max=60"`
	LogoURL          string           `json:"logoUrl" binding:"omitempty,max=500"`
	LogoWidth        int              `json:"logoWidth" binding:"gte=0,lte=600"`
	PrimaryColor     string           `json:"primaryColor" binding:"omitempty,hexcolor"`
	SecondaryColor   string           `json:"secondaryColor" binding:"omitempty,hexcolor"`
	AppDescription   string           `json:"appDescription" binding:"max=500"`
	DescriptionStyle entity.TextStyle `json:"descriptionStyle"`
}

// AdminService holds the administrative operations. Every call requires a
// signed-in ADMIN or MASTER, and destructive ones an explicit confirm flag.
type AdminService struct {
	*Deps

	// RecoveryPassword is what a master reset writes.
	RecoveryPassword string
}

func NewAdminService(d *Deps, recoveryPassword string) *AdminService {
	if recoveryPassword == "" {
		recoveryPassword = state.DefaultRecoveryPassword
	}
	return &AdminService{Deps: d, RecoveryPassword: recoveryPassword}
}

// Ban adds a CPF/CNPJ or email to the deny-list. Banning twice is harmless.
func (a *AdminService) Ban(ctx context.Context, s *Session, value string, confirm bool) error {
	actor, err := requirePrivileged(s.State())
	if err != nil {
		return err
	}
	value = banKey(value)
	if value == "" {
		return fmt.Errorf("%w: empty value", ErrInvalidInput)
	}
	if !confirm {
		return ErrConfirmationNeeded
	}
	if value == banKey(actor.Email) || value == actor.CPF {
		return ErrCannotTargetSelf
	}
	s.Dispatch(state.BanDocument{Value: value})
	a.done(s, actor, entity.ActionBan, "banned "+value)
	return nil
}

func (a *AdminService) Unban(ctx context.Context, s *Session, value string) error {
	actor, err := requirePrivileged(s.State())
	if err != nil {
		return err
	}
	value = banKey(value)
	if value == "" {
		return fmt.Errorf("%w: empty value", ErrInvalidInput)
	}
	s.Dispatch(state.UnbanDocument{Value: value})
	a.done(s, actor, entity.ActionBan, "unbanned "+value)
	return nil
}

// UnlockUser clears the failed-login counter and lock of an account.
func (a *AdminService) UnlockUser(ctx context.Context, s *Session, userID string) error {
	st := s.State()
	actor, err := requirePrivileged(st)
	if err != nil {
		return err
	}
	u, ok := st.UserByID(userID)
	if !ok {
		return ErrUserNotFound
	}
	s.Dispatch(state.UnlockUser{UserID: u.ID})
	a.done(s, actor, entity.ActionUnlockUser, "unlocked "+u.Email)
	return nil
}

// MasterResetPassword sets the recovery password on an account. MASTER only.
func (a *AdminService) MasterResetPassword(ctx context.Context, s *Session, userID string, confirm bool) error {
	st := s.State()
	actor, err := requirePrivileged(st)
	if err != nil {
		return err
	}
	if actor.Type != entity.UserTypeMaster {
		return ErrForbidden
	}
	u, ok := st.UserByID(userID)
	if !ok {
		return ErrUserNotFound
	}
	if !confirm {
		return ErrConfirmationNeeded
	}
	hashed, err := a.hash(a.RecoveryPassword)
	if err != nil {
		return err
	}
	s.Dispatch(state.MasterResetPassword{UserID: u.ID, Password: hashed})
	s.Dispatch(state.UnlockUser{UserID: u.ID})
	a.done(s, actor, entity.ActionPasswordReset, "master reset for "+u.Email)
	return nil
}

// DeleteUser removes an account and, for vendors, the listing it owns.
// Nobody may delete themselves or the MASTER; only the MASTER deletes admins.
func (a *AdminService) DeleteUser(ctx context.Context, s *Session, userID string, confirm bool) error {
	st := s.State()
	actor, err := requirePrivileged(st)
	if err != nil {
		return err
	}
	u, ok := st.UserByID(userID)
	if !ok {
		return ErrUserNotFound
	}
	if err := a.canTarget(actor, u); err != nil {
		return err
	}
	if !confirm {
		return ErrConfirmationNeeded
	}
	if _, isVendor := st.VendorByID(u.ID); isVendor {
		s.Dispatch(state.DeleteVendor{ID: u.ID})
		a.unindex(ctx, u.ID)
	}
	s.Dispatch(state.DeleteUser{ID: u.ID})
	a.done(s, actor, entity.ActionUserDelete, "deleted user "+u.Email)
	return nil
}

func (a *AdminService) DeleteVendor(ctx context.Context, s *Session, vendorID string, confirm bool) error {
	st := s.State()
	actor, err := requirePrivileged(st)
	if err != nil {
		return err
	}
	v, ok := st.VendorByID(vendorID)
	if !ok {
		return ErrVendorNotFound
	}
	if !confirm {
		return ErrConfirmationNeeded
	}
	s.Dispatch(state.DeleteVendor{ID: v.ID})
	a.unindex(ctx, v.ID)
	a.done(s, actor, entity.ActionVendorDelete, "deleted vendor "+v.Name)
	return nil
}

// FeatureVendor promotes a listing for days; zero or less ends the promotion.
func (a *AdminService) FeatureVendor(ctx context.Context, s *Session, vendorID string, days int) (int64, error) {
	st := s.State()
	actor, err := requirePrivileged(st)
	if err != nil {
		return 0, err
	}
	v, ok := st.VendorByID(vendorID)
	if !ok {
		return 0, ErrVendorNotFound
	}
	var until int64
	details := "unfeatured " + v.Name
	if days > 0 {
		until = a.now().Add(time.Duration(days) * 24 * time.Hour).UnixMilli()
		details = fmt.Sprintf("featured %s for %d day(s)", v.Name, days)
	}
	s.Dispatch(state.FeatureVendor{VendorID: v.ID, Until: until})
	a.done(s, actor, entity.ActionFeatureVendor, details)
	return until, nil
}

// CreateAdmin adds an ADMIN account. MASTER only.
func (a *AdminService) CreateAdmin(ctx context.Context, s *Session, in CreateAdminInput) (*entity.User, error) {
	st := s.State()
	actor, err := requirePrivileged(st)
	if err != nil {
		return nil, err
	}
	if actor.Type != entity.UserTypeMaster {
		return nil, ErrForbidden
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(in.Email)
	if err := checkAvailable(st, email, ""); err != nil {
		return nil, err
	}
	hashed, err := a.hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := entity.User{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Type:     entity.UserTypeAdmin,
		Password: hashed,
	}
	s.Dispatch(state.AddUser{User: u})
	a.done(s, actor, entity.ActionConfigUpdate, "created admin "+u.Email)
	return &u, nil
}

// EditUser applies an admin edit to an account.
func (a *AdminService) EditUser(ctx context.Context, s *Session, userID string, p UserPatch) (*entity.User, error) {
	if err := validation.Struct(p); err != nil {
		return nil, err
	}
	st := s.State()
	actor, err := requirePrivileged(st)
	if err != nil {
		return nil, err
	}
	u, ok := st.UserByID(userID)
	if !ok {
		return nil, ErrUserNotFound
	}
	if u.Type == entity.UserTypeMaster && actor.ID != u.ID {
		return nil, ErrCannotTargetMaster
	}
	if p.Type != nil && actor.Type != entity.UserTypeMaster {
		return nil, ErrForbidden
	}
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		email := strings.TrimSpace(*p.Email)
		for _, other := range st.Users {
			if other.ID != u.ID && strings.EqualFold(other.Email, email) {
				return nil, ErrEmailTaken
			}
		}
		u.Email = email
	}
	if p.Address != nil {
		u.Address = strings.TrimSpace(*p.Address)
	}
	if p.Type != nil && u.Type != entity.UserTypeMaster {
		u.Type = *p.Type
	}
	s.Dispatch(state.UpdateUser{User: u})
	a.logger().WithFields(logrus.Fields{"session": s.ID, "user_id": u.ID, "by": actor.ID}).Info("user edited")
	return &u, nil
}

func (a *AdminService) UpdateAppConfig(ctx context.Context, s *Session, in ConfigInput) (entity.AppConfig, error) {
	actor, err := requirePrivileged(s.State())
	if err != nil {
		return entity.AppConfig{}, err
	}
	if err := validation.Struct(in); err != nil {
		return entity.AppConfig{}, err
	}
	cfg := entity.AppConfig{
		AppName:          strings.TrimSpace(in.AppName),
		LogoURL:          strings.TrimSpace(in.LogoURL),
		LogoWidth:        in.LogoWidth,
		PrimaryColor:     in.PrimaryColor,
		SecondaryColor:   in.SecondaryColor,
		AppDescription:   in.AppDescription,
		DescriptionStyle: in.DescriptionStyle,
	}
	s.Dispatch(state.UpdateAppConfig{Config: cfg})
	a.done(s, actor, entity.ActionConfigUpdate, "app config updated")
	return cfg, nil
}

// FactoryReset removes every vendor and every account except the MASTER,
// clears the deny-list and restores the default config. MASTER only.
func (a *AdminService) FactoryReset(ctx context.Context, s *Session, confirm bool) error {
	st := s.State()
	actor, err := requirePrivileged(st)
	if err != nil {
		return err
	}
	if actor.Type != entity.UserTypeMaster {
		return ErrForbidden
	}
	if !confirm {
		return ErrConfirmationNeeded
	}
	for _, v := range st.Vendors {
		s.Dispatch(state.DeleteVendor{ID: v.ID})
		a.unindex(ctx, v.ID)
	}
	for _, u := range st.Users {
		if u.Type != entity.UserTypeMaster {
			s.Dispatch(state.DeleteUser{ID: u.ID})
		}
	}
	for _, b := range st.Banned {
		s.Dispatch(state.UnbanDocument{Value: b})
	}
	s.Dispatch(state.UpdateAppConfig{Config: entity.DefaultAppConfig()})
	a.done(s, actor, entity.ActionConfigUpdate, "factory reset")
	a.logger().WithFields(logrus.Fields{"session": s.ID, "by": actor.Email}).Warn("factory reset")
	return nil
}

// SecurityLogs returns the session audit trail, newest first.
func (a *AdminService) SecurityLogs(s *Session) ([]entity.SecurityLog, error) {
	st := s.State()
	if _, err := requirePrivileged(st); err != nil {
		return nil, err
	}
	return st.SecurityLogs, nil
}

func (a *AdminService) ClearSecurityLogs(s *Session) error {
	if _, err := requirePrivileged(s.State()); err != nil {
		return err
	}
	s.Dispatch(state.ClearSecurityLogs{})
	return nil
}

func (a *AdminService) canTarget(actor, target entity.User) error {
	switch {
	case target.ID == actor.ID:
		return ErrCannotTargetSelf
	case target.Type == entity.UserTypeMaster:
		return ErrCannotTargetMaster
	case target.Type == entity.UserTypeAdmin && actor.Type != entity.UserTypeMaster:
		return ErrForbidden
	}
	return nil
}

// done records an admin action in the audit log and touches the session.
func (a *AdminService) done(s *Session, actor entity.User, action entity.SecurityAction, details string) {
	s.Touch()
	a.audit(s, action, details)
	a.logger().WithFields(logrus.Fields{"session": s.ID, "by": actor.Email, "action": action}).Info(details)
}

func (a *AdminService) unindex(ctx context.Context, id string) {
	if a.Index == nil {
		return
	}
	if err := a.Index.Delete(ctx, id); err != nil {
		a.logger().WithError(err).WithField("vendor_id", id).Warn("search index delete failed")
	}
}

// banKey normalizes a ban value: emails are lowercased, documents keep only digits.
func banKey(value string) string {
	value = strings.TrimSpace(value)
	if strings.Contains(value, "@") {
		return strings.ToLower(value)
	}
	return validation.Digits(value)
}
