package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/vendor-directory/internal/domain/auth"
	"github.com/oksasatya/vendor-directory/internal/domain/entity"
	"github.com/oksasatya/vendor-directory/internal/domain/state"
)

func TestAdmin_RequiresPrivilegedAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.standardSeed(t)
	s := f.session(t, "dev-1")

	assert.ErrorIs(t, f.admin.Ban(ctx, s, "x@y.com", true), ErrNotLoggedIn)
	f.signIn(t, s, "u1")
	assert.ErrorIs(t, f.admin.Ban(ctx, s, "x@y.com", true), ErrForbidden)
	assert.ErrorIs(t, f.admin.UnlockUser(ctx, s, "u1"), ErrForbidden)
	_, err := f.admin.SecurityLogs(s)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAdmin_BanBlocksLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.standardSeed(t)
	admin := f.session(t, "dev-admin")
	f.signIn(t, admin, "admin")

	assert.ErrorIs(t, f.admin.Ban(ctx, admin, "ANA@example.com", false), ErrConfirmationNeeded)
	require.NoError(t, f.admin.Ban(ctx, admin, "ANA@example.com", true))
	require.NoError(t, f.admin.Ban(ctx, admin, "ana@example.com", true))
	admin.Wait()
	assert.Equal(t, []string{"ana@example.com"}, admin.State().Banned)
	assert.Equal(t, entity.ActionBan, admin.State().SecurityLogs[0].Action)

	user := f.session(t, "dev-user")
	_, err := f.auth.Login(ctx, user, "ana@example.com", "ana-pass")
	assert.ErrorIs(t, err, auth.ErrBanned)

	require.NoError(t, f.admin.Unban(ctx, admin, "ana@example.com"))
	admin.Wait()
	_, err = f.auth.Login(ctx, user, "ana@example.com", "ana-pass")
	assert.NoError(t, err)
}

func TestAdmin_CannotBanThemselves(t *testing.T) {
	f := newFixture(t)
	f.standardSeed(t)
	s := f.session(t, "dev-1")
	f.signIn(t, s, "admin")

	assert.ErrorIs(t, f.admin.Ban(context.Background(), s, "Ada@Guia.test", true), ErrCannotTargetSelf)
}

func TestAdmin_DeleteUserRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.standardSeed(t)
	s := f.session(t, "dev-1")
	f.signIn(t, s, "admin")

	assert.ErrorIs(t, f.admin.DeleteUser(ctx, s, "admin", true), ErrCannotTargetSelf)
	assert.ErrorIs(t, f.admin.DeleteUser(ctx, s, "master", true), ErrCannotTargetMaster)
	assert.ErrorIs(t, f.admin.DeleteUser(ctx, s, "v1", false), ErrConfirmationNeeded)
	assert.ErrorIs(t, f.admin.DeleteUser(ctx, s, "ghost", true), ErrUserNotFound)

	require.NoError(t, f.admin.DeleteUser(ctx, s, "v1", true))
	s.Wait()

	u, _ := f.store.FindUser(ctx, "id", "v1")
	assert.Nil(t, u)
	v, _ := f.store.FindVendor(ctx, "id", "v1")
	assert.Nil(t, v, "the owned listing goes too")
	assert.Equal(t, []string{"v1"}, f.index.deleted)
	assert.Equal(t, entity.ActionUserDelete, s.State().SecurityLogs[0].Action)
}

func TestAdmin_OnlyMasterDeletesAdmins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.standardSeed(t)
	f.seed(t, []entity.User{{ID: "admin2", Email: "bia@guia.test", Type: entity.UserTypeAdmin}}, nil)
	s := f.session(t, "dev-1")

	f.signIn(t, s, "admin")
	assert.ErrorIs(t, f.admin.DeleteUser(ctx, s, "admin2", true), ErrForbidden)

	f.signIn(t, s, "master")
	assert.NoError(t, f.admin.DeleteUser(ctx, s, "admin2", true))
}

func TestAdmin_UnlockAndMasterReset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.standardSeed(t)
	f.seed(t, []entity.User{{
		ID: "u2", Email: "leo@example.com", Type: entity.UserTypeUser, Password: "leo-pass",
		FailedLoginAttempts: 3, LockedUntil: t0.Add(time.Minute).UnixMilli(),
	}}, nil)
	s := f.session(t, "dev-1")
	f.signIn(t, s, "admin")

	require.NoError(t, f.admin.UnlockUser(ctx, s, "u2"))
	u, _ := s.State().UserByID("u2")
	assert.Zero(t, u.FailedLoginAttempts)
	assert.Zero(t, u.LockedUntil)

	assert.ErrorIs(t, f.admin.MasterResetPassword(ctx, s, "u2", true), ErrForbidden)

	f.signIn(t, s, "master")
	assert.ErrorIs(t, f.admin.MasterResetPassword(ctx, s, "u2", false), ErrConfirmationNeeded)
	require.NoError(t, f.admin.MasterResetPassword(ctx, s, "u2", true))
	s.Wait()

	stored, _ := f.store.FindUser(ctx, "id", "u2")
	assert.Equal(t, "123456", stored.Password)
}

func TestAdmin_FeatureVendor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.standardSeed(t)
	s := f.session(t, "dev-1")
	f.signIn(t, s, "admin")

	until, err := f.admin.FeatureVendor(ctx, s, "v1", 7)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(7*24*time.Hour).UnixMilli(), until)
	v, _ := s.State().VendorByID("v1")
	assert.True(t, v.IsFeatured(t0))

	_, err = f.admin.FeatureVendor(ctx, s, "v1", 0)
	require.NoError(t, err)
	v, _ = s.State().VendorByID("v1")
	assert.False(t, v.IsFeatured(t0))
	assert.Equal(t, entity.ActionFeatureVendor, s.State().SecurityLogs[0].Action)
}

func TestAdmin_ConfigUpdateReachesEverySession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.standardSeed(t)
	admin := f.session(t, "dev-admin")
	viewer := f.session(t, "dev-viewer")
	f.signIn(t, admin, "admin")

	_, err := f.admin.UpdateAppConfig(ctx, admin, ConfigInput{AppName: "Guia do Bairro", PrimaryColor: "#123456"})
	require.NoError(t, err)
	admin.Wait()

	assert.Equal(t, "Guia do Bairro", viewer.State().AppConfig.AppName)
	assert.Equal(t, entity.ActionConfigUpdate, admin.State().SecurityLogs[0].Action)

	_, err = f.admin.UpdateAppConfig(ctx, admin, ConfigInput{AppName: "", PrimaryColor: "blue"})
	assert.Error(t, err)
}

func TestAdmin_FactoryReset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.standardSeed(t)
	s := f.session(t, "dev-1")
	f.signIn(t, s, "admin")
	assert.ErrorIs(t, f.admin.FactoryReset(ctx, s, true), ErrForbidden)

	f.signIn(t, s, "master")
	assert.ErrorIs(t, f.admin.FactoryReset(ctx, s, false), ErrConfirmationNeeded)
	s.Dispatch(state.BanDocument{Value: "99999999999"})

	require.NoError(t, f.admin.FactoryReset(ctx, s, true))
	s.Wait()

	st := s.State()
	require.Len(t, st.Users, 1)
	assert.Equal(t, "master", st.Users[0].ID)
	assert.Empty(t, st.Vendors)
	assert.Empty(t, st.Banned)
	assert.Equal(t, entity.DefaultAppConfig(), st.AppConfig)
	require.NotNil(t, st.CurrentUser)
	assert.Equal(t, "master", st.CurrentUser.ID)
	assert.Equal(t, []string{"v1"}, f.index.deleted)
}

func TestAdmin_CreateAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.standardSeed(t)
	s := f.session(t, "dev-1")

	f.signIn(t, s, "admin")
	_, err := f.admin.CreateAdmin(ctx, s, CreateAdminInput{Name: "Bia", Email: "bia@guia.test", Password: "bia-pass"})
	assert.ErrorIs(t, err, ErrForbidden)

	f.signIn(t, s, "master")
	u, err := f.admin.CreateAdmin(ctx, s, CreateAdminInput{Name: "Bia", Email: "bia@guia.test", Password: "bia-pass"})
	require.NoError(t, err)
	assert.Equal(t, entity.UserTypeAdmin, u.Type)

	_, err = f.admin.CreateAdmin(ctx, s, CreateAdminInput{Name: "Bia", Email: "BIA@guia.test", Password: "bia-pass"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAdmin_EditUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.standardSeed(t)
	s := f.session(t, "dev-1")
	f.signIn(t, s, "admin")

	_, err := f.admin.EditUser(ctx, s, "master", UserPatch{Name: ptr("Root")})
	assert.ErrorIs(t, err, ErrCannotTargetMaster)
	_, err = f.admin.EditUser(ctx, s, "u1", UserPatch{Type: ptr(entity.UserTypeAdmin)})
	assert.ErrorIs(t, err, ErrForbidden, "only the master changes account types")
	_, err = f.admin.EditUser(ctx, s, "u1", UserPatch{Email: ptr("BRUNO@padaria.com")})
	assert.ErrorIs(t, err, ErrEmailTaken)

	u, err := f.admin.EditUser(ctx, s, "u1", UserPatch{Name: ptr("Ana Souza"), Address: ptr(" Rua A, 1 ")})
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", u.Name)
	assert.Equal(t, "Rua A, 1", u.Address)
	s.Wait()

	stored, _ := f.store.FindUser(ctx, "id", "u1")
	assert.Equal(t, "Ana Souza", stored.Name)

	f.signIn(t, s, "master")
	u, err = f.admin.EditUser(ctx, s, "u1", UserPatch{Type: ptr(entity.UserTypeVendor)})
	require.NoError(t, err)
	assert.Equal(t, entity.UserTypeVendor, u.Type)
}

func TestAdmin_DeleteVendorKeepsOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.standardSeed(t)
	s := f.session(t, "dev-1")
	f.signIn(t, s, "admin")

	assert.ErrorIs(t, f.admin.DeleteVendor(ctx, s, "v1", false), ErrConfirmationNeeded)
	require.NoError(t, f.admin.DeleteVendor(ctx, s, "v1", true))
	s.Wait()

	_, ok := s.State().VendorByID("v1")
	assert.False(t, ok)
	_, ok = s.State().UserByID("v1")
	assert.True(t, ok)
	assert.Equal(t, entity.ActionVendorDelete, s.State().SecurityLogs[0].Action)

	require.NoError(t, f.admin.ClearSecurityLogs(s))
	logs, err := f.admin.SecurityLogs(s)
	require.NoError(t, err)
	assert.Empty(t, logs)
}
