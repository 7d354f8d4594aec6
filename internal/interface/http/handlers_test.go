package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/vendor-directory/internal/application"
	"github.com/oksasatya/vendor-directory/internal/domain/auth"
	"github.com/oksasatya/vendor-directory/internal/domain/entity"
	"github.com/oksasatya/vendor-directory/internal/domain/state"
	"github.com/oksasatya/vendor-directory/internal/infrastructure/memory"
	"github.com/oksasatya/vendor-directory/internal/interface/middleware"
	"github.com/oksasatya/vendor-directory/pkg/helpers"
	"github.com/oksasatya/vendor-directory/pkg/validation"
)

const masterEmail = "master@guia.local"

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
	Error   any             `json:"error"`
}

type nopNotifier struct{}

func (nopNotifier) Send(context.Context, string, string, map[string]any) error { return nil }

type harness struct {
	engine   *gin.Engine
	store    *memory.Store
	sessions *application.SessionManager
	profiles *application.ProfileService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()
	logger, _ := test.NewNullLogger()

	store := memory.NewStore(nil)
	seed(t, store)

	deps := &application.Deps{
		Notifier:   nopNotifier{},
		Challenges: memory.NewChallengeStore(),
		Logger:     logger,
	}
	sessions := application.NewSessionManager(store, memory.NewLocalStore(), logger, nil, 0)
	t.Cleanup(sessions.Close)

	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, time.Hour)
	eval := auth.NewEvaluator(auth.DefaultUserPolicy(), auth.DefaultAdminPolicy(), masterEmail, "bootstrap-secret", "123456")
	authSvc := application.NewAuthService(deps, eval, 10*time.Minute, "https://guia.test")
	profiles := application.NewProfileService(deps, jwt, sessions)
	cookies := helpers.NewCookie("", false)

	users := NewUserHandler(application.NewRegistrationService(deps), profiles, cookies, logger)
	authH := NewAuthHandler(authSvc, profiles, cookies, logger)
	vendors := NewVendorHandler(application.NewVendorService(deps, "feedback@guia.test"), logger)
	admin := NewAdminHandler(application.NewAdminService(deps, "123456"), logger)

	r := gin.New()
	r.GET("/bare/state", users.State)

	g := r.Group("", middleware.Device(sessions, cookies))
	g.GET("/state", users.State)
	g.POST("/auth/login", authH.Login)
	g.GET("/vendors/:id", vendors.Get)
	g.GET("/profile", middleware.RequireUser(profiles), users.GetProfile)
	adm := g.Group("/admin", middleware.RequireUser(profiles), middleware.RequireAdmin())
	adm.POST("/bans", admin.Ban)

	return &harness{engine: r, store: store, sessions: sessions, profiles: profiles}
}

func seed(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()
	lat, lng := -23.561, -46.656
	users := []entity.User{
		{ID: "master", Name: "Master", Email: masterEmail, Type: entity.UserTypeMaster, Password: "root-pass"},
		{ID: "u1", Name: "Ana", Email: "ana@example.com", CPF: "11122233344", Type: entity.UserTypeUser, Password: "ana-pass"},
		{ID: "v1", Name: "Bruno", Email: "bruno@padaria.com", CPF: "12345678000190", Type: entity.UserTypeVendor, Password: "bruno-pass"},
	}
	for i := range users {
		require.NoError(t, store.UpsertUser(ctx, &users[i]))
	}
	v := entity.Vendor{
		ID: "v1", Name: "Padaria Central", Document: "12345678000190", Phone: "1133334444",
		Address: "Rua Augusta, 10, Consolação, São Paulo - SP", Latitude: &lat, Longitude: &lng,
		Categories: []string{"Padaria"}, Reviews: []entity.Review{}, Subtype: entity.SubtypeCommerce,
		Visibility: entity.Visibility{ShowPhone: false, ShowAddress: true, ShowWebsite: true},
	}
	require.NoError(t, store.UpsertVendor(ctx, &v))
}

func (h *harness) do(t *testing.T, method, path, device, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if device != "" {
		req.Header.Set(helpers.HeaderDeviceID, device)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func (h *harness) login(t *testing.T, device, email, password string) string {
	t.Helper()
	w, env := h.do(t, http.MethodPost, "/auth/login", device, "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := env.Meta["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

// signInMaster skips the emailed code the admin surface asks for.
func (h *harness) signInMaster(t *testing.T, device string) string {
	t.Helper()
	s, err := h.sessions.Get(context.Background(), device)
	require.NoError(t, err)
	u, ok := s.State().UserByEmail(masterEmail)
	require.True(t, ok)
	s.Dispatch(state.Login{User: u})
	pair, err := h.profiles.IssueTokens(context.Background(), &u, s.ID)
	require.NoError(t, err)
	return pair.AccessToken
}

func TestState_VisitorSeesMaskedVendorsAndNoAccounts(t *testing.T) {
	h := newHarness(t)
	device := uuid.NewString()

	w, env := h.do(t, http.MethodGet, "/state", device, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, device, w.Header().Get(helpers.HeaderDeviceID))

	var view StateView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Nil(t, view.CurrentUser)
	assert.Empty(t, view.Users)
	require.Len(t, view.Vendors, 1)
	assert.Empty(t, view.Vendors[0].Phone, "hidden phone must be blanked")
	assert.NotEmpty(t, view.Vendors[0].Address)
	assert.Equal(t, state.ThemeLight, view.Theme)
}

func TestDevice_IssuesIDWhenMissing(t *testing.T) {
	h := newHarness(t)

	w, _ := h.do(t, http.MethodGet, "/state", "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	id := w.Header().Get(helpers.HeaderDeviceID)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.Contains(t, w.Header().Get("Set-Cookie"), helpers.CookieDevice+"="+id)
}

func TestRoutesWithoutDeviceAnswer503(t *testing.T) {
	h := newHarness(t)

	w, env := h.do(t, http.MethodGet, "/bare/state", "", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, env.Success)
}

func TestDevice_RefusesNewDevicesAtCapacity(t *testing.T) {
	h := newHarness(t)
	h.sessions.MaxSessions = 1
	known := uuid.NewString()

	w, _ := h.do(t, http.MethodGet, "/state", known, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env := h.do(t, http.MethodGet, "/state", uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.False(t, env.Success)

	w, _ = h.do(t, http.MethodGet, "/state", known, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin_TokenOnlyWorksOnItsDevice(t *testing.T) {
	h := newHarness(t)
	deviceA, deviceB := uuid.NewString(), uuid.NewString()

	token := h.login(t, deviceA, "ana@example.com", "ana-pass")

	w, env := h.do(t, http.MethodGet, "/profile", deviceA, token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var u entity.User
	require.NoError(t, json.Unmarshal(env.Data, &u))
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Empty(t, u.Password)

	w, _ = h.do(t, http.MethodGet, "/profile", deviceB, token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = h.do(t, http.MethodGet, "/profile", deviceA, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestState_CurrentUserFollowsEditsFromOtherDevices(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	device := uuid.NewString()
	h.login(t, device, "ana@example.com", "ana-pass")
	s, ok := h.sessions.Lookup(device)
	require.True(t, ok)
	s.Wait()

	stored, err := h.store.FindUser(ctx, "id", "u1")
	require.NoError(t, err)
	stored.Name = "Ana Lima"
	require.NoError(t, h.store.UpsertUser(ctx, stored))

	w, env := h.do(t, http.MethodGet, "/state", device, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view StateView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.NotNil(t, view.CurrentUser)
	assert.Equal(t, "Ana Lima", view.CurrentUser.Name)

	require.NoError(t, h.store.DeleteUser(ctx, "u1"))
	_, env = h.do(t, http.MethodGet, "/state", device, "", nil)
	view = StateView{}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Nil(t, view.CurrentUser)
}

func TestLogin_WrongPasswordReportsAttemptsLeft(t *testing.T) {
	h := newHarness(t)
	device := uuid.NewString()

	w, env := h.do(t, http.MethodPost, "/auth/login", device, "", gin.H{"email": "ana@example.com", "password": "nope"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	details, ok := env.Error.(map[string]any)
	require.True(t, ok, "error details: %v", env.Error)
	assert.EqualValues(t, 2, details["attempts_left"])
	assert.Equal(t, string(auth.OutcomeBadCredentials), details["outcome"])
}

func TestLogin_InvalidPayload(t *testing.T) {
	h := newHarness(t)

	w, env := h.do(t, http.MethodPost, "/auth/login", uuid.NewString(), "", gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid payload", env.Message)
}

func TestVendorDetail_OwnerSeesHiddenPhone(t *testing.T) {
	h := newHarness(t)
	device := uuid.NewString()

	_, env := h.do(t, http.MethodGet, "/vendors/v1", device, "", nil)
	var v entity.Vendor
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.Empty(t, v.Phone)

	h.login(t, device, "bruno@padaria.com", "bruno-pass")
	_, env = h.do(t, http.MethodGet, "/vendors/v1", device, "", nil)
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.Equal(t, "1133334444", v.Phone)

	w, _ := h.do(t, http.MethodGet, "/vendors/missing", device, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdmin_OrdinaryUserIsForbidden(t *testing.T) {
	h := newHarness(t)
	device := uuid.NewString()
	token := h.login(t, device, "ana@example.com", "ana-pass")

	w, _ := h.do(t, http.MethodPost, "/admin/bans", device, token, gin.H{"value": "99988877766", "confirm": true})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdmin_BanNeedsConfirmation(t *testing.T) {
	h := newHarness(t)
	device := uuid.NewString()
	token := h.signInMaster(t, device)

	w, _ := h.do(t, http.MethodPost, "/admin/bans", device, token, gin.H{"value": "999.888.777-66"})
	assert.Equal(t, http.StatusPreconditionRequired, w.Code)

	w, _ = h.do(t, http.MethodPost, "/admin/bans", device, token, gin.H{"value": "999.888.777-66", "confirm": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	s, ok := h.sessions.Lookup(device)
	require.True(t, ok)
	s.Wait()
	banned, err := h.store.IsBanned(context.Background(), "99988877766")
	require.NoError(t, err)
	assert.True(t, banned)
}

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{auth.ErrLocked, http.StatusLocked},
		{&application.LoginError{Outcome: auth.OutcomeBadCredentials, AttemptsLeft: 1}, http.StatusUnauthorized},
		{fmt.Errorf("%w: cep", application.ErrInvalidInput), http.StatusBadRequest},
		{application.ErrConfirmationNeeded, http.StatusPreconditionRequired},
		{application.ErrCannotTargetMaster, http.StatusForbidden},
		{application.ErrEmailTaken, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			assert.Equal(t, tc.want, statusOf(tc.err))
		})
	}
}
