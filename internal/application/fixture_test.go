package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/vendor-directory/internal/domain/auth"
	"github.com/oksasatya/vendor-directory/internal/domain/entity"
	"github.com/oksasatya/vendor-directory/internal/domain/state"
	"github.com/oksasatya/vendor-directory/internal/infrastructure/memory"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const masterEmail = "master@guia.local"

type sentMessage struct {
	Template string
	To       string
	Params   map[string]any
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (n *fakeNotifier) Send(_ context.Context, templateID, to string, params map[string]any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMessage{Template: templateID, To: to, Params: params})
	return nil
}

func (n *fakeNotifier) last(t *testing.T) sentMessage {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.sent, "nothing was sent")
	return n.sent[len(n.sent)-1]
}

type fakeLocator struct{ loc entity.Location }

func (l fakeLocator) CurrentLocation(context.Context, string) entity.Location { return l.loc }

type fakeAddresses struct {
	addr entity.PostalAddress
	err  error
}

func (a fakeAddresses) Resolve(context.Context, string) (entity.PostalAddress, error) {
	return a.addr, a.err
}

type fakePhotos struct{}

func (fakePhotos) Upload(_ context.Context, folder, ownerID, _ string) (string, error) {
	return "https://cdn.test/" + folder + "/" + ownerID + ".png", nil
}

type fakeIndex struct {
	ids     []string
	deleted []string
}

func (x *fakeIndex) Sync(context.Context, []entity.Vendor) error { return nil }

func (x *fakeIndex) Delete(_ context.Context, id string) error {
	x.deleted = append(x.deleted, id)
	return nil
}

func (x *fakeIndex) Search(context.Context, string, int) ([]string, error) { return x.ids, nil }

// failingStore rejects user writes.
type failingStore struct {
	*memory.Store
}

var errStoreDown = errors.New("store down")

func (failingStore) UpsertUser(context.Context, *entity.User) error { return errStoreDown }

type fixture struct {
	store      *memory.Store
	local      *memory.LocalStore
	notifier   *fakeNotifier
	challenges *memory.ChallengeStore
	index      *fakeIndex
	deps       *Deps
	sessions   *SessionManager
	logs       *test.Hook

	auth     *AuthService
	register *RegistrationService
	vendors  *VendorService
	admin    *AdminService

	now time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	f := &fixture{
		store:      memory.NewStore(nil),
		local:      memory.NewLocalStore(),
		notifier:   &fakeNotifier{},
		challenges: memory.NewChallengeStore(),
		index:      &fakeIndex{},
		logs:       hook,
		now:        t0,
	}
	f.deps = &Deps{
		Notifier:   f.notifier,
		Challenges: f.challenges,
		Locator:    fakeLocator{loc: entity.Location{Lat: -23.56, Lng: -46.65}},
		Addresses: fakeAddresses{addr: entity.PostalAddress{
			PostalCode: "01310100", Street: "Avenida Paulista", Neighborhood: "Bela Vista", City: "São Paulo", State: "SP",
		}},
		Photos: fakePhotos{},
		Index:  f.index,
		Logger: logger,
		Now:    func() time.Time { return f.now },
	}
	f.sessions = NewSessionManager(f.store, f.local, logger, nil, 0)
	t.Cleanup(f.sessions.Close)

	eval := auth.NewEvaluator(auth.DefaultUserPolicy(), auth.DefaultAdminPolicy(), masterEmail, "bootstrap-secret", "123456")
	f.auth = NewAuthService(f.deps, eval, 10*time.Minute, "https://guia.test")
	f.register = NewRegistrationService(f.deps)
	f.vendors = NewVendorService(f.deps, "feedback@guia.test")
	f.admin = NewAdminService(f.deps, "123456")
	return f
}

func (f *fixture) session(t *testing.T, id string) *Session {
	t.Helper()
	s, err := f.sessions.Get(context.Background(), id)
	require.NoError(t, err)
	s.now = func() time.Time { return f.now }
	s.Touch()
	return s
}

// seed writes records straight into the store.
func (f *fixture) seed(t *testing.T, users []entity.User, vendors []entity.Vendor) {
	t.Helper()
	ctx := context.Background()
	for i := range users {
		require.NoError(t, f.store.UpsertUser(ctx, &users[i]))
	}
	for i := range vendors {
		require.NoError(t, f.store.UpsertVendor(ctx, &vendors[i]))
	}
}

func (f *fixture) standardSeed(t *testing.T) {
	lat, lng := -23.561, -46.656
	f.seed(t,
		[]entity.User{
			{ID: "master", Name: "Master", Email: masterEmail, Type: entity.UserTypeMaster, Password: "root-pass"},
			{ID: "admin", Name: "Ada", Email: "ada@guia.test", Type: entity.UserTypeAdmin, Password: "admin-pass"},
			{ID: "u1", Name: "Ana", Email: "ana@example.com", CPF: "11122233344", Type: entity.UserTypeUser, Password: "ana-pass"},
			{ID: "v1", Name: "Bruno", Email: "bruno@padaria.com", CPF: "12345678000190", Type: entity.UserTypeVendor, Password: "bruno-pass"},
		},
		[]entity.Vendor{{
			ID: "v1", Name: "Padaria Central", Document: "12345678000190", Phone: "1133334444",
			Address: "Rua Augusta, 10, Consolação, São Paulo - SP", Latitude: &lat, Longitude: &lng,
			Categories: []string{"Padaria"}, Reviews: []entity.Review{}, Subtype: entity.SubtypeCommerce,
			Visibility: entity.Visibility{ShowPhone: false, ShowAddress: true, ShowWebsite: true},
		}},
	)
}

// signIn puts u on the session without going through the login rules.
func (f *fixture) signIn(t *testing.T, s *Session, userID string) entity.User {
	t.Helper()
	u, ok := s.State().UserByID(userID)
	require.True(t, ok, "unknown user %s", userID)
	s.Dispatch(state.Login{User: u})
	return u
}
