package application

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/vendor-directory/internal/domain/entity"
	repo "github.com/oksasatya/vendor-directory/internal/domain/repository"
	"github.com/oksasatya/vendor-directory/internal/domain/state"
	"github.com/oksasatya/vendor-directory/internal/infrastructure/memory"
)

func TestSession_OpenLoadsSnapshots(t *testing.T) {
	f := newFixture(t)
	f.standardSeed(t)

	s := f.session(t, "dev-1")
	st := s.State()
	assert.Len(t, st.Users, 4)
	require.Len(t, st.Vendors, 1)
	assert.Equal(t, "Padaria Central", st.Vendors[0].Name)
	assert.Equal(t, entity.DefaultAppConfig().AppName, st.AppConfig.AppName)
}

func TestSession_DispatchPersistsInOrder(t *testing.T) {
	f := newFixture(t)
	s := f.session(t, "dev-1")

	u := entity.User{ID: "u9", Name: "Caio", Email: "caio@example.com", Type: entity.UserTypeUser}
	s.Dispatch(state.AddUser{User: u})
	u.Name = "Caio Prado"
	s.Dispatch(state.UpdateUser{User: u})
	s.Wait()

	got, err := f.store.FindUser(context.Background(), "id", "u9")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Caio Prado", got.Name)

	s.Dispatch(state.DeleteUser{ID: "u9"})
	s.Wait()
	got, err = f.store.FindUser(context.Background(), "id", "u9")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSession_ChangesReachOtherSessions(t *testing.T) {
	f := newFixture(t)
	a := f.session(t, "dev-a")
	b := f.session(t, "dev-b")

	a.Dispatch(state.BanDocument{Value: "11122233344"})
	a.Wait()

	assert.True(t, b.State().IsBanned("11122233344"))
}

func TestSession_FailuresKeepOptimisticState(t *testing.T) {
	store := failingStore{Store: memory.NewStore(nil)}
	s := NewSession("dev-1", store, nil, nil, nil)
	require.NoError(t, s.Open(context.Background()))
	defer s.Close()

	s.Dispatch(state.AddUser{User: entity.User{ID: "u1", Email: "ana@example.com"}})
	s.Wait()

	select {
	case fail := <-s.Failures():
		assert.ErrorIs(t, fail.Err, errStoreDown)
		assert.Equal(t, state.CmdUpsertUser, fail.Command.Kind)
		assert.Equal(t, "u1", fail.Command.ID)
	case <-time.After(time.Second):
		t.Fatal("no failure reported")
	}
	_, ok := s.State().UserByID("u1")
	assert.True(t, ok, "local state is not rolled back")
}

func TestSession_FailureChannelDropsOldest(t *testing.T) {
	s := NewSession("dev-1", failingStore{Store: memory.NewStore(nil)}, nil, nil, nil)
	defer s.Close()

	for i := 0; i < failureBuffer+5; i++ {
		s.report(Failure{Command: state.Command{ID: string(rune('a' + i%26))}})
	}
	assert.Len(t, s.Failures(), failureBuffer)
}

func TestSession_ThemeIsDeviceLocal(t *testing.T) {
	f := newFixture(t)
	a := f.session(t, "dev-a")

	a.Dispatch(state.ToggleTheme{})
	a.Wait()

	v, ok, err := f.local.Get(context.Background(), repo.KeyTheme+":dev-a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "dark", v)

	b := f.session(t, "dev-b")
	assert.Equal(t, state.ThemeLight, b.State().Theme)

	f.sessions.Drop("dev-a")
	again := f.session(t, "dev-a")
	assert.Equal(t, state.ThemeDark, again.State().Theme, "restored on reopen")
}

func TestSession_WatchAndClose(t *testing.T) {
	f := newFixture(t)
	s := f.session(t, "dev-1")

	var seen []string
	stop := s.Watch(func(st state.State) { seen = append(seen, st.Search) })
	s.Dispatch(state.SetSearch{Query: "pão"})
	stop()
	s.Dispatch(state.SetSearch{Query: "café"})
	assert.Equal(t, []string{"pão"}, seen)

	s.Close()
	s.Close()
	next := s.Dispatch(state.AddUser{User: entity.User{ID: "late"}})
	_, ok := next.UserByID("late")
	assert.True(t, ok, "closed sessions still reduce")
	got, _ := f.store.FindUser(context.Background(), "id", "late")
	assert.Nil(t, got, "but persist nothing")
}

func TestSessionManager_SweepDropsStale(t *testing.T) {
	f := newFixture(t)
	f.sessions.TTL = time.Hour
	f.session(t, "old")
	fresh := f.session(t, "fresh")

	f.now = t0.Add(90 * time.Minute)
	fresh.Touch()

	assert.Equal(t, 1, f.sessions.Sweep(f.now))
	_, ok := f.sessions.Lookup("old")
	assert.False(t, ok)
	_, ok = f.sessions.Lookup("fresh")
	assert.True(t, ok)
}

func TestSessionManager_VisitorsExpireSooner(t *testing.T) {
	f := newFixture(t)
	f.standardSeed(t)
	f.sessions.TTL = 24 * time.Hour
	f.sessions.VisitorTTL = 30 * time.Minute
	f.session(t, "visitor")
	member := f.session(t, "member")
	f.signIn(t, member, "u1")

	f.now = t0.Add(time.Hour)
	assert.Equal(t, 1, f.sessions.Sweep(f.now))
	_, ok := f.sessions.Lookup("visitor")
	assert.False(t, ok)
	_, ok = f.sessions.Lookup("member")
	assert.True(t, ok)
}

func TestSessionManager_CapsOpenSessions(t *testing.T) {
	f := newFixture(t)
	f.sessions.MaxSessions = 2
	ctx := context.Background()

	a := f.session(t, "dev-a")
	f.session(t, "dev-b")
	_, err := f.sessions.Get(ctx, "dev-c")
	assert.ErrorIs(t, err, ErrTooManySessions)

	again, err := f.sessions.Get(ctx, "dev-a")
	require.NoError(t, err, "known devices are still served")
	assert.Same(t, a, again)

	f.sessions.Drop("dev-b")
	_, err = f.sessions.Get(ctx, "dev-c")
	assert.NoError(t, err)
	assert.Equal(t, 2, f.sessions.Len())
}

func TestSessionManager_ConcurrentGetOpensOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 16
	got := make([]*Session, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := f.sessions.Get(ctx, "dev-1")
			assert.NoError(t, err)
			got[i] = s
		}(i)
	}
	wg.Wait()
	for _, s := range got {
		assert.Same(t, got[0], s)
	}
	assert.Equal(t, 1, f.sessions.Len())
}

// countingStore counts subscriptions reaching the underlying store.
type countingStore struct {
	*memory.Store
	users, vendors, banned, config atomic.Int32
}

func (c *countingStore) SubscribeUsers(ctx context.Context, fn func([]entity.User)) (repo.Unsubscribe, error) {
	c.users.Add(1)
	return c.Store.SubscribeUsers(ctx, fn)
}

func (c *countingStore) SubscribeVendors(ctx context.Context, fn func([]entity.Vendor)) (repo.Unsubscribe, error) {
	c.vendors.Add(1)
	return c.Store.SubscribeVendors(ctx, fn)
}

func (c *countingStore) SubscribeBanned(ctx context.Context, fn func([]string)) (repo.Unsubscribe, error) {
	c.banned.Add(1)
	return c.Store.SubscribeBanned(ctx, fn)
}

func (c *countingStore) SubscribeAppConfig(ctx context.Context, fn func(entity.AppConfig)) (repo.Unsubscribe, error) {
	c.config.Add(1)
	return c.Store.SubscribeAppConfig(ctx, fn)
}

func TestSessionManager_SessionsShareSubscriptions(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{Store: memory.NewStore(nil)}
	require.NoError(t, store.UpsertUser(ctx, &entity.User{ID: "u1", Name: "Ana", Email: "ana@example.com"}))
	m := NewSessionManager(store, memory.NewLocalStore(), nil, nil, 0)
	defer m.Close()

	var sessions []*Session
	for _, id := range []string{"dev-a", "dev-b", "dev-c"} {
		s, err := m.Get(ctx, id)
		require.NoError(t, err)
		sessions = append(sessions, s)
	}
	assert.EqualValues(t, 1, store.users.Load())
	assert.EqualValues(t, 1, store.vendors.Load())
	assert.EqualValues(t, 1, store.banned.Load())
	assert.EqualValues(t, 1, store.config.Load())
	for _, s := range sessions {
		assert.Len(t, s.State().Users, 1, "late sessions get the cached snapshot")
	}

	m.Drop("dev-a")
	sessions[1].Dispatch(state.BanDocument{Value: "11122233344"})
	sessions[1].Wait()
	assert.True(t, sessions[2].State().IsBanned("11122233344"))
	assert.False(t, sessions[0].State().IsBanned("11122233344"), "closed sessions stop receiving")
	assert.EqualValues(t, 1, store.banned.Load())
}

func TestSession_ViewerDistanceStaysLocal(t *testing.T) {
	f := newFixture(t)
	f.standardSeed(t)
	a := f.session(t, "dev-a")
	a.Dispatch(state.SetLocation{Location: entity.Location{Lat: -23.56, Lng: -46.65}})
	v, ok := a.State().VendorByID("v1")
	require.True(t, ok)
	require.NotNil(t, v.Distance)

	a.Dispatch(state.FeatureVendor{VendorID: "v1", Until: t0.Add(time.Hour).UnixMilli()})
	a.Wait()

	stored, err := f.store.FindVendor(context.Background(), "id", "v1")
	require.NoError(t, err)
	assert.Nil(t, stored.Distance)
	b := f.session(t, "dev-b")
	other, _ := b.State().VendorByID("v1")
	assert.Nil(t, other.Distance, "a session without a location shows no distance")
	assert.NotZero(t, other.FeaturedUntil)
}
