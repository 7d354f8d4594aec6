package application

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vendor-directory/internal/domain/entity"
	repo "github.com/oksasatya/vendor-directory/internal/domain/repository"
	"github.com/oksasatya/vendor-directory/internal/domain/state"
	"github.com/oksasatya/vendor-directory/pkg/metrics"
)

const (
	commandTimeout = 10 * time.Second
	failureBuffer  = 32
)

// Failure reports a persistence command that the remote store rejected.
// The optimistic local state is kept.
type Failure struct {
	Command state.Command
	Err     error
	At      time.Time
}

// Session is the controller for one device: it owns the state projection,
// serializes dispatches and persists the resulting commands in order on a
// background worker.
type Session struct {
	ID string

	store   repo.RemoteStore
	local   repo.LocalStore
	logger  *logrus.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	mu        sync.Mutex
	st        state.State
	listeners map[int]func(state.State)
	nextL     int
	unsubs    []repo.Unsubscribe
	closed    bool

	queue    *commandQueue
	failures chan Failure

	lastActivity atomic.Int64
}

func NewSession(id string, store repo.RemoteStore, local repo.LocalStore, logger *logrus.Logger, m *metrics.Metrics) *Session {
	if logger == nil {
		logger = logrus.New()
	}
	s := &Session{
		ID:        id,
		store:     store,
		local:     local,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
		st:        state.Initial(),
		listeners: make(map[int]func(state.State)),
		failures:  make(chan Failure, failureBuffer),
	}
	s.queue = newCommandQueue(s.execute)
	s.Touch()
	return s
}

// Open restores device-local flags and subscribes to the four shared
// collections. Each snapshot replaces the matching collection in state.
func (s *Session) Open(ctx context.Context) error {
	if s.local != nil {
		if v, ok, err := s.local.Get(ctx, s.localKey(repo.KeyTheme)); err != nil {
			s.logger.WithError(err).WithField("session", s.ID).Warn("load theme failed")
		} else if ok && state.Theme(v) == state.ThemeDark {
			s.mu.Lock()
			s.st.Theme = state.ThemeDark
			s.mu.Unlock()
		}
	}

	subCtx := context.WithoutCancel(ctx)
	steps := []func() (repo.Unsubscribe, error){
		func() (repo.Unsubscribe, error) {
			return s.store.SubscribeUsers(subCtx, func(u []entity.User) { s.Dispatch(state.SetUsers{Users: u}) })
		},
		func() (repo.Unsubscribe, error) {
			return s.store.SubscribeVendors(subCtx, func(v []entity.Vendor) { s.Dispatch(state.SetVendors{Vendors: v}) })
		},
		func() (repo.Unsubscribe, error) {
			return s.store.SubscribeBanned(subCtx, func(b []string) { s.Dispatch(state.SetBanned{Values: b}) })
		},
		func() (repo.Unsubscribe, error) {
			return s.store.SubscribeAppConfig(subCtx, func(c entity.AppConfig) { s.Dispatch(state.SetAppConfig{Config: c}) })
		},
	}
	for _, step := range steps {
		unsub, err := step()
		if err != nil {
			s.Close()
			return err
		}
		s.mu.Lock()
		s.unsubs = append(s.unsubs, unsub)
		s.mu.Unlock()
	}
	return nil
}

// Dispatch applies a to the state and queues its persistence. It never blocks
// on the remote store.
func (s *Session) Dispatch(a state.Action) state.State {
	s.mu.Lock()
	prev := s.st
	next := state.Reduce(prev, a)
	s.st = next
	cmds := state.Commands(prev, next, a)
	closed := s.closed
	fns := make([]func(state.State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	if !closed {
		for _, c := range cmds {
			s.queue.push(c)
		}
	}
	s.mu.Unlock()

	s.metrics.Action(string(a.Type()))
	for _, fn := range fns {
		fn(next)
	}
	return next
}

// State returns the current projection.
func (s *Session) State() state.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st
}

// Failures delivers persistence errors. When nobody drains it, the oldest
// undelivered failures are dropped (they are still logged).
func (s *Session) Failures() <-chan Failure {
	return s.failures
}

// Watch calls fn with every new state until the returned func is called.
// fn runs on the dispatching goroutine and must not block.
func (s *Session) Watch(fn func(state.State)) func() {
	s.mu.Lock()
	id := s.nextL
	s.nextL++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Wait blocks until every queued command has been executed.
func (s *Session) Wait() {
	s.queue.wait()
}

// Touch records user activity for the idle monitor.
func (s *Session) Touch() {
	s.lastActivity.Store(s.now().UnixMilli())
}

func (s *Session) LastActivity() time.Time {
	return time.UnixMilli(s.lastActivity.Load())
}

// Close tears down subscriptions and flushes pending commands.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	unsubs := s.unsubs
	s.unsubs = nil
	s.mu.Unlock()

	for _, u := range unsubs {
		u()
	}
	s.queue.close()
}

func (s *Session) localKey(key string) string {
	return key + ":" + s.ID
}

func (s *Session) execute(c state.Command) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var err error
	switch c.Kind {
	case state.CmdUpsertUser:
		err = s.store.UpsertUser(ctx, c.User)
	case state.CmdDeleteUser:
		err = s.store.DeleteUser(ctx, c.ID)
	case state.CmdUpsertVendor:
		err = s.store.UpsertVendor(ctx, c.Vendor)
	case state.CmdDeleteVendor:
		err = s.store.DeleteVendor(ctx, c.ID)
	case state.CmdBan:
		err = s.store.Ban(ctx, c.Value)
	case state.CmdUnban:
		err = s.store.Unban(ctx, c.Value)
	case state.CmdSaveAppConfig:
		err = s.store.SaveAppConfig(ctx, c.Config)
	case state.CmdSaveLocal:
		if s.local != nil {
			err = s.local.Set(ctx, s.localKey(c.Key), c.Value)
		}
	}
	s.metrics.Command(string(c.Kind), err)
	if err == nil {
		return
	}

	s.logger.WithError(err).WithFields(logrus.Fields{
		"session": s.ID,
		"command": c.Kind,
		"id":      c.ID,
	}).Warn("persist command failed")
	s.report(Failure{Command: c, Err: err, At: s.now()})
}

func (s *Session) report(f Failure) {
	for {
		select {
		case s.failures <- f:
			return
		default:
		}
		select {
		case <-s.failures:
		default:
		}
	}
}
