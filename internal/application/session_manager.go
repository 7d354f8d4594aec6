package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	repo "github.com/oksasatya/vendor-directory/internal/domain/repository"
	"github.com/oksasatya/vendor-directory/pkg/metrics"
)

// SessionManager keeps one Session per device id. Sessions share one
// subscription per collection through a SharedStore.
type SessionManager struct {
	shared  *SharedStore
	local   repo.LocalStore
	logger  *logrus.Logger
	metrics *metrics.Metrics

	// TTL closes sessions without activity for that long; zero keeps them.
	TTL time.Duration
	// VisitorTTL closes signed-out sessions sooner; zero falls back to TTL.
	VisitorTTL time.Duration
	// MaxSessions caps open sessions; zero means no cap.
	MaxSessions int

	mu       sync.Mutex
	sessions map[string]*Session
	opening  map[string]*opening
}

// opening is a session whose Open is still running.
type opening struct {
	done chan struct{}
	s    *Session
	err  error
}

func NewSessionManager(store repo.RemoteStore, local repo.LocalStore, logger *logrus.Logger, m *metrics.Metrics, ttl time.Duration) *SessionManager {
	if logger == nil {
		logger = logrus.New()
	}
	return &SessionManager{
		shared:   NewSharedStore(store),
		local:    local,
		logger:   logger,
		metrics:  m,
		TTL:      ttl,
		sessions: make(map[string]*Session),
		opening:  make(map[string]*opening),
	}
}

// Get returns the session for id, opening a new one on first use. Open runs
// without the manager lock; concurrent calls for the same id share it.
func (m *SessionManager) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		return s, nil
	}
	if op, ok := m.opening[id]; ok {
		m.mu.Unlock()
		select {
		case <-op.done:
			return op.s, op.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.MaxSessions > 0 && len(m.sessions)+len(m.opening) >= m.MaxSessions {
		m.mu.Unlock()
		m.metrics.SessionRejected()
		return nil, ErrTooManySessions
	}
	op := &opening{done: make(chan struct{})}
	m.opening[id] = op
	m.mu.Unlock()

	s := NewSession(id, m.shared, m.local, m.logger, m.metrics)
	err := s.Open(ctx)

	m.mu.Lock()
	delete(m.opening, id)
	if err == nil {
		m.sessions[id] = s
		op.s = s
	}
	op.err = err
	m.mu.Unlock()
	close(op.done)

	if err != nil {
		return nil, err
	}
	m.metrics.SessionOpened()
	m.logger.WithField("session", id).Debug("session opened")
	return s, nil
}

// Len reports how many sessions are open.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Lookup returns an already open session.
func (m *SessionManager) Lookup(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Drop closes and forgets the session for id.
func (m *SessionManager) Drop(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Close()
		m.metrics.SessionClosed()
	}
}

// Sessions returns the open sessions ordered by id.
func (m *SessionManager) Sessions() []*Session {
	m.mu.Lock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Sweep closes sessions idle for longer than their TTL and returns how many
// went. Signed-out sessions use VisitorTTL when it is set.
func (m *SessionManager) Sweep(now time.Time) int {
	n := 0
	for _, s := range m.Sessions() {
		ttl := m.TTL
		if m.VisitorTTL > 0 && s.State().CurrentUser == nil {
			ttl = m.VisitorTTL
		}
		if ttl > 0 && now.Sub(s.LastActivity()) > ttl {
			m.Drop(s.ID)
			n++
		}
	}
	return n
}

// Close closes every session, flushing their pending commands, and drops
// the shared subscriptions.
func (m *SessionManager) Close() {
	for _, s := range m.Sessions() {
		m.Drop(s.ID)
	}
	m.shared.Close()
}
