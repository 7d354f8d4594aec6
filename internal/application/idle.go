package application

import (
	"context"
	"sync"
	"time"
)

// IdleMonitor signs privileged accounts out after a period without activity
// and closes sessions the manager considers stale. It is idle until Start.
type IdleMonitor struct {
	sessions *SessionManager
	auth     *AuthService
	timeout  time.Duration
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewIdleMonitor(sessions *SessionManager, auth *AuthService, timeout, interval time.Duration) *IdleMonitor {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &IdleMonitor{sessions: sessions, auth: auth, timeout: timeout, interval: interval}
}

// Start launches the polling goroutine, stopping any previous one. It exits
// when ctx ends or Stop is called.
func (m *IdleMonitor) Start(ctx context.Context) {
	m.Stop()

	m.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		t := time.NewTicker(m.interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				m.Check(m.auth.now())
			}
		}
	}()
}

// Stop cancels the polling goroutine and waits for it. Safe when not running.
func (m *IdleMonitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

// Check runs one poll at now and returns how many accounts were signed out.
func (m *IdleMonitor) Check(now time.Time) int {
	n := 0
	for _, s := range m.sessions.Sessions() {
		cu := s.State().CurrentUser
		if cu == nil || !cu.Type.Privileged() {
			continue
		}
		if now.Sub(s.LastActivity()) >= m.timeout {
			m.auth.LogoutIdle(s)
			n++
		}
	}
	m.sessions.Sweep(now)
	return n
}
