package session

import (
	"context"
	"iter"
	"sync"

	"github.com/zhubert/reword/internal/provider"
	"github.com/zhubert/reword/internal/rewrite"
)

// Manager keeps at most one session active. Starting a new rewrite cancels
// the previous one so two producers never feed the same consumer.
type Manager struct {
	mu       sync.Mutex
	provider provider.Provider
	opts     Options
	active   *Session
}

// NewManager creates a manager whose sessions call p.
func NewManager(p provider.Provider, opts Options) *Manager {
	return &Manager{provider: p, opts: opts}
}

// Start validates req, cancels any active session and starts a new one.
// An invalid request leaves the active session untouched.
func (m *Manager) Start(ctx context.Context, req rewrite.Request) (*Session, iter.Seq2[string, error], error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		m.active.Cancel()
	}

	s := New(m.provider, m.opts)
	seq, err := s.Start(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	m.active = s
	return s, seq, nil
}

// Active returns the most recently started session, or nil.
func (m *Manager) Active() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Cancel aborts the active session, if any.
func (m *Manager) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil {
		m.active.Cancel()
	}
}

// SetProvider switches the provider used by future sessions.
func (m *Manager) SetProvider(p provider.Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.provider = p
}

// Provider returns the provider used for new sessions.
func (m *Manager) Provider() provider.Provider {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.provider
}

// SetOptions replaces the options used by future sessions.
func (m *Manager) SetOptions(opts Options) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opts = opts
}
