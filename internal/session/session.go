// Package session implements the gateway's per-connection bind state; the
// request dispatch that drives it lives in internal/server.
package session

import (
	"strings"
	"sync"
)

// State is a connection's position in the bind state machine: every
// connection starts Unbound and moves to Bound once an anonymous bind
// succeeds. There is no third state — this gateway never authenticates
// credentials.
type State int

const (
	Unbound State = iota
	Bound
)

// AnonymousDN is the identity reported by whoami for a bound, anonymous
// connection, matching the original's "Anonymous" placeholder.
const AnonymousDN = "Anonymous"

// Session tracks one client connection's bind state. Connections are
// single-threaded from ldapserver's perspective, but the mutex guards
// against the library dispatching concurrent requests on one connection.
type Session struct {
	mu    sync.Mutex
	state State
	dn    string
}

// New returns a fresh, unbound session.
func New() *Session {
	return &Session{state: Unbound}
}

// Bind transitions the session to Bound as dn. The gateway only accepts
// anonymous binds (empty name, empty password); callers must check that
// before calling Bind.
func (s *Session) Bind(dn string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Bound
	s.dn = dn
}

// Unbind returns the session to Unbound.
func (s *Session) Unbind() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Unbound
	s.dn = ""
}

// DN returns the bound identity, or "" if unbound. Whoami must report an
// empty identity before bind; since Bind is always called with
// AnonymousDN, returning that same constant while unbound would make the
// two states indistinguishable to a caller.
func (s *Session) DN() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Unbound {
		return ""
	}
	return s.dn
}

// IsAnonymousBindRequest reports whether name/password together name an
// anonymous simple bind, the only kind this gateway accepts.
func IsAnonymousBindRequest(name, password string) bool {
	return strings.TrimSpace(name) == "" && password == ""
}

// Manager hands out one Session per connection, keyed by ldapserver's
// client identifier. A Session stays in the Manager until Drop is called
// for its client identifier.
type Manager struct {
	mu       sync.Mutex
	sessions map[int]*Session
}

// NewManager returns an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[int]*Session)}
}

// Get returns the Session for clientID, creating one if this is its first
// request.
func (m *Manager) Get(clientID int) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[clientID]
	if !ok {
		s = New()
		m.sessions[clientID] = s
	}
	return s
}

// Drop discards the Session for clientID.
func (m *Manager) Drop(clientID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, clientID)
}
