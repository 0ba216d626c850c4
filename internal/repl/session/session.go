// Package session manages REPL session lifecycle.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Target selects what the REPL does with a parsed query.
type Target string

const (
	TargetIntent Target = "intent" // print the intent
	TargetES     Target = "es"     // translate to an Elasticsearch search source
	TargetSQL    Target = "sql"    // translate to SQL
	TargetExec   Target = "exec"   // run the SQL on the configured database
)

// ParseTarget validates a target name.
func ParseTarget(s string) (Target, bool) {
	switch t := Target(s); t {
	case TargetIntent, TargetES, TargetSQL, TargetExec:
		return t, true
	}
	return "", false
}

// Session holds per-connection REPL state.
type Session struct {
	mu           sync.Mutex
	ID           string    `json:"id"`
	Target       Target    `json:"target"`
	History      []string  `json:"history"`
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`
}

// NewSession creates a session that prints intents.
func NewSession() *Session {
	now := time.Now()
	return &Session{
		ID:           uuid.New().String(),
		Target:       TargetIntent,
		CreatedAt:    now,
		LastActiveAt: now,
	}
}

// Touch updates the last activity timestamp.
func (s *Session) Touch() {
	s.mu.Lock()
	s.LastActiveAt = time.Now()
	s.mu.Unlock()
}

// AddHistory appends a query to the session history.
func (s *Session) AddHistory(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.History = append(s.History, q)
	s.LastActiveAt = time.Now()
}

// Snapshot returns a copy of the history.
func (s *Session) Snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.History...)
}

// SetTarget changes the session target.
func (s *Session) SetTarget(t Target) {
	s.mu.Lock()
	s.Target = t
	s.mu.Unlock()
}

// CurrentTarget returns the session target.
func (s *Session) CurrentTarget() Target {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Target
}

// IsExpired returns true if the session has exceeded the given max age.
func (s *Session) IsExpired(maxAge time.Duration) bool {
	return time.Since(s.CreatedAt) > maxAge
}

// IsIdle returns true if the session has been idle longer than the timeout.
func (s *Session) IsIdle(timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.LastActiveAt) > timeout
}

// Manager handles session creation, lookup, and cleanup.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	maxAge      time.Duration
	idleTimeout time.Duration
}

// NewManager creates a session manager with the given timeouts.
func NewManager(maxAge, idleTimeout time.Duration) *Manager {
	return &Manager{
		sessions:    make(map[string]*Session),
		maxAge:      maxAge,
		idleTimeout: idleTimeout,
	}
}

// Create creates a new session and returns it.
func (m *Manager) Create() *Session {
	s := NewSession()
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get retrieves a session by ID. Returns nil if not found or expired.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	if s.IsExpired(m.maxAge) || s.IsIdle(m.idleTimeout) {
		m.Remove(id)
		return nil
	}
	return s
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Remove deletes a session.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Cleanup removes all expired and idle sessions. Called periodically.
func (m *Manager) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.IsExpired(m.maxAge) || s.IsIdle(m.idleTimeout) {
			delete(m.sessions, id)
		}
	}
}
