package session

import (
	"log/slog"
	"sync"

	"github.com/ieltsprep/exam-service/internal/scoring"
)

// Manager hands out one session per user. A client runs exactly one
// attempt at a time; a new attempt goes through the same session's
// Reset/LoadTest/Start cycle rather than a second instance.
type Manager struct {
	mu       sync.Mutex
	engine   *scoring.Engine
	logger   *slog.Logger
	sessions map[string]*Session
}

func NewManager(engine *scoring.Engine, logger *slog.Logger) *Manager {
	return &Manager{
		engine:   engine,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// ForUser returns the user's session, creating it on first use.
func (m *Manager) ForUser(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		s = New(m.engine, m.logger.With("user_id", userID))
		m.sessions[userID] = s
	}
	return s
}

// Drop removes a user's session entirely, e.g. on logout.
func (m *Manager) Drop(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}
