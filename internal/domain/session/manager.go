package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/switcher/internal/domain/app"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/domain/order"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/domain/switcher"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/shared/types"
)

// ErrSessionNotFound is returned for unknown session ids
var ErrSessionNotFound = errors.New("session not found")

// AppSource delivers the installed app descriptors
type AppSource interface {
	Watch(fn app.Listener) (cancel func())
}

// Session is one switcher view
type Session struct {
	id        id.SessionID
	createdAt time.Time
	switcher  *switcher.Switcher
	unwatch   func()

	done      chan struct{}
	closeOnce sync.Once
}

// ID returns the session id
func (s *Session) ID() string { return s.id.String() }

// CreatedAt returns the creation time
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Switcher returns the session's switcher
func (s *Session) Switcher() *switcher.Switcher { return s.switcher }

// Done is closed when the session ends
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) end() {
	s.closeOnce.Do(func() {
		s.unwatch()
		s.switcher.Close()
		close(s.done)
	})
}

// Metadata summarizes the session for listings
func (s *Session) Metadata() types.SessionMetadata {
	return types.SessionMetadata{
		ID:        s.ID(),
		CreatedAt: s.createdAt.Unix(),
		Phase:     s.switcher.Phase().String(),
		Version:   s.switcher.Version(),
	}
}

// Manager tracks live sessions
type Manager struct {
	mu           sync.RWMutex
	sessions     map[string]*Session // Protected by mu
	totalCreated int                 // Protected by mu

	apps    AppSource
	budget  int
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// NewManager creates a session manager fed by apps
func NewManager(apps AppSource, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		apps:     apps,
		budget:   order.DefaultInlineBudget,
		logger:   logger,
	}
}

// WithBudget sets the inline budget for new sessions
func (m *Manager) WithBudget(budget int) *Manager {
	if budget >= 0 {
		m.budget = budget
	}
	return m
}

// WithMetrics adds metrics tracking to the manager and its switchers
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// Create starts a session reconciled against the installed apps
func (m *Manager) Create() *Session {
	sid := id.NewSessionID()
	logger := m.logger.With(zap.String("session_id", sid.String()))

	sw := switcher.New().WithBudget(m.budget).WithLogger(logger)
	if m.metrics != nil {
		sw.WithMetrics(m.metrics)
	}

	sess := &Session{
		id:        sid,
		createdAt: time.Now(),
		switcher:  sw,
		done:      make(chan struct{}),
	}
	sess.unwatch = m.apps.Watch(func(descs []types.Descriptor) {
		sw.Reconcile(descs)
	})

	m.mu.Lock()
	m.sessions[sess.ID()] = sess
	m.totalCreated++
	active := len(m.sessions)
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.IncSessionsTotal()
		m.metrics.SetSessionsActive(active)
	}
	logger.Info("Session created", zap.Strings("order", sw.Order()))
	return sess
}

// Get retrieves a session by id
func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[sessionID]
	return sess, ok
}

// Close ends a session and discards its order
func (m *Manager) Close(sessionID string) error {
	m.mu.Lock()
	sess, ok := m.sessions[sessionID]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	delete(m.sessions, sessionID)
	active := len(m.sessions)
	m.mu.Unlock()

	sess.end()

	if m.metrics != nil {
		m.metrics.SetSessionsActive(active)
	}
	m.logger.Info("Session closed", zap.String("session_id", sessionID))
	return nil
}

// CloseAll ends every session
func (m *Manager) CloseAll() {
	for _, meta := range m.List() {
		_ = m.Close(meta.ID)
	}
}

// List returns session metadata in creation order
func (m *Manager) List() []types.SessionMetadata {
	m.mu.RLock()
	out := make([]types.SessionMetadata, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, sess.Metadata())
	}
	m.mu.RUnlock()

	// ULIDs sort by creation time
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Stats returns session counters
func (m *Manager) Stats() types.SessionStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return types.SessionStats{
		ActiveSessions: len(m.sessions),
		TotalCreated:   m.totalCreated,
	}
}
