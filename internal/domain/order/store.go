package order

import (
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/switcher/internal/infrastructure/monitoring"
)

// State is an ordered sequence of application ids
type State []string

// Clone returns an independent copy of the state
func (s State) Clone() State {
	if s == nil {
		return nil
	}
	out := make(State, len(s))
	copy(out, s)
	return out
}

// Equal reports whether two states hold the same ids in the same order
func (s State) Equal(other State) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Index returns the position of id, or -1
func (s State) Index(id string) int {
	for i, v := range s {
		if v == id {
			return i
		}
	}
	return -1
}

// firstDuplicate returns the first id that appears twice
func (s State) firstDuplicate() (string, bool) {
	seen := make(map[string]struct{}, len(s))
	for _, id := range s {
		if _, ok := seen[id]; ok {
			return id, true
		}
		seen[id] = struct{}{}
	}
	return "", false
}

// Listener is called after a successful replace
type Listener func(next State, version uint64)

type subscription struct {
	id int
	fn Listener
}

// Store holds the canonical ordering
type Store struct {
	mu        sync.RWMutex
	order     State          // Protected by mu
	version   uint64         // Protected by mu
	listeners []subscription // Protected by mu
	nextID    int            // Protected by mu
	logger    *zap.Logger
	metrics   *monitoring.Metrics
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{logger: zap.NewNop()}
}

// WithLogger sets the diagnostic logger
func (s *Store) WithLogger(logger *zap.Logger) *Store {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithMetrics adds metrics tracking to the store
func (s *Store) WithMetrics(metrics *monitoring.Metrics) *Store {
	s.metrics = metrics
	return s
}

// Current returns a copy of the current order
func (s *Store) Current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.order.Clone()
}

// Version returns the number of successful replaces
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.version
}

// Replace commits a new order.
// Orders containing duplicates are rejected and the previous order is kept.
// Replacing with an equal order is a no-op and does not notify listeners.
func (s *Store) Replace(next State) error {
	if id, dup := next.firstDuplicate(); dup {
		s.logger.Error("DuplicateIdentifierViolation: replace rejected",
			zap.String("id", id),
			zap.Strings("order", next),
		)
		if s.metrics != nil {
			s.metrics.IncDuplicateViolations()
		}
		return &DuplicateError{ID: id}
	}

	s.mu.Lock()
	if s.order.Equal(next) {
		s.mu.Unlock()
		return nil
	}
	s.order = next.Clone()
	s.version++
	committed := s.order.Clone()
	version := s.version
	listeners := make([]subscription, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	// Notify in subscription order without holding the lock
	for _, l := range listeners {
		l.fn(committed, version)
	}
	return nil
}

// Subscribe registers a listener and returns a function that removes it
func (s *Store) Subscribe(l Listener) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, subscription{id: id, fn: l})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}
