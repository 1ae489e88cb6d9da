package switcher

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/switcher/internal/domain/order"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/shared/types"
)

// Phase is the lifecycle phase of a Switcher
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseReconciled
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseReconciled:
		return "reconciled"
	default:
		return "unknown"
	}
}

// RenderFunc receives every newly published projection
type RenderFunc func(types.Projection)

type renderSub struct {
	id int
	fn RenderFunc
}

// Switcher owns the order of one app switcher view
type Switcher struct {
	mu          sync.Mutex
	store       *order.Store
	descriptors []types.Descriptor // Protected by mu
	viewed      order.State        // Protected by mu
	projection  types.Projection   // Protected by mu
	phase       Phase              // Protected by mu
	dragging    string             // Protected by mu
	dirty       bool               // Protected by mu
	budget      int
	cancelStore func()

	renderMu  sync.Mutex
	renderers []renderSub // Protected by renderMu
	nextSub   int         // Protected by renderMu
	deliverMu sync.Mutex  // Keeps render delivery in event order

	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// New creates an uninitialized switcher
func New() *Switcher {
	s := &Switcher{
		store:  order.NewStore(),
		budget: order.DefaultInlineBudget,
		logger: zap.NewNop(),
	}
	s.projection = order.Project(nil, nil, s.budget)

	// Any committed order change makes the current projection stale
	s.cancelStore = s.store.Subscribe(func(order.State, uint64) {
		s.dirty = true
	})
	return s
}

// WithBudget sets the number of inline shortcuts
func (s *Switcher) WithBudget(budget int) *Switcher {
	if budget >= 0 {
		s.budget = budget
	}
	return s
}

// WithLogger sets the diagnostic logger
func (s *Switcher) WithLogger(logger *zap.Logger) *Switcher {
	if logger != nil {
		s.logger = logger
		s.store.WithLogger(logger)
	}
	return s
}

// WithMetrics adds metrics tracking to the switcher
func (s *Switcher) WithMetrics(metrics *monitoring.Metrics) *Switcher {
	s.metrics = metrics
	s.store.WithMetrics(metrics)
	return s
}

// Dispatch processes one message
func (s *Switcher) Dispatch(msg Msg) Result {
	s.mu.Lock()
	err := s.handle(msg)

	published := false
	if s.dirty {
		s.dirty = false
		s.publish()
		published = true
	}
	res := Result{Changed: published, Projection: s.projection, Err: err}

	// Hand over to delivery before releasing state so renders keep event order
	s.deliverMu.Lock()
	s.mu.Unlock()
	defer s.deliverMu.Unlock()

	if published {
		s.emit(res.Projection)
	}
	return res
}

// Reconcile dispatches a DescriptorsChanged message
func (s *Switcher) Reconcile(descriptors []types.Descriptor) Result {
	return s.Dispatch(DescriptorsChanged{Descriptors: descriptors})
}

// Reorder dispatches a DragEnd message
func (s *Switcher) Reorder(ev types.ReorderEvent) Result {
	return s.Dispatch(DragEnd{Event: ev})
}

// Projection returns the last published projection
func (s *Switcher) Projection() types.Projection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projection
}

// Order returns the canonical order
func (s *Switcher) Order() order.State {
	return s.store.Current()
}

// Version returns the order store version
func (s *Switcher) Version() uint64 {
	return s.store.Version()
}

// Phase returns the lifecycle phase
func (s *Switcher) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Dragging returns the id of the shortcut being dragged, if any
func (s *Switcher) Dragging() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dragging
}

// OnRender registers a render listener and returns a function that removes it
func (s *Switcher) OnRender(fn RenderFunc) (cancel func()) {
	s.renderMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.renderers = append(s.renderers, renderSub{id: id, fn: fn})
	s.renderMu.Unlock()

	return func() {
		s.renderMu.Lock()
		defer s.renderMu.Unlock()
		for i, r := range s.renderers {
			if r.id == id {
				s.renderers = append(s.renderers[:i:i], s.renderers[i+1:]...)
				return
			}
		}
	}
}

// Watch registers fn and calls it with the current projection before any
// later render reaches it. fn must not call back into the switcher.
func (s *Switcher) Watch(fn RenderFunc) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cancel = s.OnRender(fn)
	fn(s.projection)
	return cancel
}

// Close detaches all listeners. The switcher must not be used afterwards.
func (s *Switcher) Close() {
	s.cancelStore()
	s.renderMu.Lock()
	s.renderers = nil
	s.renderMu.Unlock()
}

// handle applies msg to the state (must hold mu)
func (s *Switcher) handle(msg Msg) error {
	if msg == nil {
		return errors.New("switcher: nil message")
	}
	s.logger.Debug("Dispatch", zap.String("msg", msg.msgName()), zap.Stringer("phase", s.phase))

	switch m := msg.(type) {
	case DescriptorsChanged:
		s.reconcile(m.Descriptors)
		return nil
	case DragStart:
		s.dragging = m.ID
		s.logger.Debug("Drag started", zap.String("id", m.ID), zap.Int("index", m.Index))
		return nil
	case DragUpdate:
		if s.dragging == "" {
			s.dragging = m.ID
		}
		return nil
	case DragEnd:
		s.dragging = ""
		return s.reorder(m.Event)
	default:
		return errors.New("switcher: unknown message")
	}
}

// reconcile merges the order with descriptors (must hold mu)
func (s *Switcher) reconcile(descriptors []types.Descriptor) {
	incoming := make([]types.Descriptor, len(descriptors))
	copy(incoming, descriptors)

	sameSet := s.phase == PhaseReconciled && equalDescriptors(s.descriptors, incoming)
	s.descriptors = incoming

	next, changed := order.Reconcile(s.store.Current(), incoming)
	if s.metrics != nil {
		s.metrics.RecordReconcile(changed)
	}

	if changed {
		toAdd, toRemove := order.Diff(s.store.Current(), incoming)
		s.logger.Debug("Reconciled order",
			zap.Strings("added", toAdd),
			zap.Strings("removed", toRemove),
		)
		if err := s.store.Replace(next); err != nil {
			s.logger.Error("Reconciled order rejected", zap.Error(err))
		}
	}

	if s.phase == PhaseUninitialized {
		s.phase = PhaseReconciled
		s.dirty = true
		return
	}

	// Same ids but new attributes (focus, names) still need a render
	if !changed && !sameSet {
		s.dirty = true
	}
}

// reorder applies a finished gesture against the viewed sequence (must hold mu)
func (s *Switcher) reorder(ev types.ReorderEvent) error {
	next, err := order.ApplyReorder(s.viewed, ev)
	if err != nil {
		s.logger.Warn("InvalidReorderIndex: reorder rejected",
			zap.String("moved_id", ev.MovedID),
			zap.Int("from", ev.FromIndex),
			zap.Int("to", ev.ToIndex),
			zap.Int("length", len(s.viewed)),
			zap.Error(err),
		)
		if s.metrics != nil {
			s.metrics.IncReordersRejected(order.CodeInvalidReorderIndex)
		}
		return err
	}
	if ev.FromIndex == ev.ToIndex {
		return nil
	}

	if err := s.store.Replace(next); err != nil {
		if s.metrics != nil {
			s.metrics.IncReordersRejected(order.CodeDuplicateIdentifier)
		}
		return err
	}

	s.logger.Debug("Reorder applied",
		zap.String("moved_id", next[ev.ToIndex]),
		zap.Int("from", ev.FromIndex),
		zap.Int("to", ev.ToIndex),
	)
	if s.metrics != nil {
		s.metrics.IncReordersApplied()
	}
	return nil
}

// publish rebuilds the projection (must hold mu)
func (s *Switcher) publish() {
	p, stale := order.ProjectStale(s.descriptors, s.store.Current(), s.budget)
	if len(stale) > 0 {
		s.logger.Warn("StaleIdentifierReference: ids excluded from projection",
			zap.Strings("ids", stale),
			zap.Error(&order.StaleError{IDs: stale}),
		)
		if s.metrics != nil {
			s.metrics.AddStaleReferences(len(stale))
		}
	}
	p.Version = s.store.Version()

	s.projection = p
	s.viewed = order.State(p.Order)
}

// emit delivers p to every render listener (must hold deliverMu)
func (s *Switcher) emit(p types.Projection) {
	s.renderMu.Lock()
	renderers := make([]renderSub, len(s.renderers))
	copy(renderers, s.renderers)
	s.renderMu.Unlock()

	for _, r := range renderers {
		r.fn(p)
	}
}

func equalDescriptors(a, b []types.Descriptor) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
