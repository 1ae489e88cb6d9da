package app

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/AgentOS/switcher/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/shared/utils"
)

var (
	// ErrAppNotFound is returned for unknown app ids
	ErrAppNotFound = errors.New("app not found")

	// ErrInvalidPackage is returned for packages that cannot be installed
	ErrInvalidPackage = errors.New("invalid package")
)

// Listener receives the descriptor list after every change
type Listener func(descriptors []types.Descriptor)

type listenerEntry struct {
	id int
	fn Listener
}

// Manager tracks installed apps and focus
type Manager struct {
	mu        sync.RWMutex
	apps      map[string]*types.Package // Protected by mu
	installed []string                  // Install order, protected by mu
	focusedID *string                   // Protected by mu
	listeners []listenerEntry           // Protected by mu
	nextID    int                       // Protected by mu
	notifyMu  sync.Mutex                // Keeps notifications in change order
	metrics   *monitoring.Metrics
}

// NewManager creates a new app manager
func NewManager() *Manager {
	return &Manager{
		apps: make(map[string]*types.Package),
	}
}

// WithMetrics adds metrics tracking to the manager
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// Install adds a package, or updates it in place if already installed.
// Updating keeps the original install position.
func (m *Manager) Install(pkg types.Package) error {
	pkg.ID = strings.TrimSpace(pkg.ID)
	if err := validatePackage(&pkg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPackage, err)
	}
	if strings.TrimSpace(pkg.Name) == "" {
		pkg.Name = pkg.ID
	}
	if pkg.InstalledAt.IsZero() {
		pkg.InstalledAt = time.Now()
	}
	pkg.Tags = append([]string(nil), pkg.Tags...)

	m.mu.Lock()
	if existing, ok := m.apps[pkg.ID]; ok {
		pkg.InstalledAt = existing.InstalledAt
	} else {
		m.installed = append(m.installed, pkg.ID)
	}
	m.apps[pkg.ID] = &pkg
	m.commit()
	return nil
}

// Uninstall removes an app. Removing the focused app clears focus.
func (m *Manager) Uninstall(id string) error {
	m.mu.Lock()
	if _, ok := m.apps[id]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAppNotFound, id)
	}

	delete(m.apps, id)
	for i, installedID := range m.installed {
		if installedID == id {
			m.installed = append(m.installed[:i:i], m.installed[i+1:]...)
			break
		}
	}
	if m.focusedID != nil && *m.focusedID == id {
		m.focusedID = nil
	}
	m.commit()
	return nil
}

// Focus marks an app as the active one
func (m *Manager) Focus(id string) error {
	m.mu.Lock()
	if _, ok := m.apps[id]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAppNotFound, id)
	}
	if m.focusedID != nil && *m.focusedID == id {
		m.mu.Unlock()
		return nil
	}

	m.focusedID = &id
	m.commit()
	return nil
}

// Get retrieves an installed package by ID
func (m *Manager) Get(id string) (*types.Package, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pkg, ok := m.apps[id]
	if !ok {
		return nil, false
	}

	// Return a copy to prevent external modifications
	pkgCopy := *pkg
	pkgCopy.Tags = append([]string(nil), pkg.Tags...)
	return &pkgCopy, true
}

// List returns installed packages in install order
func (m *Manager) List() []*types.Package {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pkgs := make([]*types.Package, 0, len(m.installed))
	for _, id := range m.installed {
		pkgCopy := *m.apps[id]
		pkgCopy.Tags = append([]string(nil), pkgCopy.Tags...)
		pkgs = append(pkgs, &pkgCopy)
	}
	return pkgs
}

// Descriptors returns the current descriptor list in install order
func (m *Manager) Descriptors() []types.Descriptor {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.descriptors()
}

// Stats returns manager statistics
func (m *Manager) Stats() types.AppStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var focusedID *string
	if m.focusedID != nil {
		id := *m.focusedID
		focusedID = &id
	}

	return types.AppStats{
		InstalledApps: len(m.installed),
		FocusedAppID:  focusedID,
	}
}

// Subscribe registers a listener and returns a function that removes it
func (m *Manager) Subscribe(fn Listener) (cancel func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners = append(m.listeners, listenerEntry{id: id, fn: fn})
	m.mu.Unlock()

	return func() { m.unsubscribe(id) }
}

func (m *Manager) unsubscribe(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, l := range m.listeners {
		if l.id == id {
			m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
			return
		}
	}
}

// Watch subscribes fn and immediately delivers the current descriptors.
// No change can be delivered to fn ahead of that first snapshot.
func (m *Manager) Watch(fn Listener) (cancel func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners = append(m.listeners, listenerEntry{id: id, fn: fn})
	snapshot := m.descriptors()

	m.notifyMu.Lock()
	m.mu.Unlock()
	fn(snapshot)
	m.notifyMu.Unlock()

	return func() { m.unsubscribe(id) }
}

// commit snapshots state, releases mu and notifies listeners (must hold mu)
func (m *Manager) commit() {
	snapshot := m.descriptors()
	listeners := make([]listenerEntry, len(m.listeners))
	copy(listeners, m.listeners)
	count := len(m.installed)

	m.notifyMu.Lock()
	m.mu.Unlock()
	defer m.notifyMu.Unlock()

	if m.metrics != nil {
		m.metrics.SetAppsInstalled(count)
	}
	for _, l := range listeners {
		// Each listener gets its own slice
		descs := make([]types.Descriptor, len(snapshot))
		copy(descs, snapshot)
		l.fn(descs)
	}
}

// descriptors builds the descriptor list (must hold mu)
func (m *Manager) descriptors() []types.Descriptor {
	descs := make([]types.Descriptor, 0, len(m.installed))
	for _, id := range m.installed {
		active := m.focusedID != nil && *m.focusedID == id
		descs = append(descs, m.apps[id].ToDescriptor(active))
	}
	return descs
}

func validatePackage(pkg *types.Package) error {
	if err := utils.ValidateID(pkg.ID, "id", true); err != nil {
		return err
	}
	if err := utils.ValidateString(pkg.Name, "name", 0, utils.MaxNameLength, false); err != nil {
		return err
	}
	if err := utils.ValidateDescription(pkg.Description, "description", false); err != nil {
		return err
	}
	if err := utils.ValidateHref(pkg.Href); err != nil {
		return err
	}
	if err := utils.ValidateCategory(pkg.Category, false); err != nil {
		return err
	}
	return utils.ValidateTags(pkg.Tags)
}
