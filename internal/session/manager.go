// Package session keeps one viewer (tracker plus presenter) per browser
// session so concurrent tabs never share map or filter state.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/cat-map/internal/domain"
	"github.com/couchcryptid/cat-map/internal/observability"
	"github.com/couchcryptid/cat-map/internal/presenter"
	"github.com/couchcryptid/cat-map/internal/viewport"
	"github.com/google/uuid"
)

// Viewer is the per-session state of one open map page.
type Viewer struct {
	ID        string
	Presenter *presenter.Presenter

	mu       sync.Mutex
	lastSeen time.Time
}

// Tracker returns the viewer's viewport tracker.
func (v *Viewer) Tracker() *viewport.Tracker {
	return v.Presenter.Tracker()
}

func (v *Viewer) touch(now time.Time) {
	v.mu.Lock()
	v.lastSeen = now
	v.mu.Unlock()
}

func (v *Viewer) idleSince() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastSeen
}

// Manager creates, looks up and expires viewers.
type Manager struct {
	records  []domain.LocationRecord
	ttl      time.Duration
	onSettle viewport.Listener
	metrics  *observability.Metrics
	logger   *slog.Logger

	mu      sync.Mutex
	viewers map[string]*Viewer
}

// NewManager creates a Manager that hands records to every new viewer.
// onSettle, if non-nil, is subscribed to every viewer's tracker.
func NewManager(records []domain.LocationRecord, ttl time.Duration, onSettle viewport.Listener, metrics *observability.Metrics, logger *slog.Logger) *Manager {
	return &Manager{
		records:  records,
		ttl:      ttl,
		onSettle: onSettle,
		metrics:  metrics,
		logger:   logger,
		viewers:  make(map[string]*Viewer),
	}
}

// Get returns the viewer for id, refreshing its idle timer.
func (m *Manager) Get(id string) (*Viewer, bool) {
	m.mu.Lock()
	v, ok := m.viewers[id]
	m.mu.Unlock()
	if ok {
		v.touch(domain.Now())
	}
	return v, ok
}

// Create starts a new viewer with a fresh id.
func (m *Manager) Create() *Viewer {
	id := uuid.NewString()
	tr := viewport.NewTracker(id, m.metrics)
	if m.onSettle != nil {
		tr.Subscribe(m.onSettle)
	}
	v := &Viewer{
		ID:        id,
		Presenter: presenter.New(m.records, tr, m.metrics),
		lastSeen:  domain.Now(),
	}

	m.mu.Lock()
	m.viewers[id] = v
	n := len(m.viewers)
	m.mu.Unlock()

	m.metrics.ActiveSessions.Set(float64(n))
	m.logger.Debug("viewer session created", "session", id)
	return v
}

// GetOrCreate returns the viewer for id, or a new one when id is unknown.
func (m *Manager) GetOrCreate(id string) *Viewer {
	if id != "" {
		if v, ok := m.Get(id); ok {
			return v
		}
	}
	return m.Create()
}

// Len returns the number of live viewers.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.viewers)
}

// Sweep removes viewers idle for longer than the TTL and returns how many
// were removed.
func (m *Manager) Sweep() int {
	cutoff := domain.Now().Add(-m.ttl)

	m.mu.Lock()
	removed := 0
	for id, v := range m.viewers {
		if v.idleSince().Before(cutoff) {
			delete(m.viewers, id)
			removed++
		}
	}
	n := len(m.viewers)
	m.mu.Unlock()

	m.metrics.ActiveSessions.Set(float64(n))
	if removed > 0 {
		m.logger.Info("expired idle viewer sessions", "removed", removed, "remaining", n)
	}
	return removed
}
