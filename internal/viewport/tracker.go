// Package viewport tracks the geographic rectangle visible in a map widget.
package viewport

import (
	"sync"
	"time"

	"github.com/couchcryptid/cat-map/internal/domain"
	"github.com/couchcryptid/cat-map/internal/observability"
	"github.com/google/uuid"
)

// Listener receives every settle after the new bounds are stored.
// Listeners run synchronously and must not call Settle.
type Listener func(domain.ViewportEvent)

// Tracker holds the current bounds for one map widget. The bounds are absent
// until the widget reports its first settle.
type Tracker struct {
	session string
	metrics *observability.Metrics

	// settleMu serializes Settle so listeners see events in arrival order.
	settleMu sync.Mutex

	mu        sync.RWMutex
	bounds    domain.Bounds
	hasBounds bool
	lastAt    time.Time
	listeners []Listener
}

// NewTracker creates a Tracker for the given session.
func NewTracker(session string, metrics *observability.Metrics) *Tracker {
	return &Tracker{session: session, metrics: metrics}
}

// Subscribe registers a listener. Listeners are called in registration order.
func (t *Tracker) Subscribe(l Listener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, l)
}

// Current returns the visible rectangle and whether one has been reported.
func (t *Tracker) Current() (domain.Bounds, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.bounds, t.hasBounds
}

// LastSettled returns the time of the most recent settle, or the zero time.
func (t *Tracker) LastSettled() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastAt
}

// Settle records the bounds reported by a load, moveend or zoomend event and
// republishes them. Every call republishes; nothing is debounced.
func (t *Tracker) Settle(kind domain.SettleKind, b domain.Bounds) (domain.ViewportEvent, error) {
	if err := kind.Validate(); err != nil {
		return domain.ViewportEvent{}, err
	}

	t.settleMu.Lock()
	defer t.settleMu.Unlock()

	ev := domain.ViewportEvent{
		ID:      uuid.NewString(),
		Session: t.session,
		Kind:    kind,
		Bounds:  b,
		At:      domain.Now(),
	}

	t.mu.Lock()
	t.bounds = b
	t.hasBounds = true
	t.lastAt = ev.At
	listeners := make([]Listener, len(t.listeners))
	copy(listeners, t.listeners)
	t.mu.Unlock()

	t.metrics.SettleEvents.WithLabelValues(string(kind)).Inc()

	for _, l := range listeners {
		l(ev)
	}
	return ev, nil
}
