// Package presenter derives the side list and the marker set shown by one
// map viewer.
package presenter

import (
	"sync"

	"github.com/couchcryptid/cat-map/internal/domain"
	"github.com/couchcryptid/cat-map/internal/observability"
	"github.com/couchcryptid/cat-map/internal/viewport"
)

// Presenter owns the filter criteria for one viewer and recomputes the two
// display sets whenever an input changes. Each recomputation finishes before
// the next input is applied.
type Presenter struct {
	records []domain.LocationRecord
	tracker *viewport.Tracker
	metrics *observability.Metrics

	mu        sync.Mutex
	criteria  domain.Criteria
	bounds    domain.Bounds
	hasBounds bool
	list      []domain.LocationRecord
	markers   []domain.LocationRecord
}

// New creates a Presenter over records and subscribes it to tracker.
func New(records []domain.LocationRecord, tracker *viewport.Tracker, metrics *observability.Metrics) *Presenter {
	p := &Presenter{
		records: records,
		tracker: tracker,
		metrics: metrics,
	}
	p.bounds, p.hasBounds = tracker.Current()
	p.list = domain.SideList(p.records, p.bounds, p.hasBounds, p.criteria)
	p.markers = domain.Markers(p.records, p.criteria)

	tracker.Subscribe(p.onSettle)
	return p
}

// Tracker returns the viewport tracker feeding this presenter.
func (p *Presenter) Tracker() *viewport.Tracker {
	return p.tracker
}

// SetQuery replaces the free-text query.
func (p *Presenter) SetQuery(raw string) domain.View {
	v, _ := p.SetField(domain.FieldQuery, raw)
	return v
}

// SetField applies one raw input value. Unknown fields return
// domain.ErrUnknownField and leave the criteria unchanged.
func (p *Presenter) SetField(field, raw string) (domain.View, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.criteria.Apply(field, raw); err != nil {
		return p.viewLocked(), err
	}
	p.metrics.CriteriaChanges.WithLabelValues(field).Inc()
	p.recomputeLocked(true)
	return p.viewLocked(), nil
}

// SetCriteria applies several raw input values as one change. Either all
// fields are applied or, on an unknown field, none are.
func (p *Presenter) SetCriteria(fields map[string]string) (domain.View, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := p.criteria
	for field, raw := range fields {
		if err := next.Apply(field, raw); err != nil {
			return p.viewLocked(), err
		}
	}
	for field := range fields {
		p.metrics.CriteriaChanges.WithLabelValues(field).Inc()
	}
	p.criteria = next
	p.recomputeLocked(true)
	return p.viewLocked(), nil
}

// Criteria returns the criteria currently in effect.
func (p *Presenter) Criteria() domain.Criteria {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.criteria
}

// View returns the most recently computed display sets.
func (p *Presenter) View() domain.View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewLocked()
}

// onSettle recomputes the side list only; markers do not depend on the viewport.
func (p *Presenter) onSettle(ev domain.ViewportEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bounds, p.hasBounds = ev.Bounds, true
	p.recomputeLocked(false)
}

func (p *Presenter) recomputeLocked(markers bool) {
	p.list = domain.SideList(p.records, p.bounds, p.hasBounds, p.criteria)
	p.metrics.SideListSize.Observe(float64(len(p.list)))
	if markers {
		p.markers = domain.Markers(p.records, p.criteria)
		p.metrics.MarkerCount.Observe(float64(len(p.markers)))
	}
}

func (p *Presenter) viewLocked() domain.View {
	return domain.NewView(p.list, p.markers, p.hasBounds)
}
