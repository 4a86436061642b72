package presenter_test

import (
	"testing"

	"github.com/couchcryptid/cat-map/internal/domain"
	"github.com/couchcryptid/cat-map/internal/observability"
	"github.com/couchcryptid/cat-map/internal/presenter"
	"github.com/couchcryptid/cat-map/internal/viewport"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	london = domain.Bounds{South: 51.0, West: -0.5, North: 52.0, East: 0.5}
	israel = domain.Bounds{South: 32.0, West: 35.0, North: 33.0, East: 36.0}
)

func newPresenter(t *testing.T) *presenter.Presenter {
	t.Helper()
	metrics := observability.NewMetricsForTesting()
	tr := viewport.NewTracker("test", metrics)
	return presenter.New(domain.NormalizeAll(domain.SeedRecords()), tr, metrics)
}

func cardNames(cards []domain.Card) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.Name)
	}
	return out
}

func TestPresenter_InitialView(t *testing.T) {
	p := newPresenter(t)

	v := p.View()
	assert.False(t, v.HasBounds)
	assert.Empty(t, v.List)
	assert.Empty(t, v.EmptyMessage, "no message before bounds are known")
	assert.Len(t, v.Markers, 6)
}

func TestPresenter_LondonSettle(t *testing.T) {
	p := newPresenter(t)

	_, err := p.Tracker().Settle(domain.SettleLoad, london)
	require.NoError(t, err)

	v := p.View()
	assert.True(t, v.HasBounds)
	assert.Equal(t, []string{"Coffee", "Coffwee", "Coffefeae"}, cardNames(v.List))
	assert.Len(t, v.Markers, 6)
	assert.Empty(t, v.EmptyMessage)
}

func TestPresenter_EmptyViewportShowsMessage(t *testing.T) {
	p := newPresenter(t)

	_, err := p.Tracker().Settle(domain.SettleMoveEnd, domain.Bounds{South: 0, West: 0, North: 1, East: 1})
	require.NoError(t, err)

	v := p.View()
	assert.Empty(t, v.List)
	assert.Equal(t, domain.EmptyListMessage, v.EmptyMessage)
}

func TestPresenter_QueryFiltersBothSets(t *testing.T) {
	p := newPresenter(t)
	_, err := p.Tracker().Settle(domain.SettleLoad, london)
	require.NoError(t, err)

	v := p.SetQuery("Coffe")

	assert.Equal(t, []string{"Coffee", "Coffefeae"}, cardNames(v.List))
	assert.Equal(t, []string{"Coffee", "Coffefwe", "Coffefeae"}, cardNames(v.Markers))
}

func TestPresenter_DateRangeNeedsAllSixFields(t *testing.T) {
	p := newPresenter(t)
	_, err := p.Tracker().Settle(domain.SettleLoad, london)
	require.NoError(t, err)

	fields := []struct{ name, value string }{
		{domain.FieldFromDay, "1"},
		{domain.FieldFromMonth, "4"},
		{domain.FieldFromYear, "2025"},
		{domain.FieldToDay, "3"},
		{domain.FieldToMonth, "4"},
	}
	for _, f := range fields {
		v, err := p.SetField(f.name, f.value)
		require.NoError(t, err)
		assert.Len(t, v.Markers, 6, "filter inactive after %s", f.name)
	}

	v, err := p.SetField(domain.FieldToYear, "2025")
	require.NoError(t, err)
	assert.Equal(t, []string{"Cofwefwsfee", "Coffee", "Coffwee", "Coffdwsfee"}, cardNames(v.Markers))
	assert.Equal(t, []string{"Coffee", "Coffwee"}, cardNames(v.List))

	v, err = p.SetField(domain.FieldToYear, "")
	require.NoError(t, err)
	assert.Len(t, v.Markers, 6, "clearing a field deactivates the filter")
}

func TestPresenter_SetCriteria(t *testing.T) {
	p := newPresenter(t)

	v, err := p.SetCriteria(map[string]string{
		domain.FieldQuery:     "Cof",
		domain.FieldFromDay:   "1",
		domain.FieldFromMonth: "1",
		domain.FieldFromYear:  "2025",
		domain.FieldToDay:     "2",
		domain.FieldToMonth:   "4",
		domain.FieldToYear:    "2025",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Coffee", "Coffwee", "Coffefwe", "Coffefeae"}, cardNames(v.Markers))
}

func TestPresenter_SetCriteriaUnknownFieldIsAtomic(t *testing.T) {
	p := newPresenter(t)

	_, err := p.SetCriteria(map[string]string{
		domain.FieldQuery: "Coffee",
		"colour":          "red",
	})
	require.ErrorIs(t, err, domain.ErrUnknownField)
	assert.Empty(t, p.Criteria().Query)
	assert.Len(t, p.View().Markers, 6)
}

func TestPresenter_MarkersInvariantUnderViewport(t *testing.T) {
	p := newPresenter(t)
	p.SetQuery("Coff")
	want := p.View().Markers

	for _, b := range []domain.Bounds{london, israel, {South: -90, West: -180, North: 90, East: 180}} {
		_, err := p.Tracker().Settle(domain.SettleZoomEnd, b)
		require.NoError(t, err)
		if diff := cmp.Diff(want, p.View().Markers); diff != "" {
			t.Fatalf("markers changed with viewport (-want +got):\n%s", diff)
		}
	}
}

func TestPresenter_ListFollowsViewport(t *testing.T) {
	p := newPresenter(t)

	_, err := p.Tracker().Settle(domain.SettleLoad, london)
	require.NoError(t, err)
	assert.Len(t, p.View().List, 3)

	_, err = p.Tracker().Settle(domain.SettleMoveEnd, israel)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cofwefwsfee"}, cardNames(p.View().List))
}

func TestPresenter_PicksUpExistingBounds(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	tr := viewport.NewTracker("test", metrics)
	_, err := tr.Settle(domain.SettleLoad, london)
	require.NoError(t, err)

	p := presenter.New(domain.NormalizeAll(domain.SeedRecords()), tr, metrics)

	assert.True(t, p.View().HasBounds)
	assert.Len(t, p.View().List, 3)
}
