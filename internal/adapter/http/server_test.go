package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	httpadapter "github.com/couchcryptid/cat-map/internal/adapter/http"
	"github.com/couchcryptid/cat-map/internal/domain"
	"github.com/couchcryptid/cat-map/internal/observability"
	"github.com/couchcryptid/cat-map/internal/session"
	"github.com/couchcryptid/cat-map/internal/store"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const londonViewport = `{"kind":"moveend","bounds":{"south":51.0,"west":-0.5,"north":52.0,"east":0.5}}`

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

func newTestServer(t *testing.T, readyErr error) *httpadapter.Server {
	t.Helper()
	srv, _ := newTestServerWithSessions(t, readyErr)
	return srv
}

func newTestServerWithSessions(t *testing.T, readyErr error) (*httpadapter.Server, *session.Manager) {
	t.Helper()
	st := store.New(domain.SeedRecords())
	st.Normalize()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := session.NewManager(st.Records(), time.Hour, nil, observability.NewMetricsForTesting(), logger)
	page := httpadapter.PageConfig{
		CenterLat: 51.505,
		CenterLon: -0.09,
		Zoom:      13,
		TileURL:   "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
	}
	return httpadapter.NewServer(":0", sessions, st, page, &mockReadiness{err: readyErr}, logger), sessions
}

var sessionAttr = regexp.MustCompile(`data-session="([^"]+)"`)

// client is one open page: it sends its session header and adopts the id
// the server hands back, the way app.js does.
type client struct {
	t       *testing.T
	srv     *httpadapter.Server
	session string
}

// open loads the page and takes the session rendered into it.
func (c *client) open() {
	c.t.Helper()
	rec := c.do(http.MethodGet, "/", "")
	require.Equal(c.t, http.StatusOK, rec.Code)
	m := sessionAttr.FindStringSubmatch(rec.Body.String())
	require.Len(c.t, m, 2, "page has no session")
	c.session = m[1]
}

func (c *client) do(method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if c.session != "" {
		req.Header.Set(httpadapter.SessionHeader, c.session)
	}
	rec := httptest.NewRecorder()
	c.srv.ServeHTTP(rec, req)
	if id := rec.Header().Get(httpadapter.SessionHeader); id != "" {
		c.session = id
	}
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) domain.View {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var v domain.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func names(cards []domain.Card) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.Name)
	}
	return out
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(t, fmt.Errorf("not ready yet"))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestIndexRendersPageWithSession(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t, nil)}
	rec := c.do(http.MethodGet, "/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, `id="map"`)
	assert.Contains(t, body, `data-zoom="13"`)
	assert.Contains(t, body, `data-field="fromDay"`)
	assert.NotContains(t, body, domain.EmptyListMessage, "no bounds yet, so no empty message")
	assert.Regexp(t, sessionAttr, body)
}

func TestStaticAssetsServed(t *testing.T) {
	srv := newTestServer(t, nil)
	for _, path := range []string{"/static/app.js", "/static/app.css"} {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.NotEmpty(t, rec.Body.String(), path)
	}
}

func TestViewBeforeFirstSettle(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t, nil)}
	v := decodeView(t, c.do(http.MethodGet, "/api/view", ""))

	assert.False(t, v.HasBounds)
	assert.Empty(t, v.List)
	assert.Empty(t, v.EmptyMessage)
	assert.Len(t, v.Markers, 6)
}

func TestLondonScenario(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t, nil)}

	v := decodeView(t, c.do(http.MethodPost, "/api/viewport", londonViewport))
	assert.True(t, v.HasBounds)
	assert.ElementsMatch(t, []string{"Coffee", "Coffwee", "Coffefeae"}, names(v.List))
	assert.Len(t, v.Markers, 6)

	v = decodeView(t, c.do(http.MethodPost, "/api/criteria/query", `{"value":"Coffw"}`))
	assert.Equal(t, []string{"Coffwee"}, names(v.List))
	assert.Equal(t, []string{"Coffwee"}, names(v.Markers))
	assert.Equal(t, "4/1/2025 8:38:46 PM", v.List[0].When)

	v = decodeView(t, c.do(http.MethodPost, "/api/criteria/query", `{"value":"zzz"}`))
	assert.Empty(t, v.List)
	assert.Equal(t, domain.EmptyListMessage, v.EmptyMessage)
}

func TestCriteriaReplaceAppliesDateRange(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t, nil)}
	c.do(http.MethodPost, "/api/viewport", londonViewport)

	body := `{"query":"","fromDay":"1","fromMonth":"4","fromYear":"2025","toDay":"2","toMonth":"4","toYear":"2025"}`
	v := decodeView(t, c.do(http.MethodPut, "/api/criteria", body))

	assert.ElementsMatch(t, []string{"Coffee", "Coffwee"}, names(v.List))
	assert.ElementsMatch(t, []string{"Coffee", "Coffwee"}, names(v.Markers))
}

func TestSessionsAreIsolated(t *testing.T) {
	srv := newTestServer(t, nil)
	a := &client{t: t, srv: srv}
	b := &client{t: t, srv: srv}

	decodeView(t, a.do(http.MethodPost, "/api/viewport", londonViewport))
	v := decodeView(t, b.do(http.MethodGet, "/api/view", ""))

	assert.False(t, v.HasBounds)
	assert.NotEqual(t, a.session, b.session)
}

func TestReloadStartsFromBlankInputs(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t, nil)}
	c.open()
	decodeView(t, c.do(http.MethodPost, "/api/viewport", londonViewport))
	v := decodeView(t, c.do(http.MethodPost, "/api/criteria/query", `{"value":"zzz"}`))
	require.Empty(t, v.Markers)
	first := c.session

	c.open()
	v = decodeView(t, c.do(http.MethodGet, "/api/view", ""))

	assert.NotEqual(t, first, c.session)
	assert.False(t, v.HasBounds)
	assert.Len(t, v.Markers, 6)
}

func TestTabsDoNotShareInputs(t *testing.T) {
	srv := newTestServer(t, nil)
	a := &client{t: t, srv: srv}
	b := &client{t: t, srv: srv}
	a.open()
	b.open()
	require.NotEqual(t, a.session, b.session)

	decodeView(t, a.do(http.MethodPost, "/api/viewport", londonViewport))
	decodeView(t, a.do(http.MethodPost, "/api/criteria/query", `{"value":"zzz"}`))

	v := decodeView(t, b.do(http.MethodGet, "/api/view", ""))
	assert.Len(t, v.Markers, 6)
	assert.False(t, v.HasBounds)
}

func TestExpiredSessionIsReplacedAndRebuilt(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, time.April, 3, 12, 0, 0, 0, time.UTC))
	domain.SetClock(clock)
	t.Cleanup(func() { domain.SetClock(nil) })

	srv, sessions := newTestServerWithSessions(t, nil)
	c := &client{t: t, srv: srv}
	c.open()
	decodeView(t, c.do(http.MethodPost, "/api/criteria/query", `{"value":"Coffw"}`))
	stale := c.session

	clock.Advance(2 * time.Hour)
	require.Equal(t, 1, sessions.Sweep())

	rec := c.do(http.MethodGet, "/api/view", "")
	v := decodeView(t, rec)
	assert.NotEqual(t, stale, rec.Header().Get(httpadapter.SessionHeader))
	assert.Len(t, v.Markers, 6, "replacement viewer starts blank")

	// The page replays its inputs onto the new viewer.
	body := `{"query":"Coffw","fromDay":"","fromMonth":"","fromYear":"","toDay":"","toMonth":"","toYear":""}`
	decodeView(t, c.do(http.MethodPut, "/api/criteria", body))
	v = decodeView(t, c.do(http.MethodPost, "/api/viewport", londonViewport))
	assert.Equal(t, []string{"Coffwee"}, names(v.List))
	assert.Equal(t, []string{"Coffwee"}, names(v.Markers))
}

func TestKnownSessionKeepsItsId(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t, nil)}
	c.open()
	id := c.session

	rec := c.do(http.MethodPost, "/api/viewport", londonViewport)
	assert.Equal(t, id, rec.Header().Get(httpadapter.SessionHeader))
}

func TestRecordsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/records", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var cards []domain.Card
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cards))
	require.Len(t, cards, 6)
	assert.Equal(t, "4/3/2025 1:14:36 AM", cards[0].When)
}

func TestBadRequests(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{name: "malformed viewport json", method: http.MethodPost, path: "/api/viewport", body: `{"kind":`},
		{name: "unknown settle kind", method: http.MethodPost, path: "/api/viewport", body: `{"kind":"dragstart","bounds":{"south":0,"west":0,"north":1,"east":1}}`},
		{name: "missing bounds", method: http.MethodPost, path: "/api/viewport", body: `{"kind":"load"}`},
		{name: "unknown json field", method: http.MethodPost, path: "/api/criteria/query", body: `{"val":"x"}`},
		{name: "unknown criteria field", method: http.MethodPost, path: "/api/criteria/colour", body: `{"value":"x"}`},
		{name: "unknown field in replace", method: http.MethodPut, path: "/api/criteria", body: `{"colour":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &client{t: t, srv: newTestServer(t, nil)}
			rec := c.do(tt.method, tt.path, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestRejectedSettleKeepsPreviousBounds(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t, nil)}
	c.do(http.MethodPost, "/api/viewport", londonViewport)
	c.do(http.MethodPost, "/api/viewport", `{"kind":"dragstart","bounds":{"south":0,"west":0,"north":1,"east":1}}`)

	v := decodeView(t, c.do(http.MethodGet, "/api/view", ""))
	assert.Len(t, v.List, 3)
}
