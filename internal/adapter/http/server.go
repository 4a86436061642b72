package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/cat-map/internal/domain"
	"github.com/couchcryptid/cat-map/internal/session"
	"github.com/couchcryptid/cat-map/internal/web"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SessionHeader carries the viewer id of the page making an API call.
const SessionHeader = "X-Catmap-Session"

// maxBodyBytes caps API request bodies.
const maxBodyBytes = 64 << 10

// RecordSource supplies the normalized record list.
type RecordSource interface {
	Records() []domain.LocationRecord
}

// PageConfig holds the map settings rendered into the index page.
type PageConfig struct {
	CenterLat float64
	CenterLon float64
	Zoom      int
	TileURL   string
}

// Server serves the map page, its JSON API and the health and metrics endpoints.
type Server struct {
	httpServer *http.Server
	sessions   *session.Manager
	records    RecordSource
	page       PageConfig
	logger     *slog.Logger
}

// NewServer wires every route onto a fresh ServeMux.
func NewServer(addr string, sessions *session.Manager, records RecordSource, page PageConfig, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		sessions: sessions,
		records:  records,
		page:     page,
		logger:   logger,
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.Handle("GET /static/", web.StaticHandler("/static/"))
	mux.HandleFunc("POST /api/viewport", s.handleViewport)
	mux.HandleFunc("PUT /api/criteria", s.handleCriteria)
	mux.HandleFunc("POST /api/criteria/{field}", s.handleField)
	mux.HandleFunc("GET /api/view", s.handleView)
	mux.HandleFunc("GET /api/records", s.handleRecords)

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// viewer resolves the session header. A missing or expired id gets a fresh
// viewer, whose id is echoed back so the page can adopt it and replay its
// inputs.
func (s *Server) viewer(w http.ResponseWriter, r *http.Request) *session.Viewer {
	id := r.Header.Get(SessionHeader)
	v := s.sessions.GetOrCreate(id)
	if id != "" && v.ID != id {
		s.logger.Debug("viewer session replaced", "expired", id, "session", v.ID)
	}
	w.Header().Set(SessionHeader, v.ID)
	return v
}

// handleIndex starts a new viewer for every page load so a reload or a second
// tab never inherits inputs it cannot see.
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	v := s.sessions.Create()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := web.RenderIndex(w, web.PageData{
		Session:   v.ID,
		CenterLat: s.page.CenterLat,
		CenterLon: s.page.CenterLon,
		Zoom:      s.page.Zoom,
		TileURL:   s.page.TileURL,
		View:      v.Presenter.View(),
	})
	if err != nil {
		s.logger.Error("render index", "session", v.ID, "error", err)
	}
}

type boundsRequest struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

type viewportRequest struct {
	Kind   domain.SettleKind `json:"kind"`
	Bounds *boundsRequest    `json:"bounds"`
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	var req viewportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Bounds == nil {
		writeError(w, http.StatusBadRequest, errors.New("bounds are required"))
		return
	}

	v := s.viewer(w, r)
	b := domain.Bounds{South: req.Bounds.South, West: req.Bounds.West, North: req.Bounds.North, East: req.Bounds.East}
	if _, err := v.Tracker().Settle(req.Kind, b); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.logger.Debug("viewport settled", "session", v.ID, "kind", req.Kind)
	writeJSON(w, http.StatusOK, v.Presenter.View())
}

func (s *Server) handleCriteria(w http.ResponseWriter, r *http.Request) {
	var fields map[string]string
	if err := decodeJSON(w, r, &fields); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	v := s.viewer(w, r)
	view, err := v.Presenter.SetCriteria(fields)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type fieldRequest struct {
	Value string `json:"value"`
}

func (s *Server) handleField(w http.ResponseWriter, r *http.Request) {
	var req fieldRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	v := s.viewer(w, r)
	view, err := v.Presenter.SetField(r.PathValue("field"), req.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	v := s.viewer(w, r)
	writeJSON(w, http.StatusOK, v.Presenter.View())
}

func (s *Server) handleRecords(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, domain.NewCards(s.records.Records()))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
