// Package debug serves a small HTTP surface for inspecting a running player: the media context as JSON, request
// injection and Prometheus metrics.
package debug

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/PizzaHomicide/mediabind/internal/events"
	"github.com/PizzaHomicide/mediabind/internal/log"
	"github.com/PizzaHomicide/mediabind/internal/mediactx"
	"github.com/PizzaHomicide/mediabind/internal/metrics"
)

const shutdownTimeout = 5 * time.Second

// Dispatcher is the player seen from the HTTP side.  Snapshot is called on the server's goroutines and must be safe
// for that.  Dispatch hands a request to the player's event loop and reports whether it was accepted.
type Dispatcher interface {
	Snapshot() mediactx.Record
	Dispatch(req *events.Event) bool
}

// Handler exposes the debug endpoints.
type Handler struct {
	d Dispatcher
}

// NewRouter builds the chi router for the debug surface.  m may be nil, which disables /metrics.
func NewRouter(d Dispatcher, m *metrics.Metrics) *chi.Mux {
	h := &Handler{d: d}

	r := chi.NewRouter()
	r.Use(log.RequestLogger())
	if m != nil {
		r.Use(metrics.RequestMiddleware(m))
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}
	r.Get("/context", h.GetContext)
	r.Get("/context/{slot}", h.GetSlot)
	r.Post("/requests/{type}", h.PostRequest)
	return r
}

// GetContext handles GET /context: every slot as one JSON object.
func (h *Handler) GetContext(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.d.Snapshot())
}

type slotResponse struct {
	Name    string `json:"name"`
	Value   any    `json:"value"`
	Derived bool   `json:"derived"`
}

// GetSlot handles GET /context/{slot}.
func (h *Handler) GetSlot(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "slot")
	v, ok := h.d.Snapshot().Value(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown slot "+name)
		return
	}
	writeJSON(w, http.StatusOK, slotResponse{
		Name:    name,
		Value:   v,
		Derived: mediactx.MediaSchema.IsDerived(name),
	})
}

type requestBody struct {
	Value *float64 `json:"value"`
}

// PostRequest handles POST /requests/{type}.  The type may be given with or without the "-request" suffix; seek,
// seeking and volume-change need a JSON body of {"value": n}.
func (h *Handler) PostRequest(w http.ResponseWriter, r *http.Request) {
	t := events.Type(chi.URLParam(r, "type"))
	if !strings.HasSuffix(string(t), "-request") {
		t += "-request"
	}
	if !t.IsRequest() {
		writeError(w, http.StatusNotFound, "unknown request type "+string(t))
		return
	}

	var detail any
	if needsValue(t) {
		var body requestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Value == nil {
			writeError(w, http.StatusBadRequest, `expected a body of {"value": <number>}`)
			return
		}
		detail = *body.Value
	}

	if !h.d.Dispatch(events.New(t, detail)) {
		writeError(w, http.StatusServiceUnavailable, "player is not accepting requests")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func needsValue(t events.Type) bool {
	switch t {
	case events.RequestSeek, events.RequestSeeking, events.RequestVolumeChange:
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("Failed to encode debug response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Server runs the debug router on an address until shut down.
type Server struct {
	srv *http.Server
}

// NewServer prepares a server for addr.  Nothing listens until Start.
func NewServer(addr string, handler http.Handler) *Server {
	return &Server{srv: &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}}
}

// Start listens in the background.  Listen failures are logged; the player keeps running without the debug surface.
func (s *Server) Start() {
	go func() {
		log.Info("Debug server starting", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Debug server stopped", "error", err)
		}
	}()
}

// Shutdown drains connections, giving up after a few seconds.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
