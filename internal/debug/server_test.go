package debug

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PizzaHomicide/mediabind/internal/events"
	"github.com/PizzaHomicide/mediabind/internal/mediactx"
	"github.com/PizzaHomicide/mediabind/internal/metrics"
)

type fakeDispatcher struct {
	graph    *mediactx.Graph
	accept   bool
	requests []*events.Event
}

func (f *fakeDispatcher) Snapshot() mediactx.Record { return f.graph.Snapshot() }

func (f *fakeDispatcher) Dispatch(req *events.Event) bool {
	f.requests = append(f.requests, req)
	return f.accept
}

func newTestRouter() (*fakeDispatcher, http.Handler) {
	d := &fakeDispatcher{graph: mediactx.NewMediaGraph(), accept: true}
	return d, NewRouter(d, metrics.New())
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGetContext(t *testing.T) {
	d, r := newTestRouter()
	mediactx.Set(d.graph, mediactx.CurrentSrc, "film.mkv")

	rec := do(r, http.MethodGet, "/context", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "film.mkv", body["currentSrc"])
	assert.Equal(t, 1.0, body["volume"])
}

func TestGetSlot(t *testing.T) {
	d, r := newTestRouter()
	mediactx.Set(d.graph, mediactx.Duration, 10.0)
	mediactx.Set(d.graph, mediactx.CurrentTime, 4.0)

	rec := do(r, http.MethodGet, "/context/progress", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body slotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "progress", body.Name)
	assert.Equal(t, 0.4, body.Value)
	assert.True(t, body.Derived)

	rec = do(r, http.MethodGet, "/context/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostRequest(t *testing.T) {
	d, r := newTestRouter()

	assert.Equal(t, http.StatusAccepted, do(r, http.MethodPost, "/requests/play", "").Code)
	assert.Equal(t, http.StatusAccepted, do(r, http.MethodPost, "/requests/seek-request", `{"value": 12.5}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/requests/volume-change", `{}`).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/requests/rewind", "").Code)

	require.Len(t, d.requests, 2)
	assert.Equal(t, events.RequestPlay, d.requests[0].Type)
	assert.Equal(t, events.RequestSeek, d.requests[1].Type)
	assert.Equal(t, 12.5, d.requests[1].Detail)

	d.accept = false
	assert.Equal(t, http.StatusServiceUnavailable, do(r, http.MethodPost, "/requests/pause", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	_, r := newTestRouter()
	do(r, http.MethodGet, "/context", "")

	rec := do(r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mediabind_debug_http_requests_total 1")
}

func TestMetricsDisabled(t *testing.T) {
	d := &fakeDispatcher{graph: mediactx.NewMediaGraph(), accept: true}
	r := NewRouter(d, nil)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/metrics", "").Code)
}
