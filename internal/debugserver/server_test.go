package debugserver

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"voxstream/internal/streaming"
)

func newTestServer() *Server {
	return New("127.0.0.1:0", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	w := get(t, newTestServer(), "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestStatusBeforeFirstTick(t *testing.T) {
	s := newTestServer()
	for _, path := range []string{"/debug/streaming", "/debug/map.png"} {
		if w := get(t, s, path); w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: status = %d, want 503", path, w.Code)
		}
	}
}

func TestStatusAfterPublish(t *testing.T) {
	s := newTestServer()
	s.Publish(Status{
		Tick:    42,
		Chunks:  streaming.Stats{Radius: 2, Live: 13},
		Workers: map[string]int{"chunks": 2},
		ChunkMap: streaming.Snapshot[streaming.Key]{
			Radius: 2,
			Live:   []streaming.Key{{X: 0, Z: 0}},
		},
	})

	w := get(t, s, "/debug/streaming")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	var got Status
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Tick != 42 || got.Chunks.Live != 13 || got.Workers["chunks"] != 2 {
		t.Errorf("got %+v", got)
	}

	w = get(t, s, "/debug/map.png")
	if w.Code != http.StatusOK {
		t.Fatalf("map status = %d, want 200", w.Code)
	}
	if !strings.HasPrefix(w.Body.String(), "\x89PNG") {
		t.Errorf("map body is not a PNG")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer()
	get(t, s, "/healthz")

	w := get(t, s, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "voxstream_http_requests_total") {
		t.Errorf("metrics output missing request counter")
	}
}

func TestUnknownRouteLabelledUnmatched(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	if got := routePattern(req); got != unmatched {
		t.Errorf("routePattern = %q, want %q", got, unmatched)
	}
}

func TestShutdownWithoutStart(t *testing.T) {
	if err := newTestServer().Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodOptions, "/debug/streaming", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Error("preflight response has no Access-Control-Allow-Origin")
	}
}
