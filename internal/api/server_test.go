package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/folio-rag/folio/internal/index"
	"github.com/folio-rag/folio/internal/rag"
)

// fakeIngestor records the request it received and whether the spooled
// file existed at call time.
type fakeIngestor struct {
	req         rag.Request
	report      rag.Report
	err         error
	calls       int
	pathExisted bool
}

func (f *fakeIngestor) Ingest(_ context.Context, req rag.Request) (rag.Report, error) {
	f.calls++
	f.req = req
	if _, err := os.Stat(req.Path); err == nil {
		f.pathExisted = true
	}
	return f.report, f.err
}

// fakeAnswerer emits canned fragments for streams; err is returned
// before any fragment, streamErr after all fragments.
type fakeAnswerer struct {
	q         rag.Query
	result    rag.Result
	fragments []string
	err       error
	streamErr error
	calls     int
}

func (f *fakeAnswerer) Answer(_ context.Context, q rag.Query) (rag.Result, error) {
	f.calls++
	f.q = q
	return f.result, f.err
}

func (f *fakeAnswerer) AnswerStream(ctx context.Context, q rag.Query, fn rag.StreamFunc) error {
	f.calls++
	f.q = q
	if f.err != nil {
		return f.err
	}
	for _, fragment := range f.fragments {
		if err := fn(ctx, fragment); err != nil {
			return err
		}
	}
	return f.streamErr
}

type fakeDeleter struct {
	filter      index.Filter
	deleted     int64
	err         error
	allCalls    int
	filterCalls int
}

func (f *fakeDeleter) DeleteByFilter(_ context.Context, filter index.Filter) (int64, error) {
	f.filterCalls++
	f.filter = filter
	return f.deleted, f.err
}

func (f *fakeDeleter) DeleteAll(context.Context) (int64, error) {
	f.allCalls++
	return f.deleted, f.err
}

func newTestServer(t *testing.T, cfg ServerConfig) *Server {
	t.Helper()

	if cfg.Ingestor == nil {
		cfg.Ingestor = &fakeIngestor{}
	}
	if cfg.Answerer == nil {
		cfg.Answerer = &fakeAnswerer{}
	}
	if cfg.Deleter == nil {
		cfg.Deleter = &fakeDeleter{}
	}

	srv, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer() error: %v", err)
	}
	return srv
}

func TestNewServer(t *testing.T) {
	srv := newTestServer(t, ServerConfig{
		CORSOrigins: []string{"http://localhost:4200"},
	})

	if srv.Handler() == nil {
		t.Fatal("NewServer().Handler() returned nil")
	}
}

func TestNewServer_MissingDeps(t *testing.T) {
	tests := []struct {
		name string
		cfg  ServerConfig
	}{
		{"missing ingestor", ServerConfig{Answerer: &fakeAnswerer{}, Deleter: &fakeDeleter{}}},
		{"missing answerer", ServerConfig{Ingestor: &fakeIngestor{}, Deleter: &fakeDeleter{}}},
		{"missing deleter", ServerConfig{Ingestor: &fakeIngestor{}, Answerer: &fakeAnswerer{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewServer(tt.cfg); err == nil {
				t.Fatal("NewServer() expected error, got nil")
			}
		})
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, ServerConfig{})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/health", nil)

	srv.Handler().ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("GET /health status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestReadyEndpoint_NoPool(t *testing.T) {
	srv := newTestServer(t, ServerConfig{})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/ready", nil)

	srv.Handler().ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("GET /ready status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRootEndpoint(t *testing.T) {
	srv := newTestServer(t, ServerConfig{})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	srv.Handler().ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("GET / status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
}

// Health probes bypass the middleware stack, so exhausting the rate
// limit must not affect them.
func TestHealthBypassesRateLimit(t *testing.T) {
	srv := newTestServer(t, ServerConfig{RateBurst: 1})

	// Exhaust the single token on an API route.
	for range 2 {
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	}

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("GET /health status = %d, want %d", w.Code, http.StatusOK)
	}
}
