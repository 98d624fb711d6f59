package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/folio-rag/folio/internal/index"
	"github.com/folio-rag/folio/internal/log"
	"github.com/folio-rag/folio/internal/rag"
)

const (
	// DefaultAddr is the default address for the HTTP server.
	DefaultAddr = "127.0.0.1:8080"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout guards against Slowloris-style slow clients.
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire
	// request, uploads included.
	ReadTimeout = 30 * time.Second

	// WriteTimeout bounds the whole response. Streamed answers need
	// headroom beyond a typical JSON response.
	WriteTimeout = 2 * time.Minute

	// IdleTimeout is the keep-alive limit between requests.
	IdleTimeout = 2 * time.Minute
)

// Ingestor turns an uploaded document into indexed chunks.
type Ingestor interface {
	Ingest(ctx context.Context, req rag.Request) (rag.Report, error)
}

// Answerer produces grounded answers for notebook-scoped questions.
type Answerer interface {
	Answer(ctx context.Context, q rag.Query) (rag.Result, error)
	AnswerStream(ctx context.Context, q rag.Query, fn rag.StreamFunc) error
}

// Deleter removes indexed chunks wholesale or by metadata filter.
type Deleter interface {
	DeleteByFilter(ctx context.Context, filter index.Filter) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger      log.Logger
	Ingestor    Ingestor      // Required
	Answerer    Answerer      // Required
	Deleter     Deleter       // Required
	Pool        *pgxpool.Pool // Optional: nil degrades /ready to liveness
	CORSOrigins []string      // Allowed origins for CORS
	TrustProxy  bool          // Trust X-Real-IP/X-Forwarded-For headers
	RateBurst   int           // Rate limiter burst size per IP (0 = default 60)
}

// Server is the JSON API HTTP server.
type Server struct {
	mux    *http.ServeMux
	logger log.Logger
}

// NewServer creates a new API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Ingestor == nil {
		return nil, errors.New("ingestor is required")
	}
	if cfg.Answerer == nil {
		return nil, errors.New("answerer is required")
	}
	if cfg.Deleter == nil {
		return nil, errors.New("deleter is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	h := &handlers{
		ingestor: cfg.Ingestor,
		answerer: cfg.Answerer,
		deleter:  cfg.Deleter,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.root)
	mux.HandleFunc("POST /upload", h.upload)
	mux.HandleFunc("POST /chat", h.chat)
	mux.HandleFunc("POST /chat-stream", h.chatStream)
	mux.HandleFunc("DELETE /documents", h.deleteAllDocuments)
	mux.HandleFunc("DELETE /documents/notebooks/{notebookId}", h.deleteNotebook)
	mux.HandleFunc("DELETE /documents/sources/{sourceId}", h.deleteSource)

	// Rate limiter: per-IP token bucket (1 token/sec refill)
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 60
	}
	rl := newRateLimiter(1.0, burst)

	// Build middleware stack (outermost first):
	//   Recovery → RequestID → Logging → CORS → RateLimit → Routes
	// RequestID must be before Logging so request_id is available in log
	// attributes. CORS must be before RateLimit so preflight OPTIONS
	// gets proper CORS headers.
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, cfg.TrustProxy, logger)(handler)
	handler = corsMiddleware(cfg.CORSOrigins)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Top-level mux separates health probes from the middleware stack.
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", health)
	topMux.Handle("GET /ready", readiness(cfg.Pool))
	topMux.Handle("/", handler)

	return &Server{mux: topMux, logger: logger}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// handlers holds the dependencies shared by all route handlers.
type handlers struct {
	ingestor Ingestor
	answerer Answerer
	deleter  Deleter
	logger   log.Logger
}

// root is the service banner for GET /.
func (h *handlers) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "folio",
		"status":  "ok",
	})
}
