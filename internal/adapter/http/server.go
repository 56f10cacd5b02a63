package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/fire-weather-api/internal/domain"
	"github.com/couchcryptid/fire-weather-api/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Predictor turns a raw request body into a prediction.
type Predictor interface {
	Predict(ctx context.Context, body []byte) (domain.Prediction, error)
}

// HistoryReader lists recent predictions, newest first.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]domain.Prediction, error)
}

// Deps are the collaborators the routes delegate to. History may be nil.
type Deps struct {
	Predictor Predictor
	Ready     sharedobs.ReadinessChecker
	History   HistoryReader
	Metrics   *observability.Metrics
}

// Options tune the HTTP surface.
type Options struct {
	StaticDir       string
	CORSAllowOrigin string
}

// Server exposes the prediction API, the SPA, and health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	deps       Deps
	opts       Options
	logger     *slog.Logger
}

// NewServer creates an HTTP server with all routes and middleware installed.
func NewServer(addr string, deps Deps, opts Options, logger *slog.Logger) *Server {
	if opts.CORSAllowOrigin == "" {
		opts.CORSAllowOrigin = "*"
	}

	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		deps:   deps,
		opts:   opts,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(deps.Ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/predict", s.handlePredict)
	mux.HandleFunc("OPTIONS /api/predict", handlePreflight)
	mux.HandleFunc("/api/predict", methodNotAllowed("POST, OPTIONS"))
	mux.HandleFunc("GET /api/predictions", s.handleHistory)

	// Legacy form endpoint.
	mux.HandleFunc("POST /predict", s.handlePredict)
	mux.HandleFunc("OPTIONS /predict", handlePreflight)
	mux.HandleFunc("GET /predict", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusFound)
	})
	mux.HandleFunc("/predict", methodNotAllowed("GET, POST, OPTIONS"))

	mux.HandleFunc("/api/", func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	mux.Handle("/", newSPAHandler(opts.StaticDir, logger))

	s.httpServer.Handler = Chain(
		requestLogger(logger, deps.Metrics),
		cors(opts.CORSAllowOrigin),
		recovery(logger),
	)(mux)

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

func handlePreflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func methodNotAllowed(allow string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Allow", allow)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}
