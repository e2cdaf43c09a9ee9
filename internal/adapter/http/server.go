package http

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/fire-weather-service/internal/domain"
	"github.com/couchcryptid/fire-weather-service/internal/service"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodyBytes = 1 << 20

// Predictor is the prediction service contract served over HTTP.
type Predictor interface {
	Health() service.HealthStatus
	Metadata() service.Metadata
	Predict(ctx context.Context, payload []byte) domain.PredictionResult
}

// PredictResponse is the success body of POST /predict.
type PredictResponse struct {
	FWIPrediction float64 `json:"FWI_prediction"`
	Status        string  `json:"status"`
}

// ErrorResponse is the failure body of POST /predict.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Server exposes the prediction API plus readiness and metrics endpoints.
type Server struct {
	httpServer *http.Server
	predictor  Predictor
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /, /health, /predict, /healthz, /readyz, and /metrics routes.
func NewServer(addr string, predictor Predictor, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      recoverer(mux, logger),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		predictor: predictor,
		logger:    logger,
	}

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /predict", s.handlePredict)
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

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.predictor.Metadata())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.predictor.Health())
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		sharedobs.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: fmt.Sprintf("read body: %v", err)})
		return
	}

	res := s.predictor.Predict(r.Context(), body)
	if !res.OK() {
		s.logger.Warn("predict request failed", "outcome", service.Outcome(res), "detail", res.Message)
		sharedobs.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: res.Message})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, PredictResponse{FWIPrediction: res.Value, Status: string(domain.StatusSuccess)})
}

// recoverer turns a handler panic into a 500 so one request cannot take the
// process down.
func recoverer(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("handler panic", "panic", rec, "path", r.URL.Path)
				sharedobs.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: "internal error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
