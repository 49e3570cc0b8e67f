// Package api serves the predictor over JSON for programmatic clients.
package api

import (
	"net/http"
	"strconv"

	"cardiorisk/app"
	"cardiorisk/internal"
	"cardiorisk/internal/config"
	"cardiorisk/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

// Server is the JSON API
type Server struct {
	router      *chi.Mux
	predictions *app.PredictionService
	metrics     *metrics.Recorder
	datasetErr  func() error
	cfg         config.APIConfig
	logger      *internal.Logger
}

// NewServer wires the API over the prediction service. datasetErr reports the
// dataset load state for /healthz and may be nil.
func NewServer(predictions *app.PredictionService, recorder *metrics.Recorder, datasetErr func() error, cfg config.APIConfig) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		predictions: predictions,
		metrics:     recorder,
		datasetErr:  datasetErr,
		cfg:         cfg,
		logger:      internal.DefaultLogger.Named("api"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(s.observeRequests)
	if s.cfg.RateLimit > 0 {
		s.router.Use(RateLimit(rate.Limit(s.cfg.RateLimit), s.cfg.RateBurst))
	}
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", s.metrics.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/models", s.handleListModels)
		r.Post("/models/{id}/predict", s.handlePredictOne)
		r.Get("/features", s.handleListFeatures)
		r.Post("/predict", s.handlePredict)
		r.Post("/ensemble", s.handleEnsemble)
	})
}

// observeRequests counts responses by chi route pattern and status code
func (s *Server) observeRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.ObserveRequest("api", route, strconv.Itoa(status))
	})
}

// ServeHTTP makes the server usable as an http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer returns a configured *http.Server listening on addr
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  s.cfg.WriteTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
}
