// Copyright 2025 Tokenlens
//
// HTTP surface wiring: routes, auth, metrics, and shared response helpers

package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/tokenlens/tokenlens/pkg/database"
	"github.com/tokenlens/tokenlens/pkg/inspector"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tokenlens_http_requests_total",
		Help: "HTTP requests by path and status text",
	}, []string{"path", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tokenlens_http_request_duration_seconds",
		Help:    "HTTP request latency by path",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})
)

// Server bundles the HTTP API over the inspector and the store.
type Server struct {
	APIKey  string
	Logger  *logrus.Logger
	handler http.Handler
}

// New wires the full route table. The store may be nil; the leaderboard and
// stats routes then answer 503, stored-analysis reads answer 404, and
// analyze requests run without caching.
func New(insp *inspector.Inspector, store *database.Store, apiKey string, defaultChainID uint64, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	analysis := NewAnalysisHandlers(insp, store, defaultChainID, logger)
	leaderboard := NewLeaderboardHandlers(store, logger)

	s := &Server{APIKey: apiKey, Logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/api/v1/analyze", s.authenticated(analysis.HandleAnalyze))
	mux.HandleFunc("/api/v1/analyze/", s.authenticated(analysis.HandleGetAnalysis))
	mux.HandleFunc("/api/v1/chains", s.authenticated(analysis.HandleChains))
	mux.HandleFunc("/api/v1/leaderboard", s.authenticated(leaderboard.HandleLeaderboard))
	mux.HandleFunc("/api/v1/stats", s.authenticated(leaderboard.HandleStats))

	s.handler = s.instrumented(mux)
	return s
}

// Handler returns the fully wired HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// authenticated enforces the X-API-Key header. An empty configured key
// disables auth for local development.
func (s *Server) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.APIKey != "" && r.Header.Get("X-API-Key") != s.APIKey {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid API key")
			return
		}
		next(w, r)
	}
}

// statusRecorder captures the response code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (s *Server) instrumented(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := r.URL.Path
		requestsTotal.WithLabelValues(path, http.StatusText(rec.status)).Inc()
		requestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.WithError(err).Error("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
