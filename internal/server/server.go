package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ogulcanaydogan/subguard/pkg/economics"
	"github.com/ogulcanaydogan/subguard/pkg/metrics"
	"github.com/ogulcanaydogan/subguard/pkg/reminder"
	"github.com/ogulcanaydogan/subguard/pkg/storage"
	"github.com/ogulcanaydogan/subguard/pkg/tracker"
)

const (
	defaultRequestTimeout = 10 * time.Second
	defaultMaxUploadSize  = 5 << 20
)

// Server provides the subscription API, health check and metrics endpoints.
type Server struct {
	tracker        *tracker.Tracker
	metrics        *metrics.Collector
	reminder       *reminder.Reminder
	mux            *http.ServeMux
	logger         *slog.Logger
	requestTimeout time.Duration
	maxUploadSize  int64
}

// Option configures optional server collaborators.
type Option func(*Server)

// WithMetrics serves /metrics and records request metrics.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Server) { s.metrics = c }
}

// WithReminder enables POST /api/v1/reminders/run.
func WithReminder(r *reminder.Reminder) Option {
	return func(s *Server) { s.reminder = r }
}

// WithRequestTimeout bounds the context of every API request.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// WithMaxUploadSize limits import request bodies.
func WithMaxUploadSize(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadSize = n
		}
	}
}

// NewServer creates an API server.
func NewServer(t *tracker.Tracker, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		tracker:        t,
		mux:            http.NewServeMux(),
		logger:         logger,
		requestTimeout: defaultRequestTimeout,
		maxUploadSize:  defaultMaxUploadSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.handle("GET /api/v1/subscriptions", s.handleListSubscriptions)
	s.handle("POST /api/v1/subscriptions", s.handleCreateSubscription)
	s.handle("GET /api/v1/subscriptions/{id}", s.handleGetSubscription)
	s.handle("PUT /api/v1/subscriptions/{id}", s.handleUpdateSubscription)
	s.handle("DELETE /api/v1/subscriptions/{id}", s.handleDeleteSubscription)
	s.handle("POST /api/v1/subscriptions/{id}/used", s.handleMarkUsed)

	s.handle("POST /api/v1/import", s.handleImport)
	s.handle("GET /api/v1/export", s.handleExport)

	s.handle("GET /api/v1/analytics/overview", s.handleOverview)
	s.handle("GET /api/v1/analytics/categories", s.handleCategories)
	s.handle("GET /api/v1/analytics/dead-weight", s.handleDeadWeight)
	s.handle("GET /api/v1/analytics/trends", s.handleTrends)
	s.handle("GET /api/v1/analytics/recommendations", s.handleRecommendations)
	s.handle("GET /api/v1/analytics/upcoming", s.handleUpcoming)
	s.handle("GET /api/v1/analytics/snapshot", s.handleSnapshot)

	s.handle("GET /api/v1/settings", s.handleGetSettings)
	s.handle("PUT /api/v1/settings", s.handleUpdateSettings)

	s.handle("GET /api/v1/categories", s.handleCatalog)

	if s.reminder != nil {
		s.handle("POST /api/v1/reminders/run", s.handleRunReminder)
	}
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler(s.tracker))
	}
}

// handle registers an API route with the request timeout and request metrics applied.
func (s *Server) handle(pattern string, h http.HandlerFunc) {
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
		defer cancel()

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r.WithContext(ctx))

		if s.metrics != nil {
			s.metrics.ObserveRequest(r.Method, r.Pattern, rec.status, time.Since(start))
		}
	})
}

// Handler returns the HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// fail maps an error to a status code. Client errors carry their message;
// anything else is logged and reported as an internal error.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, economics.ErrInvalidInput), errors.Is(err, economics.ErrPrecondition):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		s.logger.Warn(op+" timed out", "error", err)
		writeError(w, http.StatusServiceUnavailable, "request timed out")
	default:
		s.logger.Error(op, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
