// Package httpapi exposes the bus history, the log history and the
// proctoring session as a read-only JSON API, plus Prometheus metrics.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dshills/vigil/internal/event"
	"github.com/dshills/vigil/internal/event/topic"
	"github.com/dshills/vigil/internal/logging"
	"github.com/dshills/vigil/internal/proctor"
)

// requestTimeout bounds every request.
const requestTimeout = 10 * time.Second

// Handler serves the API endpoints.
type Handler struct {
	bus      *event.Bus
	logger   *logging.Logger
	detector *proctor.Detector
	gatherer prometheus.Gatherer
	diag     *slog.Logger
}

// New creates a handler. A nil gatherer disables /metrics; a nil diag
// logger means slog.Default.
func New(bus *event.Bus, logger *logging.Logger, detector *proctor.Detector, gatherer prometheus.Gatherer, diag *slog.Logger) *Handler {
	if diag == nil {
		diag = slog.Default()
	}
	return &Handler{
		bus:      bus,
		logger:   logger,
		detector: detector,
		gatherer: gatherer,
		diag:     diag,
	}
}

// Register mounts the endpoints on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	if h.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Get("/events", h.handleEvents)
		r.Get("/logs", h.handleLogs)
		r.Get("/session", h.handleSession)
		r.Get("/stats", h.handleStats)
	})
}

// NewRouter builds the complete router with the standard middleware chain.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.diag))
	r.Use(middleware.Recoverer)
	h.Register(r)
	return r
}

// handleHealth handles GET /healthz.
func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleEvents handles GET /api/events.
//
// Query parameters: pattern (topic pattern, default all), source (exact
// match) and limit (keep the newest n records).
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filters := []event.Filter{event.ByPattern(topic.Pattern(q.Get("pattern")))}
	if source := q.Get("source"); source != "" {
		filters = append(filters, event.BySource(source))
	}

	records := event.Select(h.bus.History(), event.And(filters...))
	writeJSON(w, http.StatusOK, newest(records, limit))
}

// handleLogs handles GET /api/logs.
//
// Query parameters: level (minimum level, default DEBUG), module (exact
// match) and limit.
func (h *Handler) handleLogs(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	minLevel := logging.LevelDebug
	if s := q.Get("level"); s != "" {
		if err := minLevel.UnmarshalText([]byte(s)); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
	}
	module := q.Get("module")

	entries := make([]logging.Entry, 0)
	for _, e := range h.logger.History() {
		if e.Level < minLevel || (module != "" && e.Module != module) {
			continue
		}
		entries = append(entries, e)
	}
	writeJSON(w, http.StatusOK, newest(entries, limit))
}

// handleSession handles GET /api/session.
func (h *Handler) handleSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.detector.Session())
}

// handleStats handles GET /api/stats.
func (h *Handler) handleStats(w http.ResponseWriter, _ *http.Request) {
	bs := h.bus.Stats()
	ls := h.logger.Stats()
	writeJSON(w, http.StatusOK, StatsResponse{
		Bus: BusStats{
			Emitted:         bs.Emitted,
			Delivered:       bs.Delivered,
			Faults:          bs.Faults,
			HistoryLen:      bs.HistoryLen,
			HistoryCap:      bs.HistoryCap,
			TopicListeners:  bs.TopicListeners,
			GlobalListeners: bs.GlobalListeners,
		},
		Log: LogStats{
			Logged:      ls.Logged,
			Delivered:   ls.Delivered,
			Faults:      ls.Faults,
			HistoryLen:  ls.HistoryLen,
			Subscribers: ls.Subscribers,
		},
		Session: h.detector.Session(),
	})
}

// parseLimit reads the limit query parameter. Zero or absent means no
// limit. It writes a 400 and returns false on a malformed value.
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		writeError(w, http.StatusBadRequest, "bad_request", "limit must be a non-negative integer")
		return 0, false
	}
	return n, true
}

// newest returns the last n items of s, or all of s when n is zero.
func newest[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[len(s)-n:]
	}
	return s
}

// writeJSON encodes v before writing the header, so a value that cannot be
// encoded yields a 500 envelope instead of a truncated 2xx body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(ErrorResponse{
			Error:       "internal_error",
			Description: "response could not be encoded",
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, ErrorResponse{Error: code, Description: description})
}
