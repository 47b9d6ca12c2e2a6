// Package server exposes the tracker over HTTP with chi routing and
// Prometheus instrumentation.
package server

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/towerkit/towertrack"
	"github.com/towerkit/towertrack/badge"
	"github.com/towerkit/towertrack/codec"
	"github.com/towerkit/towertrack/collection"
	"github.com/towerkit/towertrack/export"
)

// Server wires HTTP routes to a tracker.
type Server struct {
	tracker *towertrack.Tracker
	logger  *towertrack.Logger
}

// New creates a Server over the given tracker.
func New(tracker *towertrack.Tracker, logger *towertrack.Logger) *Server {
	if logger == nil {
		logger = towertrack.NoopLogger()
	}
	return &Server{tracker: tracker, logger: logger}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	r.Route("/api", func(api chi.Router) {
		api.Get("/badges", s.handleBadges)
		api.Get("/badges/{id}", s.handleBadgeByID)
		api.Get("/areas", s.handleAreas)
		api.Get("/users/{id}/uncompleted", s.handleUncompleted)
		api.Get("/users/{id}/uncompleted.xlsx", s.handleUncompletedXLSX)
		api.Post("/users/{id}/sync", s.handleSync)
	})

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

type syncResponse struct {
	JobID       string `json:"jobId"`
	UserID      int64  `json:"userId"`
	Awarded     int    `json:"awarded"`
	Uncompleted int    `json:"uncompleted"`
	SyncedAt    string `json:"syncedAt"`
}

// handleBadges lists the catalog, or queries a single filter when the
// filter and key query parameters are present.
func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")
	rawKey := r.URL.Query().Get("key")

	if filter == "" && rawKey == "" {
		respondJSON(w, http.StatusOK, s.tracker.Badges().Badges())
		return
	}
	if filter == "" || rawKey == "" {
		respondError(w, http.StatusBadRequest, "filter and key must be given together")
		return
	}

	key, err := parseKey(filter, rawKey)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	badges, err := s.tracker.Badges().Get(filter, key)
	if err != nil {
		if errors.Is(err, collection.ErrUnknownFilter) {
			respondError(w, http.StatusBadRequest, "unknown filter: "+filter)
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, badges)
}

func (s *Server) handleBadgeByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid badge id")
		return
	}

	b, ok := s.tracker.Badges().ByID(id)
	if !ok {
		respondError(w, http.StatusNotFound, "badge not found")
		return
	}

	respondJSON(w, http.StatusOK, b)
}

func (s *Server) handleAreas(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.tracker.Areas().Areas())
}

func (s *Server) handleUncompleted(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	badges, err := s.tracker.UncompletedBadges(id)
	if err != nil {
		if errors.Is(err, towertrack.ErrNotFound) {
			respondError(w, http.StatusNotFound, "no completion data, sync first")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, badges)
}

func (s *Server) handleUncompletedXLSX(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	badges, err := s.tracker.UncompletedBadges(id)
	if err != nil {
		if errors.Is(err, towertrack.ErrNotFound) {
			respondError(w, http.StatusNotFound, "no completion data, sync first")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	userName := ""
	if u, ok := s.tracker.Users().ByID(id); ok {
		userName = u.Name
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="uncompleted.xlsx"`)
	if err := export.UncompletedReport(w, userName, badges); err != nil {
		s.logger.ErrorContext(r.Context(), "report export failed", "user_id", id, "error", err)
	}
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	jobID := uuid.NewString()

	result, err := s.tracker.Sync(r.Context(), id)
	if err != nil {
		syncsTotal.WithLabelValues("error").Inc()
		if errors.Is(err, towertrack.ErrNoFetcher) {
			respondError(w, http.StatusServiceUnavailable, "remote source not configured")
			return
		}
		s.logger.ErrorContext(r.Context(), "sync failed", "job_id", jobID, "user_id", id, "error", err)
		respondError(w, http.StatusBadGateway, "sync failed")
		return
	}

	syncsTotal.WithLabelValues("ok").Inc()
	badgesIndexed.Set(float64(s.tracker.Badges().Len()))

	respondJSON(w, http.StatusOK, syncResponse{
		JobID:       jobID,
		UserID:      result.UserID,
		Awarded:     result.Awarded,
		Uncompleted: result.Uncompleted,
		SyncedAt:    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"badges": s.tracker.Badges().Len(),
		"areas":  s.tracker.Areas().Len(),
		"users":  s.tracker.Users().Len(),
	})
}

// parseKey converts the raw query value into the key type the filter
// indexes under.
func parseKey(filter, raw string) (collection.Key, error) {
	switch filter {
	case badge.FilterIDs:
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return collection.Key{}, errors.New("key must be an integer id")
		}
		return collection.Int(id), nil
	case badge.FilterDifficulty:
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(d) {
			return collection.Key{}, errors.New("key must be a numeric difficulty")
		}
		return collection.Float(d), nil
	default:
		return collection.String(raw), nil
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	data, err := codec.Default.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"encoding failed"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}
