// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/leaderboard/internal/app"
	"github.com/okian/leaderboard/internal/domain/apperr"
	"github.com/okian/leaderboard/internal/domain/model"
	"github.com/okian/leaderboard/internal/domain/window"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	LeaderboardDependencies
	RecalculateDependencies
	ActivityDependencies
	StatsProvider
}

// LeaderboardDependencies answers ranked queries.
type LeaderboardDependencies interface {
	Window(f window.Filter) *model.Window
	Query(ctx context.Context, opts service.QueryOptions) ([]model.RankedEntry, error)
}

// RecalculateDependencies drives a full recompute.
type RecalculateDependencies interface {
	Recalculate(ctx context.Context) (service.RecalcResult, error)
}

// ActivityDependencies records single activities.
type ActivityDependencies interface {
	DefaultPoints() int64
	RecordActivity(ctx context.Context, actorID, category string, points int64) (service.ActivityResult, error)
}

// StatsProvider reports service statistics.
type StatsProvider interface {
	Stats(ctx context.Context) (service.Stats, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	leaderboardHandler *LeaderboardHandler
	recalculateHandler *RecalculateHandler
	activityHandler    *ActivityHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
		recalculateHandler: NewRecalculateHandler(deps),
		activityHandler:    NewActivityHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/api/leaderboard/recalculate", MetricsMiddleware(s.recalculateHandler.HandleRecalculate, "recalculate"))
	mux.HandleFunc("/api/leaderboard/add-dummy-data", MetricsMiddleware(s.recalculateHandler.HandleAddDummyData, "add_dummy_data"))
	mux.HandleFunc("/api/leaderboard/activity", MetricsMiddleware(s.activityHandler.HandlePostActivity, "activity"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps an error kind to its HTTP status and code.
func writeServiceError(w http.ResponseWriter, err error) {
	switch apperr.KindOf(err) {
	case apperr.ErrValidation:
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case apperr.ErrNotFound:
		writeError(w, http.StatusNotFound, "not_found", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
