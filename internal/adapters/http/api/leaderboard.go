package api

import (
	"net/http"
	"time"

	service "github.com/okian/leaderboard/internal/app"
	"github.com/okian/leaderboard/internal/domain/window"
	"github.com/okian/leaderboard/pkg/metrics"
)

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps LeaderboardDependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

// HandleGetLeaderboard handles GET /api/leaderboard?filter=day|month|year&search=term.
// userId is accepted as an alias of search.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	start := time.Now()
	q := r.URL.Query()

	filter, err := window.Parse(q.Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	search := q.Get("search")
	if search == "" {
		search = q.Get("userId")
	}

	entries, err := h.deps.Query(r.Context(), service.QueryOptions{
		Window: h.deps.Window(filter),
		Search: search,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	metrics.RecordQuery(string(filter), search != "", time.Since(start), len(entries))
	writeJSON(w, http.StatusOK, toEntries(entries))
}
