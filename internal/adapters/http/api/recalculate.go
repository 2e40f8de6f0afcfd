package api

import (
	"net/http"

	"github.com/okian/leaderboard/internal/domain/types"
)

// Response messages for the recompute endpoints.
const (
	msgRecalculated = "Leaderboard recalculated successfully"
	msgDummyData    = "Dummy data added and leaderboard recalculated successfully"
)

// RecalculateHandler handles recompute requests.
type RecalculateHandler struct {
	deps RecalculateDependencies
}

// NewRecalculateHandler creates a new recalculate handler.
func NewRecalculateHandler(deps RecalculateDependencies) *RecalculateHandler {
	return &RecalculateHandler{deps: deps}
}

// HandleRecalculate handles POST /api/leaderboard/recalculate.
func (h *RecalculateHandler) HandleRecalculate(w http.ResponseWriter, r *http.Request) {
	h.recalculate(w, r, msgRecalculated)
}

// HandleAddDummyData handles POST /api/leaderboard/add-dummy-data, which
// performs the same synthetic-events-then-rebuild cycle.
func (h *RecalculateHandler) HandleAddDummyData(w http.ResponseWriter, r *http.Request) {
	h.recalculate(w, r, msgDummyData)
}

func (h *RecalculateHandler) recalculate(w http.ResponseWriter, r *http.Request, msg string) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	res, err := h.deps.Recalculate(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.RecalculateResult{
		Message:         msg,
		ActivitiesAdded: res.EventsAppended,
		UsersUpdated:    res.ActorsUpdated,
	})
}
