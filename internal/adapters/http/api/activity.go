package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/okian/leaderboard/internal/domain/types"
)

// activityRequest is the POST /api/leaderboard/activity body. userId and
// type are accepted as aliases of actorId and category.
type activityRequest struct {
	ActorID  string `json:"actorId"`
	UserID   string `json:"userId"`
	Category string `json:"category"`
	Type     string `json:"type"`
	Points   *int64 `json:"points"`
}

func (a activityRequest) actor() string {
	if a.ActorID != "" {
		return a.ActorID
	}
	return a.UserID
}

func (a activityRequest) category() string {
	if a.Category != "" {
		return a.Category
	}
	return a.Type
}

// ActivityHandler handles activity submissions.
type ActivityHandler struct {
	deps ActivityDependencies
}

// NewActivityHandler creates a new activity handler.
func NewActivityHandler(deps ActivityDependencies) *ActivityHandler {
	return &ActivityHandler{deps: deps}
}

// HandlePostActivity handles POST /api/leaderboard/activity.
func (h *ActivityHandler) HandlePostActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req activityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}

	points := h.deps.DefaultPoints()
	if req.Points != nil {
		points = *req.Points
	}
	res, err := h.deps.RecordActivity(r.Context(), req.actor(), req.category(), points)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.ActivityResult{
		Event:    toActivity(res.Event),
		NewTotal: res.NewTotal,
	})
}
