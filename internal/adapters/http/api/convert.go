package api

import (
	service "github.com/okian/leaderboard/internal/app"
	"github.com/okian/leaderboard/internal/domain/model"
	"github.com/okian/leaderboard/internal/domain/types"
)

func toEntries(entries []model.RankedEntry) []types.Entry {
	out := make([]types.Entry, len(entries))
	for i, e := range entries {
		out[i] = types.Entry{
			ActorID:     e.Actor.ID,
			DisplayName: e.Actor.DisplayName,
			Contact:     e.Actor.Contact,
			Score:       e.Score,
			Position:    e.Position,
			Matched:     e.Matched,
			TotalPoints: e.Actor.TotalPoints,
			Rank:        e.Actor.Rank,
		}
	}
	return out
}

func toActivity(e model.Event) types.Activity {
	return types.Activity{
		ID:         e.ID,
		ActorID:    e.ActorID,
		Category:   e.Category,
		Points:     e.Points,
		OccurredAt: e.OccurredAt,
	}
}

func toStats(st service.Stats) types.Stats {
	out := types.Stats{
		Actors:        st.Actors,
		Events:        st.Events,
		Recalculating: st.Recalculating(),
	}
	if r := st.LastRecalculation; r != nil {
		out.LastRecalculation = &types.RecalculationInfo{
			StartedAt:      r.StartedAt,
			EventsAppended: r.EventsAppended,
			ActorsUpdated:  r.ActorsUpdated,
		}
		if !r.CompletedAt.IsZero() {
			completed := r.CompletedAt
			out.LastRecalculation.CompletedAt = &completed
		}
	}
	return out
}
