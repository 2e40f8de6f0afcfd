package ranking_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/okian/leaderboard/internal/domain/model"
	"github.com/okian/leaderboard/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

var base = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func ev(actor string, points int64, at time.Time) model.Event {
	return model.Event{ActorID: actor, Category: "login", Points: points, OccurredAt: at}
}

func actors(ids ...string) []model.Actor {
	out := make([]model.Actor, len(ids))
	for i, id := range ids {
		out[i] = model.Actor{ID: id, DisplayName: "name-" + id}
	}
	return out
}

func ids(entries []model.RankedEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Actor.ID
	}
	return out
}

func positions(entries []model.RankedEntry) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.Position
	}
	return out
}

func TestAggregate(t *testing.T) {
	Convey("Given events for several actors", t, func() {
		events := []model.Event{
			ev("a", 20, base),
			ev("a", 15, base.Add(time.Hour)),
			ev("b", 5, base.Add(-48*time.Hour)),
			ev("c", 25, base.Add(24*time.Hour)),
		}

		Convey("When aggregating without a window", func() {
			sums := ranking.Aggregate(events, nil)

			Convey("Then every event is counted", func() {
				So(sums, ShouldResemble, map[string]int64{"a": 35, "b": 5, "c": 25})
			})
		})

		Convey("When aggregating over a half-open window", func() {
			w := &model.Window{Start: base, End: base.Add(24 * time.Hour)}
			sums := ranking.Aggregate(events, w)

			Convey("Then the start boundary is included and the end boundary excluded", func() {
				So(sums, ShouldResemble, map[string]int64{"a": 35})
			})

			Convey("And actors without qualifying events are absent", func() {
				_, ok := sums["b"]
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When no event overlaps the window", func() {
			w := &model.Window{Start: base.AddDate(1, 0, 0), End: base.AddDate(1, 0, 1)}

			Convey("Then the mapping is empty", func() {
				So(ranking.Aggregate(events, w), ShouldBeEmpty)
			})
		})

		Convey("When aggregating twice", func() {
			w := &model.Window{Start: base.Add(-72 * time.Hour), End: base}

			Convey("Then the result is identical", func() {
				So(ranking.Aggregate(events, w), ShouldResemble, ranking.Aggregate(events, w))
			})
		})
	})

	Convey("Given random event sets and windows", t, func() {
		rng := rand.New(rand.NewSource(7))

		Convey("Then the total of the mapping equals the sum over in-window events", func() {
			for round := 0; round < 200; round++ {
				n := rng.Intn(40)
				events := make([]model.Event, n)
				for i := range events {
					at := base.Add(time.Duration(rng.Intn(96)-48) * time.Hour)
					events[i] = ev(string(rune('a'+rng.Intn(5))), int64(rng.Intn(30)+1), at)
				}
				var w *model.Window
				if rng.Intn(3) > 0 {
					start := base.Add(time.Duration(rng.Intn(48)-24) * time.Hour)
					w = &model.Window{Start: start, End: start.Add(time.Duration(rng.Intn(48)) * time.Hour)}
				}

				var want int64
				for _, e := range events {
					if w == nil || (!e.OccurredAt.Before(w.Start) && e.OccurredAt.Before(w.End)) {
						want += e.Points
					}
				}
				var got int64
				for _, v := range ranking.Aggregate(events, w) {
					got += v
				}
				So(got, ShouldEqual, want)
			}
		})
	})
}

func TestCompetitionRanks(t *testing.T) {
	Convey("Given scores sorted descending", t, func() {
		Convey("Then a leading tie skips the following rank", func() {
			So(ranking.CompetitionRanks([]int64{100, 100, 50}), ShouldResemble, []int{1, 1, 3})
		})

		Convey("And a tie in the middle shares a rank", func() {
			So(ranking.CompetitionRanks([]int64{90, 70, 70, 70, 10}), ShouldResemble, []int{1, 2, 2, 2, 5})
		})

		Convey("And distinct scores rank by position", func() {
			So(ranking.CompetitionRanks([]int64{3, 2, 1}), ShouldResemble, []int{1, 2, 3})
		})

		Convey("And all tied actors share rank 1", func() {
			So(ranking.CompetitionRanks([]int64{0, 0, 0, 0}), ShouldResemble, []int{1, 1, 1, 1})
		})

		Convey("And a single actor is rank 1", func() {
			So(ranking.CompetitionRanks([]int64{42}), ShouldResemble, []int{1})
		})

		Convey("And empty input yields empty output", func() {
			So(ranking.CompetitionRanks(nil), ShouldBeEmpty)
		})
	})
}

func TestSequentialPositions(t *testing.T) {
	Convey("Given tied scores", t, func() {
		Convey("Then positions still increase strictly", func() {
			So(ranking.SequentialPositions([]int64{100, 100, 50}), ShouldResemble, []int{1, 2, 3})
			So(ranking.SequentialPositions([]int64{0, 0, 0}), ShouldResemble, []int{1, 2, 3})
		})

		Convey("And empty input yields empty output", func() {
			So(ranking.SequentialPositions(nil), ShouldBeEmpty)
		})
	})
}

func TestMatchAny(t *testing.T) {
	Convey("Given an actor with id, name and contact", t, func() {
		a := model.Actor{ID: "USER001", DisplayName: "John Doe", Contact: "john@example.com"}

		Convey("Then matching is case-insensitive on every field", func() {
			So(ranking.MatchAny("user0")(a), ShouldBeTrue)
			So(ranking.MatchAny("DOE")(a), ShouldBeTrue)
			So(ranking.MatchAny("Example.COM")(a), ShouldBeTrue)
		})

		Convey("And unrelated terms do not match", func() {
			So(ranking.MatchAny("zz")(a), ShouldBeFalse)
		})

		Convey("And a blank term matches nothing", func() {
			So(ranking.MatchAny("  ")(a), ShouldBeFalse)
		})
	})
}

func TestMerge(t *testing.T) {
	Convey("Given a low-score match and a high-score non-match", t, func() {
		all := []model.Actor{
			{ID: "B", DisplayName: "Bravo"},
			{ID: "A", DisplayName: "Azz"},
		}
		scores := map[string]int64{"A": 10, "B": 90}

		Convey("When merging with the search term", func() {
			out := ranking.Merge(all, scores, ranking.MatchAny("zz"))

			Convey("Then the match comes first regardless of score", func() {
				So(ids(out), ShouldResemble, []string{"A", "B"})
				So(out[0].Matched, ShouldBeTrue)
				So(out[1].Matched, ShouldBeFalse)
			})
		})
	})

	Convey("Given several matches and non-matches", t, func() {
		all := actors("a1", "a2", "x1", "x2", "x3")
		scores := map[string]int64{"a1": 5, "a2": 50, "x1": 100, "x3": 30}

		Convey("When merging on the 'a' prefix", func() {
			match := func(a model.Actor) bool { return a.ID[0] == 'a' }
			out := ranking.Merge(all, scores, match)

			Convey("Then each partition keeps its own score order", func() {
				So(ids(out), ShouldResemble, []string{"a2", "a1", "x1", "x3", "x2"})
			})

			Convey("And actors absent from the scores default to 0", func() {
				So(out[4].Score, ShouldEqual, 0)
			})
		})

		Convey("When nothing matches", func() {
			out := ranking.Merge(all, scores, ranking.MatchAny("nobody"))

			Convey("Then the order is score descending and nothing is marked", func() {
				So(ids(out), ShouldResemble, []string{"x1", "a2", "x3", "a1", "x2"})
				for _, e := range out {
					So(e.Matched, ShouldBeFalse)
				}
			})
		})
	})

	Convey("Given equal scores", t, func() {
		all := actors("c", "a", "b")

		Convey("Then the tie-break is actor id ascending and repeatable", func() {
			first := ranking.Merge(all, nil, nil)
			second := ranking.Merge([]model.Actor{all[2], all[0], all[1]}, nil, nil)
			So(ids(first), ShouldResemble, []string{"a", "b", "c"})
			So(ids(second), ShouldResemble, ids(first))
		})
	})
}

func TestApply(t *testing.T) {
	Convey("Given entries sorted with a tie", t, func() {
		all := actors("a", "b", "c")
		scores := map[string]int64{"a": 100, "b": 100, "c": 50}
		entries := ranking.Entries(all, scores)
		ranking.SortByScore(entries)

		Convey("When applying sequential positions", func() {
			ranking.Apply(entries, ranking.SequentialPositions)
			So(positions(entries), ShouldResemble, []int{1, 2, 3})
		})

		Convey("When applying competition ranks", func() {
			ranking.Apply(entries, ranking.CompetitionRanks)
			So(positions(entries), ShouldResemble, []int{1, 1, 3})
		})
	})

	Convey("Given no event inside the window", t, func() {
		all := actors("a", "b", "c", "d")
		entries := ranking.Entries(all, map[string]int64{})
		ranking.SortByScore(entries)

		Convey("Then competition ranks all tie at 1", func() {
			ranking.Apply(entries, ranking.CompetitionRanks)
			So(positions(entries), ShouldResemble, []int{1, 1, 1, 1})
		})

		Convey("And sequential positions run 1..N", func() {
			ranking.Apply(entries, ranking.SequentialPositions)
			So(positions(entries), ShouldResemble, []int{1, 2, 3, 4})
		})
	})
}
