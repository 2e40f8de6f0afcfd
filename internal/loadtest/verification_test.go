package loadtest

import (
	"errors"
	"testing"

	"github.com/okian/leaderboard/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func rank(n int) *int { return &n }

func TestVerifyTotals(t *testing.T) {
	Convey("Given a baseline leaderboard", t, func() {
		before := []types.Entry{
			{ActorID: "A", Score: 10, TotalPoints: 10},
			{ActorID: "B", Score: 5, TotalPoints: 5},
		}

		Convey("When both actors grew by the acknowledged points", func() {
			after := []types.Entry{
				{ActorID: "B", Score: 25, TotalPoints: 25},
				{ActorID: "A", Score: 13, TotalPoints: 13},
			}

			Convey("Then totals reconcile", func() {
				So(verifyTotals(before, after, map[string]int64{"A": 3, "B": 20}), ShouldBeNil)
			})
		})

		Convey("When a cached total lags the score", func() {
			after := []types.Entry{
				{ActorID: "A", Score: 13, TotalPoints: 10},
				{ActorID: "B", Score: 5, TotalPoints: 5},
			}

			Convey("Then it is reported", func() {
				err := verifyTotals(before, after, map[string]int64{"A": 3})
				So(errors.Is(err, ErrInconsistent), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "total")
			})
		})

		Convey("When an actor appears", func() {
			after := []types.Entry{{ActorID: "A", Score: 10, TotalPoints: 10}, {ActorID: "Z"}}

			Convey("Then it is reported", func() {
				So(errors.Is(verifyTotals(before, after, nil), ErrInconsistent), ShouldBeTrue)
			})
		})
	})
}

func TestVerifyOrder(t *testing.T) {
	Convey("Given ordered entries", t, func() {
		entries := []types.Entry{
			{ActorID: "B", Score: 30, Position: 1},
			{ActorID: "A", Score: 10, Position: 2},
			{ActorID: "C", Score: 10, Position: 3},
		}

		Convey("Then the order is accepted", func() {
			So(verifyOrder(entries), ShouldBeNil)
		})

		Convey("When ties are out of id order", func() {
			entries[1].ActorID, entries[2].ActorID = "C", "A"

			Convey("Then the order is rejected", func() {
				So(errors.Is(verifyOrder(entries), ErrInconsistent), ShouldBeTrue)
			})
		})

		Convey("When a position is skipped", func() {
			entries[2].Position = 4

			Convey("Then the order is rejected", func() {
				So(errors.Is(verifyOrder(entries), ErrInconsistent), ShouldBeTrue)
			})
		})
	})
}

func TestVerifyRanks(t *testing.T) {
	Convey("Given competition ranked entries", t, func() {
		entries := []types.Entry{
			{ActorID: "A", TotalPoints: 100, Rank: rank(1)},
			{ActorID: "B", TotalPoints: 100, Rank: rank(1)},
			{ActorID: "C", TotalPoints: 50, Rank: rank(3)},
		}

		Convey("Then ranks are accepted", func() {
			So(verifyRanks(entries), ShouldBeNil)
		})

		Convey("When ranks are sequential instead", func() {
			entries[1].Rank = rank(2)

			Convey("Then they are rejected", func() {
				So(errors.Is(verifyRanks(entries), ErrInconsistent), ShouldBeTrue)
			})
		})

		Convey("When an actor was never ranked", func() {
			entries[2].Rank = nil

			Convey("Then it is rejected", func() {
				So(errors.Is(verifyRanks(entries), ErrInconsistent), ShouldBeTrue)
			})
		})
	})
}
