package redis

import (
	"context"
	"os"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/leaderboard/internal/domain/model"
)

func intPtr(v int) *int { return &v }

func TestMirrorLayout(t *testing.T) {
	Convey("Given a mirror with a custom prefix", t, func() {
		m := New(goredis.NewClient(&goredis.Options{Addr: "localhost:0"}), WithKeyPrefix("lb:test:"))
		defer func() { _ = m.Close() }()

		Convey("Then keys are namespaced", func() {
			So(m.scoresKey(), ShouldEqual, "lb:test:scores")
			So(m.ranksKey(), ShouldEqual, "lb:test:ranks")
			So(m.metaKey(), ShouldEqual, "lb:test:meta")
		})
	})

	Convey("Given actors to mirror", t, func() {
		actors := []model.Actor{
			{ID: "A", TotalPoints: 60, Rank: intPtr(1)},
			{ID: "B", TotalPoints: 20},
			{ID: ""},
		}

		Convey("When converting them", func() {
			members, ranks := toRedis(actors)

			Convey("Then blank ids are skipped and missing ranks become 0", func() {
				So(len(members), ShouldEqual, 2)
				So(members[0].Score, ShouldEqual, 60)
				So(ranks["A"], ShouldEqual, 1)
				So(ranks["B"], ShouldEqual, 0)
			})
		})
	})

	Convey("Given raw hash values", t, func() {
		So(parseRank("3"), ShouldEqual, 3)
		So(parseRank(nil), ShouldEqual, 0)
		So(parseRank("x"), ShouldEqual, 0)
	})
}

// Set LEADERBOARD_TEST_REDIS_ADDR to run against a disposable server.
func TestMirrorRoundTrip(t *testing.T) {
	addr := os.Getenv("LEADERBOARD_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LEADERBOARD_TEST_REDIS_ADDR not set")
	}

	Convey("Given a live mirror", t, func() {
		ctx := context.Background()
		m, err := Dial(ctx, addr, WithKeyPrefix("leaderboard:test:"))
		So(err, ShouldBeNil)
		defer func() { _ = m.Close() }()

		Convey("When standings are published twice", func() {
			So(m.Publish(ctx, []model.Actor{{ID: "OLD", TotalPoints: 5, Rank: intPtr(1)}}), ShouldBeNil)
			So(m.Publish(ctx, []model.Actor{
				{ID: "A", TotalPoints: 60, Rank: intPtr(1)},
				{ID: "B", TotalPoints: 20, Rank: intPtr(2)},
			}), ShouldBeNil)

			Convey("Then only the latest standings remain", func() {
				top, err := m.Top(ctx, 10)
				So(err, ShouldBeNil)
				So(top, ShouldResemble, []Standing{
					{ActorID: "A", Total: 60, Rank: 1},
					{ActorID: "B", Total: 20, Rank: 2},
				})

				meta, ok, err := m.LastMeta(ctx)
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(meta.Actors, ShouldEqual, 2)
			})
		})
	})
}
