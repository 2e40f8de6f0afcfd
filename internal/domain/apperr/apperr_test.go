package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/okian/leaderboard/internal/domain/apperr"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWrap(t *testing.T) {
	Convey("Given a storage cause", t, func() {
		cause := errors.New("disk on fire")

		Convey("When wrapping it as a storage failure", func() {
			err := apperr.Wrap("store.append", apperr.ErrStorage, cause)

			Convey("Then both the kind and the cause are reachable", func() {
				So(errors.Is(err, apperr.ErrStorage), ShouldBeTrue)
				So(errors.Is(err, cause), ShouldBeTrue)
				So(errors.Is(err, apperr.ErrNotFound), ShouldBeFalse)
				So(err.Error(), ShouldEqual, "store.append: storage failure: disk on fire")
			})

			Convey("And rewrapping keeps the original kind", func() {
				outer := apperr.Wrap("service.query", apperr.ErrAggregation, fmt.Errorf("scan: %w", err))
				So(apperr.KindOf(outer), ShouldEqual, apperr.ErrStorage)
			})
		})

		Convey("When wrapping nil", func() {
			So(apperr.Wrap("noop", apperr.ErrStorage, nil), ShouldBeNil)
		})
	})
}

func TestNew(t *testing.T) {
	Convey("Given a validation failure", t, func() {
		err := apperr.New("service.record_activity", apperr.ErrValidation, "category is required")

		Convey("Then it is classified and readable", func() {
			So(apperr.KindOf(err), ShouldEqual, apperr.ErrValidation)
			So(err.Error(), ShouldContainSubstring, "category is required")
		})
	})

	Convey("Given an unclassified error", t, func() {
		So(apperr.KindOf(errors.New("plain")), ShouldBeNil)
	})
}
