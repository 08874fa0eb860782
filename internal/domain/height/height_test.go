package height_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/pulse/internal/domain/height"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTicker(t *testing.T) {
	ctx := context.Background()

	Convey("Given a ticker with a controllable time source", t, func() {
		now := time.Unix(1000, 0)
		clock := height.NewTicker(
			height.WithGenesis(100),
			height.WithBlockInterval(time.Second),
			height.WithTimeSource(func() time.Time { return now }),
		)

		Convey("Then it starts at genesis", func() {
			So(clock.Now(ctx), ShouldEqual, 100)
		})

		Convey("When time advances by 5 intervals", func() {
			now = now.Add(5 * time.Second)

			Convey("Then height advances by 5", func() {
				So(clock.Now(ctx), ShouldEqual, 105)
			})
		})

		Convey("When the wall clock steps backwards", func() {
			now = now.Add(10 * time.Second)
			So(clock.Now(ctx), ShouldEqual, 110)
			now = now.Add(-7 * time.Second)

			Convey("Then height never decreases", func() {
				So(clock.Now(ctx), ShouldEqual, 110)
			})
		})
	})
}

func TestManual(t *testing.T) {
	ctx := context.Background()

	Convey("Given a manual provider at height 10", t, func() {
		clock := height.NewManual(10)
		So(clock.Now(ctx), ShouldEqual, 10)

		Convey("When advanced", func() {
			clock.Advance(5)
			So(clock.Now(ctx), ShouldEqual, 15)
		})

		Convey("When set forward", func() {
			clock.Set(42)
			So(clock.Now(ctx), ShouldEqual, 42)
		})

		Convey("When set backwards", func() {
			clock.Set(42)
			clock.Set(7)

			Convey("Then the move is ignored", func() {
				So(clock.Now(ctx), ShouldEqual, 42)
			})
		})
	})
}
