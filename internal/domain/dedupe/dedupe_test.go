package dedupe_test

import (
	"context"
	"testing"

	"github.com/okian/pulse/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMarker(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty marker", t, func() {
		m := dedupe.NewInMemoryMarker()
		key := dedupe.Key{EventID: 1, Participant: "alice", Kind: "rating"}

		Convey("Then an unrecorded key is not seen", func() {
			So(m.Seen(ctx, key), ShouldBeFalse)
			So(m.Size(), ShouldEqual, 0)
		})

		Convey("When a key is recorded", func() {
			m.Record(ctx, key)

			Convey("Then it is seen and counted", func() {
				So(m.Seen(ctx, key), ShouldBeTrue)
				So(m.Size(), ShouldEqual, 1)
			})

			Convey("Then recording it again is a no-op", func() {
				m.Record(ctx, key)
				So(m.Size(), ShouldEqual, 1)
			})

			Convey("Then other kinds by the same identity are unaffected", func() {
				other := dedupe.Key{EventID: 1, Participant: "alice", Kind: "text"}
				So(m.Seen(ctx, other), ShouldBeFalse)
			})

			Convey("Then the same kind on another event is unaffected", func() {
				other := dedupe.Key{EventID: 2, Participant: "alice", Kind: "rating"}
				So(m.Seen(ctx, other), ShouldBeFalse)
			})
		})
	})

	Convey("Given a marker with pre-sized capacity", t, func() {
		m := dedupe.NewInMemoryMarker(dedupe.WithInitialCapacity(1024))

		Convey("Then it behaves identically", func() {
			key := dedupe.Key{EventID: 7, Participant: "bob", Kind: "reaction"}
			So(m.Seen(ctx, key), ShouldBeFalse)
			m.Record(ctx, key)
			So(m.Seen(ctx, key), ShouldBeTrue)
		})
	})
}
