package stats_test

import (
	"context"
	"testing"

	"github.com/okian/pulse/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAggregator(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty aggregator", t, func() {
		agg := stats.NewInMemoryAggregator()

		Convey("Then unknown events report no data", func() {
			_, ok := agg.Stats(ctx, 1)
			So(ok, ShouldBeFalse)
			_, ok = agg.Average(ctx, 1)
			So(ok, ShouldBeFalse)
		})

		Convey("When ratings 4, 4, 2 are recorded for event 1", func() {
			agg.RecordRating(ctx, 1, 4)
			agg.RecordRating(ctx, 1, 4)
			agg.RecordRating(ctx, 1, 2)

			Convey("Then count, sum, and histogram reflect all values", func() {
				got, ok := agg.Stats(ctx, 1)
				So(ok, ShouldBeTrue)
				So(got.Count, ShouldEqual, 3)
				So(got.Sum, ShouldEqual, 10)
				So(got.Histogram[4], ShouldEqual, 2)
				So(got.Histogram[2], ShouldEqual, 1)
			})

			Convey("Then the average is sum/count", func() {
				avg, ok := agg.Average(ctx, 1)
				So(ok, ShouldBeTrue)
				So(avg, ShouldAlmostEqual, 10.0/3.0)
			})

			Convey("Then other events remain empty", func() {
				_, ok := agg.Stats(ctx, 2)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("Then Stats returns a copy, not the live histogram", func() {
			agg.RecordRating(ctx, 1, 3)
			got, _ := agg.Stats(ctx, 1)
			got.Histogram[3] = 99
			again, _ := agg.Stats(ctx, 1)
			So(again.Histogram[3], ShouldEqual, 1)
		})
	})

	Convey("Given an aggregator capped at 3 buckets", t, func() {
		agg := stats.NewInMemoryAggregator(stats.WithMaxBuckets(3))
		for v := uint64(1); v <= 5; v++ {
			agg.RecordRating(ctx, 1, v)
		}

		Convey("Then count and sum include every value", func() {
			got, ok := agg.Stats(ctx, 1)
			So(ok, ShouldBeTrue)
			So(got.Count, ShouldEqual, 5)
			So(got.Sum, ShouldEqual, 15)

			Convey("And only the first 3 distinct values get buckets", func() {
				So(len(got.Histogram), ShouldEqual, 3)
				So(got.Histogram[1], ShouldEqual, 1)
				So(got.Histogram[2], ShouldEqual, 1)
				So(got.Histogram[3], ShouldEqual, 1)
			})
		})

		Convey("Then repeats of bucketed values still count", func() {
			agg.RecordRating(ctx, 1, 1)
			got, _ := agg.Stats(ctx, 1)
			So(got.Histogram[1], ShouldEqual, 2)
		})
	})
}
