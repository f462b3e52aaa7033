package percentile_test

import (
	"testing"

	"github.com/kerian/fable/internal/domain/percentile"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEstimate(t *testing.T) {
	Convey("Given an even-sized sample set", t, func() {
		samples := []float64{4, 1, 3, 2}

		Convey("When common percentiles are requested", func() {
			got := percentile.Estimate(samples, []float64{0, 50, 100})

			Convey("Then endpoints hit min and max", func() {
				So(got[0], ShouldEqual, 1)
				So(got[100], ShouldEqual, 4)
			})

			Convey("And the median is interpolated between ranks", func() {
				// position = 0.5 * 3 = 1.5 -> between 2 and 3
				So(got[50], ShouldEqual, 2.5)
			})
		})

		Convey("When a percentile falls exactly on a rank", func() {
			got := percentile.Estimate(samples, []float64{100.0 / 3})

			Convey("Then no interpolation happens", func() {
				So(got[100.0/3], ShouldAlmostEqual, 2, 1e-9)
			})
		})
	})

	Convey("Given no samples", t, func() {
		Convey("Then the result is empty, not an error", func() {
			So(percentile.Estimate(nil, []float64{50, 90}), ShouldBeEmpty)
		})
	})

	Convey("Given a single sample", t, func() {
		got := percentile.Estimate([]float64{7.5}, []float64{0, 25, 50, 75, 100})

		Convey("Then every percentile answers with that sample", func() {
			for _, p := range []float64{0, 25, 50, 75, 100} {
				So(got[p], ShouldEqual, 7.5)
			}
		})
	})

	Convey("Given an unsorted sample set", t, func() {
		samples := []float64{9, -3, 0, 12, 4.5, 4.5, 1}

		Convey("Then increasing the percentile never decreases the estimate", func() {
			ps := []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
			got := percentile.Estimate(samples, ps)
			for i := 1; i < len(ps); i++ {
				So(got[ps[i]], ShouldBeGreaterThanOrEqualTo, got[ps[i-1]])
			}
		})

		Convey("And the input slice is left untouched", func() {
			percentile.Estimate(samples, []float64{50})
			So(samples[0], ShouldEqual, 9)
			So(samples[1], ShouldEqual, -3)
		})
	})
}
