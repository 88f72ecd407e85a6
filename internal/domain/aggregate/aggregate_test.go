package aggregate_test

import (
	"math"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/GoodFrogman7/coach-ai/internal/domain/aggregate"
	"github.com/GoodFrogman7/coach-ai/internal/domain/types"
)

func TestPhaseMeans(t *testing.T) {
	convey.Convey("Given frames spanning two phases", t, func() {
		frames := []types.FrameRecord{
			{Index: 0, Metrics: map[string]float64{"hip_rotation": 10, "spine_lean": 1}},
			{Index: 1, Metrics: map[string]float64{"hip_rotation": 20, "spine_lean": math.NaN()}},
			{Index: 2, Metrics: map[string]float64{"hip_rotation": 30}},
			{Index: 3, Metrics: map[string]float64{"hip_rotation": 40, "spine_lean": 5}},
		}
		bounds := []types.PhaseBoundary{
			{Phase: "preparation", StartFrame: 0, EndFrame: 1},
			{Phase: "load", StartFrame: 2, EndFrame: 3},
		}

		out := aggregate.PhaseMeans(frames, bounds, []string{"hip_rotation", "spine_lean", "absent"})

		convey.Convey("Then each phase averages only its own frames", func() {
			convey.So(out, convey.ShouldHaveLength, 2)
			convey.So(out[0].Phase, convey.ShouldEqual, "preparation")
			convey.So(out[0].Values["hip_rotation"], convey.ShouldEqual, 15)
			convey.So(out[1].Values["hip_rotation"], convey.ShouldEqual, 35)
		})

		convey.Convey("Then NaN samples are excluded, not imputed", func() {
			convey.So(out[0].Values["spine_lean"], convey.ShouldEqual, 1)
			convey.So(out[1].Values["spine_lean"], convey.ShouldEqual, 5)
		})

		convey.Convey("Then a metric with no defined samples is omitted", func() {
			_, ok := out[0].Values["absent"]
			convey.So(ok, convey.ShouldBeFalse)
			convey.So(math.IsNaN(out[0].Value("absent")), convey.ShouldBeTrue)
		})

		convey.Convey("Then phase durations count the covered frames", func() {
			convey.So(out[0].DurationFrames, convey.ShouldEqual, 2)
			convey.So(out[1].DurationFrames, convey.ShouldEqual, 2)
		})
	})

	convey.Convey("Given identical inputs", t, func() {
		frames := []types.FrameRecord{
			{Index: 0, Metrics: map[string]float64{"hip_rotation": 12.5}},
			{Index: 1, Metrics: map[string]float64{"hip_rotation": 17.5}},
		}
		bounds := []types.PhaseBoundary{{Phase: "contact", StartFrame: 0, EndFrame: 1}}

		convey.Convey("Then the result is deterministic across calls", func() {
			a := aggregate.PhaseMeans(frames, bounds, []string{"hip_rotation"})
			b := aggregate.PhaseMeans(frames, bounds, []string{"hip_rotation"})
			convey.So(a[0].Values["hip_rotation"], convey.ShouldEqual, b[0].Values["hip_rotation"])
			convey.So(a[0].Values["hip_rotation"], convey.ShouldEqual, 15)
		})
	})
}

func TestByPhase(t *testing.T) {
	convey.Convey("Given aggregated phases", t, func() {
		all := []types.PhaseMetrics{
			{Phase: "preparation", DurationFrames: 3},
			{Phase: "contact", DurationFrames: 7},
		}

		convey.Convey("Then the index is keyed by phase name", func() {
			byPhase := aggregate.ByPhase(all)
			convey.So(byPhase, convey.ShouldHaveLength, 2)
			convey.So(byPhase["contact"].DurationFrames, convey.ShouldEqual, 7)
		})
	})
}
