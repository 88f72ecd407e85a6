package ingest_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/GoodFrogman7/coach-ai/internal/adapters/ingest"
	"github.com/GoodFrogman7/coach-ai/internal/domain/types"
)

func TestRead(t *testing.T) {
	convey.Convey("Given a well-formed feature table", t, func() {
		csv := strings.Join([]string{
			"frame,hip_rotation,combined_wrist_speed",
			"1,41.5,2.0",
			"0,40.0,1.5",
			"2,43.0,3.5",
		}, "\n")

		frames, err := ingest.Read(strings.NewReader(csv))

		convey.Convey("Then rows parse and sort by frame index", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(frames, convey.ShouldHaveLength, 3)
			convey.So(frames[0].Index, convey.ShouldEqual, 0)
			convey.So(frames[0].Metrics["hip_rotation"], convey.ShouldEqual, 40.0)
			convey.So(frames[2].Index, convey.ShouldEqual, 2)
		})
	})

	convey.Convey("Given blank and garbage metric cells", t, func() {
		csv := strings.Join([]string{
			"frame,hip_rotation,spine_lean",
			"0,,oops",
			"1,42.0,8.5",
		}, "\n")

		frames, err := ingest.Read(strings.NewReader(csv))

		convey.Convey("Then bad cells become NaN instead of failing the load", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(math.IsNaN(frames[0].Metrics["hip_rotation"]), convey.ShouldBeTrue)
			convey.So(math.IsNaN(frames[0].Metrics["spine_lean"]), convey.ShouldBeTrue)
			convey.So(frames[1].Metrics["spine_lean"], convey.ShouldEqual, 8.5)
		})
	})

	convey.Convey("Given a malformed frame column", t, func() {
		csv := strings.Join([]string{
			"frame,hip_rotation",
			"0,40.0",
			"abc,41.0",
		}, "\n")

		convey.Convey("Then the load fails fast with the offending line", func() {
			_, err := ingest.Read(strings.NewReader(csv))
			convey.So(errors.Is(err, ingest.ErrBadFrameIndex), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "line 3")
		})
	})

	convey.Convey("Given a table without a frame column", t, func() {
		csv := "hip_rotation,spine_lean\n40.0,8.5\n"

		convey.Convey("Then the load fails with the missing-column kind", func() {
			_, err := ingest.Read(strings.NewReader(csv))
			convey.So(errors.Is(err, ingest.ErrMissingFrameColumn), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given an empty input", t, func() {
		convey.Convey("Then a missing body and a missing file both read as empty", func() {
			_, err := ingest.Read(strings.NewReader(""))
			convey.So(errors.Is(err, ingest.ErrEmptyTable), convey.ShouldBeTrue)

			_, err = ingest.Read(strings.NewReader("frame,hip_rotation\n"))
			convey.So(errors.Is(err, ingest.ErrEmptyTable), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a short row", t, func() {
		csv := strings.Join([]string{
			"frame,hip_rotation,spine_lean",
			"0,40.0",
		}, "\n")

		convey.Convey("Then present cells parse and absent metrics are omitted", func() {
			frames, err := ingest.Read(strings.NewReader(csv))
			convey.So(err, convey.ShouldBeNil)
			convey.So(frames[0].Metrics["hip_rotation"], convey.ShouldEqual, 40.0)
			_, ok := frames[0].Metrics["spine_lean"]
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

func TestDetectImpact(t *testing.T) {
	convey.Convey("Given a wrist-speed trace with a clear peak", t, func() {
		frames := []types.FrameRecord{
			{Index: 0, Metrics: map[string]float64{"combined_wrist_speed": 1.0}},
			{Index: 1, Metrics: map[string]float64{"combined_wrist_speed": 4.5}},
			{Index: 2, Metrics: map[string]float64{"combined_wrist_speed": 2.0}},
		}

		convey.Convey("Then the argmax frame is the impact", func() {
			convey.So(ingest.DetectImpact(frames), convey.ShouldEqual, 1)
		})
	})

	convey.Convey("Given no usable speed signal", t, func() {
		frames := []types.FrameRecord{
			{Index: 10, Metrics: map[string]float64{"hip_rotation": 40}},
			{Index: 11, Metrics: map[string]float64{"hip_rotation": 41}},
			{Index: 12, Metrics: map[string]float64{"combined_wrist_speed": math.NaN()}},
		}

		convey.Convey("Then the middle frame is the documented default", func() {
			convey.So(ingest.DetectImpact(frames), convey.ShouldEqual, 11)
		})
	})
}
