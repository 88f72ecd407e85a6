package config_test

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/GoodFrogman7/coach-ai/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.RotationMetric, convey.ShouldEqual, "hip_rotation")
			convey.So(cfg.SpeedMetric, convey.ShouldEqual, "combined_wrist_speed")
			convey.So(cfg.SmoothWindow, convey.ShouldEqual, 5)
			convey.So(cfg.DeltaPercentile, convey.ShouldAlmostEqual, 0.60)
			convey.So(cfg.SpeedFraction, convey.ShouldAlmostEqual, 0.20)
			convey.So(cfg.ContactHalfWidth, convey.ShouldEqual, 5)
			convey.So(cfg.ProgressDeadZone, convey.ShouldAlmostEqual, 3.0)
			convey.So(cfg.PrimaryCues, convey.ShouldEqual, 2)
			convey.So(cfg.ListCues, convey.ShouldEqual, 5)
		})

		convey.Convey("Then the phase weights sum to one", func() {
			sum := 0.0
			for _, w := range cfg.PhaseWeights {
				sum += w
			}
			convey.So(sum, convey.ShouldAlmostEqual, 1.0)
		})

		convey.Convey("Then persistence and metrics stay off by default", func() {
			convey.So(cfg.DBPath, convey.ShouldBeBlank)
			convey.So(cfg.MetricsAddr, convey.ShouldBeBlank)
		})
	})
}

func TestConfig_Normalize(t *testing.T) {
	convey.Convey("Given a config with defaults", t, func() {
		cfg := config.New()

		convey.Convey("Then normalization is silent", func() {
			convey.So(cfg.Normalize(), convey.ShouldBeEmpty)
		})
	})

	convey.Convey("Given phase weights that do not sum to one", t, func() {
		cfg := config.New()
		cfg.PhaseWeights = map[string]float64{"contact": 0.5, "load": 0.2}

		advisories := cfg.Normalize()

		convey.Convey("Then the weights renormalize with an advisory", func() {
			convey.So(advisories, convey.ShouldHaveLength, 1)
			convey.So(advisories[0], convey.ShouldContainSubstring, "renormalized")
			sum := 0.0
			for _, w := range cfg.PhaseWeights {
				sum += w
			}
			convey.So(sum, convey.ShouldAlmostEqual, 1.0)
			convey.So(cfg.PhaseWeights["contact"], convey.ShouldAlmostEqual, 0.5/0.7)
		})
	})

	convey.Convey("Given out-of-range tuning parameters", t, func() {
		cfg := config.New()
		cfg.SmoothWindow = 0
		cfg.DeltaPercentile = 1.5
		cfg.SpeedFraction = -0.1
		cfg.ProgressDeadZone = 0

		advisories := cfg.Normalize()

		convey.Convey("Then each resets to its default with an advisory", func() {
			convey.So(advisories, convey.ShouldHaveLength, 4)
			convey.So(cfg.SmoothWindow, convey.ShouldEqual, 5)
			convey.So(cfg.DeltaPercentile, convey.ShouldAlmostEqual, 0.60)
			convey.So(cfg.SpeedFraction, convey.ShouldAlmostEqual, 0.20)
			convey.So(cfg.ProgressDeadZone, convey.ShouldAlmostEqual, 3.0)
		})
	})
}
