package app_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/GoodFrogman7/coach-ai/internal/adapters/repository"
	"github.com/GoodFrogman7/coach-ai/internal/app"
	"github.com/GoodFrogman7/coach-ai/internal/domain/types"
	"github.com/GoodFrogman7/coach-ai/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// baseline is a full set of tracked measurements for one frame.
func baseline() map[string]float64 {
	return map[string]float64{
		"left_shoulder_angle":     70,
		"right_shoulder_angle":    72,
		"left_elbow_angle":        90,
		"right_elbow_angle":       95,
		"left_knee_angle":         120,
		"right_knee_angle":        118,
		"hip_rotation":            45,
		"spine_lean":              10,
		"stance_width_normalized": 1.8,
		"combined_wrist_speed":    5.0,
	}
}

// subjectFrames builds n frames of baseline measurements, letting mutate
// adjust each frame's values.
func subjectFrames(n int, mutate func(i int, m map[string]float64)) []types.FrameRecord {
	frames := make([]types.FrameRecord, n)
	for i := 0; i < n; i++ {
		m := baseline()
		if mutate != nil {
			mutate(i, m)
		}
		frames[i] = types.FrameRecord{Index: i, Metrics: m}
	}
	return frames
}

func input(sessionID string, practitioner, reference []types.FrameRecord) app.Input {
	return app.Input{
		SessionID:          sessionID,
		Practitioner:       practitioner,
		Reference:          reference,
		PractitionerImpact: 30,
		ReferenceImpact:    30,
	}
}

func TestAnalyze_Validation(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a service without a store", t, func() {
		svc := app.New()

		convey.Convey("Then analysis refuses to run", func() {
			_, err := svc.Analyze(ctx, input("s1", subjectFrames(40, nil), subjectFrames(40, nil)))
			convey.So(errors.Is(err, app.ErrStoreRequired), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given missing frames", t, func() {
		svc := app.New(app.WithStore(repository.NewMemStore()))

		convey.Convey("Then analysis refuses to run", func() {
			_, err := svc.Analyze(ctx, input("s1", nil, subjectFrames(40, nil)))
			convey.So(errors.Is(err, app.ErrMissingFrames), convey.ShouldBeTrue)
		})
	})
}

func TestAnalyze_IdenticalSessions(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a practitioner matching the reference exactly", t, func() {
		store := repository.NewMemStore()
		svc := app.New(app.WithStore(store))

		first, err := svc.Analyze(ctx, input("e2e-001", subjectFrames(40, nil), subjectFrames(40, nil)))
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then the first session scores perfectly with no prior context", func() {
			convey.So(first.Scores.RuleOverall, convey.ShouldEqual, 100)
			convey.So(first.Scores.PatternOverall, convey.ShouldEqual, 100)
			convey.So(first.Summary.OverallScore, convey.ShouldAlmostEqual, 100)
			convey.So(first.Progress, convey.ShouldBeNil)
			convey.So(first.OutcomesRecorded, convey.ShouldEqual, 0)
			convey.So(first.Cues.All, convey.ShouldBeEmpty)
		})

		convey.Convey("Then a flawless session still gets a general drill", func() {
			convey.So(first.Recommendations.Critical, convey.ShouldBeEmpty)
			convey.So(first.Recommendations.Priority, convey.ShouldHaveLength, 1)
			convey.So(first.Recommendations.Priority[0].Metric, convey.ShouldEqual, "general")
		})

		convey.Convey("When an identical second session runs", func() {
			second, err := svc.Analyze(ctx, input("e2e-002", subjectFrames(40, nil), subjectFrames(40, nil)))
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then every progress delta is zero and stable", func() {
				convey.So(second.Progress, convey.ShouldNotBeEmpty)
				for _, d := range second.Progress {
					convey.So(d.Delta, convey.ShouldAlmostEqual, 0)
					convey.So(d.Status, convey.ShouldEqual, types.ProgressStable)
				}
			})

			convey.Convey("Then the general drill from last time is not trackable", func() {
				convey.So(second.OutcomesRecorded, convey.ShouldEqual, 0)
				confidence, err := svc.DrillConfidence(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(confidence, convey.ShouldBeEmpty)
			})
		})
	})
}

func TestAnalyze_SustainedDeviation(t *testing.T) {
	ctx := context.Background()

	elbowOff := func(i int, m map[string]float64) {
		m["left_elbow_angle"] += 60
	}

	convey.Convey("Given one metric off by twice its tolerance in every phase", t, func() {
		store := repository.NewMemStore()
		svc := app.New(app.WithStore(store))

		report, err := svc.Analyze(ctx, input("dev-001", subjectFrames(40, elbowOff), subjectFrames(40, nil)))
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then that metric zeroes out of the weighted phase score", func() {
			// Weight 1.0 of 9.3 contributes nothing, the rest are perfect.
			for _, ps := range report.Scores.Phases {
				convey.So(ps.Rule, convey.ShouldAlmostEqual, 89.2, 0.05)
			}
			convey.So(report.Scores.RuleOverall, convey.ShouldAlmostEqual, 89.2, 0.05)
			convey.So(report.Summary.OverallScore, convey.ShouldAlmostEqual, 89.2, 0.05)
		})

		convey.Convey("Then the deviation raises one cue per phase", func() {
			convey.So(report.Cues.All, convey.ShouldHaveLength, 4)
			for _, cue := range report.Cues.All {
				convey.So(cue.Metric, convey.ShouldEqual, "left_elbow_angle")
				convey.So(cue.Deviation, convey.ShouldAlmostEqual, 60)
			}
			convey.So(report.Cues.All[0].Phase, convey.ShouldEqual, "contact")
		})

		convey.Convey("Then steady severe issues classify critical", func() {
			convey.So(report.Focus.Critical, convey.ShouldHaveLength, 4)
			convey.So(report.TopIssues, convey.ShouldHaveLength, 3)
			for _, issue := range report.Focus.Critical {
				convey.So(issue.Reliability, convey.ShouldEqual, types.ReliabilityHigh)
				convey.So(issue.PhaseStability, convey.ShouldEqual, 100)
			}
		})

		convey.Convey("Then intensive elbow drills are prescribed up to the cap", func() {
			convey.So(report.Recommendations.Critical, convey.ShouldHaveLength, 3)
			for _, rec := range report.Recommendations.Critical {
				convey.So(rec.DrillName, convey.ShouldEqual, "Wall Contact Drill")
				convey.So(rec.Intensity, convey.ShouldEqual, types.IntensityIntensive)
			}
		})

		convey.Convey("When the same deviation persists into the next session", func() {
			second, err := svc.Analyze(ctx, input("dev-002", subjectFrames(40, elbowOff), subjectFrames(40, nil)))
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then each prescribed drill yields one outcome record", func() {
				convey.So(second.OutcomesRecorded, convey.ShouldEqual, 3)
			})

			convey.Convey("Then the confidence table reflects the unchanged metric", func() {
				confidence, err := svc.DrillConfidence(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(confidence, convey.ShouldHaveLength, 1)
				c := confidence[0]
				convey.So(c.DrillName, convey.ShouldEqual, "Wall Contact Drill")
				convey.So(c.UsageCount, convey.ShouldEqual, 3)
				convey.So(c.AvgDelta, convey.ShouldAlmostEqual, 0)
				convey.So(c.Score, convey.ShouldAlmostEqual, 0.76, 1e-9)
			})
		})
	})
}

func TestAnalyze_UnreliableMinorDeviation(t *testing.T) {
	ctx := context.Background()

	// Oscillate the left knee around a small offset: the session-wide
	// spread pushes reliability to Low while every phase mean stays below
	// the significance threshold.
	noisyKnee := func(i int, m map[string]float64) {
		if i%2 == 0 {
			m["left_knee_angle"] += 17 + 25
		} else {
			m["left_knee_angle"] += 17 - 25
		}
	}

	convey.Convey("Given a minor deviation on an untrustworthy metric", t, func() {
		store := repository.NewMemStore()
		svc := app.New(app.WithStore(store))

		report, err := svc.Analyze(ctx, input("sup-001", subjectFrames(40, noisyKnee), subjectFrames(40, nil)))
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then the metric assesses as low reliability", func() {
			var level types.ReliabilityLevel
			for _, rec := range report.Reliability {
				if rec.Metric == "left_knee_angle" {
					level = rec.Level
				}
			}
			convey.So(level, convey.ShouldEqual, types.ReliabilityLow)
		})

		convey.Convey("Then its cues are suppressed rather than pushed", func() {
			convey.So(report.Cues.All, convey.ShouldNotBeEmpty)
			convey.So(report.Focus.Critical, convey.ShouldBeEmpty)
			convey.So(report.Focus.Priority, convey.ShouldBeEmpty)
			convey.So(report.Focus.Suppressed, convey.ShouldNotBeEmpty)
			for _, issue := range report.Focus.Suppressed {
				convey.So(issue.Metric, convey.ShouldEqual, "left_knee_angle")
				convey.So(issue.Tier, convey.ShouldEqual, types.TierSuppress)
			}
		})

		convey.Convey("Then the suppressed count surfaces in the recommendations", func() {
			convey.So(report.Recommendations.SuppressedCount, convey.ShouldEqual, len(report.Focus.Suppressed))
			convey.So(report.Recommendations.Priority, convey.ShouldHaveLength, 1)
			convey.So(report.Recommendations.Priority[0].Metric, convey.ShouldEqual, "general")
		})
	})
}
