package outcomes_test

import (
	"context"
	"errors"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/GoodFrogman7/coach-ai/internal/domain/outcomes"
	"github.com/GoodFrogman7/coach-ai/internal/domain/types"
)

// stubLedger serves canned outcome records.
type stubLedger struct {
	records []types.DrillOutcomeRecord
	err     error
}

func (s stubLedger) All(ctx context.Context) ([]types.DrillOutcomeRecord, error) {
	return s.records, s.err
}

func record(drill string, delta float64, level types.ReliabilityLevel) types.DrillOutcomeRecord {
	return types.DrillOutcomeRecord{
		DrillName:   drill,
		Metric:      "hip_rotation",
		Phase:       "load",
		Delta:       delta,
		Reliability: level,
	}
}

func TestCompute(t *testing.T) {
	convey.Convey("Given a drill with consistent trusted improvement", t, func() {
		records := []types.DrillOutcomeRecord{
			record("Medicine Ball Rotational Throws", -5, types.ReliabilityHigh),
			record("Medicine Ball Rotational Throws", -5, types.ReliabilityHigh),
		}

		table := outcomes.Compute(records)

		convey.Convey("Then the components multiply out exactly", func() {
			convey.So(table, convey.ShouldHaveLength, 1)
			c := table[0]
			convey.So(c.UsageCount, convey.ShouldEqual, 2)
			convey.So(c.AvgDelta, convey.ShouldAlmostEqual, -5)
			convey.So(c.StdDelta, convey.ShouldAlmostEqual, 0)
			convey.So(c.HighReliabilityRatio, convey.ShouldAlmostEqual, 1)
			convey.So(c.Consistency, convey.ShouldAlmostEqual, 1)
			convey.So(c.Score, convey.ShouldAlmostEqual, 0.79, 1e-9)
			convey.So(c.Level, convey.ShouldEqual, types.ConfidenceHigh)
		})
	})

	convey.Convey("Given a drill followed by regression", t, func() {
		table := outcomes.Compute([]types.DrillOutcomeRecord{
			record("Wall Contact Drill", 10, types.ReliabilityLow),
		})

		convey.Convey("Then the score drops to low confidence", func() {
			convey.So(table[0].Score, convey.ShouldAlmostEqual, 0.37, 1e-9)
			convey.So(table[0].Level, convey.ShouldEqual, types.ConfidenceLow)
		})
	})

	convey.Convey("Given mixed drills", t, func() {
		records := []types.DrillOutcomeRecord{
			record("Wall Contact Drill", 10, types.ReliabilityLow),
			record("Medicine Ball Rotational Throws", -5, types.ReliabilityHigh),
			record("Medicine Ball Rotational Throws", -5, types.ReliabilityHigh),
		}

		convey.Convey("Then the table sorts by score descending deterministically", func() {
			table := outcomes.Compute(records)
			convey.So(table, convey.ShouldHaveLength, 2)
			convey.So(table[0].DrillName, convey.ShouldEqual, "Medicine Ball Rotational Throws")
			again := outcomes.Compute(records)
			convey.So(again[0].DrillName, convey.ShouldEqual, table[0].DrillName)
			convey.So(again[1].DrillName, convey.ShouldEqual, table[1].DrillName)
		})
	})

	convey.Convey("Given a near-zero average delta", t, func() {
		table := outcomes.Compute([]types.DrillOutcomeRecord{
			record("Mirror Posture Check", 2, types.ReliabilityHigh),
			record("Mirror Posture Check", -2, types.ReliabilityHigh),
		})

		convey.Convey("Then consistency falls back to the raw spread", func() {
			convey.So(table[0].AvgDelta, convey.ShouldAlmostEqual, 0)
			convey.So(table[0].Consistency, convey.ShouldAlmostEqual, 0.8)
		})
	})

	convey.Convey("Given extreme deltas", t, func() {
		table := outcomes.Compute([]types.DrillOutcomeRecord{
			record("Ladder Footwork Drill", 500, types.ReliabilityLow),
			record("Cone Placement Training", -500, types.ReliabilityHigh),
		})

		convey.Convey("Then scores stay inside the unit interval", func() {
			for _, c := range table {
				convey.So(c.Score, convey.ShouldBeBetweenOrEqual, 0, 1)
			}
		})
	})

	convey.Convey("Given more usage of an otherwise identical drill", t, func() {
		one := outcomes.Compute([]types.DrillOutcomeRecord{
			record("Split-Step to Stance Drill", -5, types.ReliabilityHigh),
		})
		two := outcomes.Compute([]types.DrillOutcomeRecord{
			record("Split-Step to Stance Drill", -5, types.ReliabilityHigh),
			record("Split-Step to Stance Drill", -5, types.ReliabilityHigh),
		})

		convey.Convey("Then the sample-size component grows the score", func() {
			convey.So(two[0].Score, convey.ShouldBeGreaterThan, one[0].Score)
		})
	})

	convey.Convey("Given an empty ledger", t, func() {
		convey.Convey("Then the table is empty", func() {
			convey.So(outcomes.Compute(nil), convey.ShouldBeEmpty)
		})
	})
}

func TestTable(t *testing.T) {
	convey.Convey("Given a readable ledger", t, func() {
		s := outcomes.New(stubLedger{records: []types.DrillOutcomeRecord{
			record("Mirror Posture Check", -3, types.ReliabilityHigh),
		}})

		convey.Convey("Then the table scores its drills", func() {
			table, err := s.Table(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(table, convey.ShouldHaveLength, 1)
		})
	})

	convey.Convey("Given a failing ledger", t, func() {
		s := outcomes.New(stubLedger{err: errors.New("ledger unavailable")})

		convey.Convey("Then the error propagates", func() {
			_, err := s.Table(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
