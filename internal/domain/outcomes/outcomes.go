// Package outcomes aggregates the historical drill outcome ledger into a
// per-drill confidence score. Strictly read-only: it observes the ledger
// and never influences the current session's recommendations.
package outcomes

import (
	"context"
	"math"
	"sort"

	"github.com/GoodFrogman7/coach-ai/internal/domain/types"
)

// Confidence score component weights; they sum to 1 so the score stays in
// [0,1].
const (
	improvementWeight = 0.40
	reliabilityWeight = 0.25
	consistencyWeight = 0.25
	sampleWeight      = 0.10
)

// Confidence level boundaries.
const (
	highConfidence   = 0.75
	mediumConfidence = 0.50
)

// fullSampleCount is the usage count at which the sample-size component
// saturates.
const fullSampleCount = 5.0

// Ledger reads the full outcome history.
type Ledger interface {
	All(ctx context.Context) ([]types.DrillOutcomeRecord, error)
}

// Scorer computes drill confidence tables from the ledger.
type Scorer struct {
	ledger Ledger
}

// New creates a Scorer over the given ledger.
func New(ledger Ledger) *Scorer {
	return &Scorer{ledger: ledger}
}

// Table reads the ledger and scores every drill that appears in it,
// sorted by confidence descending. An empty ledger yields an empty table.
func (s *Scorer) Table(ctx context.Context) ([]types.DrillConfidence, error) {
	records, err := s.ledger.All(ctx)
	if err != nil {
		return nil, err
	}
	return Compute(records), nil
}

// Compute scores each drill from its outcome records. Deterministic for a
// fixed ledger: ties in score break by drill name. Negative deltas count
// as improvement, matching the deviation-tracking convention of the
// ledger.
func Compute(records []types.DrillOutcomeRecord) []types.DrillConfidence {
	type group struct {
		deltas  []float64
		highRel int
	}
	groups := make(map[string]*group)
	for _, rec := range records {
		g, ok := groups[rec.DrillName]
		if !ok {
			g = &group{}
			groups[rec.DrillName] = g
		}
		g.deltas = append(g.deltas, rec.Delta)
		if rec.Reliability == types.ReliabilityHigh {
			g.highRel++
		}
	}

	out := make([]types.DrillConfidence, 0, len(groups))
	for name, g := range groups {
		out = append(out, score(name, g.deltas, g.highRel))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].DrillName < out[j].DrillName
	})
	return out
}

func score(name string, deltas []float64, highRel int) types.DrillConfidence {
	count := len(deltas)
	avg := mean(deltas)
	std := 0.0
	if count > 1 {
		std = stddev(deltas, avg)
	}
	highRatio := float64(highRel) / float64(count)
	consistency := consistencyOf(avg, std)

	// Improvement maps avg delta from [-20,+20] onto [1,0]; negative
	// deltas (moving toward the reference) score above 0.5.
	improvement := clamp01(0.5 - avg/40.0)

	total := improvementWeight*improvement +
		reliabilityWeight*highRatio +
		consistencyWeight*consistency +
		sampleWeight*math.Min(1.0, float64(count)/fullSampleCount)

	return types.DrillConfidence{
		DrillName:            name,
		UsageCount:           count,
		AvgDelta:             avg,
		StdDelta:             std,
		HighReliabilityRatio: highRatio,
		Consistency:          consistency,
		Score:                total,
		Level:                levelOf(total),
	}
}

// consistencyOf inverts the coefficient of variation onto [0,1]. Near-zero
// averages fall back to the raw standard deviation so the CV cannot blow
// up.
func consistencyOf(avg, std float64) float64 {
	if math.Abs(avg) > 0.1 {
		cv := std / math.Abs(avg)
		return math.Max(0, 1-math.Min(cv, 1))
	}
	return math.Max(0, 1-math.Min(std/10.0, 1))
}

func levelOf(score float64) types.ConfidenceLevel {
	switch {
	case score >= highConfidence:
		return types.ConfidenceHigh
	case score >= mediumConfidence:
		return types.ConfidenceMedium
	default:
		return types.ConfidenceLow
	}
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64, mean float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}
	return math.Sqrt(sum / float64(len(values)))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
