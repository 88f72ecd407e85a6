// Package reliability computes per-metric variability statistics and
// per-phase stability scores from the raw frame series, classifying how
// trustworthy each measurement is. Purely observational: inputs are never
// mutated and absent metrics are skipped rather than failing.
package reliability

import (
	"math"

	"github.com/GoodFrogman7/coach-ai/internal/domain/types"
)

// Classification boundaries. Angular metrics classify on standard
// deviation in native units (degrees); normalized metrics classify on the
// coefficient of variation. A value exactly on a boundary falls to the
// less reliable side.
const (
	defaultAngularHighStd   = 10.0
	defaultAngularMediumStd = 20.0
	defaultCVHigh           = 0.15
	defaultCVMedium         = 0.30
)

// stabilityStep maps an intra-phase CV onto a 0-100 stability score.
type stabilityStep struct {
	maxCV float64
	score float64
}

var defaultStabilitySteps = []stabilityStep{
	{0.1, 100},
	{0.2, 90},
	{0.3, 75},
	{0.5, 60},
}

const stabilityFloor = 50.0

// Option applies a configuration option to the Assessor.
type Option func(*Assessor)

// WithAngularThresholds sets the std-dev boundaries for angular metrics.
func WithAngularThresholds(high, medium float64) Option {
	return func(a *Assessor) {
		if high > 0 && medium > high {
			a.angularHighStd = high
			a.angularMediumStd = medium
		}
	}
}

// WithCVThresholds sets the CV boundaries for normalized metrics.
func WithCVThresholds(high, medium float64) Option {
	return func(a *Assessor) {
		if high > 0 && medium > high {
			a.cvHigh = high
			a.cvMedium = medium
		}
	}
}

// Assessor classifies measurement trustworthiness for one subject.
type Assessor struct {
	angularHighStd   float64
	angularMediumStd float64
	cvHigh           float64
	cvMedium         float64
	steps            []stabilityStep
}

// New creates an Assessor with default thresholds.
func New(opts ...Option) *Assessor {
	a := &Assessor{
		angularHighStd:   defaultAngularHighStd,
		angularMediumStd: defaultAngularMediumStd,
		cvHigh:           defaultCVHigh,
		cvMedium:         defaultCVMedium,
		steps:            defaultStabilitySteps,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assess computes whole-session variability statistics and a reliability
// class for each tracked metric. Metrics with no defined samples are
// omitted.
func (a *Assessor) Assess(frames []types.FrameRecord, metrics []string) []types.ReliabilityRecord {
	out := make([]types.ReliabilityRecord, 0, len(metrics))
	for _, metric := range metrics {
		values := collect(frames, metric)
		if len(values) == 0 {
			continue
		}
		mean, std := moments(values)
		minV, maxV := bounds(values)
		cv := 0.0
		if mean != 0 {
			cv = std / math.Abs(mean)
		}
		out = append(out, types.ReliabilityRecord{
			Metric: metric,
			Mean:   mean,
			Std:    std,
			Min:    minV,
			Max:    maxV,
			Range:  maxV - minV,
			CV:     cv,
			Level:  a.classify(metric, std, cv),
		})
	}
	return out
}

// classify is a total function of (metric kind, std or CV).
func (a *Assessor) classify(metric string, std, cv float64) types.ReliabilityLevel {
	if types.KindOf(metric) == types.KindAngular {
		switch {
		case std < a.angularHighStd:
			return types.ReliabilityHigh
		case std < a.angularMediumStd:
			return types.ReliabilityMedium
		default:
			return types.ReliabilityLow
		}
	}
	switch {
	case cv < a.cvHigh:
		return types.ReliabilityHigh
	case cv < a.cvMedium:
		return types.ReliabilityMedium
	default:
		return types.ReliabilityLow
	}
}

// PhaseStability computes one 0-100 stability score per phase: each
// metric's intra-phase CV maps through the step function and the scores
// average across metrics. Phases where no metric has at least two samples
// are omitted.
func (a *Assessor) PhaseStability(frames []types.FrameRecord, phaseBounds []types.PhaseBoundary, metrics []string) map[string]float64 {
	out := make(map[string]float64, len(phaseBounds))
	for _, b := range phaseBounds {
		sum, count := 0.0, 0
		for _, metric := range metrics {
			values := collectRange(frames, metric, b.StartFrame, b.EndFrame)
			if len(values) < 2 {
				continue
			}
			mean, std := moments(values)
			cv := 0.0
			if mean != 0 {
				cv = std / math.Abs(mean)
			}
			sum += a.stabilityScore(cv)
			count++
		}
		if count > 0 {
			out[b.Phase] = sum / float64(count)
		}
	}
	return out
}

func (a *Assessor) stabilityScore(cv float64) float64 {
	for _, step := range a.steps {
		if cv < step.maxCV {
			return step.score
		}
	}
	return stabilityFloor
}

func collect(frames []types.FrameRecord, metric string) []float64 {
	var out []float64
	for _, f := range frames {
		if v := f.Value(metric); !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func collectRange(frames []types.FrameRecord, metric string, start, end int) []float64 {
	var out []float64
	for _, f := range frames {
		if f.Index < start || f.Index > end {
			continue
		}
		if v := f.Value(metric); !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// moments returns the mean and population standard deviation.
func moments(values []float64) (mean, std float64) {
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	for _, v := range values {
		std += (v - mean) * (v - mean)
	}
	std = math.Sqrt(std / float64(len(values)))
	return mean, std
}

func bounds(values []float64) (minV, maxV float64) {
	minV, maxV = values[0], values[0]
	for _, v := range values[1:] {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	return minV, maxV
}
