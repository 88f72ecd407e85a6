// Package aggregate reduces a subject's frame series to per-phase central
// tendency. Pure functions, deterministic for identical inputs.
package aggregate

import (
	"math"

	"github.com/GoodFrogman7/coach-ai/internal/domain/types"
)

// PhaseMeans computes the arithmetic mean of every tracked metric over each
// phase's frames. Missing or NaN per-frame values are excluded from that
// metric's mean rather than imputed; a metric with no defined samples in a
// phase is omitted from the result. Output order follows the boundary
// order.
func PhaseMeans(frames []types.FrameRecord, bounds []types.PhaseBoundary, metrics []string) []types.PhaseMetrics {
	out := make([]types.PhaseMetrics, 0, len(bounds))
	for _, b := range bounds {
		pm := types.PhaseMetrics{
			Phase:  b.Phase,
			Values: make(map[string]float64, len(metrics)),
		}
		sums := make(map[string]float64, len(metrics))
		counts := make(map[string]int, len(metrics))
		for _, f := range frames {
			if f.Index < b.StartFrame || f.Index > b.EndFrame {
				continue
			}
			pm.DurationFrames++
			for _, m := range metrics {
				v := f.Value(m)
				if math.IsNaN(v) {
					continue
				}
				sums[m] += v
				counts[m]++
			}
		}
		for _, m := range metrics {
			if counts[m] > 0 {
				pm.Values[m] = sums[m] / float64(counts[m])
			}
		}
		out = append(out, pm)
	}
	return out
}

// ByPhase indexes aggregated metrics by phase name.
func ByPhase(all []types.PhaseMetrics) map[string]types.PhaseMetrics {
	out := make(map[string]types.PhaseMetrics, len(all))
	for _, pm := range all {
		out[pm.Phase] = pm
	}
	return out
}
