package drills

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/GoodFrogman7/coach-ai/internal/domain/types"
)

// unknownReliability marks outcomes whose metric was not assessed in the
// current session.
const unknownReliability = types.ReliabilityLevel("Unknown")

// BuildOutcomes links the previous session's prescriptions to this
// session's measurements, one record per trackable drill. A drill is
// trackable when its target metric has an aggregated value for the target
// phase in both sessions; general drills are skipped. Pure observation,
// no effect on the current session's recommendations.
func BuildOutcomes(
	priorSessionID, sessionID string,
	issued types.RecommendationSet,
	prior, current map[string]types.PhaseMetrics,
	reliability map[string]types.ReliabilityLevel,
	now time.Time,
) []types.DrillOutcomeRecord {
	var out []types.DrillOutcomeRecord

	track := func(recs []types.DrillRecommendation, tier types.IssueTier) {
		for _, rec := range recs {
			if rec.Metric == GeneralMetric || rec.Phase == AllPhases {
				continue
			}
			prev, cur, ok := valuePair(prior, current, rec.Phase, rec.Metric)
			if !ok {
				continue
			}
			level, assessed := reliability[rec.Metric]
			if !assessed {
				level = unknownReliability
			}
			out = append(out, types.DrillOutcomeRecord{
				ID:             uuid.NewString(),
				PriorSessionID: priorSessionID,
				SessionID:      sessionID,
				Metric:         rec.Metric,
				Phase:          rec.Phase,
				DrillName:      rec.DrillName,
				Intensity:      rec.Intensity,
				Classification: string(tier),
				PreValue:       prev,
				PostValue:      cur,
				Delta:          cur - prev,
				Reliability:    level,
				Timestamp:      now,
			})
		}
	}

	track(issued.Critical, types.TierCritical)
	track(issued.Priority, types.TierPriority)
	track(issued.Maintenance, types.TierMonitor)
	return out
}

func valuePair(prior, current map[string]types.PhaseMetrics, phase, metric string) (prev, cur float64, ok bool) {
	pm, found := prior[phase]
	if !found {
		return 0, 0, false
	}
	cm, found := current[phase]
	if !found {
		return 0, 0, false
	}
	prev = pm.Value(metric)
	cur = cm.Value(metric)
	if math.IsNaN(prev) || math.IsNaN(cur) {
		return 0, 0, false
	}
	return prev, cur, true
}
