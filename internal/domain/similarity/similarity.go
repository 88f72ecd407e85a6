// Package similarity compares aggregated practitioner metrics against
// reference metrics under two independent models: a tolerance-based rule
// model and a pattern-shape (cosine) model. Both produce per-phase and
// overall scores in [0,100]; neither supersedes the other and downstream
// consumers read both.
package similarity

import (
	"math"

	"github.com/GoodFrogman7/coach-ai/internal/domain/types"
)

// neutralScore is returned when a phase has no comparable metrics.
const neutralScore = 50.0

// Default tolerances per metric: the deviation at which rule similarity
// reaches 50, clamping to 0 at twice this value. Angular metrics in
// degrees, normalized metrics in their own units.
func defaultTolerances() map[string]float64 {
	return map[string]float64{
		"left_elbow_angle":        30.0,
		"right_elbow_angle":       30.0,
		"left_knee_angle":         25.0,
		"right_knee_angle":        25.0,
		"hip_rotation":            20.0,
		"spine_lean":              15.0,
		"stance_width_normalized": 2.0,
		"left_shoulder_angle":     35.0,
		"right_shoulder_angle":    35.0,
	}
}

// Default metric weights for the rule model. Hip rotation and stance width
// carry the most signal for the reference motion.
func defaultMetricWeights() map[string]float64 {
	return map[string]float64{
		"left_elbow_angle":        1.0,
		"right_elbow_angle":       1.0,
		"left_knee_angle":         1.0,
		"right_knee_angle":        1.0,
		"hip_rotation":            1.5,
		"spine_lean":              1.0,
		"stance_width_normalized": 1.2,
		"left_shoulder_angle":     0.8,
		"right_shoulder_angle":    0.8,
	}
}

// Default phase weights shared by both models so their overall scores stay
// comparable side by side.
func defaultPhaseWeights() map[string]float64 {
	return map[string]float64{
		"preparation":    0.15,
		"load":           0.25,
		"contact":        0.35,
		"follow_through": 0.25,
	}
}

// defaultPatternMetrics is the fixed-order feature vector of the pattern
// model.
var defaultPatternMetrics = []string{
	"left_shoulder_angle",
	"right_shoulder_angle",
	"left_elbow_angle",
	"right_elbow_angle",
	"left_knee_angle",
	"right_knee_angle",
	"hip_rotation",
	"spine_lean",
	"stance_width_normalized",
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithTolerances replaces the per-metric tolerance table.
func WithTolerances(t map[string]float64) Option {
	return func(s *Scorer) {
		if len(t) > 0 {
			s.tolerances = t
		}
	}
}

// WithMetricWeights replaces the rule-model metric weights.
func WithMetricWeights(w map[string]float64) Option {
	return func(s *Scorer) {
		if len(w) > 0 {
			s.metricWeights = w
		}
	}
}

// WithPhaseWeights replaces the phase weights used by both models.
func WithPhaseWeights(w map[string]float64) Option {
	return func(s *Scorer) {
		if len(w) > 0 {
			s.phaseWeights = w
		}
	}
}

// WithPatternMetrics replaces the pattern model's feature-vector layout.
func WithPatternMetrics(metrics []string) Option {
	return func(s *Scorer) {
		if len(metrics) > 0 {
			s.patternMetrics = metrics
		}
	}
}

// Scorer computes both similarity families for phase-metric pairs.
type Scorer struct {
	tolerances     map[string]float64
	metricWeights  map[string]float64
	phaseWeights   map[string]float64
	patternMetrics []string
}

// New creates a Scorer with defaults for the reference motion.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		tolerances:     defaultTolerances(),
		metricWeights:  defaultMetricWeights(),
		phaseWeights:   defaultPhaseWeights(),
		patternMetrics: defaultPatternMetrics,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PhaseScore holds one phase's scores under both models.
type PhaseScore struct {
	Phase   string  `json:"phase"`
	Rule    float64 `json:"rule_score"`
	Pattern float64 `json:"pattern_score"`
}

// Scores is the full cross-subject comparison result.
type Scores struct {
	Phases         []PhaseScore `json:"phases"`
	RuleOverall    float64      `json:"rule_overall"`
	PatternOverall float64      `json:"pattern_overall"`
}

// MetricSimilarity maps an absolute deviation onto [0,100] for one metric:
// 100 at zero deviation, 50 at the tolerance, clamped to 0 at twice the
// tolerance and beyond.
func MetricSimilarity(deviation, tolerance float64) float64 {
	if tolerance <= 0 {
		return 0
	}
	return math.Max(0, 100*(1-math.Abs(deviation)/(2*tolerance)))
}

// Compare scores every phase present in both subjects, in boundary order,
// and aggregates the overall scores with the shared phase weights.
func (s *Scorer) Compare(practitioner, reference []types.PhaseMetrics) Scores {
	refByPhase := make(map[string]types.PhaseMetrics, len(reference))
	for _, pm := range reference {
		refByPhase[pm.Phase] = pm
	}

	var out Scores
	ruleSum, ruleWeight := 0.0, 0.0
	patternSum, patternWeight := 0.0, 0.0
	for _, pm := range practitioner {
		ref, ok := refByPhase[pm.Phase]
		if !ok {
			continue
		}
		ps := PhaseScore{
			Phase:   pm.Phase,
			Rule:    s.RulePhase(pm, ref),
			Pattern: s.PatternPhase(pm, ref),
		}
		out.Phases = append(out.Phases, ps)
		if w, ok := s.phaseWeights[pm.Phase]; ok {
			ruleSum += ps.Rule * w
			ruleWeight += w
			patternSum += ps.Pattern * w
			patternWeight += w
		}
	}
	out.RuleOverall = round1(weightedOrNeutral(ruleSum, ruleWeight))
	out.PatternOverall = round1(weightedOrNeutral(patternSum, patternWeight))
	return out
}

// RulePhase computes the weighted average of per-metric similarities for
// one phase. Metrics missing on either side are skipped; a phase with no
// comparable metrics scores neutral.
func (s *Scorer) RulePhase(practitioner, reference types.PhaseMetrics) float64 {
	sum, weight := 0.0, 0.0
	for metric, tolerance := range s.tolerances {
		pv := practitioner.Value(metric)
		rv := reference.Value(metric)
		if math.IsNaN(pv) || math.IsNaN(rv) {
			continue
		}
		w := s.metricWeights[metric]
		if w == 0 {
			w = 1.0
		}
		sum += MetricSimilarity(pv-rv, tolerance) * w
		weight += w
	}
	return round1(weightedOrNeutral(sum, weight))
}

// PatternPhase builds the fixed-order feature vector for each subject,
// standardizes the two vectors jointly (zero mean, unit variance over the
// combined value set, so large-magnitude angular features cannot
// dominate), treats missing values as 0 after standardization, and maps
// their cosine similarity from [-1,1] onto [0,100].
func (s *Scorer) PatternPhase(practitioner, reference types.PhaseMetrics) float64 {
	pv := s.vector(practitioner)
	rv := s.vector(reference)

	mean, std := jointMoments(pv, rv)
	standardize(pv, mean, std)
	standardize(rv, mean, std)

	cos, ok := cosine(pv, rv)
	if !ok {
		return neutralScore
	}
	return round1((cos + 1) * 50)
}

func (s *Scorer) vector(pm types.PhaseMetrics) []float64 {
	v := make([]float64, len(s.patternMetrics))
	for i, m := range s.patternMetrics {
		v[i] = pm.Value(m)
	}
	return v
}

// jointMoments computes mean and standard deviation over the defined
// entries of both vectors together.
func jointMoments(a, b []float64) (mean, std float64) {
	sum, count := 0.0, 0
	for _, v := range a {
		if !math.IsNaN(v) {
			sum += v
			count++
		}
	}
	for _, v := range b {
		if !math.IsNaN(v) {
			sum += v
			count++
		}
	}
	if count == 0 {
		return 0, 0
	}
	mean = sum / float64(count)
	varSum := 0.0
	for _, v := range a {
		if !math.IsNaN(v) {
			varSum += (v - mean) * (v - mean)
		}
	}
	for _, v := range b {
		if !math.IsNaN(v) {
			varSum += (v - mean) * (v - mean)
		}
	}
	std = math.Sqrt(varSum / float64(count))
	return mean, std
}

// standardize z-scores the vector in place; missing values become 0, the
// standardized mean.
func standardize(v []float64, mean, std float64) {
	for i := range v {
		if math.IsNaN(v[i]) || std == 0 {
			v[i] = 0
			continue
		}
		v[i] = (v[i] - mean) / std
	}
}

func cosine(a, b []float64) (float64, bool) {
	dot, na, nb := 0.0, 0.0, 0.0
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), true
}

func weightedOrNeutral(sum, weight float64) float64 {
	if weight == 0 {
		return neutralScore
	}
	return sum / weight
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
