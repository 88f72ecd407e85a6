// Package cues turns per-phase metric deviations into ranked coaching
// cues. Every (phase, metric) pair exceeding its cue threshold becomes a
// candidate; candidates are scored by deviation magnitude times metric and
// phase weight and sorted deterministically.
package cues

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/GoodFrogman7/coach-ai/internal/domain/types"
)

// Defaults for ranking views.
const (
	defaultPrimaryCount = 2
	defaultListCount    = 5
)

// template holds direction-specific coaching copy for one metric. High
// fires when the practitioner value exceeds the reference, Low when it
// falls short.
type template struct {
	high string
	low  string
}

func defaultTemplates() map[string]template {
	return map[string]template{
		"left_elbow_angle": {
			high: "Bend your left elbow more. Your arm is too straight, reducing control and power transfer.",
			low:  "Extend your left elbow slightly more. A bit more extension will add reach and power.",
		},
		"right_elbow_angle": {
			high: "Keep your right elbow closer to your body for better stability. Think compact arms through the stroke.",
			low:  "Allow your right elbow to extend more through the hitting zone for better racquet speed.",
		},
		"left_knee_angle": {
			high: "Bend your left knee more. A lower stance gives you more power from the ground up.",
			low:  "Don't over-crouch on your left side. Too much knee bend slows your recovery.",
		},
		"right_knee_angle": {
			high: "Bend your right knee more. A lower stance gives you more power from the ground up.",
			low:  "Don't over-crouch on your right side. Too much knee bend slows your recovery.",
		},
		"hip_rotation": {
			high: "Control your hip rotation. Over-rotation can throw off your timing and balance.",
			low:  "Rotate your hips more into the shot. Your upper body is doing most of the work, engage those hips.",
		},
		"spine_lean": {
			high: "Stay more upright. You're leaning too much, which affects balance.",
			low:  "Lean into the shot slightly more for better weight transfer through the ball.",
		},
		"stance_width_normalized": {
			high: "Narrow your stance slightly. Too wide limits your hip rotation and recovery speed.",
			low:  "Widen your stance for a more stable base. You'll generate more power from your legs.",
		},
		"left_shoulder_angle": {
			high: "Relax your left shoulder turn. Over-rotating the shoulders costs you timing.",
			low:  "Turn your shoulders earlier and more completely during the setup.",
		},
		"right_shoulder_angle": {
			high: "Relax your right shoulder turn. Over-rotating the shoulders costs you timing.",
			low:  "Turn your shoulders earlier and more completely during the setup.",
		},
	}
}

// Deviation thresholds below which no cue is raised, per metric.
func defaultThresholds() map[string]float64 {
	return map[string]float64{
		"left_elbow_angle":        15.0,
		"right_elbow_angle":       15.0,
		"left_knee_angle":         15.0,
		"right_knee_angle":        15.0,
		"hip_rotation":            5.0,
		"spine_lean":              8.0,
		"stance_width_normalized": 0.3,
		"left_shoulder_angle":     25.0,
		"right_shoulder_angle":    25.0,
	}
}

// Generic metric weights shared with the rule similarity model.
func defaultWeights() map[string]float64 {
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

// Phase-specific weight overrides. Hip coil during the load phase carries
// the most coaching signal of any single measurement.
func defaultPhaseOverrides() map[string]map[string]float64 {
	return map[string]map[string]float64{
		"load": {
			"hip_rotation": 3.0,
		},
	}
}

func defaultPhaseWeights() map[string]float64 {
	return map[string]float64{
		"preparation":    0.15,
		"load":           0.25,
		"contact":        0.35,
		"follow_through": 0.25,
	}
}

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithThresholds replaces the per-metric cue thresholds.
func WithThresholds(t map[string]float64) Option {
	return func(r *Ranker) {
		if len(t) > 0 {
			r.thresholds = t
		}
	}
}

// WithWeights replaces the generic metric weights.
func WithWeights(w map[string]float64) Option {
	return func(r *Ranker) {
		if len(w) > 0 {
			r.weights = w
		}
	}
}

// WithPhaseWeights replaces the phase importance weights.
func WithPhaseWeights(w map[string]float64) Option {
	return func(r *Ranker) {
		if len(w) > 0 {
			r.phaseWeights = w
		}
	}
}

// WithPhaseOverrides replaces the phase-specific metric weight overrides.
func WithPhaseOverrides(o map[string]map[string]float64) Option {
	return func(r *Ranker) {
		if len(o) > 0 {
			r.phaseOverrides = o
		}
	}
}

// WithCounts sets the primary and list view sizes.
func WithCounts(primary, list int) Option {
	return func(r *Ranker) {
		if primary > 0 {
			r.primaryCount = primary
		}
		if list > 0 {
			r.listCount = list
		}
	}
}

// Ranker generates and orders coaching cues for one session.
type Ranker struct {
	templates      map[string]template
	thresholds     map[string]float64
	weights        map[string]float64
	phaseOverrides map[string]map[string]float64
	phaseWeights   map[string]float64
	primaryCount   int
	listCount      int
}

// New creates a Ranker with defaults for the reference motion.
func New(opts ...Option) *Ranker {
	r := &Ranker{
		templates:      defaultTemplates(),
		thresholds:     defaultThresholds(),
		weights:        defaultWeights(),
		phaseOverrides: defaultPhaseOverrides(),
		phaseWeights:   defaultPhaseWeights(),
		primaryCount:   defaultPrimaryCount,
		listCount:      defaultListCount,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Ranking carries the three views over the same candidate set: the short
// primary focus, the capped list, and every candidate for downstream
// consumers.
type Ranking struct {
	Primary []types.CoachingCue `json:"primary"`
	Top     []types.CoachingCue `json:"top"`
	All     []types.CoachingCue `json:"all"`
}

// Rank scores every deviation exceeding its threshold across all phases
// present in both subjects. Candidates sort by priority descending, ties
// break by phase order then metric name, so identical inputs always rank
// identically.
func (r *Ranker) Rank(practitioner, reference []types.PhaseMetrics) Ranking {
	refByPhase := make(map[string]types.PhaseMetrics, len(reference))
	for _, pm := range reference {
		refByPhase[pm.Phase] = pm
	}
	phasePos := make(map[string]int, len(practitioner))

	type candidate struct {
		cue      types.CoachingCue
		phasePos int
	}
	var candidates []candidate

	for pos, pm := range practitioner {
		phasePos[pm.Phase] = pos
		ref, ok := refByPhase[pm.Phase]
		if !ok {
			continue
		}
		for metric, threshold := range r.thresholds {
			pv := pm.Value(metric)
			rv := ref.Value(metric)
			if math.IsNaN(pv) || math.IsNaN(rv) {
				continue
			}
			deviation := pv - rv
			if math.Abs(deviation) <= threshold {
				continue
			}
			candidates = append(candidates, candidate{
				cue: types.CoachingCue{
					Metric:        metric,
					Phase:         pm.Phase,
					Deviation:     deviation,
					PriorityScore: math.Abs(deviation) * r.weight(pm.Phase, metric) * r.phaseWeight(pm.Phase),
					Text:          r.text(metric, deviation),
				},
				phasePos: pos,
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.cue.PriorityScore != b.cue.PriorityScore {
			return a.cue.PriorityScore > b.cue.PriorityScore
		}
		if a.phasePos != b.phasePos {
			return a.phasePos < b.phasePos
		}
		return a.cue.Metric < b.cue.Metric
	})

	all := make([]types.CoachingCue, len(candidates))
	for i, c := range candidates {
		all[i] = c.cue
	}
	return Ranking{
		Primary: head(all, r.primaryCount),
		Top:     head(all, r.listCount),
		All:     all,
	}
}

// weight resolves the metric weight, preferring a phase-specific override.
func (r *Ranker) weight(phase, metric string) float64 {
	if overrides, ok := r.phaseOverrides[phase]; ok {
		if w, ok := overrides[metric]; ok {
			return w
		}
	}
	if w, ok := r.weights[metric]; ok {
		return w
	}
	return 1.0
}

func (r *Ranker) phaseWeight(phase string) float64 {
	if w, ok := r.phaseWeights[phase]; ok {
		return w
	}
	return 1.0
}

// text picks the direction-specific coaching copy, falling back to a
// generic sentence for metrics without a template.
func (r *Ranker) text(metric string, deviation float64) string {
	if t, ok := r.templates[metric]; ok {
		if deviation > 0 {
			return t.high
		}
		return t.low
	}
	label := strings.ReplaceAll(metric, "_", " ")
	if deviation > 0 {
		return fmt.Sprintf("Reduce your %s toward the reference value.", label)
	}
	return fmt.Sprintf("Increase your %s toward the reference value.", label)
}

func head(cues []types.CoachingCue, n int) []types.CoachingCue {
	if len(cues) <= n {
		return append([]types.CoachingCue(nil), cues...)
	}
	return append([]types.CoachingCue(nil), cues[:n]...)
}
