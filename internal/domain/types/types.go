// Package types contains the data model shared across the analysis pipeline.
package types

import (
	"math"
	"time"
)

// FrameRecord holds one video frame's derived measurements, keyed by metric
// name. Values may be NaN when the pose pipeline could not measure a metric
// on that frame. Records are immutable once ingested.
type FrameRecord struct {
	Index   int                `json:"frame"`
	Metrics map[string]float64 `json:"metrics"`
}

// Value returns the named metric for this frame, or NaN when absent.
func (f FrameRecord) Value(metric string) float64 {
	v, ok := f.Metrics[metric]
	if !ok {
		return math.NaN()
	}
	return v
}

// PhaseDefinition names a phase of the motion cycle and its relative
// importance weight. Weights across a motion's phases sum to ~1.0.
type PhaseDefinition struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// PhaseBoundary locates one phase within a subject's frame range.
// Boundaries are contiguous, non-overlapping, and cover the full range.
type PhaseBoundary struct {
	Phase      string `json:"phase"`
	StartFrame int    `json:"start_frame"`
	EndFrame   int    `json:"end_frame"`
}

// Frames returns the number of frames the boundary spans.
func (b PhaseBoundary) Frames() int {
	return b.EndFrame - b.StartFrame + 1
}

// PhaseMetrics carries the per-metric mean values for one subject in one
// phase, plus the phase duration in frames.
type PhaseMetrics struct {
	Phase          string             `json:"phase"`
	Values         map[string]float64 `json:"values"`
	DurationFrames int                `json:"duration_frames"`
}

// Value returns the aggregated metric value, or NaN when the metric had no
// defined samples in the phase.
func (p PhaseMetrics) Value(metric string) float64 {
	v, ok := p.Values[metric]
	if !ok {
		return math.NaN()
	}
	return v
}

// ReliabilityLevel classifies how trustworthy a measured metric is.
type ReliabilityLevel string

// Reliability levels, ordered from most to least trustworthy.
const (
	ReliabilityHigh   ReliabilityLevel = "High"
	ReliabilityMedium ReliabilityLevel = "Medium"
	ReliabilityLow    ReliabilityLevel = "Low"
)

// ReliabilityRecord holds whole-session variability statistics for one
// metric and its derived reliability class.
type ReliabilityRecord struct {
	Metric string           `json:"metric"`
	Mean   float64          `json:"mean"`
	Std    float64          `json:"std"`
	Min    float64          `json:"min"`
	Max    float64          `json:"max"`
	Range  float64          `json:"range"`
	CV     float64          `json:"cv"`
	Level  ReliabilityLevel `json:"level"`
}

// CoachingCue is one candidate correction: a metric deviating from the
// reference in a specific phase. Deviation is signed
// (practitioner - reference); PriorityScore is |deviation| x metric weight
// x phase weight.
type CoachingCue struct {
	Metric        string  `json:"metric"`
	Phase         string  `json:"phase"`
	Deviation     float64 `json:"deviation"`
	PriorityScore float64 `json:"priority_score"`
	Text          string  `json:"text"`
}

// IssueTier is the action classification assigned to an adaptive issue.
type IssueTier string

// Issue tiers in precedence order. Every issue receives exactly one tier.
const (
	TierCritical IssueTier = "CRITICAL"
	TierPriority IssueTier = "PRIORITY"
	TierMonitor  IssueTier = "MONITOR"
	TierSuppress IssueTier = "SUPPRESS"
)

// PriorityComponents breaks a composite priority score into its parts.
type PriorityComponents struct {
	Severity         float64 `json:"severity"`
	Reliability      float64 `json:"reliability"`
	PhaseImportance  float64 `json:"phase_importance"`
	Consistency      float64 `json:"consistency"`
	ProgressModifier float64 `json:"progress_modifier"`
}

// AdaptiveIssue extends a CoachingCue with reliability, stability, and
// progress context, fused into one composite priority score and a tier.
// Issues are recomputed from scratch every session; nothing here is
// persisted as mutable state.
type AdaptiveIssue struct {
	CoachingCue
	Reliability    ReliabilityLevel   `json:"reliability"`
	PhaseStability float64            `json:"phase_stability"`
	ProgressDelta  *float64           `json:"progress_delta,omitempty"`
	CompositeScore float64            `json:"composite_score"`
	Components     PriorityComponents `json:"components"`
	Tier           IssueTier          `json:"tier"`
	Recommendation string             `json:"recommendation"`
}

// SessionSummary is the minimal persisted record of one analyzed session.
type SessionSummary struct {
	SessionID          string             `json:"session_id"`
	OverallScore       float64            `json:"overall_score"`
	PhaseWeightedScore float64            `json:"phase_weighted_score"`
	PhaseScores        map[string]float64 `json:"phase_scores"`
}

// ProgressStatus classifies a session-over-session delta.
type ProgressStatus string

// Progress statuses. The dead zone between the thresholds maps to Stable.
const (
	ProgressImproved  ProgressStatus = "Improved"
	ProgressStable    ProgressStatus = "Stable"
	ProgressRegressed ProgressStatus = "Regressed"
)

// ProgressDelta compares one scalar between the current and the previous
// session. Derived each run, never stored.
type ProgressDelta struct {
	MetricKey     string         `json:"metric_key"`
	CurrentValue  float64        `json:"current_value"`
	PreviousValue float64        `json:"previous_value"`
	Delta         float64        `json:"delta"`
	Status        ProgressStatus `json:"status"`
}

// Intensity selects a prescription variant of a drill.
type Intensity string

// Drill intensity variants.
const (
	IntensityLight     Intensity = "light"
	IntensityModerate  Intensity = "moderate"
	IntensityIntensive Intensity = "intensive"
)

// DrillRecord is one entry of the static drill knowledge base.
type DrillRecord struct {
	Name          string               `json:"name"`
	Description   string               `json:"description"`
	TargetMetrics []string             `json:"target_metrics"`
	TargetPhases  []string             `json:"target_phases"`
	Intensity     map[Intensity]string `json:"intensity"`
	Rationale     string               `json:"rationale"`
}

// DrillRecommendation prescribes one drill for one issue at a chosen
// intensity.
type DrillRecommendation struct {
	Metric        string    `json:"metric"`
	Phase         string    `json:"phase"`
	DrillName     string    `json:"drill_name"`
	Description   string    `json:"description"`
	Intensity     Intensity `json:"intensity"`
	Prescription  string    `json:"prescription"`
	Rationale     string    `json:"rationale"`
	PriorityScore float64   `json:"priority_score"`
	Reason        string    `json:"reason"`
}

// RecommendationSet groups the session's drill prescriptions by urgency.
// SuppressedCount reports how many issues received no drill, for
// transparency.
type RecommendationSet struct {
	Critical        []DrillRecommendation `json:"critical"`
	Priority        []DrillRecommendation `json:"priority"`
	Maintenance     []DrillRecommendation `json:"maintenance"`
	SuppressedCount int                   `json:"suppressed_count"`
}

// All returns every recommendation across urgency groups.
func (r RecommendationSet) All() []DrillRecommendation {
	out := make([]DrillRecommendation, 0, len(r.Critical)+len(r.Priority)+len(r.Maintenance))
	out = append(out, r.Critical...)
	out = append(out, r.Priority...)
	out = append(out, r.Maintenance...)
	return out
}

// DrillOutcomeRecord is one entry of the append-only outcome ledger: a
// drill that was prescribed, and how its target metric moved by the next
// session. Records are never mutated or deleted.
type DrillOutcomeRecord struct {
	ID             string           `json:"id"`
	PriorSessionID string           `json:"prior_session_id"`
	SessionID      string           `json:"session_id"`
	Metric         string           `json:"metric"`
	Phase          string           `json:"phase"`
	DrillName      string           `json:"drill_name"`
	Intensity      Intensity        `json:"intensity"`
	Classification string           `json:"classification"`
	PreValue       float64          `json:"pre_value"`
	PostValue      float64          `json:"post_value"`
	Delta          float64          `json:"delta"`
	Reliability    ReliabilityLevel `json:"reliability"`
	Timestamp      time.Time        `json:"timestamp"`
}

// ConfidenceLevel classifies a drill's historical confidence score.
type ConfidenceLevel string

// Confidence levels for the outcome scorer.
const (
	ConfidenceHigh   ConfidenceLevel = "High"
	ConfidenceMedium ConfidenceLevel = "Medium"
	ConfidenceLow    ConfidenceLevel = "Low"
)

// DrillConfidence summarizes a drill's historical effectiveness from the
// outcome ledger.
type DrillConfidence struct {
	DrillName            string          `json:"drill_name"`
	UsageCount           int             `json:"usage_count"`
	AvgDelta             float64         `json:"avg_delta"`
	StdDelta             float64         `json:"std_delta"`
	HighReliabilityRatio float64         `json:"high_reliability_ratio"`
	Consistency          float64         `json:"consistency"`
	Score                float64         `json:"confidence_score"`
	Level                ConfidenceLevel `json:"confidence_level"`
}

// MetricKind distinguishes angular metrics (native units, degrees) from
// normalized/unitless ones; thresholds scale differently per kind.
type MetricKind int

// Metric kinds.
const (
	KindAngular MetricKind = iota
	KindNormalized
)
