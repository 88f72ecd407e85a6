// Package adaptive fuses coaching cues with reliability, phase stability,
// and session-over-session progress into one composite priority score and
// an action tier per issue. Classification runs through an ordered rule
// table; an issue matching no rule is suppressed, so every issue provably
// receives exactly one tier.
package adaptive

import (
	"math"
	"sort"

	"github.com/GoodFrogman7/coach-ai/internal/domain/types"
)

// severityStep maps a minimum absolute deviation onto severity points.
type severityStep struct {
	minDeviation float64
	points       float64
}

// Severity ladders per metric kind. Angular deviations are degrees,
// normalized ones are unitless.
var (
	angularSeveritySteps = []severityStep{
		{80, 40}, {50, 35}, {30, 30}, {20, 20}, {10, 10},
	}
	normalizedSeveritySteps = []severityStep{
		{4, 40}, {3, 30}, {2, 20}, {1, 10},
	}
)

const severityFloor = 5.0

// Severity thresholds feeding the rule predicates.
const (
	angularSevere         = 50.0
	angularSignificant    = 20.0
	normalizedSevere      = 3.0
	normalizedSignificant = 1.5
)

// Remaining composite-score components.
const (
	consistencyMaxPoints = 15.0
	consistentStability  = 70.0
	progressThreshold    = 5.0
	progressModifier     = 10.0
	defaultStability     = 75.0
	defaultFocusSize     = 3
)

func defaultReliabilityPoints() map[types.ReliabilityLevel]float64 {
	return map[types.ReliabilityLevel]float64{
		types.ReliabilityHigh:   25.0,
		types.ReliabilityMedium: 15.0,
		types.ReliabilityLow:    5.0,
	}
}

func defaultPhasePoints() map[string]float64 {
	return map[string]float64{
		"contact":        20.0,
		"load":           15.0,
		"follow_through": 12.0,
		"preparation":    8.0,
	}
}

const unknownPhasePoints = 10.0

// IssueContext is one cue plus the session context the engine scores it
// under. ProgressDelta is nil when no prior session exists or the pair was
// absent from it.
type IssueContext struct {
	Cue            types.CoachingCue
	Reliability    types.ReliabilityLevel
	PhaseStability float64
	ProgressDelta  *float64
}

// facts are the boolean predicates the rule table reads.
type facts struct {
	severe      bool
	significant bool
	reliable    bool
	highlyRel   bool
	lowRel      bool
	improving   bool
	worsening   bool
	consistent  bool
}

// rule pairs a predicate with the tier and advice assigned on match.
type rule struct {
	match          func(facts) bool
	tier           types.IssueTier
	recommendation string
}

// Rules evaluate top to bottom; the first match wins. Order encodes
// precedence: severe-and-trusted issues outrank everything, improving
// issues drop to monitoring before the low-reliability checks run.
var rules = []rule{
	{
		match:          func(f facts) bool { return f.severe && f.highlyRel && f.consistent && f.worsening },
		tier:           types.TierCritical,
		recommendation: "Address immediately: severe issue getting worse",
	},
	{
		match:          func(f facts) bool { return f.severe && f.highlyRel && f.consistent },
		tier:           types.TierCritical,
		recommendation: "Address immediately: severe and consistent issue",
	},
	{
		match:          func(f facts) bool { return f.severe && f.reliable && !f.improving },
		tier:           types.TierPriority,
		recommendation: "Focus on this: large deviation from the reference technique",
	},
	{
		match:          func(f facts) bool { return f.significant && f.reliable && !f.improving },
		tier:           types.TierPriority,
		recommendation: "Important area for improvement",
	},
	{
		match:          func(f facts) bool { return f.improving },
		tier:           types.TierMonitor,
		recommendation: "Continue current approach: showing improvement",
	},
	{
		match:          func(f facts) bool { return f.significant && f.lowRel },
		tier:           types.TierMonitor,
		recommendation: "Verify measurement quality before focusing on this",
	},
	{
		match:          func(f facts) bool { return !f.significant && f.reliable },
		tier:           types.TierMonitor,
		recommendation: "Track progress: minor issue",
	},
}

const suppressRecommendation = "Low measurement confidence or minor deviation, deprioritized"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithPhasePoints replaces the phase-importance point table.
func WithPhasePoints(p map[string]float64) Option {
	return func(e *Engine) {
		if len(p) > 0 {
			e.phasePoints = p
		}
	}
}

// WithFocusSize sets how many issues the top view returns.
func WithFocusSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.focusSize = n
		}
	}
}

// Engine scores and classifies coaching issues.
type Engine struct {
	reliabilityPoints map[types.ReliabilityLevel]float64
	phasePoints       map[string]float64
	focusSize         int
}

// New creates an Engine with default point tables.
func New(opts ...Option) *Engine {
	e := &Engine{
		reliabilityPoints: defaultReliabilityPoints(),
		phasePoints:       defaultPhasePoints(),
		focusSize:         defaultFocusSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate scores every issue and returns them sorted by composite score
// descending. Input order breaks ties, keeping the result deterministic.
func (e *Engine) Evaluate(issues []IssueContext) []types.AdaptiveIssue {
	out := make([]types.AdaptiveIssue, len(issues))
	for i, ic := range issues {
		out[i] = e.Score(ic)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompositeScore > out[j].CompositeScore
	})
	return out
}

// Score computes one issue's composite priority and tier.
func (e *Engine) Score(ic IssueContext) types.AdaptiveIssue {
	absDev := math.Abs(ic.Cue.Deviation)
	kind := types.KindOf(ic.Cue.Metric)
	stability := ic.PhaseStability
	if stability <= 0 {
		stability = defaultStability
	}

	comp := types.PriorityComponents{
		Severity:         severityPoints(absDev, kind),
		Reliability:      e.reliabilityFor(ic.Reliability),
		PhaseImportance:  e.phaseFor(ic.Cue.Phase),
		Consistency:      stability / 100.0 * consistencyMaxPoints,
		ProgressModifier: progressPoints(ic.ProgressDelta),
	}

	f := buildFacts(absDev, kind, ic.Reliability, ic.ProgressDelta, stability)
	tier, recommendation := classify(f)

	return types.AdaptiveIssue{
		CoachingCue:    ic.Cue,
		Reliability:    ic.Reliability,
		PhaseStability: stability,
		ProgressDelta:  ic.ProgressDelta,
		CompositeScore: comp.Severity + comp.Reliability + comp.PhaseImportance + comp.Consistency + comp.ProgressModifier,
		Components:     comp,
		Tier:           tier,
		Recommendation: recommendation,
	}
}

// Focus groups evaluated issues by tier.
type Focus struct {
	Critical   []types.AdaptiveIssue `json:"critical"`
	Priority   []types.AdaptiveIssue `json:"priority"`
	Monitor    []types.AdaptiveIssue `json:"monitor"`
	Suppressed []types.AdaptiveIssue `json:"suppressed"`
}

// Group splits already sorted issues into the four tier buckets,
// preserving their score order within each bucket.
func Group(issues []types.AdaptiveIssue) Focus {
	var f Focus
	for _, issue := range issues {
		switch issue.Tier {
		case types.TierCritical:
			f.Critical = append(f.Critical, issue)
		case types.TierPriority:
			f.Priority = append(f.Priority, issue)
		case types.TierMonitor:
			f.Monitor = append(f.Monitor, issue)
		default:
			f.Suppressed = append(f.Suppressed, issue)
		}
	}
	return f
}

// Top returns the highest-scoring issues, at most the configured focus
// size, excluding suppressed ones.
func (e *Engine) Top(issues []types.AdaptiveIssue) []types.AdaptiveIssue {
	out := make([]types.AdaptiveIssue, 0, e.focusSize)
	for _, issue := range issues {
		if issue.Tier == types.TierSuppress {
			continue
		}
		out = append(out, issue)
		if len(out) == e.focusSize {
			break
		}
	}
	return out
}

func classify(f facts) (types.IssueTier, string) {
	for _, r := range rules {
		if r.match(f) {
			return r.tier, r.recommendation
		}
	}
	return types.TierSuppress, suppressRecommendation
}

func buildFacts(absDev float64, kind types.MetricKind, level types.ReliabilityLevel, delta *float64, stability float64) facts {
	severe, significant := angularSevere, angularSignificant
	if kind == types.KindNormalized {
		severe, significant = normalizedSevere, normalizedSignificant
	}
	return facts{
		severe:      absDev >= severe,
		significant: absDev >= significant,
		reliable:    level == types.ReliabilityHigh || level == types.ReliabilityMedium,
		highlyRel:   level == types.ReliabilityHigh,
		lowRel:      level == types.ReliabilityLow,
		improving:   delta != nil && *delta < -progressThreshold,
		worsening:   delta != nil && *delta > progressThreshold,
		consistent:  stability >= consistentStability,
	}
}

func severityPoints(absDev float64, kind types.MetricKind) float64 {
	steps := angularSeveritySteps
	if kind == types.KindNormalized {
		steps = normalizedSeveritySteps
	}
	for _, s := range steps {
		if absDev >= s.minDeviation {
			return s.points
		}
	}
	return severityFloor
}

func (e *Engine) reliabilityFor(level types.ReliabilityLevel) float64 {
	if p, ok := e.reliabilityPoints[level]; ok {
		return p
	}
	return e.reliabilityPoints[types.ReliabilityMedium]
}

func (e *Engine) phaseFor(phase string) float64 {
	if p, ok := e.phasePoints[phase]; ok {
		return p
	}
	return unknownPhasePoints
}

func progressPoints(delta *float64) float64 {
	if delta == nil {
		return 0
	}
	switch {
	case *delta > progressThreshold:
		return progressModifier
	case *delta < -progressThreshold:
		return -progressModifier
	default:
		return 0
	}
}
