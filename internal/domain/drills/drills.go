// Package drills maps prioritized issues to concrete interventions from a
// static knowledge base, scaling prescription intensity by action tier,
// and builds outcome records linking last session's prescriptions to this
// session's measurements.
package drills

import (
	"fmt"
	"math"
	"strings"

	"github.com/GoodFrogman7/coach-ai/internal/domain/adaptive"
	"github.com/GoodFrogman7/coach-ai/internal/domain/types"
)

// Per-tier recommendation caps.
const (
	defaultCriticalCap    = 3
	defaultPriorityCap    = 3
	defaultMaintenanceCap = 2
)

// Sentinel metric/phase values of the general fallback drill, untrackable
// by the outcome builder.
const (
	GeneralMetric = "general"
	AllPhases     = "all"
)

const fallbackPriorityScore = 50.0

// Option applies a configuration option to the Recommender.
type Option func(*Recommender)

// WithCatalog replaces the drill knowledge base.
func WithCatalog(c map[string][]types.DrillRecord) Option {
	return func(r *Recommender) {
		if len(c) > 0 {
			r.catalog = c
		}
	}
}

// WithCaps sets the per-tier recommendation caps.
func WithCaps(critical, priority, maintenance int) Option {
	return func(r *Recommender) {
		if critical > 0 {
			r.criticalCap = critical
		}
		if priority > 0 {
			r.priorityCap = priority
		}
		if maintenance > 0 {
			r.maintenanceCap = maintenance
		}
	}
}

// Recommender selects drills for classified issues.
type Recommender struct {
	catalog        map[string][]types.DrillRecord
	criticalCap    int
	priorityCap    int
	maintenanceCap int
}

// New creates a Recommender over the default catalog.
func New(opts ...Option) *Recommender {
	r := &Recommender{
		catalog:        Catalog(),
		criticalCap:    defaultCriticalCap,
		priorityCap:    defaultPriorityCap,
		maintenanceCap: defaultMaintenanceCap,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CategoryOf maps a metric name to its drill category by keyword.
// Unmatched metrics land in general technique.
func CategoryOf(metric string) string {
	m := strings.ToLower(metric)
	switch {
	case strings.Contains(m, "hip") && strings.Contains(m, "rotation"):
		return CategoryHipRotation
	case strings.Contains(m, "elbow"):
		return CategoryElbowAngles
	case strings.Contains(m, "knee"):
		return CategoryKneeStability
	case strings.Contains(m, "stance") || strings.Contains(m, "width"):
		return CategoryStanceWidth
	case strings.Contains(m, "spine") || strings.Contains(m, "lean"):
		return CategorySpineLean
	case strings.Contains(m, "shoulder"):
		return CategoryShoulders
	default:
		return CategoryGeneralTechnique
	}
}

// Recommend builds the session's drill prescriptions from the classified
// issues. Critical issues get intensive prescriptions, priority issues
// moderate ones with an alternate drill when the category has several,
// and monitor issues that are actively improving get light maintenance
// work. When nothing critical or priority surfaces, a general moderate
// drill guarantees at least one recommendation.
func (r *Recommender) Recommend(focus adaptive.Focus) types.RecommendationSet {
	var out types.RecommendationSet

	for _, issue := range capIssues(focus.Critical, r.criticalCap) {
		if rec, ok := r.build(issue, types.IntensityIntensive, 0, criticalReason(issue)); ok {
			out.Critical = append(out.Critical, rec)
		}
	}
	for _, issue := range capIssues(focus.Priority, r.priorityCap) {
		if rec, ok := r.build(issue, types.IntensityModerate, 1, priorityReason(issue)); ok {
			out.Priority = append(out.Priority, rec)
		}
	}
	for _, issue := range capIssues(focus.Monitor, r.maintenanceCap) {
		if issue.ProgressDelta == nil || !improving(*issue.ProgressDelta) {
			continue
		}
		if rec, ok := r.build(issue, types.IntensityLight, 0, "Currently improving, maintain progress with light practice"); ok {
			out.Maintenance = append(out.Maintenance, rec)
		}
	}
	out.SuppressedCount = len(focus.Suppressed)

	if len(out.Critical) == 0 && len(out.Priority) == 0 {
		out.Priority = append(out.Priority, r.generalFallback())
	}
	return out
}

// build prescribes a drill from the issue's category. preferred picks an
// alternate drill within the category when one exists, so priority work
// does not repeat the critical prescription.
func (r *Recommender) build(issue types.AdaptiveIssue, intensity types.Intensity, preferred int, reason string) (types.DrillRecommendation, bool) {
	drills := r.catalog[CategoryOf(issue.Metric)]
	if len(drills) == 0 {
		return types.DrillRecommendation{}, false
	}
	idx := preferred
	if idx > len(drills)-1 {
		idx = len(drills) - 1
	}
	drill := drills[idx]
	return types.DrillRecommendation{
		Metric:        issue.Metric,
		Phase:         issue.Phase,
		DrillName:     drill.Name,
		Description:   drill.Description,
		Intensity:     intensity,
		Prescription:  drill.Intensity[intensity],
		Rationale:     drill.Rationale,
		PriorityScore: issue.CompositeScore,
		Reason:        reason,
	}, true
}

func (r *Recommender) generalFallback() types.DrillRecommendation {
	drill := r.catalog[CategoryGeneralTechnique][0]
	return types.DrillRecommendation{
		Metric:        GeneralMetric,
		Phase:         AllPhases,
		DrillName:     drill.Name,
		Description:   drill.Description,
		Intensity:     types.IntensityModerate,
		Prescription:  drill.Intensity[types.IntensityModerate],
		Rationale:     drill.Rationale,
		PriorityScore: fallbackPriorityScore,
		Reason:        "General technique refinement",
	}
}

func capIssues(issues []types.AdaptiveIssue, n int) []types.AdaptiveIssue {
	if len(issues) <= n {
		return issues
	}
	return issues[:n]
}

func improving(delta float64) bool {
	return delta < -5.0
}

func criticalReason(issue types.AdaptiveIssue) string {
	return fmt.Sprintf("Critical issue: %s deviation, %s reliability", formatDeviation(issue), issue.Reliability)
}

func priorityReason(issue types.AdaptiveIssue) string {
	return fmt.Sprintf("Priority issue: %s deviation, needs focused work", formatDeviation(issue))
}

func formatDeviation(issue types.AdaptiveIssue) string {
	if types.KindOf(issue.Metric) == types.KindAngular {
		return fmt.Sprintf("%.1f degree", math.Abs(issue.Deviation))
	}
	return fmt.Sprintf("%.1f", math.Abs(issue.Deviation))
}
