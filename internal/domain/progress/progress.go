// Package progress compares the current session's scores against the most
// recent prior session and classifies each delta. A missing or unreadable
// prior session is the expected first-session state, never an error.
package progress

import (
	"context"
	"fmt"

	"github.com/GoodFrogman7/coach-ai/internal/domain/types"
)

// Score keys for the comparable scalars. Phase scores use PhaseKey.
const (
	KeyOverallScore       = "overall_score"
	KeyPhaseWeightedScore = "phase_weighted_score"
)

// PhaseKey returns the delta key for one phase's score.
func PhaseKey(phase string) string {
	return fmt.Sprintf("phase:%s", phase)
}

// defaultDeadZone is the symmetric threshold in score points below which a
// delta counts as stable.
const defaultDeadZone = 3.0

// Source locates the persisted summary of the most recent session before
// the given one. ok is false when no prior session exists.
type Source interface {
	LatestSummaryBefore(ctx context.Context, sessionID string) (summary types.SessionSummary, ok bool, err error)
}

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithDeadZone sets the stable-band threshold in score points.
func WithDeadZone(d float64) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.deadZone = d
		}
	}
}

// Tracker derives progress deltas for a session.
type Tracker struct {
	src      Source
	deadZone float64
}

// New creates a Tracker reading prior sessions from src.
func New(src Source, opts ...Option) *Tracker {
	t := &Tracker{src: src, deadZone: defaultDeadZone}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Deltas compares the current summary against the latest prior session.
// Returns nil on the first session or when the prior summary cannot be
// read; deltas are recomputed fresh every run and never persisted.
func (t *Tracker) Deltas(ctx context.Context, current types.SessionSummary) []types.ProgressDelta {
	previous, ok, err := t.src.LatestSummaryBefore(ctx, current.SessionID)
	if err != nil || !ok {
		return nil
	}
	return t.Compare(current, previous)
}

// Compare computes the delta for every scalar present in both summaries:
// the overall score, the phase-weighted score, and each phase score.
func (t *Tracker) Compare(current, previous types.SessionSummary) []types.ProgressDelta {
	out := []types.ProgressDelta{
		t.delta(KeyOverallScore, current.OverallScore, previous.OverallScore),
		t.delta(KeyPhaseWeightedScore, current.PhaseWeightedScore, previous.PhaseWeightedScore),
	}
	for phase, cur := range current.PhaseScores {
		prev, ok := previous.PhaseScores[phase]
		if !ok {
			continue
		}
		out = append(out, t.delta(PhaseKey(phase), cur, prev))
	}
	return out
}

// Classify maps a score delta onto a status. Higher scores are better, so
// a delta at or beyond +deadZone is an improvement.
func (t *Tracker) Classify(delta float64) types.ProgressStatus {
	switch {
	case delta >= t.deadZone:
		return types.ProgressImproved
	case delta <= -t.deadZone:
		return types.ProgressRegressed
	default:
		return types.ProgressStable
	}
}

func (t *Tracker) delta(key string, current, previous float64) types.ProgressDelta {
	d := current - previous
	return types.ProgressDelta{
		MetricKey:     key,
		CurrentValue:  current,
		PreviousValue: previous,
		Delta:         d,
		Status:        t.Classify(d),
	}
}

// ByKey indexes deltas by metric key for downstream lookups.
func ByKey(deltas []types.ProgressDelta) map[string]types.ProgressDelta {
	out := make(map[string]types.ProgressDelta, len(deltas))
	for _, d := range deltas {
		out[d.MetricKey] = d
	}
	return out
}
