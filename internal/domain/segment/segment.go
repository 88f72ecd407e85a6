// Package segment converts a subject's per-frame feature series into named,
// ordered, non-overlapping phase boundaries covering the full frame range.
//
// Two derived signals drive the detection: a rotation signal locates the
// Preparation->Load transition, a speed signal locates Load->Contact, and an
// externally detected impact frame anchors a fixed-width Contact window.
// When a signal is unusable or a detected boundary would produce a
// degenerate phase, the segmenter falls back to a proportional split rather
// than failing.
package segment

import (
	"fmt"
	"math"
	"sort"

	"github.com/GoodFrogman7/coach-ai/internal/domain/types"
)

// Default segmentation parameters, tuned for the reference motion.
const (
	defaultRotationMetric   = "hip_rotation"
	defaultSpeedMetric      = "combined_wrist_speed"
	defaultSmoothWindow     = 5
	defaultDeltaPercentile  = 0.60
	defaultSpeedFraction    = 0.20
	defaultContactHalfWidth = 5
	defaultPrepSearchCap    = 0.70
)

// Proportional fallback split points, as fractions of the frame span.
const (
	fallbackPrepEnd    = 0.30
	fallbackLoadEnd    = 0.60
	fallbackContactEnd = 0.75
)

// Default phase names in motion order.
var defaultPhases = []string{"preparation", "load", "contact", "follow_through"}

// Option applies a configuration option to the Segmenter.
type Option func(*Segmenter)

// WithSignals sets the rotation and speed metric names read from frames.
func WithSignals(rotation, speed string) Option {
	return func(s *Segmenter) {
		if rotation != "" {
			s.rotationMetric = rotation
		}
		if speed != "" {
			s.speedMetric = speed
		}
	}
}

// WithSmoothingWindow sets the moving-average window width.
func WithSmoothingWindow(w int) Option {
	return func(s *Segmenter) {
		if w > 0 {
			s.smoothWindow = w
		}
	}
}

// WithDeltaPercentile sets the percentile of the rotation-delta
// distribution used as the Preparation->Load threshold.
func WithDeltaPercentile(p float64) Option {
	return func(s *Segmenter) {
		if p > 0 && p < 1 {
			s.deltaPercentile = p
		}
	}
}

// WithSpeedFraction sets the fraction of peak speed marking Load->Contact.
func WithSpeedFraction(f float64) Option {
	return func(s *Segmenter) {
		if f > 0 && f < 1 {
			s.speedFraction = f
		}
	}
}

// WithContactHalfWidth sets the half-width of the Contact window in frames.
func WithContactHalfWidth(w int) Option {
	return func(s *Segmenter) {
		if w > 0 {
			s.contactHalfWidth = w
		}
	}
}

// WithPhaseNames overrides the four phase names, in motion order.
func WithPhaseNames(names []string) Option {
	return func(s *Segmenter) {
		if len(names) == len(defaultPhases) {
			s.phases = names
		}
	}
}

// Segmenter detects phase boundaries for one subject.
type Segmenter struct {
	rotationMetric   string
	speedMetric      string
	smoothWindow     int
	deltaPercentile  float64
	speedFraction    float64
	contactHalfWidth int
	prepSearchCap    float64
	phases           []string
}

// New creates a Segmenter with defaults for the reference motion.
func New(opts ...Option) *Segmenter {
	s := &Segmenter{
		rotationMetric:   defaultRotationMetric,
		speedMetric:      defaultSpeedMetric,
		smoothWindow:     defaultSmoothWindow,
		deltaPercentile:  defaultDeltaPercentile,
		speedFraction:    defaultSpeedFraction,
		contactHalfWidth: defaultContactHalfWidth,
		prepSearchCap:    defaultPrepSearchCap,
		phases:           defaultPhases,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result carries the detected boundaries and whether the proportional
// fallback was used.
type Result struct {
	Boundaries []types.PhaseBoundary
	Fallback   bool
}

// Segment computes phase boundaries for the subject's frame series.
// impactFrame is the externally detected contact frame index. The only
// failure mode is a caller contract violation (empty/too-short series,
// negative or non-monotonic indices, impact outside the range); missing
// signal data degrades to the proportional fallback.
func (s *Segmenter) Segment(subject string, frames []types.FrameRecord, impactFrame int) (Result, error) {
	if err := validate(subject, frames, impactFrame, len(s.phases)); err != nil {
		return Result{}, err
	}

	n := len(frames)
	impactPos := positionOf(frames, impactFrame)

	rotation := smooth(signal(frames, s.rotationMetric), s.smoothWindow)
	speed := smooth(signal(frames, s.speedMetric), s.smoothWindow)

	if allNaN(rotation) || allNaN(speed) {
		return Result{Boundaries: s.proportional(frames), Fallback: true}, nil
	}

	prepEnd := s.detectPrepEnd(rotation, impactPos, n)
	loadEnd := s.detectLoadEnd(speed, prepEnd, impactPos)

	// Contact is a fixed window centered on impact, pushed later when the
	// detected acceleration point overlaps it. Load always ends where
	// Contact begins, keeping the phases contiguous.
	contactStart := impactPos - s.contactHalfWidth
	if loadEnd+1 > contactStart {
		contactStart = loadEnd + 1
	}
	contactEnd := impactPos + s.contactHalfWidth
	if contactEnd > n-1 {
		contactEnd = n - 1
	}

	// Guard rails: any inverted ordering or zero-length phase falls back to
	// the proportional split.
	if prepEnd < 0 || prepEnd > contactStart-2 || contactEnd < contactStart || contactEnd > n-2 {
		return Result{Boundaries: s.proportional(frames), Fallback: true}, nil
	}

	bounds := []types.PhaseBoundary{
		{Phase: s.phases[0], StartFrame: frames[0].Index, EndFrame: frames[prepEnd].Index},
		{Phase: s.phases[1], StartFrame: frames[prepEnd+1].Index, EndFrame: frames[contactStart-1].Index},
		{Phase: s.phases[2], StartFrame: frames[contactStart].Index, EndFrame: frames[contactEnd].Index},
		{Phase: s.phases[3], StartFrame: frames[contactEnd+1].Index, EndFrame: frames[n-1].Index},
	}
	return Result{Boundaries: bounds}, nil
}

// detectPrepEnd finds the first position where the rotation signal's
// frame-to-frame change exceeds the configured percentile of its own
// distribution.
func (s *Segmenter) detectPrepEnd(rotation []float64, impactPos, n int) int {
	deltas := make([]float64, 0, len(rotation)-1)
	for i := 1; i < len(rotation); i++ {
		d := math.Abs(rotation[i] - rotation[i-1])
		if !math.IsNaN(d) {
			deltas = append(deltas, d)
		}
	}
	if len(deltas) == 0 {
		return fallbackPos(impactPos, fallbackPrepEnd)
	}
	threshold := percentile(deltas, s.deltaPercentile)

	limit := impactPos
	if c := int(float64(n) * s.prepSearchCap); c < limit {
		limit = c
	}
	for i := 1; i < limit; i++ {
		if math.Abs(rotation[i]-rotation[i-1]) > threshold {
			return i
		}
	}
	return fallbackPos(impactPos, fallbackPrepEnd)
}

// detectLoadEnd finds the first position after prepEnd where the speed
// signal exceeds the configured fraction of its session maximum.
func (s *Segmenter) detectLoadEnd(speed []float64, prepEnd, impactPos int) int {
	maxSpeed := math.Inf(-1)
	for _, v := range speed {
		if !math.IsNaN(v) && v > maxSpeed {
			maxSpeed = v
		}
	}
	if math.IsInf(maxSpeed, -1) {
		return fallbackPos(impactPos, fallbackLoadEnd)
	}
	threshold := maxSpeed * s.speedFraction
	for i := prepEnd + 1; i < impactPos; i++ {
		if !math.IsNaN(speed[i]) && speed[i] > threshold {
			return i
		}
	}
	return fallbackPos(impactPos, fallbackLoadEnd)
}

// proportional returns the documented default split of the frame span.
func (s *Segmenter) proportional(frames []types.FrameRecord) []types.PhaseBoundary {
	n := len(frames)
	last := n - 1
	p1 := clampPos(int(float64(last)*fallbackPrepEnd), 0, last-3)
	p2 := clampPos(int(float64(last)*fallbackLoadEnd), p1+1, last-2)
	p3 := clampPos(int(float64(last)*fallbackContactEnd), p2+1, last-1)
	return []types.PhaseBoundary{
		{Phase: s.phases[0], StartFrame: frames[0].Index, EndFrame: frames[p1].Index},
		{Phase: s.phases[1], StartFrame: frames[p1+1].Index, EndFrame: frames[p2].Index},
		{Phase: s.phases[2], StartFrame: frames[p2+1].Index, EndFrame: frames[p3].Index},
		{Phase: s.phases[3], StartFrame: frames[p3+1].Index, EndFrame: frames[last].Index},
	}
}

func validate(subject string, frames []types.FrameRecord, impactFrame, phaseCount int) error {
	if len(frames) == 0 {
		return fmt.Errorf("subject %q: %w", subject, ErrEmptySeries)
	}
	if len(frames) < phaseCount {
		return fmt.Errorf("subject %q: %d frames: %w", subject, len(frames), ErrTooFewFrames)
	}
	prev := -1
	for _, f := range frames {
		if f.Index < 0 {
			return fmt.Errorf("subject %q: frame %d: %w", subject, f.Index, ErrNegativeIndex)
		}
		if f.Index <= prev {
			return fmt.Errorf("subject %q: frame %d after %d: %w", subject, f.Index, prev, ErrNonMonotonic)
		}
		prev = f.Index
	}
	if impactFrame < frames[0].Index || impactFrame > frames[len(frames)-1].Index {
		return fmt.Errorf("subject %q: impact frame %d: %w", subject, impactFrame, ErrImpactOutOfRange)
	}
	return nil
}

// positionOf returns the slice position of the first frame at or after the
// given frame index.
func positionOf(frames []types.FrameRecord, frameIndex int) int {
	return sort.Search(len(frames), func(i int) bool {
		return frames[i].Index >= frameIndex
	})
}

// signal extracts one metric as a dense series aligned with frames.
func signal(frames []types.FrameRecord, metric string) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = f.Value(metric)
	}
	return out
}

// smooth applies a centered moving average, skipping NaN samples, then
// fills leading/trailing gaps with the nearest computed value.
func smooth(series []float64, window int) []float64 {
	n := len(series)
	out := make([]float64, n)
	half := window / 2
	for i := range series {
		sum, count := 0.0, 0
		for j := i - half; j <= i+half; j++ {
			if j < 0 || j >= n || math.IsNaN(series[j]) {
				continue
			}
			sum += series[j]
			count++
		}
		if count == 0 {
			out[i] = math.NaN()
		} else {
			out[i] = sum / float64(count)
		}
	}
	fill(out)
	return out
}

// fill replaces NaN runs with the nearest non-NaN neighbor (backward pass
// then forward pass).
func fill(series []float64) {
	for i := len(series) - 2; i >= 0; i-- {
		if math.IsNaN(series[i]) && !math.IsNaN(series[i+1]) {
			series[i] = series[i+1]
		}
	}
	for i := 1; i < len(series); i++ {
		if math.IsNaN(series[i]) && !math.IsNaN(series[i-1]) {
			series[i] = series[i-1]
		}
	}
}

func allNaN(series []float64) bool {
	for _, v := range series {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}

// percentile returns the p-quantile of values using nearest-rank on the
// sorted copy.
func percentile(values []float64, p float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}

func fallbackPos(impactPos int, fraction float64) int {
	p := int(float64(impactPos) * fraction)
	if p < 1 {
		p = 1
	}
	return p
}

func clampPos(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
