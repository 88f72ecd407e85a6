// Package app wires the analysis pipeline together: segmentation,
// aggregation, similarity, reliability, cue ranking, progress, adaptive
// prioritization, drill recommendation, and outcome tracking, in that
// order. Only malformed input aborts a run; everything else degrades
// per component.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/GoodFrogman7/coach-ai/internal/adapters/repository"
	"github.com/GoodFrogman7/coach-ai/internal/domain/adaptive"
	"github.com/GoodFrogman7/coach-ai/internal/domain/aggregate"
	"github.com/GoodFrogman7/coach-ai/internal/domain/cues"
	"github.com/GoodFrogman7/coach-ai/internal/domain/drills"
	"github.com/GoodFrogman7/coach-ai/internal/domain/outcomes"
	"github.com/GoodFrogman7/coach-ai/internal/domain/progress"
	"github.com/GoodFrogman7/coach-ai/internal/domain/reliability"
	"github.com/GoodFrogman7/coach-ai/internal/domain/segment"
	"github.com/GoodFrogman7/coach-ai/internal/domain/similarity"
	"github.com/GoodFrogman7/coach-ai/internal/domain/types"
	"github.com/GoodFrogman7/coach-ai/pkg/logger"
	"github.com/GoodFrogman7/coach-ai/pkg/metrics"
)

// Subject labels used in logs and metrics.
const (
	subjectPractitioner = "practitioner"
	subjectReference    = "reference"
)

// defaultTrackedMetrics is the measurement set carried through every
// stage.
var defaultTrackedMetrics = []string{
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

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the persistence backend.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSegmenter replaces the default segmenter.
func WithSegmenter(seg *segment.Segmenter) Option {
	return func(s *Service) {
		if seg != nil {
			s.segmenter = seg
		}
	}
}

// WithScorer replaces the default similarity scorer.
func WithScorer(sc *similarity.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithAssessor replaces the default reliability assessor.
func WithAssessor(a *reliability.Assessor) Option {
	return func(s *Service) {
		if a != nil {
			s.assessor = a
		}
	}
}

// WithRanker replaces the default cue ranker.
func WithRanker(r *cues.Ranker) Option {
	return func(s *Service) {
		if r != nil {
			s.ranker = r
		}
	}
}

// WithEngine replaces the default adaptive engine.
func WithEngine(e *adaptive.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithRecommender replaces the default drill recommender.
func WithRecommender(r *drills.Recommender) Option {
	return func(s *Service) {
		if r != nil {
			s.recommender = r
		}
	}
}

// WithProgressDeadZone sets the stable band for progress classification.
func WithProgressDeadZone(d float64) Option {
	return func(s *Service) {
		if d > 0 {
			s.progressDeadZone = d
		}
	}
}

// WithTrackedMetrics replaces the measurement set carried through the
// pipeline.
func WithTrackedMetrics(m []string) Option {
	return func(s *Service) {
		if len(m) > 0 {
			s.trackedMetrics = m
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service runs the full analysis pipeline for one session at a time.
type Service struct {
	store repository.Store

	segmenter   *segment.Segmenter
	scorer      *similarity.Scorer
	assessor    *reliability.Assessor
	ranker      *cues.Ranker
	engine      *adaptive.Engine
	recommender *drills.Recommender

	progressDeadZone float64
	trackedMetrics   []string
	now              func() time.Time
	logger           logger.Logger
}

// New constructs a Service with default components. A store must be
// provided before Analyze is called.
func New(opts ...Option) *Service {
	s := &Service{
		segmenter:        segment.New(),
		scorer:           similarity.New(),
		assessor:         reliability.New(),
		ranker:           cues.New(),
		engine:           adaptive.New(),
		recommender:      drills.New(),
		progressDeadZone: 3.0,
		trackedMetrics:   defaultTrackedMetrics,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

// Input is one analysis request: both subjects' frame series and their
// externally detected impact frames. SessionID is generated when empty.
type Input struct {
	SessionID          string
	Practitioner       []types.FrameRecord
	Reference          []types.FrameRecord
	PractitionerImpact int
	ReferenceImpact    int
}

// SubjectResult carries one subject's segmentation and aggregation.
type SubjectResult struct {
	Boundaries []types.PhaseBoundary `json:"boundaries"`
	Fallback   bool                  `json:"fallback"`
	Metrics    []types.PhaseMetrics  `json:"metrics"`
}

// Report is the full session output.
type Report struct {
	SessionID   string    `json:"session_id"`
	GeneratedAt time.Time `json:"generated_at"`

	Practitioner SubjectResult `json:"practitioner"`
	Reference    SubjectResult `json:"reference"`

	Scores         similarity.Scores         `json:"scores"`
	Summary        types.SessionSummary      `json:"summary"`
	Reliability    []types.ReliabilityRecord `json:"reliability"`
	PhaseStability map[string]float64        `json:"phase_stability"`

	Cues     cues.Ranking          `json:"cues"`
	Progress []types.ProgressDelta `json:"progress"`

	Issues    []types.AdaptiveIssue `json:"issues"`
	Focus     adaptive.Focus        `json:"focus"`
	TopIssues []types.AdaptiveIssue `json:"top_issues"`

	Recommendations  types.RecommendationSet `json:"recommendations"`
	OutcomesRecorded int                     `json:"outcomes_recorded"`
}

// Analyze runs the full pipeline for one session and persists its record.
// The only fatal failures are malformed input and persistence errors.
func (s *Service) Analyze(ctx context.Context, in Input) (*Report, error) {
	if s.store == nil {
		return nil, ErrStoreRequired
	}
	if len(in.Practitioner) == 0 || len(in.Reference) == 0 {
		return nil, ErrMissingFrames
	}
	sessionID := in.SessionID
	if sessionID == "" {
		sessionID = fmt.Sprintf("%s-%s", s.now().UTC().Format("20060102T150405"), uuid.NewString()[:8])
	}
	s.logger.Info(ctx, "starting session analysis",
		logger.String("session", sessionID),
		logger.Int("practitioner_frames", len(in.Practitioner)),
		logger.Int("reference_frames", len(in.Reference)),
	)

	report := &Report{SessionID: sessionID, GeneratedAt: s.now().UTC()}

	// Segmentation.
	var err error
	report.Practitioner, err = s.segmentSubject(ctx, subjectPractitioner, in.Practitioner, in.PractitionerImpact)
	if err != nil {
		return nil, err
	}
	report.Reference, err = s.segmentSubject(ctx, subjectReference, in.Reference, in.ReferenceImpact)
	if err != nil {
		return nil, err
	}

	// Similarity under both models.
	start := s.now()
	report.Scores = s.scorer.Compare(report.Practitioner.Metrics, report.Reference.Metrics)
	metrics.RecordStageDuration("similarity", s.now().Sub(start))
	metrics.SetOverallScore("rule", report.Scores.RuleOverall)
	metrics.SetOverallScore("pattern", report.Scores.PatternOverall)
	report.Summary = s.summarize(sessionID, report.Scores)

	// Reliability over the raw practitioner series.
	start = s.now()
	report.Reliability = s.assessor.Assess(in.Practitioner, s.trackedMetrics)
	report.PhaseStability = s.assessor.PhaseStability(in.Practitioner, report.Practitioner.Boundaries, s.trackedMetrics)
	metrics.RecordStageDuration("reliability", s.now().Sub(start))

	// Cues, progress, adaptive prioritization.
	report.Cues = s.ranker.Rank(report.Practitioner.Metrics, report.Reference.Metrics)

	prior, hasPrior := s.loadPrior(ctx, sessionID)
	if hasPrior {
		tracker := progress.New(priorSource{prior.Summary}, progress.WithDeadZone(s.progressDeadZone))
		report.Progress = tracker.Deltas(ctx, report.Summary)
	}

	report.Issues = s.engine.Evaluate(s.issueContexts(report))
	report.Focus = adaptive.Group(report.Issues)
	report.TopIssues = s.engine.Top(report.Issues)
	metrics.RecordSuppressedIssues(len(report.Focus.Suppressed))

	// Drills and outcome tracking.
	report.Recommendations = s.recommender.Recommend(report.Focus)
	if hasPrior {
		report.OutcomesRecorded = s.recordOutcomes(ctx, prior, report)
	}

	// Persist this session for the next one.
	rec := repository.SessionRecord{
		Summary:         report.Summary,
		PhaseMetrics:    report.Practitioner.Metrics,
		Recommendations: report.Recommendations,
		CreatedAt:       report.GeneratedAt,
	}
	if err := s.store.SaveSession(ctx, rec); err != nil {
		metrics.RecordComponentError("store")
		return nil, fmt.Errorf("persist session %q: %w", sessionID, err)
	}
	metrics.RecordSessionSaved()
	metrics.RecordSessionAnalyzed()

	s.logger.Info(ctx, "session analysis complete",
		logger.String("session", sessionID),
		logger.Float64("rule_overall", report.Scores.RuleOverall),
		logger.Float64("pattern_overall", report.Scores.PatternOverall),
		logger.Int("issues", len(report.Issues)),
		logger.Int("outcomes_recorded", report.OutcomesRecorded),
	)
	return report, nil
}

// DrillConfidence exposes the historical confidence table on demand.
func (s *Service) DrillConfidence(ctx context.Context) ([]types.DrillConfidence, error) {
	if s.store == nil {
		return nil, ErrStoreRequired
	}
	return outcomes.New(s.store).Table(ctx)
}

func (s *Service) segmentSubject(ctx context.Context, subject string, frames []types.FrameRecord, impact int) (SubjectResult, error) {
	start := s.now()
	res, err := s.segmenter.Segment(subject, frames, impact)
	metrics.RecordStageDuration("segment", s.now().Sub(start))
	if err != nil {
		metrics.RecordComponentError("segment")
		return SubjectResult{}, fmt.Errorf("segment %s: %w", subject, err)
	}
	if res.Fallback {
		metrics.RecordFallbackSegmentation()
		s.logger.Warn(ctx, "segmentation used proportional fallback",
			logger.String("subject", subject),
		)
	}
	return SubjectResult{
		Boundaries: res.Boundaries,
		Fallback:   res.Fallback,
		Metrics:    aggregate.PhaseMeans(frames, res.Boundaries, s.trackedMetrics),
	}, nil
}

// summarize derives the persisted summary from the rule-model scores: the
// overall score is the unweighted phase mean, the phase-weighted score the
// weighted overall.
func (s *Service) summarize(sessionID string, scores similarity.Scores) types.SessionSummary {
	phaseScores := make(map[string]float64, len(scores.Phases))
	sum := 0.0
	for _, ps := range scores.Phases {
		phaseScores[ps.Phase] = ps.Rule
		sum += ps.Rule
	}
	overall := 0.0
	if len(scores.Phases) > 0 {
		overall = sum / float64(len(scores.Phases))
	}
	return types.SessionSummary{
		SessionID:          sessionID,
		OverallScore:       overall,
		PhaseWeightedScore: scores.RuleOverall,
		PhaseScores:        phaseScores,
	}
}

// issueContexts assembles the adaptive engine's inputs. The per-issue
// progress delta is the drop in the issue's phase score, oriented so that
// positive means worsening.
func (s *Service) issueContexts(report *Report) []adaptive.IssueContext {
	levels := make(map[string]types.ReliabilityLevel, len(report.Reliability))
	for _, rec := range report.Reliability {
		levels[rec.Metric] = rec.Level
	}
	deltas := progress.ByKey(report.Progress)

	out := make([]adaptive.IssueContext, len(report.Cues.All))
	for i, cue := range report.Cues.All {
		level, ok := levels[cue.Metric]
		if !ok {
			level = types.ReliabilityMedium
		}
		ic := adaptive.IssueContext{
			Cue:            cue,
			Reliability:    level,
			PhaseStability: report.PhaseStability[cue.Phase],
		}
		if pd, ok := deltas[progress.PhaseKey(cue.Phase)]; ok {
			worsening := -pd.Delta
			ic.ProgressDelta = &worsening
		}
		out[i] = ic
	}
	return out
}

func (s *Service) loadPrior(ctx context.Context, sessionID string) (repository.SessionRecord, bool) {
	prior, err := s.store.LatestBefore(ctx, sessionID)
	if errors.Is(err, repository.ErrNoSessions) {
		return repository.SessionRecord{}, false
	}
	if err != nil {
		metrics.RecordComponentError("store")
		s.logger.Warn(ctx, "prior session unreadable, treating as first session",
			logger.String("session", sessionID),
			logger.Error(err),
		)
		return repository.SessionRecord{}, false
	}
	return prior, true
}

func (s *Service) recordOutcomes(ctx context.Context, prior repository.SessionRecord, report *Report) int {
	levels := make(map[string]types.ReliabilityLevel, len(report.Reliability))
	for _, rec := range report.Reliability {
		levels[rec.Metric] = rec.Level
	}
	records := drills.BuildOutcomes(
		prior.Summary.SessionID, report.SessionID,
		prior.Recommendations,
		aggregate.ByPhase(prior.PhaseMetrics),
		aggregate.ByPhase(report.Practitioner.Metrics),
		levels,
		report.GeneratedAt,
	)
	if len(records) == 0 {
		return 0
	}
	if err := s.store.Append(ctx, records); err != nil {
		metrics.RecordComponentError("ledger")
		s.logger.Warn(ctx, "could not append drill outcomes",
			logger.String("session", report.SessionID),
			logger.Error(err),
		)
		return 0
	}
	metrics.RecordLedgerAppends(len(records))
	return len(records)
}

// priorSource adapts an already loaded prior summary to the progress
// tracker's source interface.
type priorSource struct {
	summary types.SessionSummary
}

func (p priorSource) LatestSummaryBefore(context.Context, string) (types.SessionSummary, bool, error) {
	return p.summary, true, nil
}
