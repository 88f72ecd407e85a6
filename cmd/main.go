package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GoodFrogman7/coach-ai/internal/adapters/ingest"
	"github.com/GoodFrogman7/coach-ai/internal/adapters/repository"
	"github.com/GoodFrogman7/coach-ai/internal/app"
	"github.com/GoodFrogman7/coach-ai/internal/config"
	"github.com/GoodFrogman7/coach-ai/internal/domain/cues"
	"github.com/GoodFrogman7/coach-ai/internal/domain/segment"
	"github.com/GoodFrogman7/coach-ai/internal/domain/similarity"
	"github.com/GoodFrogman7/coach-ai/internal/domain/types"
	"github.com/GoodFrogman7/coach-ai/pkg/logger"
	"github.com/GoodFrogman7/coach-ai/pkg/metrics"
)

// HTTP server timeout constants for the optional metrics listener.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
)

// output is the JSON envelope written to stdout.
type output struct {
	Report          *app.Report             `json:"report"`
	DrillConfidence []types.DrillConfidence `json:"drill_confidence,omitempty"`
}

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level, falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	for _, advisory := range cfg.Normalize() {
		log.Warn(ctx, "config corrected", logger.String("detail", advisory))
	}

	// Persistence: SQLite when a path is configured, memory otherwise.
	var store repository.Store
	if cfg.DBPath != "" {
		sqlStore, err := repository.OpenSQLite(cfg.DBPath)
		if err != nil {
			log.Fatal(ctx, "open store failed", logger.String("db_path", cfg.DBPath), logger.Error(err))
		}
		store = sqlStore
		log.Info(ctx, "using sqlite store", logger.String("db_path", cfg.DBPath))
	} else {
		store = repository.NewMemStore()
		log.Info(ctx, "using in-memory store, results will not persist")
	}
	defer store.Close()

	// Optional metrics listener.
	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr)
	}

	svc := app.New(
		app.WithStore(store),
		app.WithLogger(log),
		app.WithSegmenter(segment.New(
			segment.WithSignals(cfg.RotationMetric, cfg.SpeedMetric),
			segment.WithSmoothingWindow(cfg.SmoothWindow),
			segment.WithDeltaPercentile(cfg.DeltaPercentile),
			segment.WithSpeedFraction(cfg.SpeedFraction),
			segment.WithContactHalfWidth(cfg.ContactHalfWidth),
		)),
		app.WithScorer(similarity.New(
			similarity.WithTolerances(cfg.Tolerances),
			similarity.WithMetricWeights(cfg.MetricWeights),
			similarity.WithPhaseWeights(cfg.PhaseWeights),
		)),
		app.WithRanker(cues.New(
			cues.WithPhaseWeights(cfg.PhaseWeights),
			cues.WithCounts(cfg.PrimaryCues, cfg.ListCues),
		)),
		app.WithProgressDeadZone(cfg.ProgressDeadZone),
	)

	practitioner, err := ingest.ReadFile(cfg.PractitionerCSV)
	if err != nil {
		log.Fatal(ctx, "read practitioner features failed", logger.Error(err))
	}
	metrics.RecordFramesIngested("practitioner", len(practitioner))
	reference, err := ingest.ReadFile(cfg.ReferenceCSV)
	if err != nil {
		log.Fatal(ctx, "read reference features failed", logger.Error(err))
	}
	metrics.RecordFramesIngested("reference", len(reference))

	report, err := svc.Analyze(ctx, app.Input{
		SessionID:          cfg.SessionID,
		Practitioner:       practitioner,
		Reference:          reference,
		PractitionerImpact: ingest.DetectImpact(practitioner),
		ReferenceImpact:    ingest.DetectImpact(reference),
	})
	if err != nil {
		log.Fatal(ctx, "analysis failed", logger.Error(err))
	}

	confidence, err := svc.DrillConfidence(ctx)
	if err != nil {
		log.Warn(ctx, "drill confidence unavailable", logger.Error(err))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output{Report: report, DrillConfidence: confidence}); err != nil {
		log.Fatal(ctx, "write report failed", logger.Error(err))
	}
}

// serveMetrics exposes the custom registry until the context is
// cancelled.
func serveMetrics(ctx context.Context, addr string) {
	log := logger.Named("metrics")
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info(ctx, "serving metrics", logger.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error(ctx, "metrics server failed", logger.Error(err))
	}
}
