// Package config defines process configuration and loading.
//
// Conventions:
// - Defaults first, then optional YAML file, then environment overrides.
// - External errors are wrapped with this package's sentinels.
package config

import (
	"fmt"
	"math"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MetricsAddr exposes /metrics when non-empty, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`

	// DBPath locates the SQLite database. Empty selects the in-memory
	// store (no persistence across runs).
	DBPath string `koanf:"db_path"`

	// SessionID identifies this analysis run. Generated when empty.
	SessionID string `koanf:"session_id"`

	// PractitionerCSV and ReferenceCSV are the two feature tables to
	// compare.
	PractitionerCSV string `koanf:"practitioner_csv"`
	ReferenceCSV    string `koanf:"reference_csv"`

	// Segmentation parameters.
	RotationMetric   string  `koanf:"rotation_metric"`
	SpeedMetric      string  `koanf:"speed_metric"`
	SmoothWindow     int     `koanf:"smooth_window"`
	DeltaPercentile  float64 `koanf:"delta_percentile"`
	SpeedFraction    float64 `koanf:"speed_fraction"`
	ContactHalfWidth int     `koanf:"contact_half_width"`

	// PhaseWeights shape both similarity models and cue ranking. They
	// should sum to 1.0; off-by-more-than-1% sums are renormalized with an
	// advisory.
	PhaseWeights map[string]float64 `koanf:"phase_weights"`

	// Tolerances and MetricWeights drive the rule similarity model.
	Tolerances    map[string]float64 `koanf:"tolerances"`
	MetricWeights map[string]float64 `koanf:"metric_weights"`

	// ProgressDeadZone is the stable band in score points.
	ProgressDeadZone float64 `koanf:"progress_dead_zone"`

	// Cue view sizes.
	PrimaryCues int `koanf:"primary_cues"`
	ListCues    int `koanf:"list_cues"`
}

// New creates a Config with defaults for the reference motion.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		RotationMetric:   "hip_rotation",
		SpeedMetric:      "combined_wrist_speed",
		SmoothWindow:     5,
		DeltaPercentile:  0.60,
		SpeedFraction:    0.20,
		ContactHalfWidth: 5,
		PhaseWeights: map[string]float64{
			"preparation":    0.15,
			"load":           0.25,
			"contact":        0.35,
			"follow_through": 0.25,
		},
		ProgressDeadZone: 3.0,
		PrimaryCues:      2,
		ListCues:         5,
	}
}

// Normalize validates derived values in place and returns advisory
// messages for anything it corrected. Corrections are never fatal.
func (c *Config) Normalize() []string {
	var advisories []string

	if len(c.PhaseWeights) > 0 {
		sum := 0.0
		for _, w := range c.PhaseWeights {
			sum += w
		}
		if sum > 0 && math.Abs(sum-1.0) > 0.01 {
			for phase, w := range c.PhaseWeights {
				c.PhaseWeights[phase] = w / sum
			}
			advisories = append(advisories, fmt.Sprintf("phase weights summed to %.3f, renormalized to 1.0", sum))
		}
	}
	if c.SmoothWindow < 1 {
		c.SmoothWindow = 5
		advisories = append(advisories, "smooth_window below 1, reset to default 5")
	}
	if c.DeltaPercentile <= 0 || c.DeltaPercentile >= 1 {
		c.DeltaPercentile = 0.60
		advisories = append(advisories, "delta_percentile outside (0,1), reset to default 0.60")
	}
	if c.SpeedFraction <= 0 || c.SpeedFraction >= 1 {
		c.SpeedFraction = 0.20
		advisories = append(advisories, "speed_fraction outside (0,1), reset to default 0.20")
	}
	if c.ProgressDeadZone <= 0 {
		c.ProgressDeadZone = 3.0
		advisories = append(advisories, "progress_dead_zone not positive, reset to default 3.0")
	}
	return advisories
}
