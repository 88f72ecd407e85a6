package metrics

import "time"

// Package-level helpers forwarding to the global manager.

// RecordSessionAnalyzed increments the analyzed-sessions counter.
func RecordSessionAnalyzed() { globalManager.RecordSessionAnalyzed() }

// RecordFramesIngested adds ingested frames for one subject.
func RecordFramesIngested(subject string, n int) { globalManager.RecordFramesIngested(subject, n) }

// RecordStageDuration observes one pipeline stage's elapsed time.
func RecordStageDuration(stage string, d time.Duration) { globalManager.RecordStageDuration(stage, d) }

// RecordFallbackSegmentation increments the fallback counter.
func RecordFallbackSegmentation() { globalManager.RecordFallbackSegmentation() }

// RecordSuppressedIssues adds to the suppressed-issues counter.
func RecordSuppressedIssues(n int) { globalManager.RecordSuppressedIssues(n) }

// RecordComponentError increments the error counter for a component.
func RecordComponentError(component string) { globalManager.RecordComponentError(component) }

// RecordLedgerAppends adds appended outcome records.
func RecordLedgerAppends(n int) { globalManager.RecordLedgerAppends(n) }

// RecordSessionSaved increments the persisted-sessions counter.
func RecordSessionSaved() { globalManager.RecordSessionSaved() }

// SetOverallScore publishes the latest overall score for a model family.
func SetOverallScore(model string, score float64) { globalManager.SetOverallScore(model, score) }
