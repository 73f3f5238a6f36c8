package run

import "time"

// #region issue
// Issue is a single problem reported against a run by the external pipeline.
type Issue struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// #endregion issue

// #region run-record
// Record is one logged execution's outcome, metrics, and issues.
// Records are immutable once appended to the run log; they are never
// mutated or deleted.
type Record struct {
	Timestamp  time.Time `json:"ts"`
	Pass       bool      `json:"pass"`
	Warn       bool      `json:"warn"`
	Cost       float64   `json:"cost"`
	LatencyMs  int64     `json:"latency_ms"`
	AuditScore *float64  `json:"audit_score,omitempty"` // 0-10 audit quality, unset if not audited
	P95        *float64  `json:"p95,omitempty"`         // p95 latency in seconds, unset if unknown
	Issues     []Issue   `json:"issues,omitempty"`
}

// #endregion run-record

// #region run-result
// Result is a single generated output awaiting guardian evaluation.
type Result struct {
	ID           string  `json:"id"`
	Content      string  `json:"content"`
	QualityScore float64 `json:"quality_score"` // 0-10 scale
	DurationMs   int64   `json:"duration_ms"`
	Reasoning    string  `json:"reasoning"` // accumulated reasoning trail
}

// #endregion run-result
