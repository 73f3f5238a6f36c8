package guardian

import "github.com/outcrop-ai/pipeline-governor/internal/run"

// #region guardian-config

// Config holds the hard floors the guardian enforces per result.
type Config struct {
	MinQualityScore float64 // 0-10 scale
	MaxDurationMs   int64
}

// DefaultConfig returns the shipped floors.
func DefaultConfig() Config {
	return Config{
		MinQualityScore: 5.0,
		MaxDurationMs:   30000,
	}
}

// #endregion guardian-config

// #region guardian-result

// Result is a run result annotated with the guardian's verdict.
// Computed fresh per evaluation, never cached.
type Result struct {
	run.Result
	OK     bool     `json:"ok"`
	Vetoed bool     `json:"vetoed"`
	Issues []string `json:"issues,omitempty"`
}

// #endregion guardian-result
