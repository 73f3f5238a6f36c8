package guardian

import (
	"fmt"

	"github.com/outcrop-ai/pipeline-governor/internal/run"
)

// #region guardian

// Guardian is a stateless per-result veto gate enforcing quality and
// latency floors. It is orthogonal to the patch feedback loop and may
// run inline on the generation path: pure, deterministic, no locks.
// The duration check is a post-hoc threshold comparison, not an active
// cancellation mechanism; callers cancel long-running generation
// themselves.
type Guardian struct {
	config Config
}

// NewGuardian creates a guardian with the given floors.
func NewGuardian(config Config) *Guardian {
	return &Guardian{config: config}
}

// Evaluate checks a result against the floors. Any single breach vetoes;
// both breaches record both issue strings, quality first. All other
// fields of the input pass through unchanged.
func (g *Guardian) Evaluate(res run.Result) Result {
	var issues []string

	if res.QualityScore < g.config.MinQualityScore {
		issues = append(issues, fmt.Sprintf("qualityScore %g < %g",
			res.QualityScore, g.config.MinQualityScore))
	}
	if res.DurationMs > g.config.MaxDurationMs {
		issues = append(issues, fmt.Sprintf("duration %dms > %dms",
			res.DurationMs, g.config.MaxDurationMs))
	}

	out := Result{
		Result: res,
		OK:     len(issues) == 0,
		Vetoed: len(issues) > 0,
		Issues: issues,
	}

	if out.Vetoed {
		out.Reasoning += " | Guardian vetoed result."
	} else {
		out.Reasoning += " | Guardian approved result."
	}

	return out
}

// #endregion guardian
