package patch

import (
	"encoding/json"

	"github.com/outcrop-ai/pipeline-governor/internal/run"
)

// #region scorer

// Scorer converts a run record plus a candidate card into a bounded
// confidence score. It is an additive heuristic, not a learned model:
// deterministic and side-effect-free for reproducibility.
type Scorer struct {
	config ScoreConfig
}

// NewScorer creates a scorer with the given weights.
func NewScorer(config ScoreConfig) *Scorer {
	return &Scorer{config: config}
}

// Score returns a confidence in [0,1] that the card's deltas should be
// applied in response to this run. A card scoped by selectors that the
// run does not satisfy scores exactly 0 regardless of other signals:
// out-of-context runs can never justify applying it.
func (s *Scorer) Score(rec run.Record, card Card) float64 {
	if len(card.Selectors) > 0 && !Matches(rec, card.Selectors) {
		return 0
	}

	score := s.config.NeutralPrior

	// Quality already excellent: discourage change.
	if rec.AuditScore != nil && *rec.AuditScore >= s.config.ExcellentAudit {
		score -= s.config.AuditPenalty
	}

	// Latency already acceptable: discourage change.
	if rec.P95 != nil && *rec.P95 <= s.config.AcceptableP95 {
		score -= s.config.LatencyPenalty
	}

	// Issues present: encourage a corrective patch. Non-trivial means
	// the serialized issue list is longer than an empty collection.
	if rec.Issues != nil {
		if b, err := json.Marshal(rec.Issues); err == nil && len(b) > 2 {
			score += s.config.IssueBoost
		}
	}

	return clamp01(score)
}

// #endregion scorer

// #region helpers

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion helpers
