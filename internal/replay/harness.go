package replay

import (
	"fmt"
	"math"

	"github.com/outcrop-ai/pipeline-governor/internal/guardian"
	"github.com/outcrop-ai/pipeline-governor/internal/patch"
)

// #region types

// Result captures the outcome of replaying one turn through the
// score → gate → apply pipeline, plus the guardian verdict when the
// turn carried a generated output.
type Result struct {
	TurnID   string
	Card     patch.Card
	Changed  []string
	Action   string // "apply" | "skip"
	Guardian *guardian.Result
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalTurns  int
	Applied     int
	Skipped     int
	Vetoed      int
	FinalConfig patch.Config
}

// Mismatch is one divergence between a replayed turn and the
// fixture's expectation.
type Mismatch struct {
	TurnID string
	Field  string
	Want   string
	Got    string
}

// #endregion types

// #region replay

// Replay iterates through turns entirely in-memory, applying the full
// pipeline per turn and threading the merged configuration forward.
func Replay(f Fixture) ([]Result, Summary) {
	scoreCfg := patch.DefaultScoreConfig()
	if f.Config.Score != nil {
		scoreCfg = *f.Config.Score
	}
	gateCfg := patch.DefaultGateConfig()
	if f.Config.Gate != nil {
		gateCfg = *f.Config.Gate
	}
	applyCfg := patch.DefaultApplyConfig()
	if f.Config.Apply != nil {
		applyCfg = *f.Config.Apply
	}
	guardCfg := guardian.DefaultConfig()
	if f.Config.Guardian != nil {
		guardCfg = guardian.Config{
			MinQualityScore: f.Config.Guardian.MinQualityScore,
			MaxDurationMs:   f.Config.Guardian.MaxDurationMs,
		}
	}

	scorer := patch.NewScorer(scoreCfg)
	gate := patch.NewGate(gateCfg)
	applier := patch.NewApplier(applyCfg)
	guard := guardian.NewGuardian(guardCfg)

	current := f.StartConfig
	if current == nil {
		current = patch.Config{}
	}

	results := make([]Result, 0, len(f.Turns))
	summary := Summary{TotalTurns: len(f.Turns)}

	for _, turn := range f.Turns {
		card := turn.Card
		card.Score = scorer.Score(turn.Record, card)
		card.Applies = gate.ShouldApply(card.Score, card.RiskTier)

		res := Result{TurnID: turn.TurnID, Action: "skip"}

		if card.Applies {
			merged, changed := applier.Apply(current, card)
			current = merged
			res.Changed = changed
			res.Action = "apply"
			summary.Applied++
		} else {
			summary.Skipped++
		}

		if turn.Result != nil {
			gr := guard.Evaluate(*turn.Result)
			res.Guardian = &gr
			if gr.Vetoed {
				summary.Vetoed++
			}
		}

		res.Card = card
		results = append(results, res)
	}

	summary.FinalConfig = current
	return results, summary
}

// #endregion replay

// #region verify

// Verify replays a fixture and compares each turn against its
// expectation, returning every divergence.
func Verify(f Fixture) ([]Mismatch, Summary) {
	results, summary := Replay(f)

	expected := make(map[string]ExpectedTurn, len(f.Expected))
	for _, e := range f.Expected {
		expected[e.TurnID] = e
	}

	var mismatches []Mismatch
	for _, res := range results {
		exp, ok := expected[res.TurnID]
		if !ok {
			continue
		}

		if res.Card.Applies != exp.Applies {
			mismatches = append(mismatches, Mismatch{
				TurnID: res.TurnID, Field: "applies",
				Want: fmt.Sprintf("%v", exp.Applies),
				Got:  fmt.Sprintf("%v", res.Card.Applies),
			})
		}
		if exp.Score != nil && math.Abs(res.Card.Score-*exp.Score) > 1e-9 {
			mismatches = append(mismatches, Mismatch{
				TurnID: res.TurnID, Field: "score",
				Want: fmt.Sprintf("%.4f", *exp.Score),
				Got:  fmt.Sprintf("%.4f", res.Card.Score),
			})
		}
		if exp.Changed != nil && !equalStrings(res.Changed, exp.Changed) {
			mismatches = append(mismatches, Mismatch{
				TurnID: res.TurnID, Field: "changed",
				Want: fmt.Sprintf("%v", exp.Changed),
				Got:  fmt.Sprintf("%v", res.Changed),
			})
		}
		if exp.Vetoed != nil {
			got := res.Guardian != nil && res.Guardian.Vetoed
			if got != *exp.Vetoed {
				mismatches = append(mismatches, Mismatch{
					TurnID: res.TurnID, Field: "vetoed",
					Want: fmt.Sprintf("%v", *exp.Vetoed),
					Got:  fmt.Sprintf("%v", got),
				})
			}
		}
	}

	return mismatches, summary
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// #endregion verify
