package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/outcrop-ai/pipeline-governor/internal/patch"
	"github.com/outcrop-ai/pipeline-governor/internal/run"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture:
// a recorded sequence of feedback cycles with expected decisions.
type Fixture struct {
	Description string         `json:"description"`
	StartConfig patch.Config   `json:"start_config"`
	Config      FixtureConfig  `json:"config"`
	Turns       []Turn         `json:"turns"`
	Expected    []ExpectedTurn `json:"expected"`
}

// FixtureConfig overrides pipeline stage configs; absent sections fall
// back to defaults at replay time.
type FixtureConfig struct {
	Score    *patch.ScoreConfig `json:"score,omitempty"`
	Gate     *patch.GateConfig  `json:"gate,omitempty"`
	Apply    *patch.ApplyConfig `json:"apply,omitempty"`
	Guardian *GuardianOverride  `json:"guardian,omitempty"`
}

// GuardianOverride mirrors guardian.Config with JSON tags.
type GuardianOverride struct {
	MinQualityScore float64 `json:"min_quality_score"`
	MaxDurationMs   int64   `json:"max_duration_ms"`
}

// Turn is one recorded feedback cycle: the run record, the candidate
// card, and optionally a generated output for the guardian.
type Turn struct {
	TurnID string      `json:"turn_id"`
	Record run.Record  `json:"record"`
	Card   patch.Card  `json:"card"`
	Result *run.Result `json:"result,omitempty"`
}

// ExpectedTurn captures the expected decision per turn.
type ExpectedTurn struct {
	TurnID  string   `json:"turn_id"`
	Applies bool     `json:"applies"`
	Score   *float64 `json:"score,omitempty"`
	Changed []string `json:"changed,omitempty"`
	Vetoed  *bool    `json:"vetoed,omitempty"`
}

// #endregion fixture-types

// #region load

// LoadFixture reads and decodes a fixture file.
func LoadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	return f, nil
}

// #endregion load
