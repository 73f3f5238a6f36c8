package patch

import "github.com/google/uuid"

// #region risk-tier

// RiskTier is the declared sensitivity class of a patch.
type RiskTier string

const (
	TierLow    RiskTier = "low"
	TierMedium RiskTier = "medium"
	TierHigh   RiskTier = "high"
)

// #endregion risk-tier

// #region constraint

// Constraint is a single applicability condition over a run record field.
// Equals holds an exact-match value (bool or number); Min/Max bound a
// numeric field inclusively. A constraint naming a field that cannot be
// resolved fails; one that resolves but sets no conditions is vacuously
// satisfied (it only requires the field to be present).
type Constraint struct {
	Field  string   `json:"field"`
	Equals any      `json:"equals,omitempty"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
}

// #endregion constraint

// #region card

// Card is a scored, conditionally-applicable proposed change to a
// configuration. Produced once per evaluation cycle; applying it twice
// is harmless because already-merged fields are skipped as defined.
type Card struct {
	ID        string         `json:"id"`
	Applies   bool           `json:"applies"`
	Selectors []Constraint   `json:"selectors,omitempty"`
	RiskTier  RiskTier       `json:"risk_tier,omitempty"`
	Score     float64        `json:"score"`
	Deltas    map[string]any `json:"deltas"`
	Evidence  []string       `json:"evidence"`
}

// NewCard creates an unevaluated card with a fresh id.
func NewCard(deltas map[string]any, selectors []Constraint, tier RiskTier) Card {
	if tier == "" {
		tier = TierLow
	}
	return Card{
		ID:        uuid.New().String(),
		Selectors: selectors,
		RiskTier:  tier,
		Deltas:    deltas,
	}
}

// #endregion card

// #region config

// Config is the open target configuration mutated only by Apply.
type Config map[string]any

// #endregion config

// #region score-config

// ScoreConfig holds the scoring heuristic's thresholds and weights.
type ScoreConfig struct {
	NeutralPrior   float64 // starting score before adjustments
	ExcellentAudit float64 // audit score at or above this discourages change
	AcceptableP95  float64 // p95 seconds at or below this discourages change
	AuditPenalty   float64
	LatencyPenalty float64
	IssueBoost     float64
}

// DefaultScoreConfig returns the shipped heuristic weights.
func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{
		NeutralPrior:   0.5,
		ExcellentAudit: 9.2,
		AcceptableP95:  2.0,
		AuditPenalty:   0.2,
		LatencyPenalty: 0.1,
		IssueBoost:     0.2,
	}
}

// #endregion score-config

// #region gate-config

// GateConfig maps risk tiers to acceptance thresholds.
type GateConfig struct {
	HighThreshold   float64
	MediumThreshold float64
	LowThreshold    float64
}

// DefaultGateConfig returns the shipped tier thresholds.
// The mapping is deliberately preserved as shipped: the high tier
// accepts at the lowest threshold. Do not reorder without product
// sign-off.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		HighThreshold:   0.2,
		MediumThreshold: 0.35,
		LowThreshold:    0.5,
	}
}

// #endregion gate-config

// #region apply-config

// ApplyConfig holds the conservative merge parameters.
type ApplyConfig struct {
	ShortStringMax int // existing strings shorter than this may be overwritten
}

// DefaultApplyConfig returns the shipped merge parameters.
func DefaultApplyConfig() ApplyConfig {
	return ApplyConfig{ShortStringMax: 16}
}

// #endregion apply-config
