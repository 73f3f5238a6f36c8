package patch

// #region gate

// Gate decides from score and declared risk tier whether a patch may
// be applied.
type Gate struct {
	config GateConfig
}

// NewGate creates a gate with the given tier thresholds.
func NewGate(config GateConfig) *Gate {
	return &Gate{config: config}
}

// ShouldApply reports whether a score clears the threshold for the
// card's risk tier. Unknown or empty tiers default to low.
func (g *Gate) ShouldApply(score float64, tier RiskTier) bool {
	return score >= g.Threshold(tier)
}

// Threshold returns the acceptance threshold for a tier. Lower
// threshold means easier to accept; the high tier is intentionally
// the easiest (see DefaultGateConfig).
func (g *Gate) Threshold(tier RiskTier) float64 {
	switch tier {
	case TierHigh:
		return g.config.HighThreshold
	case TierMedium:
		return g.config.MediumThreshold
	default:
		return g.config.LowThreshold
	}
}

// #endregion gate
