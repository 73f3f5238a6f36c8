package patch

import "testing"

func TestGateTierThresholds(t *testing.T) {
	g := NewGate(DefaultGateConfig())

	cases := []struct {
		score float64
		tier  RiskTier
		want  bool
	}{
		{0.7, TierLow, true},
		{0.5, TierLow, true},  // boundary accepts
		{0.49, TierLow, false},
		{0.35, TierMedium, true},
		{0.34, TierMedium, false},
		{0.2, TierHigh, true},
		{0.19, TierHigh, false},
		// The shipped mapping: a score too weak for low clears high.
		{0.25, TierLow, false},
		{0.25, TierHigh, true},
	}

	for _, tc := range cases {
		if got := g.ShouldApply(tc.score, tc.tier); got != tc.want {
			t.Errorf("ShouldApply(%v, %s) = %v, want %v", tc.score, tc.tier, got, tc.want)
		}
	}
}

func TestGateDefaultsToLowTier(t *testing.T) {
	g := NewGate(DefaultGateConfig())

	if g.ShouldApply(0.4, "") {
		t.Fatal("empty tier must use the low threshold (0.5)")
	}
	if !g.ShouldApply(0.6, "") {
		t.Fatal("0.6 clears the low threshold")
	}
	if g.ShouldApply(0.4, "unknown") {
		t.Fatal("unknown tier must use the low threshold")
	}
}

func TestGateThresholdLookup(t *testing.T) {
	g := NewGate(DefaultGateConfig())

	if got := g.Threshold(TierHigh); got != 0.2 {
		t.Fatalf("high threshold = %v, want 0.2", got)
	}
	if got := g.Threshold(TierMedium); got != 0.35 {
		t.Fatalf("medium threshold = %v, want 0.35", got)
	}
	if got := g.Threshold(TierLow); got != 0.5 {
		t.Fatalf("low threshold = %v, want 0.5", got)
	}
}
