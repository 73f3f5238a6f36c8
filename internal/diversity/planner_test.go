package diversity

import (
	"math"
	"testing"
)

// balancedMetrics returns metrics that exactly meet the default target.
func balancedMetrics() CoverageMetrics {
	return CoverageMetrics{
		EntityCoverage: 1.0,
		EntityCounts:   map[string]int{"alpha": 10, "beta": 10},
		QuestionTypeDistribution: map[string]int{
			"factual":      30,
			"comparative":  20,
			"causal":       20,
			"procedural":   15,
			"quantitative": 15,
		},
		EvidenceSourceCounts: map[string]int{"web": 40, "docs": 30, "wiki": 30},
		TotalSamples:         100,
	}
}

func TestPlanMeetsTarget(t *testing.T) {
	p := NewPlanner(DefaultTarget(), DefaultPlannerConfig())
	plan := p.Plan(balancedMetrics())

	if !plan.MeetsTarget {
		t.Fatalf("balanced metrics must meet target: %+v", plan)
	}
	if plan.EntityGap.CoverageRatio < 1 {
		t.Fatalf("coverage ratio = %v, want >= 1", plan.EntityGap.CoverageRatio)
	}
	if plan.EvidenceGap.MissingSourceCount != 0 {
		t.Fatalf("missing sources = %d, want 0", plan.EvidenceGap.MissingSourceCount)
	}
}

func TestPlanEntityCoverageShortfall(t *testing.T) {
	p := NewPlanner(DefaultTarget(), DefaultPlannerConfig())
	metrics := balancedMetrics()
	metrics.EntityCoverage = 0.8 // target min is 0.9

	plan := p.Plan(metrics)

	if plan.MeetsTarget {
		t.Fatal("coverage below minimum must fail the target")
	}
	want := 0.8 / 0.9
	if math.Abs(plan.EntityGap.CoverageRatio-want) > 1e-9 {
		t.Fatalf("coverage ratio = %v, want %v", plan.EntityGap.CoverageRatio, want)
	}
}

func TestPlanMissingBeforeUnderrepresented(t *testing.T) {
	cfg := DefaultPlannerConfig()
	cfg.RequiredEntities = []string{"alpha", "beta", "gamma"}
	p := NewPlanner(DefaultTarget(), cfg)

	metrics := balancedMetrics()
	metrics.EntityCounts = map[string]int{"alpha": 10, "beta": 2} // gamma absent

	plan := p.Plan(metrics)

	if len(plan.EntityGap.Missing) != 1 || plan.EntityGap.Missing[0] != "gamma" {
		t.Fatalf("missing = %v, want [gamma]", plan.EntityGap.Missing)
	}
	if len(plan.EntityGap.Underrepresented) != 1 || plan.EntityGap.Underrepresented[0] != "beta" {
		t.Fatalf("underrepresented = %v, want [beta]", plan.EntityGap.Underrepresented)
	}
}

func TestPlanTypeDeviations(t *testing.T) {
	p := NewPlanner(DefaultTarget(), DefaultPlannerConfig())
	metrics := balancedMetrics()
	// Everything factual: +0.7 deviation there, negative elsewhere.
	metrics.QuestionTypeDistribution = map[string]int{"factual": 100}

	plan := p.Plan(metrics)

	if plan.MeetsTarget {
		t.Fatal("skewed distribution must fail the target")
	}
	if math.Abs(plan.TypeGap.Deviations["factual"]-0.7) > 1e-9 {
		t.Fatalf("factual deviation = %v, want 0.7", plan.TypeGap.Deviations["factual"])
	}
	if len(plan.TypeGap.Overrepresented) != 1 || plan.TypeGap.Overrepresented[0] != "factual" {
		t.Fatalf("overrepresented = %v, want [factual]", plan.TypeGap.Overrepresented)
	}
	// All four remaining ideal types deviate below -0.1 tolerance.
	if len(plan.TypeGap.Underrepresented) != 4 {
		t.Fatalf("underrepresented = %v, want 4 types", plan.TypeGap.Underrepresented)
	}
}

func TestPlanUnexpectedObservedType(t *testing.T) {
	p := NewPlanner(DefaultTarget(), DefaultPlannerConfig())
	metrics := balancedMetrics()
	metrics.QuestionTypeDistribution["riddle"] = 100 // not in the ideal

	plan := p.Plan(metrics)
	if plan.TypeGap.Deviations["riddle"] <= 0 {
		t.Fatalf("unexpected type must register positive deviation, got %v",
			plan.TypeGap.Deviations["riddle"])
	}
}

func TestPlanEvidenceSourceShortfall(t *testing.T) {
	p := NewPlanner(DefaultTarget(), DefaultPlannerConfig())
	metrics := balancedMetrics()
	metrics.EvidenceSourceCounts = map[string]int{"web": 100}

	plan := p.Plan(metrics)

	if plan.EvidenceGap.MissingSourceCount != 2 {
		t.Fatalf("missing sources = %d, want 2", plan.EvidenceGap.MissingSourceCount)
	}
	if plan.MeetsTarget {
		t.Fatal("source shortfall must fail the target")
	}
}

func TestPlanEmptyMetricsStillPlans(t *testing.T) {
	// The planner never errors on missing coverage: an empty dataset
	// yields a (failing) plan, not a panic or error.
	cfg := DefaultPlannerConfig()
	cfg.RequiredEntities = []string{"alpha"}
	p := NewPlanner(DefaultTarget(), cfg)

	plan := p.Plan(CoverageMetrics{})

	if plan.MeetsTarget {
		t.Fatal("empty dataset cannot meet the target")
	}
	if plan.Strategy.EstimatedSamplesNeeded <= 0 {
		t.Fatalf("empty dataset must demand samples, got %d",
			plan.Strategy.EstimatedSamplesNeeded)
	}
}

func TestPlanStabilization(t *testing.T) {
	p := NewPlanner(DefaultTarget(), DefaultPlannerConfig())
	metrics := balancedMetrics()
	metrics.EntityCoverage = 0.5

	first := p.Plan(metrics)
	if first.Stabilized {
		t.Fatal("first plan has no previous epoch to compare against")
	}

	second := p.Plan(metrics)
	if !second.Stabilized {
		t.Fatal("identical consecutive plans must signal stabilization")
	}

	// A large gap change resets the signal.
	metrics.EntityCoverage = 1.0
	metrics.EvidenceSourceCounts = map[string]int{"web": 100}
	third := p.Plan(metrics)
	if third.Stabilized {
		t.Fatalf("gap moved by more than the threshold, got stabilized (magnitude %v -> %v)",
			second.GapMagnitude, third.GapMagnitude)
	}
}

func TestPlanGapMagnitudeDecreasesWithCoverage(t *testing.T) {
	p := NewPlanner(DefaultTarget(), DefaultPlannerConfig())

	worse := balancedMetrics()
	worse.EntityCoverage = 0.3
	better := balancedMetrics()
	better.EntityCoverage = 0.85

	worsePlan := p.Plan(worse)
	betterPlan := p.Plan(better)

	if worsePlan.GapMagnitude <= betterPlan.GapMagnitude {
		t.Fatalf("gap magnitude must shrink as coverage improves: %v vs %v",
			worsePlan.GapMagnitude, betterPlan.GapMagnitude)
	}
}
