package diversity

import (
	"math"
	"sort"
	"time"
)

// #region planner

// Planner computes coverage gaps against targets and derives a
// sampling strategy to close them. It always returns a plan, including
// one where MeetsTarget is false; it never errors on missing coverage.
//
// The planner keeps the previous epoch's gap magnitude so it can
// signal stabilization when consecutive plans stop moving, avoiding
// oscillating resampling requests.
type Planner struct {
	target Target
	config PlannerConfig

	prevMagnitude *float64
}

// NewPlanner creates a planner for a fixed target.
func NewPlanner(target Target, config PlannerConfig) *Planner {
	return &Planner{target: target, config: config}
}

// Plan computes the per-epoch diversity plan from aggregate metrics.
func (p *Planner) Plan(metrics CoverageMetrics) Plan {
	entityGap := p.entityGap(metrics)
	typeGap := p.typeGap(metrics)
	evidenceGap := p.evidenceGap(metrics)

	magnitude := gapMagnitude(entityGap, typeGap, evidenceGap, p.target)

	stabilized := false
	if p.prevMagnitude != nil {
		stabilized = math.Abs(*p.prevMagnitude-magnitude) < p.target.ConvergenceThreshold
	}
	p.prevMagnitude = &magnitude

	meets := entityGap.CoverageRatio >= 1 &&
		len(typeGap.Overrepresented) == 0 &&
		len(typeGap.Underrepresented) == 0 &&
		evidenceGap.MissingSourceCount == 0

	return Plan{
		EntityGap:    entityGap,
		TypeGap:      typeGap,
		EvidenceGap:  evidenceGap,
		Strategy:     p.deriveStrategy(metrics, entityGap, typeGap, evidenceGap),
		MeetsTarget:  meets,
		GapMagnitude: magnitude,
		Stabilized:   stabilized,
		GeneratedAt:  time.Now().UTC(),
	}
}

// #endregion planner

// #region entity-gap

func (p *Planner) entityGap(metrics CoverageMetrics) EntityGap {
	ratio := 1.0
	if p.target.EntityCoverageMin > 0 {
		ratio = metrics.EntityCoverage / p.target.EntityCoverageMin
	}

	var missing, under []string
	for _, entity := range p.config.RequiredEntities {
		count := metrics.EntityCounts[entity]
		switch {
		case count == 0:
			missing = append(missing, entity)
		case count < p.config.PerEntityMinSamples:
			under = append(under, entity)
		}
	}
	sort.Strings(missing)
	// Underrepresented ordered most-severe first (fewest samples).
	sort.Slice(under, func(i, j int) bool {
		ci, cj := metrics.EntityCounts[under[i]], metrics.EntityCounts[under[j]]
		if ci != cj {
			return ci < cj
		}
		return under[i] < under[j]
	})

	return EntityGap{CoverageRatio: ratio, Missing: missing, Underrepresented: under}
}

// #endregion entity-gap

// #region type-gap

func (p *Planner) typeGap(metrics CoverageMetrics) QuestionTypeGap {
	total := 0
	for _, c := range metrics.QuestionTypeDistribution {
		total += c
	}

	deviations := make(map[string]float64, len(p.config.IdealDistribution))
	var over, under []string

	for _, qt := range p.typeUniverse(metrics) {
		actual := 0.0
		if total > 0 {
			actual = float64(metrics.QuestionTypeDistribution[qt]) / float64(total)
		}
		dev := actual - p.config.IdealDistribution[qt]
		deviations[qt] = dev
		if dev > p.target.QuestionTypeBalanceTolerance {
			over = append(over, qt)
		} else if dev < -p.target.QuestionTypeBalanceTolerance {
			under = append(under, qt)
		}
	}
	sort.Strings(over)
	sort.Strings(under)

	return QuestionTypeGap{Deviations: deviations, Overrepresented: over, Underrepresented: under}
}

// typeUniverse is the sorted union of ideal and observed question types,
// so unexpected observed types register as overrepresentation instead
// of vanishing.
func (p *Planner) typeUniverse(metrics CoverageMetrics) []string {
	seen := make(map[string]bool, len(p.config.IdealDistribution))
	var types []string
	for qt := range p.config.IdealDistribution {
		if !seen[qt] {
			seen[qt] = true
			types = append(types, qt)
		}
	}
	for qt := range metrics.QuestionTypeDistribution {
		if !seen[qt] {
			seen[qt] = true
			types = append(types, qt)
		}
	}
	sort.Strings(types)
	return types
}

// #endregion type-gap

// #region evidence-gap

func (p *Planner) evidenceGap(metrics CoverageMetrics) EvidenceGap {
	observed := 0
	for _, c := range metrics.EvidenceSourceCounts {
		if c > 0 {
			observed++
		}
	}
	missing := p.target.EvidenceSourceMinCount - observed
	if missing < 0 {
		missing = 0
	}
	return EvidenceGap{ObservedSources: observed, MissingSourceCount: missing}
}

// #endregion evidence-gap

// #region magnitude

// gapMagnitude collapses the three gaps into one scalar used for
// convergence tracking. Each term is bounded so no single gap can
// swamp the signal: entity shortfall in [0,1], total-variation
// distance over types in [0,1], source shortfall ratio in [0,1].
func gapMagnitude(eg EntityGap, tg QuestionTypeGap, vg EvidenceGap, target Target) float64 {
	entityShortfall := 0.0
	if eg.CoverageRatio < 1 {
		entityShortfall = 1 - eg.CoverageRatio
	}

	tvd := 0.0
	for _, dev := range tg.Deviations {
		tvd += math.Abs(dev)
	}
	tvd /= 2

	sourceShortfall := 0.0
	if target.EvidenceSourceMinCount > 0 {
		sourceShortfall = float64(vg.MissingSourceCount) / float64(target.EvidenceSourceMinCount)
	}

	return entityShortfall + tvd + sourceShortfall
}

// #endregion magnitude
