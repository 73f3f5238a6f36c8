package diversity

import (
	"math"
	"sort"
)

// #region strategy

// deriveStrategy turns measured gaps into concrete sampling guidance.
// Priority entities are ordered by severity: missing before
// underrepresented. Per-type targets are proportional to the negative
// deviation magnitude. Source preference is ordered to most reduce the
// shortfall: unobserved known sources first, then observed sources
// weakest first. EstimatedSamplesNeeded grows monotonically with each
// of the three gap magnitudes.
func (p *Planner) deriveStrategy(metrics CoverageMetrics, eg EntityGap, tg QuestionTypeGap, vg EvidenceGap) SamplingStrategy {
	priority := make([]string, 0, len(eg.Missing)+len(eg.Underrepresented))
	priority = append(priority, eg.Missing...)
	priority = append(priority, eg.Underrepresented...)

	base := metrics.TotalSamples
	if base < p.config.BaseBatchSize {
		base = p.config.BaseBatchSize
	}

	typeTargets := make(map[string]int, len(tg.Underrepresented))
	for _, qt := range tg.Underrepresented {
		deficit := -tg.Deviations[qt]
		typeTargets[qt] = int(math.Ceil(deficit * float64(base)))
	}

	estimated := len(eg.Missing) * p.config.PerEntityMinSamples
	for _, entity := range eg.Underrepresented {
		estimated += p.config.PerEntityMinSamples - metrics.EntityCounts[entity]
	}
	for _, n := range typeTargets {
		estimated += n
	}
	estimated += vg.MissingSourceCount * p.config.MinPerSource

	return SamplingStrategy{
		PriorityEntities:       priority,
		TypeTargets:            typeTargets,
		SourcePreference:       p.sourcePreference(metrics),
		EstimatedSamplesNeeded: estimated,
	}
}

// #endregion strategy

// #region source-preference

func (p *Planner) sourcePreference(metrics CoverageMetrics) []string {
	var unobserved []string
	for _, src := range p.config.KnownSources {
		if metrics.EvidenceSourceCounts[src] == 0 {
			unobserved = append(unobserved, src)
		}
	}
	sort.Strings(unobserved)

	var observed []string
	for src, c := range metrics.EvidenceSourceCounts {
		if c > 0 {
			observed = append(observed, src)
		}
	}
	sort.Slice(observed, func(i, j int) bool {
		ci, cj := metrics.EvidenceSourceCounts[observed[i]], metrics.EvidenceSourceCounts[observed[j]]
		if ci != cj {
			return ci < cj
		}
		return observed[i] < observed[j]
	})

	return append(unobserved, observed...)
}

// #endregion source-preference
