package diversity

import "time"

// #region target

// Target declares the coverage floors the dataset must hold. Fixed
// configuration, read-only at planning time.
type Target struct {
	EntityCoverageMin            float64 `json:"entity_coverage_min" yaml:"entity_coverage_min" validate:"gte=0,lte=1"`
	QuestionTypeBalanceTolerance float64 `json:"question_type_balance_tolerance" yaml:"question_type_balance_tolerance" validate:"gte=0,lte=1"`
	EvidenceSourceMinCount       int     `json:"evidence_source_min_count" yaml:"evidence_source_min_count" validate:"gte=0"`
	ConvergenceThreshold         float64 `json:"convergence_threshold" yaml:"convergence_threshold" validate:"gte=0,lte=1"`
}

// DefaultTarget returns the shipped coverage floors.
func DefaultTarget() Target {
	return Target{
		EntityCoverageMin:            0.9,
		QuestionTypeBalanceTolerance: 0.1,
		EvidenceSourceMinCount:       3,
		ConvergenceThreshold:         0.02,
	}
}

// #endregion target

// #region planner-config

// PlannerConfig carries the inputs the gap computation needs beyond
// the scalar target: the entity universe, the ideal question-type
// distribution, and sizing knobs for the derived strategy.
type PlannerConfig struct {
	RequiredEntities    []string           `yaml:"required_entities"`
	KnownSources        []string           `yaml:"known_sources"`
	IdealDistribution   map[string]float64 `yaml:"ideal_distribution"`
	PerEntityMinSamples int                `yaml:"per_entity_min_samples"`
	MinPerSource        int                `yaml:"min_per_source"`
	BaseBatchSize       int                `yaml:"base_batch_size"`
}

// DefaultPlannerConfig returns sizing defaults and the fixed ideal
// question-type distribution.
func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		IdealDistribution:   DefaultIdealDistribution(),
		PerEntityMinSamples: 5,
		MinPerSource:        3,
		BaseBatchSize:       20,
	}
}

// DefaultIdealDistribution returns the fixed per-type shares a
// balanced dataset should hold. Shares sum to 1.
func DefaultIdealDistribution() map[string]float64 {
	return map[string]float64{
		"factual":      0.30,
		"comparative":  0.20,
		"causal":       0.20,
		"procedural":   0.15,
		"quantitative": 0.15,
	}
}

// #endregion planner-config

// #region coverage-metrics

// CoverageMetrics is the per-epoch aggregate of the accumulated
// dataset. It is the source of truth; plans derived from it are
// ephemeral and recomputed each epoch.
type CoverageMetrics struct {
	EntityCoverage           float64        `json:"entity_coverage"` // in [0,1]
	EntityCounts             map[string]int `json:"entity_counts"`
	QuestionTypeDistribution map[string]int `json:"question_type_distribution"`
	EvidenceSourceCounts     map[string]int `json:"evidence_source_counts"`
	TotalSamples             int            `json:"total_samples"`
}

// #endregion coverage-metrics

// #region gaps

// EntityGap measures entity coverage shortfall.
type EntityGap struct {
	CoverageRatio    float64  `json:"coverage_ratio"` // entityCoverage / entityCoverageMin
	Missing          []string `json:"missing,omitempty"`
	Underrepresented []string `json:"underrepresented,omitempty"`
}

// QuestionTypeGap measures deviation from the ideal type distribution.
// Deviations are signed: positive means overrepresented.
type QuestionTypeGap struct {
	Deviations       map[string]float64 `json:"deviations"`
	Overrepresented  []string           `json:"overrepresented,omitempty"`
	Underrepresented []string           `json:"underrepresented,omitempty"`
}

// EvidenceGap measures the evidence-source shortfall.
type EvidenceGap struct {
	ObservedSources    int `json:"observed_sources"`
	MissingSourceCount int `json:"missing_source_count"`
}

// #endregion gaps

// #region strategy

// SamplingStrategy tells the external sample generator how to close
// the measured gaps.
type SamplingStrategy struct {
	PriorityEntities       []string       `json:"priority_entities"`
	TypeTargets            map[string]int `json:"type_targets"` // additional samples per underrepresented type
	SourcePreference       []string       `json:"source_preference"`
	EstimatedSamplesNeeded int            `json:"estimated_samples_needed"`
}

// #endregion strategy

// #region plan

// Plan is the planner's per-epoch output. Derived and ephemeral; never
// persisted as the source of truth.
type Plan struct {
	EntityGap    EntityGap        `json:"entity_gap"`
	TypeGap      QuestionTypeGap  `json:"type_gap"`
	EvidenceGap  EvidenceGap      `json:"evidence_gap"`
	Strategy     SamplingStrategy `json:"strategy"`
	MeetsTarget  bool             `json:"meets_target"`
	GapMagnitude float64          `json:"gap_magnitude"`
	Stabilized   bool             `json:"stabilized"` // gap change fell under the convergence threshold
	GeneratedAt  time.Time        `json:"generated_at"`
}

// #endregion plan
