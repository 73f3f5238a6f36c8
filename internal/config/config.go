package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/outcrop-ai/pipeline-governor/internal/diversity"
	"github.com/outcrop-ai/pipeline-governor/internal/guardian"
	"github.com/outcrop-ai/pipeline-governor/internal/patch"
)

// #region config

// Config is the governor's YAML configuration surface.
type Config struct {
	DBPath       string   `yaml:"db_path" validate:"required"`
	SnapshotDir  string   `yaml:"snapshot_dir" validate:"required"`
	Root         string   `yaml:"root"`
	TrackedPaths []string `yaml:"tracked_paths"`

	Guardian GuardianConfig `yaml:"guardian"`
	Gate     GateConfig     `yaml:"gate"`

	Diversity diversity.Target        `yaml:"diversity"`
	Planner   diversity.PlannerConfig `yaml:"planner"`
}

// GuardianConfig mirrors guardian.Config with YAML tags and bounds.
type GuardianConfig struct {
	MinQualityScore float64 `yaml:"min_quality_score" validate:"gte=0,lte=10"`
	MaxDurationMs   int64   `yaml:"max_duration_ms" validate:"gte=1"`
}

// GateConfig mirrors patch.GateConfig with YAML tags and bounds.
type GateConfig struct {
	HighThreshold   float64 `yaml:"high_threshold" validate:"gte=0,lte=1"`
	MediumThreshold float64 `yaml:"medium_threshold" validate:"gte=0,lte=1"`
	LowThreshold    float64 `yaml:"low_threshold" validate:"gte=0,lte=1"`
}

// #endregion config

// #region defaults

// Default returns the shipped configuration.
func Default() Config {
	g := guardian.DefaultConfig()
	gate := patch.DefaultGateConfig()
	return Config{
		DBPath:      "governor.db",
		SnapshotDir: "snapshots",
		Root:        ".",
		Guardian: GuardianConfig{
			MinQualityScore: g.MinQualityScore,
			MaxDurationMs:   g.MaxDurationMs,
		},
		Gate: GateConfig{
			HighThreshold:   gate.HighThreshold,
			MediumThreshold: gate.MediumThreshold,
			LowThreshold:    gate.LowThreshold,
		},
		Diversity: diversity.DefaultTarget(),
		Planner:   diversity.DefaultPlannerConfig(),
	}
}

// GuardianConf converts to the guardian package's config type.
func (c Config) GuardianConf() guardian.Config {
	return guardian.Config{
		MinQualityScore: c.Guardian.MinQualityScore,
		MaxDurationMs:   c.Guardian.MaxDurationMs,
	}
}

// GateConf converts to the patch package's gate config type.
func (c Config) GateConf() patch.GateConfig {
	return patch.GateConfig{
		HighThreshold:   c.Gate.HighThreshold,
		MediumThreshold: c.Gate.MediumThreshold,
		LowThreshold:    c.Gate.LowThreshold,
	}
}

// #endregion defaults

// #region validation

// Violation is one validation failure: the config path that failed and
// a human-readable message.
type Violation struct {
	Path    string
	Message string
}

// ValidationError aggregates every violation found in a config file
// instead of failing on the first.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = fmt.Sprintf("%s: %s", v.Path, v.Message)
	}
	return fmt.Sprintf("invalid config (%d violations): %s",
		len(e.Violations), strings.Join(parts, "; "))
}

// Validate checks bounds on all fields, collecting every violation.
func (c Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	ve := &ValidationError{}
	for _, fe := range verrs {
		ve.Violations = append(ve.Violations, Violation{
			Path:    fe.Namespace(),
			Message: fmt.Sprintf("failed %q constraint (value %v)", fe.Tag(), fe.Value()),
		})
	}
	return ve
}

// #endregion validation

// #region load

// Load reads a YAML config file over the shipped defaults and
// validates it. A missing file returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// #endregion load
