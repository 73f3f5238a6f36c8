package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "governor.db" {
		t.Fatalf("db path = %q", cfg.DBPath)
	}
	if cfg.Gate.HighThreshold != 0.2 || cfg.Gate.LowThreshold != 0.5 {
		t.Fatalf("gate defaults = %+v", cfg.Gate)
	}
	if cfg.Guardian.MinQualityScore != 5.0 || cfg.Guardian.MaxDurationMs != 30000 {
		t.Fatalf("guardian defaults = %+v", cfg.Guardian)
	}
	if cfg.Diversity.ConvergenceThreshold != 0.02 {
		t.Fatalf("convergence default = %v", cfg.Diversity.ConvergenceThreshold)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "governor.yaml")
	content := `
db_path: custom.db
guardian:
  min_quality_score: 6.5
  max_duration_ms: 10000
planner:
  required_entities: [alpha, beta]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "custom.db" {
		t.Fatalf("db path = %q", cfg.DBPath)
	}
	if cfg.Guardian.MinQualityScore != 6.5 {
		t.Fatalf("guardian override = %+v", cfg.Guardian)
	}
	// Untouched sections keep defaults.
	if cfg.SnapshotDir != "snapshots" {
		t.Fatalf("snapshot dir = %q", cfg.SnapshotDir)
	}
	if len(cfg.Planner.RequiredEntities) != 2 {
		t.Fatalf("required entities = %v", cfg.Planner.RequiredEntities)
	}
}

func TestValidateAggregatesAllViolations(t *testing.T) {
	cfg := Default()
	cfg.Guardian.MinQualityScore = 99 // above 10
	cfg.Gate.HighThreshold = 2       // above 1
	cfg.Diversity.EntityCoverageMin = -0.5

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(ve.Violations) != 3 {
		t.Fatalf("expected all 3 violations reported, got %d: %v",
			len(ve.Violations), ve.Violations)
	}
	for _, v := range ve.Violations {
		if v.Path == "" || v.Message == "" {
			t.Fatalf("violation missing path or message: %+v", v)
		}
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "governor.yaml")
	content := `
gate:
  high_threshold: 7
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("out-of-range threshold must fail validation")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "governor.yaml")
	if err := os.WriteFile(path, []byte(":\n  - ["), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("malformed yaml must fail")
	}
}
