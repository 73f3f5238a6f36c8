package main

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/outcrop-ai/pipeline-governor/internal/config"
	"github.com/outcrop-ai/pipeline-governor/internal/controller"
	"github.com/outcrop-ai/pipeline-governor/internal/dataset"
	"github.com/outcrop-ai/pipeline-governor/internal/diversity"
	"github.com/outcrop-ai/pipeline-governor/internal/patch"
	"github.com/outcrop-ai/pipeline-governor/internal/registry"
	"github.com/outcrop-ai/pipeline-governor/internal/runlog"
	"github.com/outcrop-ai/pipeline-governor/internal/snapshot"
)

// liveConfigName is the target configuration file the applier mutates;
// it is always tracked by snapshots.
const liveConfigName = "live_config.json"

var (
	configPath string
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:   "governor",
	Short: "Self-governing feedback loop for a generation pipeline",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		loaded, err := config.Load(configPath)
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		cfg = loaded
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("governor: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "governor.yaml", "path to governor config")
}

// #region wiring

// deps bundles the stores a command opened so it can close them.
type deps struct {
	ctrl *controller.Controller
	runs *runlog.Store
}

func (d *deps) Close() {
	if d.runs != nil {
		d.runs.Close()
	}
}

// openDeps builds the fully wired controller from the loaded config.
func openDeps() (*deps, error) {
	runs, err := runlog.NewStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}

	samples, err := dataset.NewStore(runs.DB())
	if err != nil {
		runs.Close()
		return nil, fmt.Errorf("open dataset: %w", err)
	}

	tracked := append([]string{liveConfigName}, cfg.TrackedPaths...)
	snaps, err := snapshot.NewManager(snapshot.Config{
		Dir:          cfg.SnapshotDir,
		Root:         cfg.Root,
		TrackedPaths: tracked,
	})
	if err != nil {
		runs.Close()
		return nil, fmt.Errorf("open snapshots: %w", err)
	}

	reg := buildRegistry()
	entry, _ := reg.Lookup("governor.controller")

	ctrl, err := controller.NewController(controller.Deps{
		ScoreConfig:    patch.DefaultScoreConfig(),
		GateConfig:     cfg.GateConf(),
		ApplyConfig:    patch.DefaultApplyConfig(),
		GuardianConfig: cfg.GuardianConf(),
		Target:         cfg.Diversity,
		PlannerConfig:  plannerConfig(),
		Snapshots:      snaps,
		Runs:           runs,
		Samples:        samples,
		Grants:         entry.Grants,
		ConfigPath:     filepath.Join(cfg.Root, liveConfigName),
	})
	if err != nil {
		runs.Close()
		return nil, fmt.Errorf("wire controller: %w", err)
	}

	return &deps{ctrl: ctrl, runs: runs}, nil
}

// buildRegistry constructs the process-wide component registry once,
// with manifests declared here and capabilities granted up front.
func buildRegistry() *registry.Registry {
	reg := registry.New()
	// Registration of known components cannot collide at startup.
	_ = reg.Register("governor.controller", registry.Manifest{
		Mode:        "transform",
		Description: "feedback scoring, gating, and conservative patch application",
		Governed:    true,
	}, registry.Grants{Transform: true, Rollback: true})
	_ = reg.Register("generator.external", registry.Manifest{
		Mode:        "analysis",
		Description: "external sample generator consuming diversity plans",
		Governed:    true,
	}, registry.Grants{})
	return reg
}

func plannerConfig() diversity.PlannerConfig {
	pc := cfg.Planner
	if pc.IdealDistribution == nil {
		pc.IdealDistribution = diversity.DefaultIdealDistribution()
	}
	defaults := diversity.DefaultPlannerConfig()
	if pc.PerEntityMinSamples == 0 {
		pc.PerEntityMinSamples = defaults.PerEntityMinSamples
	}
	if pc.MinPerSource == 0 {
		pc.MinPerSource = defaults.MinPerSource
	}
	if pc.BaseBatchSize == 0 {
		pc.BaseBatchSize = defaults.BaseBatchSize
	}
	return pc
}

// #endregion wiring
