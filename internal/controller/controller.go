package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/outcrop-ai/pipeline-governor/internal/dataset"
	"github.com/outcrop-ai/pipeline-governor/internal/diversity"
	"github.com/outcrop-ai/pipeline-governor/internal/guardian"
	"github.com/outcrop-ai/pipeline-governor/internal/patch"
	"github.com/outcrop-ai/pipeline-governor/internal/payload"
	"github.com/outcrop-ai/pipeline-governor/internal/registry"
	"github.com/outcrop-ai/pipeline-governor/internal/run"
	"github.com/outcrop-ai/pipeline-governor/internal/runlog"
	"github.com/outcrop-ai/pipeline-governor/internal/snapshot"
)

// ErrNotGranted is returned when a caller lacks the capability a
// mutating operation requires.
var ErrNotGranted = errors.New("capability not granted")

// #region controller

// Controller is the top-level coordinator for the feedback loop:
// run record → score → gate → conservative merge, bracketed by
// snapshot/rollback, plus per-epoch diversity planning.
//
// Scoring, gating, and guardian evaluation are pure and safe to run
// concurrently; the one shared mutable resource is the target
// configuration, so applications are serialized through mu
// (single-writer discipline). Rollback holds the same lock.
type Controller struct {
	scorer    *patch.Scorer
	gate      *patch.Gate
	applier   *patch.Applier
	guard     *guardian.Guardian
	planner   *diversity.Planner
	snapshots *snapshot.Manager
	runs      *runlog.Store
	samples   *dataset.Store
	grants    registry.Grants
	required  []string

	configPath string

	mu   sync.Mutex
	live patch.Config
}

// Deps bundles everything NewController wires together.
type Deps struct {
	ScoreConfig    patch.ScoreConfig
	GateConfig     patch.GateConfig
	ApplyConfig    patch.ApplyConfig
	GuardianConfig guardian.Config
	Target         diversity.Target
	PlannerConfig  diversity.PlannerConfig
	Snapshots      *snapshot.Manager
	Runs           *runlog.Store
	Samples        *dataset.Store
	Grants         registry.Grants
	ConfigPath     string // live target configuration JSON
}

// NewController creates a fully wired controller and loads the live
// target configuration from disk (empty when absent).
func NewController(deps Deps) (*Controller, error) {
	live, err := loadLiveConfig(deps.ConfigPath)
	if err != nil {
		return nil, err
	}

	return &Controller{
		scorer:     patch.NewScorer(deps.ScoreConfig),
		gate:       patch.NewGate(deps.GateConfig),
		applier:    patch.NewApplier(deps.ApplyConfig),
		guard:      guardian.NewGuardian(deps.GuardianConfig),
		planner:    diversity.NewPlanner(deps.Target, deps.PlannerConfig),
		snapshots:  deps.Snapshots,
		runs:       deps.Runs,
		samples:    deps.Samples,
		grants:     deps.Grants,
		required:   deps.PlannerConfig.RequiredEntities,
		configPath: deps.ConfigPath,
		live:       live,
	}, nil
}

// #endregion controller

// #region evaluate

// Evaluate scores a candidate card against a run record and gates it.
// Pure with respect to shared state: the returned card carries the
// decision, the score, and the evidence trail.
func (c *Controller) Evaluate(rec run.Record, card patch.Card) patch.Card {
	card.Score = c.scorer.Score(rec, card)
	card.Applies = c.gate.ShouldApply(card.Score, card.RiskTier)

	threshold := c.gate.Threshold(card.RiskTier)
	verdict := "rejected"
	if card.Applies {
		verdict = "accepted"
	}
	card.Evidence = append(card.Evidence,
		fmt.Sprintf("score %.2f vs threshold %.2f (tier %s): %s",
			card.Score, threshold, card.RiskTier, verdict))

	return card
}

// #endregion evaluate

// #region apply

// ApplyPatch merges an evaluated card into the live configuration. A
// snapshot is taken before the merge (happens-before the transform);
// if persisting the merged configuration fails, the snapshot is rolled
// back so the on-disk state matches the recovery point. Applications
// are serialized; two patches racing on the same field cannot lose
// updates.
func (c *Controller) ApplyPatch(card patch.Card) (CycleResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !card.Applies {
		return CycleResult{Card: card, Config: copyConfig(c.live)}, nil
	}
	if !c.grants.Transform {
		return CycleResult{}, fmt.Errorf("apply patch: transform %w", ErrNotGranted)
	}

	snapID, err := c.snapshots.Snapshot()
	if err != nil {
		return CycleResult{}, fmt.Errorf("snapshot before apply: %w", err)
	}

	merged, changed := c.applier.Apply(c.live, card)

	if err := saveLiveConfig(c.configPath, merged); err != nil {
		log.Printf("[CTRL] persist failed, rolling back to snapshot %s: %v", snapID, err)
		if _, rbErr := c.snapshots.Rollback(); rbErr != nil {
			return CycleResult{}, fmt.Errorf("persist config: %v (rollback also failed: %w)", err, rbErr)
		}
		return CycleResult{}, fmt.Errorf("persist config: %w", err)
	}
	c.live = merged

	if c.runs != nil {
		dec := runlog.Decision{
			CardID:   card.ID,
			Score:    card.Score,
			RiskTier: string(card.RiskTier),
			Applies:  card.Applies,
			Changed:  changed,
			Evidence: card.Evidence,
		}
		if err := c.runs.LogDecision(dec); err != nil {
			log.Printf("[CTRL] failed to log decision: %v", err)
		}
	}

	log.Printf("[CTRL] applied card %s: %d fields changed", card.ID, len(changed))
	return CycleResult{Card: card, Changed: changed, Config: copyConfig(merged), SnapshotID: snapID}, nil
}

// #endregion apply

// #region cycle

// RunCycle is the full feedback cycle: append the record to the run
// log, evaluate the card, and apply it when the gate accepts.
func (c *Controller) RunCycle(rec run.Record, card patch.Card) (CycleResult, error) {
	if c.runs != nil {
		if err := c.runs.Append(rec); err != nil {
			return CycleResult{}, fmt.Errorf("append run record: %w", err)
		}
	}
	return c.ApplyPatch(c.Evaluate(rec, card))
}

// #endregion cycle

// #region guardian

// CheckResult runs the guardian veto on a single generated output and
// classifies its content into the structured-or-raw variant. Safe on
// the request path: no lock is held.
func (c *Controller) CheckResult(res run.Result) CheckReport {
	return CheckReport{
		Result:  c.guard.Evaluate(res),
		Payload: payload.Classify(res.Content),
	}
}

// #endregion guardian

// #region plan-epoch

// PlanEpoch recomputes coverage from the accumulated dataset and
// derives the next diversity plan.
func (c *Controller) PlanEpoch() (EpochResult, error) {
	metrics, err := c.samples.ComputeCoverage(c.required)
	if err != nil {
		return EpochResult{}, fmt.Errorf("compute coverage: %w", err)
	}

	plan := c.planner.Plan(metrics)
	if plan.Stabilized {
		log.Printf("[CTRL] diversity plan stabilized (gap %.4f)", plan.GapMagnitude)
	}
	return EpochResult{Metrics: metrics, Plan: plan}, nil
}

// #endregion plan-epoch

// #region rollback

// Rollback restores the most recent snapshot. Destructive: holds the
// exclusive write lock for its duration, blocking concurrent
// transforms.
func (c *Controller) Rollback() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.grants.Rollback {
		return "", fmt.Errorf("rollback: %w", ErrNotGranted)
	}

	id, err := c.snapshots.Rollback()
	if err != nil {
		return "", err
	}

	live, err := loadLiveConfig(c.configPath)
	if err != nil {
		return "", fmt.Errorf("reload config after rollback: %w", err)
	}
	c.live = live

	log.Printf("[CTRL] rolled back to snapshot %s", id)
	return id, nil
}

// #endregion rollback

// #region live-config

// LiveConfig returns a copy of the current target configuration.
func (c *Controller) LiveConfig() patch.Config {
	c.mu.Lock()
	defer c.mu.Unlock()

	return copyConfig(c.live)
}

// copyConfig shields the live configuration from mutation through
// returned results; only Apply under the write lock changes it.
func copyConfig(cfg patch.Config) patch.Config {
	out := make(patch.Config, len(cfg))
	for k, v := range cfg {
		out[k] = v
	}
	return out
}

func loadLiveConfig(path string) (patch.Config, error) {
	if path == "" {
		return patch.Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return patch.Config{}, nil
		}
		return nil, fmt.Errorf("read live config: %w", err)
	}
	var cfg patch.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode live config: %w", err)
	}
	return cfg, nil
}

func saveLiveConfig(path string, cfg patch.Config) error {
	if path == "" {
		return nil
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode live config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write live config: %w", err)
	}
	return nil
}

// #endregion live-config
