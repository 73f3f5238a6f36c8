package controller

import (
	"github.com/outcrop-ai/pipeline-governor/internal/diversity"
	"github.com/outcrop-ai/pipeline-governor/internal/guardian"
	"github.com/outcrop-ai/pipeline-governor/internal/patch"
	"github.com/outcrop-ai/pipeline-governor/internal/payload"
)

// #region cycle-result

// CycleResult is one evaluation cycle's outcome: the scored card, the
// fields the applier changed, and the snapshot taken before the merge
// (empty when the card did not apply).
type CycleResult struct {
	Card       patch.Card   `json:"card"`
	Changed    []string     `json:"changed,omitempty"`
	Config     patch.Config `json:"config"`
	SnapshotID string       `json:"snapshot_id,omitempty"`
}

// #endregion cycle-result

// #region check-report

// CheckReport is the guardian verdict on a generated result together
// with the classified variant of its content, so consumers branch on
// Payload.Kind instead of re-parsing Content.
type CheckReport struct {
	guardian.Result
	Payload payload.Payload `json:"payload"`
}

// #endregion check-report

// #region epoch-result

// EpochResult is one planning epoch's outcome.
type EpochResult struct {
	Metrics diversity.CoverageMetrics `json:"metrics"`
	Plan    diversity.Plan            `json:"plan"`
}

// #endregion epoch-result
