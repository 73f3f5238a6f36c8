package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/outcrop-ai/pipeline-governor/internal/dataset"
	"github.com/outcrop-ai/pipeline-governor/internal/patch"
	"github.com/outcrop-ai/pipeline-governor/internal/replay"
	"github.com/outcrop-ai/pipeline-governor/internal/run"
	"github.com/outcrop-ai/pipeline-governor/internal/runlog"
	"github.com/outcrop-ai/pipeline-governor/internal/snapshot"
)

func init() {
	rootCmd.AddCommand(recordCmd, evaluateCmd, checkCmd, planCmd, sampleCmd,
		snapshotCmd, snapshotsCmd, rollbackCmd, replayCmd, inspectCmd)

	sampleCmd.Flags().String("entity", "", "entity the sample covers")
	sampleCmd.Flags().String("type", "", "question type")
	sampleCmd.Flags().String("source", "", "evidence source")
	sampleCmd.MarkFlagRequired("entity")
	sampleCmd.MarkFlagRequired("type")
	sampleCmd.MarkFlagRequired("source")

	inspectCmd.Flags().Int("limit", 10, "number of run records to show")
}

// readJSONFile decodes one JSON document into out.
func readJSONFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

var recordCmd = &cobra.Command{
	Use:   "record <run-record.json>",
	Short: "Append a run record to the history log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var rec run.Record
		if err := readJSONFile(args[0], &rec); err != nil {
			return err
		}

		runs, err := runlog.NewStore(cfg.DBPath)
		if err != nil {
			return err
		}
		defer runs.Close()

		return runs.Append(rec)
	},
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <run-record.json> <card.json>",
	Short: "Run one feedback cycle: record, score, gate, apply",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var rec run.Record
		if err := readJSONFile(args[0], &rec); err != nil {
			return err
		}
		var card patch.Card
		if err := readJSONFile(args[1], &card); err != nil {
			return err
		}
		if card.ID == "" {
			card = patch.NewCard(card.Deltas, card.Selectors, card.RiskTier)
		}

		d, err := openDeps()
		if err != nil {
			return err
		}
		defer d.Close()

		result, err := d.ctrl.RunCycle(rec, card)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <result.json>",
	Short: "Run the performance guardian on a generated result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var res run.Result
		if err := readJSONFile(args[0], &res); err != nil {
			return err
		}

		d, err := openDeps()
		if err != nil {
			return err
		}
		defer d.Close()

		return printJSON(d.ctrl.CheckResult(res))
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute the diversity plan for the current epoch",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps()
		if err != nil {
			return err
		}
		defer d.Close()

		epoch, err := d.ctrl.PlanEpoch()
		if err != nil {
			return err
		}
		return printJSON(epoch)
	},
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Append a sample to the coverage dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		entity, _ := cmd.Flags().GetString("entity")
		qtype, _ := cmd.Flags().GetString("type")
		source, _ := cmd.Flags().GetString("source")

		runs, err := runlog.NewStore(cfg.DBPath)
		if err != nil {
			return err
		}
		defer runs.Close()

		samples, err := dataset.NewStore(runs.DB())
		if err != nil {
			return err
		}
		return samples.AddSample(dataset.Sample{
			Entity:         entity,
			QuestionType:   qtype,
			EvidenceSource: source,
		})
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Capture a snapshot of the tracked files",
	RunE: func(cmd *cobra.Command, args []string) error {
		snaps, err := snapshot.NewManager(snapshot.Config{
			Dir:          cfg.SnapshotDir,
			Root:         cfg.Root,
			TrackedPaths: append([]string{liveConfigName}, cfg.TrackedPaths...),
		})
		if err != nil {
			return err
		}
		id, err := snaps.Snapshot()
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	},
}

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List snapshots, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		snaps, err := snapshot.NewManager(snapshot.Config{
			Dir:  cfg.SnapshotDir,
			Root: cfg.Root,
		})
		if err != nil {
			return err
		}
		metas, err := snaps.ListSnapshots()
		if err != nil {
			return err
		}
		return printJSON(metas)
	},
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Restore the most recent snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps()
		if err != nil {
			return err
		}
		defer d.Close()

		id, err := d.ctrl.Rollback()
		if err != nil {
			return err
		}
		fmt.Printf("restored snapshot %s\n", id)
		return nil
	},
}

var replayCmd = &cobra.Command{
	Use:   "replay <fixture.json>",
	Short: "Replay a recorded fixture and verify expected decisions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fixture, err := replay.LoadFixture(args[0])
		if err != nil {
			return err
		}

		mismatches, summary := replay.Verify(fixture)
		fmt.Printf("%s: %d turns, %d applied, %d skipped, %d vetoed\n",
			fixture.Description, summary.TotalTurns, summary.Applied,
			summary.Skipped, summary.Vetoed)

		if len(mismatches) == 0 {
			fmt.Println("all expectations met")
			return nil
		}
		for _, m := range mismatches {
			fmt.Printf("  turn %s: %s want %s, got %s\n", m.TurnID, m.Field, m.Want, m.Got)
		}
		return fmt.Errorf("%d mismatches", len(mismatches))
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show recent run records and the live configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		d, err := openDeps()
		if err != nil {
			return err
		}
		defer d.Close()

		records, err := d.runs.List(limit)
		if err != nil {
			return err
		}

		out := map[string]any{
			"recent_runs": records,
			"live_config": d.ctrl.LiveConfig(),
		}
		return printJSON(out)
	},
}
