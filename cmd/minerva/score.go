package main

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"aegis-hq/minerva/pkg/cli"
	"aegis-hq/minerva/pkg/risk"
)

var scoreFlags struct {
	inputPath  string
	region     string
	toolID     string
	timeWindow string
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a telemetry batch",
	Long: `Compute the composite risk score for a batch of telemetry atoms and
print the result.

The input is a batch document, read from --input or stdin:

  {"atoms": [{"timestamp": "2026-08-31T10:00:00Z",
              "event_type": "policy_violation", "severity": "critical"}],
   "options": {"region": "EU", "toolId": "summarizer", "timeWindow": "24h"}}

A bare JSON array of atoms is also accepted. Flags override the options in
the document.

Examples:
  # Score a batch from a file with EU weighting
  minerva score --input atoms.json --region EU

  # Score from stdin
  cat atoms.json | minerva score --tool summarizer`,
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVarP(&scoreFlags.inputPath, "input", "i", "-", "input file (\"-\" for stdin)")
	scoreCmd.Flags().StringVar(&scoreFlags.region, "region", "", "regional weighting (EU, US, APAC)")
	scoreCmd.Flags().StringVar(&scoreFlags.toolID, "tool", "", "tool the batch concerns")
	scoreCmd.Flags().StringVar(&scoreFlags.timeWindow, "window", "", "observation window (e.g. 24h, 7d)")
}

func runScore(cmd *cobra.Command, args []string) error {
	data, err := readInput(scoreFlags.inputPath)
	if err != nil {
		return cli.NewCommandError("score", err)
	}

	var batch struct {
		Atoms   []risk.Atom  `json:"atoms"`
		Options risk.Options `json:"options"`
	}
	if err := json.Unmarshal(data, &batch); err != nil {
		// Accept a bare array of atoms too.
		if arrErr := json.Unmarshal(data, &batch.Atoms); arrErr != nil {
			return cli.NewCommandError("score", err)
		}
	}

	if scoreFlags.region != "" {
		batch.Options.Region = scoreFlags.region
	}
	if scoreFlags.toolID != "" {
		batch.Options.ToolID = scoreFlags.toolID
	}
	if scoreFlags.timeWindow != "" {
		batch.Options.TimeWindow = scoreFlags.timeWindow
	}

	scorer := risk.NewScorer(nil, nil, slog.Default())
	score := scorer.Score(cmd.Context(), batch.Atoms, batch.Options)

	formatter := cli.NewFormatter(cli.OutputFormat(outputFormat))
	if err := formatter.FormatTo(os.Stdout, score); err != nil {
		return cli.NewCommandError("score", err)
	}
	return nil
}
