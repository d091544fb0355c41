package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"aegis-hq/minerva/pkg/cli"
	"aegis-hq/minerva/pkg/harmonize"
)

var harmonizeFlags struct {
	inputPath string
	strategy  string
}

var harmonizeCmd = &cobra.Command{
	Use:   "harmonize",
	Short: "Harmonize two policy rule sets",
	Long: `Combine two policy rule sets into one harmonized set and print the
result with its conflict report.

The input is a document with both rule sets, read from --input or stdin:

  {"rulesA": [...], "rulesB": [...]}

Examples:
  # Merge two policies, reporting conflicts
  minerva harmonize --input policies.json

  # Strict intersection of the two policies
  minerva harmonize --input policies.json --strategy strict`,
	RunE: runHarmonize,
}

func init() {
	rootCmd.AddCommand(harmonizeCmd)

	harmonizeCmd.Flags().StringVarP(&harmonizeFlags.inputPath, "input", "i", "-", "input file (\"-\" for stdin)")
	harmonizeCmd.Flags().StringVarP(&harmonizeFlags.strategy, "strategy", "s", "merge", "harmonization strategy (merge, strict, permissive)")
}

func runHarmonize(cmd *cobra.Command, args []string) error {
	data, err := readInput(harmonizeFlags.inputPath)
	if err != nil {
		return cli.NewCommandError("harmonize", err)
	}

	var doc struct {
		RulesA []harmonize.PolicyRule `json:"rulesA"`
		RulesB []harmonize.PolicyRule `json:"rulesB"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return cli.NewCommandError("harmonize", err)
	}

	strategy, err := harmonize.ParseStrategy(harmonizeFlags.strategy)
	if err != nil {
		return cli.NewConfigError("strategy", err.Error())
	}

	harmonizer := harmonize.New(slog.Default())
	result := harmonizer.Harmonize(doc.RulesA, doc.RulesB, strategy)

	formatter := cli.NewFormatter(cli.OutputFormat(outputFormat))
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return cli.NewCommandError("harmonize", err)
	}

	if len(result.Conflicts) > 0 {
		fmt.Fprintf(os.Stderr, "%d conflict(s) detected\n", len(result.Conflicts))
	}
	return nil
}
