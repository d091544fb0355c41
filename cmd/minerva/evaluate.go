package main

import (
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"aegis-hq/minerva/pkg/cli"
	"aegis-hq/minerva/pkg/rules"
	"aegis-hq/minerva/pkg/rules/source"
)

var evaluateFlags struct {
	inputPath     string
	overridesPath string
	strict        bool
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate one request against the rule catalog",
	Long: `Evaluate a single tool-usage request against the governance rule catalog
and print the validation result.

The input is an evaluation context document, read from --input or stdin:

  {"enterpriseId": "ent-1", "input": {"toolName": "summarizer", "prompt": "..."}}

Examples:
  # Evaluate a request from a file
  minerva evaluate --input request.json

  # Evaluate from stdin, fail the command on a violation
  cat request.json | minerva evaluate --strict`,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVarP(&evaluateFlags.inputPath, "input", "i", "-", "input file (\"-\" for stdin)")
	evaluateCmd.Flags().StringVar(&evaluateFlags.overridesPath, "overrides", "", "rule overrides file")
	evaluateCmd.Flags().BoolVar(&evaluateFlags.strict, "strict", false, "exit non-zero when the overall outcome is STRICT_FAIL")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	data, err := readInput(evaluateFlags.inputPath)
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}

	var ec rules.Context
	if err := json.Unmarshal(data, &ec); err != nil {
		return cli.NewCommandError("evaluate", err)
	}
	if ec.Timestamp.IsZero() {
		ec.Timestamp = time.Now()
	}

	registry, err := rules.NewWithDefaults(slog.Default())
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}
	if evaluateFlags.overridesPath != "" {
		if err := source.LoadAndApply(evaluateFlags.overridesPath, registry); err != nil {
			return cli.NewCommandError("evaluate", err)
		}
	}

	result := registry.ExecuteRules(&ec)

	formatter := cli.NewFormatter(cli.OutputFormat(outputFormat))
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return cli.NewCommandError("evaluate", err)
	}

	if evaluateFlags.strict && result.Overall == rules.StrictFail {
		os.Exit(1)
	}
	return nil
}
