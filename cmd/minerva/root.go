package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "minerva",
	Short: "Minerva - deterministic policy decision engine",
	Long: `Minerva is a deterministic policy decision engine for AI governance.

It serves three decision surfaces over an HTTP API and as one-shot commands:
  - Rule-based evaluation of tool-usage requests
  - Composite risk scoring of usage telemetry
  - Policy harmonization across jurisdictions

Identical inputs always produce identical decisions.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "json", "output format (json, text)")
}
