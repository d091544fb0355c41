// Package cli provides shared helpers for the minerva command-line
// interface.
//
// # Overview
//
// The package contains the pieces every subcommand needs: typed errors that
// distinguish configuration problems from command failures, output
// formatting for one-shot decision commands, and signal handling for the
// long-running server command.
//
// # Basic Usage
//
//	formatter := cli.NewFormatter(cli.FormatJSON)
//	if err := formatter.FormatTo(os.Stdout, result); err != nil {
//		return cli.NewCommandError("evaluate", err)
//	}
package cli
