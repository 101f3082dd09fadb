// Package commands implements the mtpcompat CLI.
package commands

import (
	"errors"

	"github.com/spf13/cobra"
)

// ErrInvestigationRequired signals that the run produced unresolved
// differences (unlabeled or candidate-defect entries). The process exits 1;
// configuration and argument errors exit 2.
var ErrInvestigationRequired = errors.New("unresolved differences present, investigation required")

var rootCmd = &cobra.Command{
	Use:   "mtpcompat",
	Short: "MTP toolchain compatibility harness",
	Long: `mtpcompat runs the reference (libmtp) and candidate MTP toolchains
against the same attached device, normalizes their output into a common
shape, diffs the results with a configurable timestamp tolerance,
classifies each difference against a per-device expectation overlay, and
writes a structured evidence bundle to disk.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(matrixCmd)
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}
