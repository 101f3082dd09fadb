package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/effortless-metrics/mtpcompat/internal/matrix"
)

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Regenerate the compatibility matrix document from the quirks database",
	RunE:  runMatrix,
}

var (
	matrixQuirksPath string
	matrixOutPath    string
)

func init() {
	matrixCmd.Flags().StringVar(&matrixQuirksPath, "quirks", "Specs/quirks.json", "Path to the quirks database")
	matrixCmd.Flags().StringVar(&matrixOutPath, "out", "Docs/compat-matrix.md", "Output path for the matrix document")
}

func runMatrix(cmd *cobra.Command, args []string) error {
	db, err := matrix.Load(matrixQuirksPath)
	if err != nil {
		return err
	}

	out, err := os.Create(matrixOutPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", matrixOutPath, err)
	}
	defer out.Close()

	if err := db.WriteMarkdown(out); err != nil {
		return err
	}

	fmt.Printf("Generated %s: %d entries\n", matrixOutPath, len(db.Entries))
	return nil
}
