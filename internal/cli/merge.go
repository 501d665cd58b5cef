package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-docx-merger/internal/logger"
	"github.com/nerdneilsfield/go-docx-merger/pkg/docx"
)

var mergeOutput string

// NewMergeCommand creates the merge command: local DOCX files in, one
// merged DOCX file out.
func NewMergeCommand() *cobra.Command {
	mergeCmd := &cobra.Command{
		Use:   "merge [flags] base.docx second.docx [more.docx...]",
		Short: "Merge DOCX files into a single document",
		Long: `Merge two or more DOCX files into a single document. The first file is
the base; every other document's body is appended in order, each preceded
by a page break. The base document's styles and page geometry apply to the
whole result.

Examples:
  # Merge two documents
  docmerger merge report.docx appendix.docx

  # Choose the output path
  docmerger merge -o combined.docx a.docx b.docx c.docx`,
		Args: cobra.MinimumNArgs(2),
		RunE: runMergeCommand,
	}

	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "merged.docx", "output file path")

	return mergeCmd
}

func runMergeCommand(cmd *cobra.Command, args []string) error {
	log := logger.NewLogger(debugMode)
	defer func() {
		_ = log.Sync()
	}()

	inputs := make([]docx.Input, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		inputs = append(inputs, docx.Input{Name: path, Data: data})
	}

	merged, err := docx.NewMerger(log).Merge(inputs)
	if err != nil {
		return err
	}

	if err := os.WriteFile(mergeOutput, merged, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", mergeOutput, err)
	}

	log.Debug("merge finished",
		zap.Int("documents", len(inputs)),
		zap.String("output", mergeOutput))

	color.Green("Merged %d documents into %s (%d bytes)", len(inputs), mergeOutput, len(merged))

	return nil
}
