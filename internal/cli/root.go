package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	debugMode bool
)

// NewRootCommand creates the root command with the merge and serve
// subcommands attached.
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "docmerger",
		Short: "docmerger combines DOCX documents and serves the merge API",
		Long: `docmerger combines multiple DOCX documents into one, preserving the
content and order of every input and separating them with explicit page
breaks. The first document is the base: its styles, media, and page
geometry carry over to the result.

Run it as a one-shot CLI (docmerger merge) or as an HTTP service
(docmerger serve) with endpoints for merging, AI text extraction, and
object-store uploads.`,
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .docmerger.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")

	rootCmd.AddCommand(NewMergeCommand())
	rootCmd.AddCommand(NewServeCommand())

	return rootCmd
}
