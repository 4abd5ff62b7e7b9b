package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cgostic/who-pdf-reader/internal/pipeline"
)

var parseCmd = &cobra.Command{
	Use:   "parse [pdf files or directories...]",
	Short: "Extract cases from local report PDFs",
	Long: `Parse runs the extraction over report PDFs already on disk. Directories
contribute every .pdf file they contain, in name order. Reports are processed in
the order given, which is also the row order of the CSV files.`,
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more report PDFs or directories")
	}
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	paths, err := pipeline.PDFPaths(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no PDF files found in %v", args)
	}

	sess, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}

	summary, runErr := sess.pipe.ProcessFiles(ctx, paths, sess.opener, os.Stdout)
	if err := sess.finish(ctx, summary, os.Stdout); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d report(s) failed", summary.Failed)
	}
	return nil
}
