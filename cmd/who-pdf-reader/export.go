package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cgostic/who-pdf-reader/internal/pipeline"
	"github.com/cgostic/who-pdf-reader/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Re-write the CSV files of an archived run",
	Long: `Export reads the case records and review notes of an archived run from the
SQLite store and writes the per-strain CSV files and the review file again. The
latest run is used unless --run names another. --list prints the archived runs.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("run", "", "run id (default: latest run)")
	exportCmd.Flags().Bool("list", false, "list archived runs instead of exporting")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Store.Path == "" {
		return fmt.Errorf("no store configured; set store.path or pass --store")
	}

	s, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	if list, _ := cmd.Flags().GetBool("list"); list {
		runs, err := s.Runs(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "RUN\tSTARTED\tPROCESSED\tSKIPPED\tFAILED\tCASES")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\n",
				r.ID, r.StartedAt.Local().Format(time.DateTime), r.Processed, r.Skipped, r.Failed, r.Cases)
		}
		return tw.Flush()
	}

	runID, _ := cmd.Flags().GetString("run")
	if runID == "" {
		if runID, err = s.LatestRun(ctx); err != nil {
			return err
		}
	}

	recs, err := s.Records(ctx, runID)
	if err != nil {
		return err
	}
	review, err := s.Review(ctx, runID)
	if err != nil {
		return err
	}

	set := pipeline.NewCollection(strainCodes(cfg.Extraction))
	set.Append(recs...)
	fmt.Fprintf(os.Stdout, "run %s: %d cases\n", runID, set.Len())
	return writeArtifacts(cfg.Output, set, review, os.Stdout)
}
