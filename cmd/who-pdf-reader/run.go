package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cgostic/who-pdf-reader/internal/acquire"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch the published reports and extract their cases",
	Long: `Run lists the report PDFs linked from the WHO index page, keeps those
published on or after --since, and processes them one at a time: each report is
downloaded to the temporary folder, extracted and deleted before the next one
is fetched. The per-strain CSV files are written at the end.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().String("since", "", "skip reports dated before this day (YYYY-MM-DD)")
	runCmd.Flags().String("index-url", "", "page linking the report PDFs")
	runCmd.Flags().String("tmp-dir", "", "folder holding the report being processed")

	_ = viper.BindPFlag("fetch.since", runCmd.Flags().Lookup("since"))
	_ = viper.BindPFlag("fetch.index_url", runCmd.Flags().Lookup("index-url"))
	_ = viper.BindPFlag("fetch.tmp_dir", runCmd.Flags().Lookup("tmp-dir"))

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: cfg.Fetch.Timeout}
	fetcher, err := acquire.NewFetcher(cfg.Fetch, client)
	if err != nil {
		return err
	}

	sess, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}

	summary, runErr := sess.pipe.ProcessRemote(ctx, fetcher, sess.opener, os.Stdout)
	if err := os.Remove(cfg.Fetch.TmpDir); err != nil && !os.IsNotExist(err) {
		log.Debug().Err(err).Str("dir", cfg.Fetch.TmpDir).Msg("temporary folder kept")
	}
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
