// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the who-pdf-reader CLI, which
// extracts human avian influenza case records from WHO risk-assessment
// reports into one CSV file per tracked strain.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/cgostic/who-pdf-reader/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the who-pdf-reader CLI.
var rootCmd = &cobra.Command{
	Use:   "who-pdf-reader",
	Short: "Extract avian influenza case records from WHO surveillance reports",
	Long: `who-pdf-reader reads WHO "Influenza at the human-animal interface" risk
assessment PDFs and writes one CSV row per reported human case of each tracked
strain (H5N1 and H7N9 by default).

run fetches the published reports one at a time; parse reads local files.
Values that cannot be read reliably are written as sentinels and listed in the
review file for manual reconciliation.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		setupLogging(verbose)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./who-pdf-reader.yaml or ~/.config/who-pdf-reader/who-pdf-reader.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("results-dir", "", "directory receiving the CSV and review files")
	rootCmd.PersistentFlags().String("backend", "", "PDF backend: pdf or container")
	rootCmd.PersistentFlags().String("store", "", "SQLite archive path (empty disables archiving)")

	_ = viper.BindPFlag("output.results_dir", rootCmd.PersistentFlags().Lookup("results-dir"))
	_ = viper.BindPFlag("conversion.backend", rootCmd.PersistentFlags().Lookup("backend"))
	_ = viper.BindPFlag("store.path", rootCmd.PersistentFlags().Lookup("store"))

	setDefaults()
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("who-pdf-reader")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "who-pdf-reader"))
		}
	}

	viper.SetEnvPrefix("WHO_PDF_READER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every key of the default configuration so that
// environment variables can override keys absent from the config file.
func setDefaults() {
	data, err := yaml.Marshal(types.DefaultConfig())
	if err != nil {
		return
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return
	}
	for k, v := range m {
		viper.SetDefault(k, v)
	}
}

// loadConfig returns the effective configuration: defaults overlaid by
// the config file, environment and flags.
func loadConfig() (types.PipelineConfig, error) {
	cfg := types.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}
	return cfg, nil
}

func setupLogging(verbose bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
