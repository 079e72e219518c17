// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the postlens CLI.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/postlens/internal/report"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the postlens CLI.
var rootCmd = &cobra.Command{
	Use:   "postlens",
	Short: "Content analysis for personal social-media archives",
	Long: `postlens analyzes an exported archive of social-media posts. It extracts
belief and preference statements from post text, classifies posts into
category buckets, deduplicates near-identical statements, ranks everything
by engagement, and emits deterministic markdown reports.

The analyze subcommand runs the whole pipeline; buckets prints the
effective category configuration.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./postlens.yaml or ~/.config/postlens/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("postlens")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "postlens"))
		}
	}

	viper.SetEnvPrefix("POSTLENS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// exitCode maps a run error to the CLI exit code: 2 when an output artifact
// could not be written, 1 for everything else (unreadable or empty input
// included).
func exitCode(err error) int {
	var wf *report.WriteFailure
	if errors.As(err, &wf) {
		return 2
	}
	return 1
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}
