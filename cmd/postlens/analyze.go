// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/postlens/internal/classify"
	"github.com/pdiddy/postlens/internal/extract"
	"github.com/pdiddy/postlens/internal/normalize"
	"github.com/pdiddy/postlens/internal/pipeline"
	"github.com/pdiddy/postlens/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the archive analysis pipeline",
	Long: `Analyze reads post records from a YAML or JSON file (or a directory of
them), runs the full pipeline, and writes markdown reports: one file per
category bucket, belief and preference listings, and a master summary.

Malformed records are skipped and counted, never silently dropped; the
final summary always reports skipped and ambiguous counts.`,
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	input, _ := cmd.Flags().GetString("input")
	records, err := normalize.LoadRecords(input)
	if err != nil {
		return err
	}

	cfg, err := pipelineConfig(cmd)
	if err != nil {
		return err
	}

	oracle, closeCache, err := buildOracle(cfg.Extract.CachePath)
	if err != nil {
		return err
	}
	defer closeCache()

	result, err := pipeline.Run(ctx, records, oracle, cfg, os.Stderr)
	if err != nil {
		return err
	}

	if diagPath, _ := cmd.Flags().GetString("diagnostics"); diagPath != "" {
		if err := pipeline.WriteDiagnostics(diagPath, result.Diags); err != nil {
			return err
		}
	}

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"run_id":                result.Diags.RunID,
			"posts":                 len(result.Posts),
			"statements":            len(result.Statements),
			"dedup_groups":          len(result.Groups),
			"skipped_records":       result.Diags.SkippedRecords,
			"unclassifiable_posts":  result.Diags.UnclassifiablePosts,
			"ambiguous_extractions": result.Diags.AmbiguousExtractions,
			"output_dir":            cfg.Report.OutputDir,
		})
	}

	fmt.Printf("Reports written to %s\n", cfg.Report.OutputDir)
	return nil
}

// pipelineConfig assembles the stage configuration from flags, with viper
// config-file values backing any flag the user left unset.
func pipelineConfig(cmd *cobra.Command) (types.PipelineConfig, error) {
	output, _ := cmd.Flags().GetString("output")
	generatedAt, _ := cmd.Flags().GetString("generated-at")
	if generatedAt == "" {
		generatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	buckets := types.DefaultBuckets()
	bucketsFile, _ := cmd.Flags().GetString("buckets")
	if bucketsFile == "" {
		bucketsFile = viper.GetString("buckets_file")
	}
	if bucketsFile != "" {
		loaded, err := classify.LoadBuckets(bucketsFile)
		if err != nil {
			return types.PipelineConfig{}, err
		}
		buckets = loaded
	}

	workers, _ := cmd.Flags().GetInt("workers")

	cachePath, _ := cmd.Flags().GetString("cache")
	if cachePath == "" {
		cachePath = viper.GetString("cache_path")
	}

	return types.PipelineConfig{
		Normalize: types.NormalizeConfig{
			Baseline: floatFlag(cmd, "baseline"),
		},
		Extract: types.ExtractConfig{
			CachePath: cachePath,
			Workers:   workers,
		},
		Classify: types.ClassifyConfig{
			Buckets:  buckets,
			MinScore: floatFlag(cmd, "min-category-score"),
			TagBoost: viper.GetFloat64("tag_boost"),
		},
		Dedup: types.DedupConfig{
			Threshold: floatFlag(cmd, "dedup-threshold"),
		},
		Rank: types.RankConfig{
			TopN: intFlag(cmd, "top-n"),
		},
		Report: types.ReportConfig{
			OutputDir:   output,
			GeneratedAt: generatedAt,
		},
	}, nil
}

// buildOracle returns the extraction oracle, wrapped in the SQLite result
// cache when a cache path is configured. The returned func releases the
// cache.
func buildOracle(cachePath string) (extract.Oracle, func(), error) {
	var oracle extract.Oracle = extract.RuleOracle{}
	if cachePath == "" {
		return oracle, func() {}, nil
	}

	cache, err := extract.NewCache(cachePath, oracle)
	if err != nil {
		return nil, nil, err
	}
	return cache, func() { cache.Close() }, nil
}

// floatFlag reads a float flag, falling back to the viper key of the same
// name (dashes to underscores) when the flag was not set on the command line.
func floatFlag(cmd *cobra.Command, name string) float64 {
	if !cmd.Flags().Changed(name) {
		if key := viperKey(name); viper.IsSet(key) {
			return viper.GetFloat64(key)
		}
	}
	v, _ := cmd.Flags().GetFloat64(name)
	return v
}

func intFlag(cmd *cobra.Command, name string) int {
	if !cmd.Flags().Changed(name) {
		if key := viperKey(name); viper.IsSet(key) {
			return viper.GetInt(key)
		}
	}
	v, _ := cmd.Flags().GetInt(name)
	return v
}

func viperKey(flag string) string {
	out := make([]rune, 0, len(flag))
	for _, r := range flag {
		if r == '-' {
			r = '_'
		}
		out = append(out, r)
	}
	return string(out)
}

func init() {
	analyzeCmd.Flags().String("input", "", "post records file or directory (YAML or JSON)")
	analyzeCmd.Flags().String("output", "reports", "directory for markdown artifacts")
	analyzeCmd.Flags().Float64("dedup-threshold", 0.8, "minimum token-set similarity for statements to merge")
	analyzeCmd.Flags().Int("top-n", 10, "entries per category report")
	analyzeCmd.Flags().Float64("min-category-score", 1.0, "keyword score required to join a bucket")
	analyzeCmd.Flags().Float64("baseline", 1, "audience-size baseline dividing the engagement score")
	analyzeCmd.Flags().String("buckets", "", "YAML file overriding the built-in category buckets")
	analyzeCmd.Flags().String("cache", "", "SQLite file pinning oracle results per input text")
	analyzeCmd.Flags().Int("workers", 0, "extraction worker pool size (0 = NumCPU)")
	analyzeCmd.Flags().String("generated-at", "", "timestamp stamped into reports (default: now, UTC RFC3339)")
	analyzeCmd.Flags().String("diagnostics", "", "write the run diagnostics report to this YAML file")
	analyzeCmd.Flags().Bool("json", false, "print the run summary as JSON")
	analyzeCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(analyzeCmd)
}
