package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/postlens/internal/classify"
	"github.com/pdiddy/postlens/pkg/types"
)

var bucketsCmd = &cobra.Command{
	Use:   "buckets",
	Short: "Print the effective category bucket configuration",
	Long: `Buckets prints the category set the classifier would use, as YAML:
bucket names, keyword weights, and the fallback bucket. Pass --buckets to
inspect a custom set instead of the built-in one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		buckets := types.DefaultBuckets()

		path, _ := cmd.Flags().GetString("buckets")
		if path != "" {
			loaded, err := classify.LoadBuckets(path)
			if err != nil {
				return err
			}
			buckets = loaded
		}

		data, err := yaml.Marshal(buckets)
		if err != nil {
			return fmt.Errorf("encoding buckets: %w", err)
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

func init() {
	bucketsCmd.Flags().String("buckets", "", "YAML bucket file to inspect")

	rootCmd.AddCommand(bucketsCmd)
}
