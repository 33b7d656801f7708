// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/arxiv-triage/pkg/types"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show the effective interest profile",
	Long: `Prefs resolves the interest profile the triage command would use
(defaults overridden by any --keywords, --categories, or --max-results
flags) and prints it as YAML. Useful for checking a profile before
spending API calls on it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, ok := profileFromFlags(cmd)
		if !ok {
			profile = types.DefaultProfile()
		}
		data, err := yaml.Marshal(profile)
		if err != nil {
			return fmt.Errorf("rendering profile: %w", err)
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

func init() {
	prefsCmd.Flags().String("keywords", "", "interest keywords (comma-separated)")
	prefsCmd.Flags().String("categories", "", "arXiv categories (comma-separated)")
	prefsCmd.Flags().Int("max-results", 20, "maximum number of papers to retrieve (1-50)")

	rootCmd.AddCommand(prefsCmd)
}
