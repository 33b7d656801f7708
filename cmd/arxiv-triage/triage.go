// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/arxiv-triage/internal/archive"
	"github.com/pdiddy/arxiv-triage/internal/arxiv"
	"github.com/pdiddy/arxiv-triage/internal/pipeline"
	"github.com/pdiddy/arxiv-triage/internal/reason"
	"github.com/pdiddy/arxiv-triage/internal/session"
	"github.com/pdiddy/arxiv-triage/pkg/types"
)

var triageCmd = &cobra.Command{
	Use:   "triage [query]",
	Short: "Run the five-stage triage pipeline for one query",
	Long: `Triage retrieves recent arXiv papers matching the query and the
interest profile, analyzes each paper, extracts notation, scores
relevance, and prints the synthesized digest.

The pipeline degrades rather than aborts: a stage failure yields a
partial result carrying everything produced up to that point.`,
	Args: cobra.ExactArgs(1),
	RunE: runTriage,
}

func runTriage(cmd *cobra.Command, args []string) error {
	cfg := resolveConfig()
	if cfg.AI.APIKey == "" {
		return fmt.Errorf("no OpenAI API key: set ARXIV_TRIAGE_OPENAI_API_KEY, ai.api_key in config, or .secrets/openai-api-key")
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	logger, err := newLogger(verbose)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	arch, err := archive.NewStore()
	if err != nil {
		return fmt.Errorf("opening run archive: %w", err)
	}
	defer arch.Close()

	p := pipeline.New(cfg,
		arxiv.NewClient(cfg.Retrieval),
		reason.NewOpenAIService(cfg.AI),
		session.NewStore(),
		arch,
		logger)

	sessionID, _ := cmd.Flags().GetString("session")
	if profile, ok := profileFromFlags(cmd); ok {
		if sessionID == "" {
			sessionID = session.NewID()
		}
		p.UpdatePreferences(sessionID, profile)
	}

	env, snap := p.Run(context.Background(), args[0], sessionID)

	if err := printEnvelope(cmd, env); err != nil {
		return err
	}
	printMetricsSummary(os.Stderr, snap)

	runs, err := arch.List(env.SessionID, runLogLimit)
	if err != nil {
		return fmt.Errorf("listing archived runs: %w", err)
	}
	printRunLog(os.Stderr, runs)

	if path, _ := cmd.Flags().GetString("export-runs"); path != "" {
		if err := exportRuns(path, arch); err != nil {
			return err
		}
	}

	if env.Status == pipeline.StatusPartial {
		return fmt.Errorf("pipeline partial: %s failed: %s", env.FailedStage, env.FailureReason)
	}
	return nil
}

// resolveConfig builds the pipeline configuration from defaults, config
// file values, and loaded secrets, in that order.
func resolveConfig() types.PipelineConfig {
	cfg := types.DefaultPipelineConfig()

	if v := viper.GetInt("retrieval.max_results"); v > 0 {
		cfg.Retrieval.MaxResults = v
	}
	if v := viper.GetDuration("retrieval.cooldown"); v > 0 {
		cfg.Retrieval.Cooldown = v
	}
	if v := viper.GetInt("retrieval.max_retries"); v > 0 {
		cfg.Retrieval.MaxRetries = v
	}
	if v := viper.GetDuration("retrieval.timeout"); v > 0 {
		cfg.Retrieval.Timeout = v
	}
	if v := viper.GetString("ai.model"); v != "" {
		cfg.AI.Model = v
	}
	if v := viper.GetDuration("ai.timeout"); v > 0 {
		cfg.AI.Timeout = v
	}
	cfg.AI.APIKey = secretDefault("openai-api-key", viper.GetString("openai_api_key"))

	return cfg
}

// profileFromFlags builds an interest profile from the triage flags.
// Returns false when no profile flag was set, leaving the session's
// stored (or default) profile in effect.
func profileFromFlags(cmd *cobra.Command) (types.InterestProfile, bool) {
	keywords, _ := cmd.Flags().GetString("keywords")
	categories, _ := cmd.Flags().GetString("categories")
	maxResults, _ := cmd.Flags().GetInt("max-results")

	if keywords == "" && categories == "" && !cmd.Flags().Changed("max-results") {
		return types.InterestProfile{}, false
	}

	profile := types.DefaultProfile()
	if keywords != "" {
		profile.Keywords = splitList(keywords)
	}
	if categories != "" {
		profile.Categories = splitList(categories)
	}
	if cmd.Flags().Changed("max-results") {
		profile.MaxResults = maxResults
	}
	return profile, true
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func printEnvelope(cmd *cobra.Command, env *pipeline.Envelope) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(env)
	}

	data, err := yaml.Marshal(env)
	if err != nil {
		return fmt.Errorf("rendering result: %w", err)
	}
	_, err = os.Stdout.Write(data)
	return err
}

func printMetricsSummary(w *os.File, snap types.MetricsSnapshot) {
	fmt.Fprintf(w, "\n%d stage invocation(s), %.1f%% successful, %s total\n",
		snap.TotalInvocations(), snap.SuccessRatePercent(), snap.TotalDuration().Round(time.Millisecond))
	for _, stage := range pipeline.Stages {
		m, ok := snap.Stages[stage]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "  %-16s %d run(s), %d failure(s), mean %s\n",
			stage, m.Invocations, m.Failures, m.MeanDuration.Round(time.Millisecond))
	}
}

// runLogLimit caps the archived-run listing printed after a triage run.
const runLogLimit = 5

// printRunLog lists the session's archived runs, newest first.
func printRunLog(w io.Writer, runs []archive.RunRecord) {
	if len(runs) == 0 {
		return
	}
	fmt.Fprintln(w, "\nArchived runs this session:")
	for _, r := range runs {
		fmt.Fprintf(w, "  %s  %-8s  %2d paper(s)  %s  %q\n",
			r.CreatedAt.Format("15:04:05"), r.Status, r.DocumentCount,
			r.Elapsed.Round(time.Millisecond), r.Query)
	}
}

// exportRuns writes the full run archive to path as YAML.
func exportRuns(path string, arch *archive.Store) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := arch.ExportYAML(f); err != nil {
		return fmt.Errorf("exporting runs: %w", err)
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.OutputPaths = []string{"stderr"}
	if verbose {
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zapCfg.Build()
}

func init() {
	triageCmd.Flags().String("session", "", "session ID for preference and history continuity")
	triageCmd.Flags().String("keywords", "", "interest keywords (comma-separated)")
	triageCmd.Flags().String("categories", "", "arXiv categories (comma-separated, e.g. quant-ph,cs.AI)")
	triageCmd.Flags().Int("max-results", 20, "maximum number of papers to retrieve (1-50)")
	triageCmd.Flags().Bool("json", false, "output the result envelope as JSON")
	triageCmd.Flags().String("export-runs", "", "write the archived runs as YAML to this file")

	rootCmd.AddCommand(triageCmd)
}
