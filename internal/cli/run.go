package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/dealbench/internal/cache"
	"github.com/ppiankov/dealbench/internal/dispatch"
	"github.com/ppiankov/dealbench/internal/judge"
	"github.com/ppiankov/dealbench/internal/model"
	"github.com/ppiankov/dealbench/internal/pipeline"
	"github.com/ppiankov/dealbench/internal/score"
	"github.com/ppiankov/dealbench/internal/store"
)

var (
	runDealsDir     string
	runOutputDir    string
	runDeals        []string
	runMode         string
	runEndpoint     string
	runAgentID      string
	runTimeout      time.Duration
	runConcurrency  int
	runDryRun       bool
	runSkipExternal bool
	runNoAnonymize  bool
	runNoCache      bool
	runNoLegacy     bool
	runSave         bool
	judgeProvider   string
	judgeModel      string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the benchmark against an agent endpoint",
	Long: `Run loads the deal corpus, classifies each deal into a tier, builds the
checkpoint sequence, dispatches every task to the agent endpoint, judges the
answers, and writes the aggregated result.

Example:
  dealbench run --endpoint http://localhost:8080/agent
  dealbench run --endpoint http://localhost:8080/agent --deals acme-corp,globex
  dealbench run --dry-run
  dealbench run --endpoint http://localhost:8080/agent --judge openai --judge-model gpt-4o-mini`,
	RunE: runBenchmark,
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Corpus flags
	runCmd.Flags().StringVar(&runDealsDir, "deals-dir", "./deals", "directory containing deal subdirectories")
	runCmd.Flags().StringVar(&runOutputDir, "output-dir", "./dealbench-results", "directory for result files")
	runCmd.Flags().StringSliceVar(&runDeals, "deals", nil, "run only the named deals (default: all)")
	runCmd.Flags().StringVar(&runMode, "mode", model.ModePublic, "benchmark mode (public or private)")

	// Agent flags
	runCmd.Flags().StringVar(&runEndpoint, "endpoint", "", "agent HTTP endpoint")
	runCmd.Flags().StringVar(&runAgentID, "agent-id", "agent", "agent identifier recorded in results")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", time.Minute, "per-request agent timeout")
	runCmd.Flags().IntVar(&runConcurrency, "concurrency", 4, "concurrent task dispatches")

	// Mode flags
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "plan only: load, classify, and build checkpoints without dispatching")
	runCmd.Flags().BoolVar(&runSkipExternal, "skip-external", false, "skip agent and judge calls")
	runCmd.Flags().BoolVar(&runNoAnonymize, "no-anonymize", false, "disable the anonymization gate (private corpora only)")
	runCmd.Flags().BoolVar(&runNoCache, "no-cache", false, "disable judge verdict caching")
	runCmd.Flags().BoolVar(&runNoLegacy, "no-legacy", false, "skip writing the legacy result file")
	runCmd.Flags().BoolVar(&runSave, "save", false, "record the run in the history database")

	// Judge flags
	runCmd.Flags().StringVar(&judgeProvider, "judge", "", "judge provider (openai, anthropic, ollama, rule; default: rule)")
	runCmd.Flags().StringVar(&judgeModel, "judge-model", "", "judge model name")
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	cfg, err := buildRunConfig()
	if err != nil {
		return err
	}

	if !cfg.DryRun && !cfg.SkipExternal && cfg.Agent.Endpoint == "" {
		return fmt.Errorf("--endpoint is required unless --dry-run or --skip-external is set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Deals dir: %s\n", cfg.DealsDir)
		fmt.Fprintf(os.Stderr, "Agent: %s (%s)\n", cfg.Agent.ID, cfg.Agent.Endpoint)
		fmt.Fprintf(os.Stderr, "Judge: %s\n", judgeName(cfg.Judge))
		fmt.Fprintln(os.Stderr)
	}

	scorer, err := buildScorer(cfg)
	if err != nil {
		return err
	}

	p := pipeline.NewPipeline(cfg, dispatch.NewHTTPCaller(cfg.Agent), scorer)

	result, err := p.Run(ctx)
	if err != nil {
		return fmt.Errorf("benchmark failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Scored %d deals\n", len(result.DealResults))
		fmt.Fprintln(os.Stderr)
	}

	renderer := pipeline.NewRenderer(cfg.Output)
	if err := renderer.RenderResult(result, cfg.OutputDir); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	if cfg.Store.Enabled {
		if err := saveRun(ctx, cfg, result); err != nil {
			return err
		}
	}

	return nil
}

// buildRunConfig merges defaults with the run command's flags.
func buildRunConfig() (*model.Config, error) {
	if runMode != model.ModePublic && runMode != model.ModePrivate {
		return nil, fmt.Errorf("invalid mode %q (expected public or private)", runMode)
	}

	cfg := model.DefaultConfig()
	cfg.DealsDir = runDealsDir
	cfg.OutputDir = runOutputDir
	cfg.Deals = runDeals
	cfg.Mode = runMode
	cfg.DryRun = runDryRun
	cfg.SkipExternal = runSkipExternal
	cfg.Anonymize = !runNoAnonymize
	cfg.Agent.ID = runAgentID
	cfg.Agent.Endpoint = runEndpoint
	cfg.Agent.Timeout = runTimeout
	cfg.Concurrency.TaskWorkers = runConcurrency
	cfg.Cache.Enabled = !runNoCache
	cfg.Store.Enabled = runSave
	cfg.Output.Verbose = verbose
	cfg.Output.WriteLegacy = !runNoLegacy

	if judgeProvider != "" {
		cfg.Judge.Provider = judgeProvider
	}
	if judgeModel != "" {
		cfg.Judge.Model = judgeModel
	}

	// Judge credentials come from the environment, never from flags.
	switch cfg.Judge.Provider {
	case "openai":
		cfg.Judge.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.Judge.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.Judge.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.Judge.APIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.Judge.BaseURL = baseURL
		}
	}

	return cfg, nil
}

// buildScorer assembles the judge stack (provider, optional memoization) and
// wraps it in a scorer.
func buildScorer(cfg *model.Config) (*score.Scorer, error) {
	j, err := judge.NewJudge(cfg.Judge)
	if err != nil {
		return nil, err
	}

	if cfg.Cache.Enabled {
		var backend cache.Cache
		switch cfg.Cache.Backend {
		case "disk":
			backend = cache.NewDiskCache(cfg.Cache.Dir, cfg.Cache.TTL)
		default:
			backend = cache.NewMemoryCache(cfg.Cache.TTL, 10*time.Minute)
		}
		j = judge.NewCachedJudge(j, backend, cfg.Cache.TTL)
	}

	return score.NewScorer(j, cfg.Judge.MaxRetries), nil
}

func saveRun(ctx context.Context, cfg *model.Config, result *model.ArtifactBenchmarkResult) error {
	s, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer func() { _ = s.Close() }()

	band := score.Band(result.AggregateScore, result.MaxPossibleScore)
	if err := s.SaveRun(ctx, result, band); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Recorded run %s in %s\n", result.RunID, cfg.Store.Path)
	}
	return nil
}

func judgeName(cfg model.JudgeConfig) string {
	if cfg.Provider == "" {
		return "rule"
	}
	return cfg.Provider
}
