package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/dealbench/internal/classify"
	"github.com/ppiankov/dealbench/internal/model"
	"github.com/ppiankov/dealbench/internal/pipeline"
)

var classifyDealsDir string

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify deals into tiers without running the benchmark",
	Long: `Classify inspects each deal directory and reports its tier:

  artifact-rich      full multi-artifact evaluation
  artifact-standard  transcript-driven evaluation with deal context
  summary-only       single-checkpoint evaluation from the deal summary

Classification is deterministic: the same corpus always yields the same
tiers.`,
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().StringVar(&classifyDealsDir, "deals-dir", "./deals", "directory containing deal subdirectories")
}

func runClassify(cmd *cobra.Command, args []string) error {
	dirs, err := pipeline.ListDealDirs(classifyDealsDir, nil)
	if err != nil {
		return err
	}

	cfg := model.DefaultConfig()
	classifier := classify.NewClassifier(cfg.Classifier)

	counts := make(map[model.Tier]int)
	fmt.Printf("%-30s %-18s %11s %8s %8s\n", "DEAL", "TIER", "TRANSCRIPTS", "CONTEXT", "OUTPUTS")
	for _, dir := range dirs {
		deal, err := pipeline.LoadDeal(dir)
		if err != nil {
			return err
		}

		stats := classify.StatsFromDeal(deal)
		stats = classify.InspectDealDir(dir, stats)
		c := classifier.Classify(dir, stats)
		counts[c.Tier]++

		fmt.Printf("%-30s %-18s %11d %8v %8v\n",
			deal.Name, c.Tier, c.TranscriptCount, c.HasContextMD, c.HasOutputs)
	}

	fmt.Println()
	fmt.Printf("%d deals: %d artifact-rich, %d artifact-standard, %d summary-only\n",
		len(dirs), counts[model.TierArtifactRich], counts[model.TierArtifactStandard], counts[model.TierSummaryOnly])
	return nil
}
