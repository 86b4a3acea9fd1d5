package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/dealbench/internal/score"
	"github.com/ppiankov/dealbench/internal/store"
)

var (
	historyDBPath string
	historyLimit  int
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded benchmark runs",
	Long: `History lists runs recorded with 'dealbench run --save', newest first.

Example:
  dealbench history
  dealbench history --limit 50`,
	RunE: runHistory,
}

// leaderboardCmd represents the leaderboard command
var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show each agent's best recorded run",
	RunE:  runLeaderboard,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(leaderboardCmd)

	historyCmd.Flags().StringVar(&historyDBPath, "db", "./dealbench.db", "history database path")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum runs to list")
	leaderboardCmd.Flags().StringVar(&historyDBPath, "db", "./dealbench.db", "history database path")
}

func runHistory(cmd *cobra.Command, args []string) error {
	s, err := store.Open(historyDBPath)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	records, err := s.ListRuns(context.Background(), historyLimit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No recorded runs. Use 'dealbench run --save' to record one.")
		return nil
	}

	fmt.Printf("%-36s %-20s %-8s %-20s %9s %5s\n", "RUN", "AGENT", "MODE", "WHEN", "SCORE", "BAND")
	for _, r := range records {
		fmt.Printf("%-36s %-20s %-8s %-20s %4d/%-4d %5s\n",
			r.RunID, r.AgentID, r.Mode,
			r.RunTimestamp.Format(time.RFC3339),
			r.AggregateScore, r.MaxScore, r.Band)
	}
	return nil
}

func runLeaderboard(cmd *cobra.Command, args []string) error {
	s, err := store.Open(historyDBPath)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	entries, err := s.Leaderboard(context.Background())
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No recorded runs. Use 'dealbench run --save' to record one.")
		return nil
	}

	fmt.Printf("%-4s %-20s %9s %4s %5s %5s\n", "#", "AGENT", "BEST", "PCT", "BAND", "RUNS")
	for i, e := range entries {
		pct := score.Percentage(e.AggregateScore, e.MaxScore)
		fmt.Printf("%-4d %-20s %4d/%-4d %3d%% %5s %5d\n",
			i+1, e.AgentID, e.AggregateScore, e.MaxScore, pct,
			score.Band(e.AggregateScore, e.MaxScore), e.Runs)
	}
	return nil
}
