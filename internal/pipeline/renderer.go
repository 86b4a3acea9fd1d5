package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/dealbench/internal/model"
	"github.com/ppiankov/dealbench/internal/score"
)

// Result file names inside the output directory.
const (
	ResultFileName       = "artifact_benchmark_result.json"
	LegacyResultFileName = "benchmark_result.json"
)

// Renderer writes run results to disk and prints the run summary.
type Renderer struct {
	cfg model.OutputConfig
}

// NewRenderer creates a renderer from output configuration.
func NewRenderer(cfg model.OutputConfig) *Renderer {
	return &Renderer{cfg: cfg}
}

// RenderResult writes the run result JSON (plus the legacy shape when
// enabled) into outputDir and prints the summary to stdout.
func (r *Renderer) RenderResult(result *model.ArtifactBenchmarkResult, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	resultPath := filepath.Join(outputDir, ResultFileName)
	if err := writeJSON(resultPath, result); err != nil {
		return fmt.Errorf("render result: %w", err)
	}
	if r.cfg.Verbose {
		fmt.Printf("✓ Wrote result: %s\n", resultPath)
	}

	if r.cfg.WriteLegacy {
		legacyPath := filepath.Join(outputDir, LegacyResultFileName)
		if err := writeJSON(legacyPath, score.ToLegacy(result)); err != nil {
			return fmt.Errorf("render legacy result: %w", err)
		}
		if r.cfg.Verbose {
			fmt.Printf("✓ Wrote legacy result: %s\n", legacyPath)
		}
	}

	r.RenderSummary(result)
	return nil
}

// RenderSummary prints the run summary to stdout.
func (r *Renderer) RenderSummary(result *model.ArtifactBenchmarkResult) {
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Printf("  Benchmark Run %s\n", result.RunID)
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Println()
	fmt.Printf("Agent:    %s (%s)\n", result.AgentID, result.AgentEndpoint)
	fmt.Printf("Mode:     %s\n", result.Mode)
	fmt.Printf("Deals:    %d\n", len(result.DealResults))
	fmt.Println()

	for _, dr := range result.DealResults {
		marker := bandMarker(dr.Band)
		fmt.Printf("%s %-30s %4d/%-4d %3d%%  %s  [%s]\n",
			marker, dr.DealName, dr.TotalScore, dr.MaxScore,
			score.Percentage(dr.TotalScore, dr.MaxScore), dr.Band, dr.Tier)
		if dr.Error != "" {
			fmt.Printf("    %s\n", dr.Error)
		}
	}
	fmt.Println()

	pct := score.Percentage(result.AggregateScore, result.MaxPossibleScore)
	fmt.Printf("Overall:  %d/%d (%d%%, %s)\n",
		result.AggregateScore, result.MaxPossibleScore, pct,
		score.Band(result.AggregateScore, result.MaxPossibleScore))
	fmt.Println()

	fmt.Println("Dimensions (mean across scored tasks):")
	for _, d := range model.AllDimensions {
		v, ok := result.AggregateDimensions[d]
		if !ok {
			continue
		}
		fmt.Printf("  %-28s %.1f/10\n", d, v)
	}
	fmt.Println()
}

func bandMarker(band string) string {
	if band == score.BandPoor {
		return "✗"
	}
	return "✓"
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
