package score

import (
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/dealbench/internal/model"
)

// Percentage bands. The thresholds live here and only here; display and
// classification both call Band.
const (
	goodThreshold = 75
	fairThreshold = 50

	BandGood = "good"
	BandFair = "fair"
	BandPoor = "poor"
)

// TotalScore sums every set dimension score.
func TotalScore(scores model.DimensionScores) int {
	total := 0
	for _, v := range scores {
		total += v
	}
	return total
}

// MaxScore is 10 times the number of set dimensions: 40 for a base-only
// task, 80 when all eight dimensions were scored.
func MaxScore(scores model.DimensionScores) int {
	return model.MaxDimensionScore * len(scores)
}

// Percentage converts (score, max) to 0-100, with an empty max reading as 0.
func Percentage(score, max int) int {
	if max <= 0 {
		return 0
	}
	return score * 100 / max
}

// Band maps (score, max) onto the shared percentage bands: >=75% good,
// 50-74% fair, below that poor.
func Band(score, max int) string {
	pct := Percentage(score, max)
	switch {
	case pct >= goodThreshold:
		return BandGood
	case pct >= fairThreshold:
		return BandFair
	default:
		return BandPoor
	}
}

// AggregateCheckpoint rolls task scores up into a checkpoint result.
func AggregateCheckpoint(checkpointID string, taskScores []model.TaskScore) model.CheckpointResult {
	result := model.CheckpointResult{
		CheckpointID: checkpointID,
		TaskScores:   taskScores,
	}
	for _, ts := range taskScores {
		result.TotalScore += ts.TotalScore
		result.MaxScore += ts.MaxScore
	}
	result.Band = Band(result.TotalScore, result.MaxScore)
	return result
}

// AggregateDeal rolls checkpoint results up into a deal result.
func AggregateDeal(deal *model.ArtifactDeal, tier model.Tier, checkpointResults []model.CheckpointResult) model.DealResult {
	result := model.DealResult{
		DealID:            deal.ID,
		DealName:          deal.Name,
		Tier:              tier,
		CheckpointResults: checkpointResults,
	}
	for _, cr := range checkpointResults {
		result.TotalScore += cr.TotalScore
		result.MaxScore += cr.MaxScore
	}
	result.Band = Band(result.TotalScore, result.MaxScore)
	return result
}

// AggregateRun assembles the run-level result. aggregateDimensions is the
// per-dimension mean across every task where that dimension was scored; a
// dimension scored zero times reports 0, not NaN.
func AggregateRun(agentID, endpoint, mode string, dealResults []model.DealResult) *model.ArtifactBenchmarkResult {
	result := &model.ArtifactBenchmarkResult{
		RunID:         uuid.NewString(),
		AgentID:       agentID,
		AgentEndpoint: endpoint,
		Version:       model.SchemaVersion,
		Mode:          mode,
		RunTimestamp:  time.Now().UTC(),
		DealResults:   dealResults,
	}

	sums := make(map[model.Dimension]int)
	counts := make(map[model.Dimension]int)

	for _, dr := range dealResults {
		result.AggregateScore += dr.TotalScore
		result.MaxPossibleScore += dr.MaxScore
		for _, cr := range dr.CheckpointResults {
			for _, ts := range cr.TaskScores {
				for d, v := range ts.Dimensions {
					sums[d] += v
					counts[d]++
				}
			}
		}
	}

	result.AggregateDimensions = make(map[model.Dimension]float64, len(model.AllDimensions))
	for _, d := range model.AllDimensions {
		if counts[d] == 0 {
			result.AggregateDimensions[d] = 0
			continue
		}
		result.AggregateDimensions[d] = float64(sums[d]) / float64(counts[d])
	}

	return result
}

// ToLegacy converts a run result to the legacy 4-dimension shape. Extended
// dimensions are dropped from the aggregate map; per-deal totals carry over
// unchanged.
func ToLegacy(result *model.ArtifactBenchmarkResult) *model.BenchmarkResult {
	legacy := &model.BenchmarkResult{
		AgentID:          result.AgentID,
		AgentEndpoint:    result.AgentEndpoint,
		Version:          1,
		Mode:             result.Mode,
		RunTimestamp:     result.RunTimestamp,
		AggregateScore:   result.AggregateScore,
		MaxPossibleScore: result.MaxPossibleScore,
	}

	legacy.AggregateDimensions = make(map[model.Dimension]float64, len(model.BaseDimensions))
	for _, d := range model.BaseDimensions {
		legacy.AggregateDimensions[d] = result.AggregateDimensions[d]
	}

	for _, dr := range result.DealResults {
		legacy.DealScores = append(legacy.DealScores, model.LegacyDealScore{
			DealID:     dr.DealID,
			TotalScore: dr.TotalScore,
			MaxScore:   dr.MaxScore,
			Band:       dr.Band,
		})
	}

	return legacy
}
