package score

import (
	"testing"

	"github.com/ppiankov/dealbench/internal/model"
)

func TestPercentageAndBand(t *testing.T) {
	tests := []struct {
		score, max int
		pct        int
		band       string
	}{
		{17, 20, 85, BandGood},
		{15, 20, 75, BandGood},
		{14, 20, 70, BandFair},
		{10, 20, 50, BandFair},
		{9, 20, 45, BandPoor},
		{0, 20, 0, BandPoor},
		{0, 0, 0, BandPoor},
	}

	for _, tc := range tests {
		if got := Percentage(tc.score, tc.max); got != tc.pct {
			t.Errorf("Percentage(%d, %d) = %d, want %d", tc.score, tc.max, got, tc.pct)
		}
		if got := Band(tc.score, tc.max); got != tc.band {
			t.Errorf("Band(%d, %d) = %s, want %s", tc.score, tc.max, got, tc.band)
		}
	}
}

func TestTotalAndMaxScore(t *testing.T) {
	scores := model.DimensionScores{
		model.DimRiskIdentification: 7,
		model.DimNextStepQuality:    0, // judged and failed, still counts toward max
		model.DimPrioritization:     5,
	}

	if got := TotalScore(scores); got != 12 {
		t.Errorf("TotalScore = %d, want 12", got)
	}
	if got := MaxScore(scores); got != 30 {
		t.Errorf("MaxScore = %d, want 30", got)
	}
	if got := MaxScore(model.DimensionScores{}); got != 0 {
		t.Errorf("MaxScore of empty = %d, want 0", got)
	}
}

func TestAggregateCheckpoint(t *testing.T) {
	result := AggregateCheckpoint("cp-1", []model.TaskScore{
		{TaskID: "t1", TotalScore: 30, MaxScore: 40},
		{TaskID: "t2", TotalScore: 21, MaxScore: 40},
	})

	if result.TotalScore != 51 || result.MaxScore != 80 {
		t.Errorf("checkpoint totals = %d/%d, want 51/80", result.TotalScore, result.MaxScore)
	}
	if result.Band != BandFair {
		t.Errorf("band = %s, want fair at 63%%", result.Band)
	}
}

func TestAggregateRun_DimensionMeans(t *testing.T) {
	// One task scored riskIdentification=8; the mean divides by the number
	// of tasks that scored the dimension, not the number of tasks overall.
	dealResults := []model.DealResult{{
		DealID: "deal-1",
		CheckpointResults: []model.CheckpointResult{{
			CheckpointID: "cp-1",
			TaskScores: []model.TaskScore{
				{
					TaskID:     "t1",
					Dimensions: model.DimensionScores{model.DimRiskIdentification: 8},
					TotalScore: 8, MaxScore: 10,
				},
				{
					TaskID:     "t2",
					Dimensions: model.DimensionScores{model.DimNextStepQuality: 4},
					TotalScore: 4, MaxScore: 10,
				},
			},
		}},
		TotalScore: 12,
		MaxScore:   20,
	}}

	result := AggregateRun("agent-1", "http://localhost", model.ModePublic, dealResults)

	if result.AggregateDimensions[model.DimRiskIdentification] != 8.0 {
		t.Errorf("riskIdentification mean = %v, want 8.0 over one scored task",
			result.AggregateDimensions[model.DimRiskIdentification])
	}
	if result.AggregateDimensions[model.DimNextStepQuality] != 4.0 {
		t.Errorf("nextStepQuality mean = %v, want 4.0", result.AggregateDimensions[model.DimNextStepQuality])
	}
	// Dimensions no task scored report 0, not NaN.
	if result.AggregateDimensions[model.DimCommunicationQuality] != 0 {
		t.Errorf("unscored dimension mean = %v, want 0", result.AggregateDimensions[model.DimCommunicationQuality])
	}

	if result.AggregateScore != 12 || result.MaxPossibleScore != 20 {
		t.Errorf("run totals = %d/%d, want 12/20", result.AggregateScore, result.MaxPossibleScore)
	}
	if result.RunID == "" {
		t.Error("run id not assigned")
	}
	if result.Version != model.SchemaVersion {
		t.Errorf("version = %d, want %d", result.Version, model.SchemaVersion)
	}
}

func TestToLegacy(t *testing.T) {
	result := AggregateRun("agent-1", "http://localhost", model.ModePublic, []model.DealResult{{
		DealID: "deal-1",
		CheckpointResults: []model.CheckpointResult{{
			TaskScores: []model.TaskScore{{
				Dimensions: model.DimensionScores{
					model.DimRiskIdentification:   6,
					model.DimCommunicationQuality: 9,
				},
				TotalScore: 15, MaxScore: 20,
			}},
		}},
		TotalScore: 15,
		MaxScore:   20,
		Band:       BandGood,
	}})

	legacy := ToLegacy(result)

	if legacy.Version != 1 {
		t.Errorf("legacy version = %d, want 1", legacy.Version)
	}
	if _, present := legacy.AggregateDimensions[model.DimCommunicationQuality]; present {
		t.Error("extended dimension leaked into legacy aggregates")
	}
	if legacy.AggregateDimensions[model.DimRiskIdentification] != 6.0 {
		t.Errorf("legacy riskIdentification = %v, want 6.0", legacy.AggregateDimensions[model.DimRiskIdentification])
	}
	if len(legacy.DealScores) != 1 || legacy.DealScores[0].TotalScore != 15 {
		t.Errorf("legacy deal scores wrong: %+v", legacy.DealScores)
	}
	// Totals carry over unchanged even though extended dimensions are dropped.
	if legacy.AggregateScore != result.AggregateScore || legacy.MaxPossibleScore != result.MaxPossibleScore {
		t.Error("legacy totals differ from the run result")
	}
}
