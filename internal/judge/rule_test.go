package judge

import (
	"context"
	"reflect"
	"testing"

	"github.com/ppiankov/dealbench/internal/model"
)

func TestRuleJudge_EmptyAnswer(t *testing.T) {
	j := NewRuleJudge()
	verdict, err := j.Score(context.Background(), ScoreRequest{
		Answer:      "  ",
		GroundTruth: model.GroundTruth{WhatHappenedNext: "deal closed"},
		Dimensions:  model.BaseDimensions,
	})
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	for _, d := range model.BaseDimensions {
		score, present := verdict.Dimensions[d]
		if !present {
			t.Errorf("dimension %s unset, want explicit 0", d)
		}
		if score != 0 {
			t.Errorf("dimension %s = %d, want 0", d, score)
		}
	}
}

func TestRuleJudge_Overlap(t *testing.T) {
	j := NewRuleJudge()
	req := ScoreRequest{
		Answer: "The security review will likely stall and the champion may leave.",
		GroundTruth: model.GroundTruth{
			WhatHappenedNext:   "security review stall",
			OutcomeAtThisPoint: "",
		},
		Dimensions: []model.Dimension{model.DimNextStepQuality},
	}

	verdict, err := j.Score(context.Background(), req)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	// All three ground-truth terms appear in the answer.
	if verdict.Dimensions[model.DimNextStepQuality] != 10 {
		t.Errorf("full overlap scored %d, want 10", verdict.Dimensions[model.DimNextStepQuality])
	}

	req.GroundTruth.WhatHappenedNext = "procurement vetoed renewal budget"
	verdict, err = j.Score(context.Background(), req)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if verdict.Dimensions[model.DimNextStepQuality] != 0 {
		t.Errorf("zero overlap scored %d, want 0", verdict.Dimensions[model.DimNextStepQuality])
	}
}

func TestRuleJudge_NoGroundTruthFloor(t *testing.T) {
	j := NewRuleJudge()
	verdict, err := j.Score(context.Background(), ScoreRequest{
		Answer:     "A reasonable plan.",
		Dimensions: []model.Dimension{model.DimPrioritization},
	})
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if verdict.Dimensions[model.DimPrioritization] != 3 {
		t.Errorf("no-truth floor = %d, want 3", verdict.Dimensions[model.DimPrioritization])
	}
}

func TestRuleJudge_RiskDimension(t *testing.T) {
	j := NewRuleJudge()
	req := ScoreRequest{
		Answer: "Watch out for the security audit being delayed.",
		GroundTruth: model.GroundTruth{
			WhatHappenedNext:            "procurement approved quickly",
			ActualRisksThatMaterialized: []string{"security audit delayed"},
		},
		Dimensions: []model.Dimension{model.DimRiskIdentification, model.DimNextStepQuality},
	}

	verdict, err := j.Score(context.Background(), req)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if verdict.Dimensions[model.DimRiskIdentification] <= verdict.Dimensions[model.DimNextStepQuality] {
		t.Errorf("risk overlap not preferred: risk=%d next=%d",
			verdict.Dimensions[model.DimRiskIdentification], verdict.Dimensions[model.DimNextStepQuality])
	}
}

func TestRuleJudge_Deterministic(t *testing.T) {
	j := NewRuleJudge()
	req := ScoreRequest{
		Answer:      "The deal will close after the security review.",
		GroundTruth: model.GroundTruth{WhatHappenedNext: "closed after security review"},
		Dimensions:  model.BaseDimensions,
	}

	first, err := j.Score(context.Background(), req)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := j.Score(context.Background(), req)
		if err != nil {
			t.Fatalf("score failed: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatal("rule judge produced different verdicts for identical input")
		}
	}
}
