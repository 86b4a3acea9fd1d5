package judge

import (
	"context"
	"strings"

	"github.com/ppiankov/dealbench/internal/model"
)

// RuleJudge is a deterministic judge for tests, dry evaluation, and CI: no
// network, no model, same inputs always produce the same verdict. Scores are
// a transparent function of ground-truth term overlap.
type RuleJudge struct{}

// NewRuleJudge creates a rule judge.
func NewRuleJudge() *RuleJudge {
	return &RuleJudge{}
}

// Name returns the provider name.
func (j *RuleJudge) Name() string {
	return "rule"
}

// Score rates the answer by how much of the ground truth it anticipates.
// An empty answer scores 0 on every requested dimension.
func (j *RuleJudge) Score(_ context.Context, req ScoreRequest) (*Verdict, error) {
	scores := make(model.DimensionScores, len(req.Dimensions))

	answer := strings.ToLower(req.Answer)
	if strings.TrimSpace(answer) == "" {
		for _, d := range req.Dimensions {
			scores[d] = 0
		}
		return &Verdict{Dimensions: scores, Feedback: "empty answer"}, nil
	}

	base := overlapScore(answer, req.GroundTruth.WhatHappenedNext+" "+req.GroundTruth.OutcomeAtThisPoint)
	risk := overlapScore(answer, strings.Join(req.GroundTruth.ActualRisksThatMaterialized, " "))

	for _, d := range req.Dimensions {
		if d == model.DimRiskIdentification && risk > base {
			scores[d] = risk
			continue
		}
		scores[d] = base
	}

	return &Verdict{Dimensions: scores, Feedback: "rule-based overlap score"}, nil
}

// overlapScore maps the fraction of ground-truth terms (4+ chars) present in
// the answer onto 0-10, with a floor of 3 for any non-empty answer when
// there is no ground truth to compare against.
func overlapScore(answer, truth string) int {
	terms := strings.Fields(strings.ToLower(truth))

	total, hits := 0, 0
	for _, term := range terms {
		term = strings.Trim(term, ".,;:!?\"'")
		if len(term) < 4 {
			continue
		}
		total++
		if strings.Contains(answer, term) {
			hits++
		}
	}

	if total == 0 {
		return 3
	}

	score := hits * model.MaxDimensionScore / total
	if score > model.MaxDimensionScore {
		score = model.MaxDimensionScore
	}
	return score
}
