// Package judge scores agent answers along the dimensions a task declares.
// The judge is pluggable: LLM providers for real runs, a deterministic rule
// judge for tests and dry evaluation. Providers only ever return scores for
// the requested dimensions; unrequested dimensions stay unset, never
// zero-filled.
package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/dealbench/internal/model"
)

// ScoreRequest is the judging input for one task.
type ScoreRequest struct {
	Task        model.EvaluationTask
	Answer      string
	GroundTruth model.GroundTruth
	Dimensions  []model.Dimension
}

// Verdict is the judge's output: integer scores 0-10 per requested
// dimension, plus free-text feedback.
type Verdict struct {
	Dimensions model.DimensionScores `json:"dimensions"`
	Feedback   string                `json:"feedback,omitempty"`
}

// Judge is the pluggable scoring interface.
type Judge interface {
	// Name returns the provider name.
	Name() string

	// Score judges one agent answer against ground truth.
	Score(ctx context.Context, req ScoreRequest) (*Verdict, error)
}

// BuildPrompt constructs the judging prompt. The judge must answer with a
// single JSON object so parsing stays mechanical.
func BuildPrompt(req ScoreRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are judging a sales assistant's answer to an evaluation task.

Task type: %s
Task prompt: %s

Agent answer:
%s

Ground truth (what actually happened next):
%s
`, req.Task.Type, req.Task.Prompt, orPlaceholder(req.Answer), orPlaceholder(req.GroundTruth.WhatHappenedNext))

	if len(req.GroundTruth.ActualRisksThatMaterialized) > 0 {
		fmt.Fprintf(&b, "Risks that actually materialized:\n")
		for _, r := range req.GroundTruth.ActualRisksThatMaterialized {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}
	if req.GroundTruth.OutcomeAtThisPoint != "" {
		fmt.Fprintf(&b, "Outcome at this point: %s\n", req.GroundTruth.OutcomeAtThisPoint)
	}

	fmt.Fprintf(&b, `
Score the answer on EXACTLY these dimensions, each an integer 0-10:
%s

An empty answer scores 0 on every dimension. Respond with a single JSON
object and nothing else, in this form:
{"scores": {%s}, "feedback": "one or two sentences"}`,
		dimensionList(req.Dimensions), dimensionExample(req.Dimensions))

	return b.String()
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(empty)"
	}
	return s
}

func dimensionList(dims []model.Dimension) string {
	var b strings.Builder
	for _, d := range dims {
		fmt.Fprintf(&b, "- %s\n", d)
	}
	return b.String()
}

func dimensionExample(dims []model.Dimension) string {
	parts := make([]string, 0, len(dims))
	for _, d := range dims {
		parts = append(parts, fmt.Sprintf("%q: 0", d))
	}
	return strings.Join(parts, ", ")
}

// verdictPayload is the JSON shape LLM judges are instructed to return.
type verdictPayload struct {
	Scores   map[string]int `json:"scores"`
	Feedback string         `json:"feedback"`
}

// ParseVerdict extracts the verdict from an LLM reply. The reply may wrap
// the JSON object in prose or code fences; everything outside the outermost
// braces is ignored. Scores are clamped to [0, 10] and filtered to the
// requested dimensions.
func ParseVerdict(reply string, dims []model.Dimension) (*Verdict, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in judge reply")
	}

	var payload verdictPayload
	if err := json.Unmarshal([]byte(reply[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("parse judge reply: %w", err)
	}

	requested := make(map[model.Dimension]bool, len(dims))
	for _, d := range dims {
		requested[d] = true
	}

	scores := make(model.DimensionScores, len(dims))
	for name, score := range payload.Scores {
		d := model.Dimension(name)
		if !requested[d] {
			continue
		}
		if score < 0 {
			score = 0
		}
		if score > model.MaxDimensionScore {
			score = model.MaxDimensionScore
		}
		scores[d] = score
	}

	var missing []string
	for _, d := range dims {
		if _, ok := scores[d]; !ok {
			missing = append(missing, string(d))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("judge reply missing dimensions: %s", strings.Join(missing, ", "))
	}

	return &Verdict{
		Dimensions: scores,
		Feedback:   strings.TrimSpace(payload.Feedback),
	}, nil
}
