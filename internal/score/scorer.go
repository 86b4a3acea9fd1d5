// Package score turns agent answers into dimension scores via the judge and
// aggregates them into checkpoint, deal, and run results. All arithmetic is
// integer and deterministic: the same verdicts always rank the same way on a
// leaderboard.
package score

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/dealbench/internal/dispatch"
	"github.com/ppiankov/dealbench/internal/judge"
	"github.com/ppiankov/dealbench/internal/model"
)

// sleepFunc is the sleep used between judge retries (injectable for tests).
var sleepFunc = time.Sleep

// Scorer scores task outcomes through a pluggable judge with bounded retry.
type Scorer struct {
	judge      judge.Judge
	maxRetries int
}

// NewScorer creates a scorer over the given judge.
func NewScorer(j judge.Judge, maxRetries int) *Scorer {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &Scorer{
		judge:      j,
		maxRetries: maxRetries,
	}
}

// ScoreTask judges one task outcome. Transient judge failures are retried
// with exponential backoff; once retries are exhausted the task is recorded
// as zero-scored on every requested dimension (judged-and-failed), never as
// a missing entry, so aggregates stay computable.
func (s *Scorer) ScoreTask(ctx context.Context, task *model.EvaluationTask, outcome *dispatch.AgentTaskOutcome, truth model.GroundTruth) model.TaskScore {
	req := judge.ScoreRequest{
		Task:        *task,
		Answer:      outcome.Answer,
		GroundTruth: truth,
		Dimensions:  task.ScoringDimensions,
	}

	var verdict *judge.Verdict
	var err error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			sleepFunc(backoff)
		}
		verdict, err = s.judge.Score(ctx, req)
		if err == nil {
			break
		}
	}

	ts := model.TaskScore{
		TaskID:   task.ID,
		TaskType: task.Type,
	}

	if err != nil {
		ts.Dimensions = zeroScores(task.ScoringDimensions)
		ts.Feedback = fmt.Sprintf("judging failed: %v", err)
		ts.Failed = true
	} else {
		ts.Dimensions = verdict.Dimensions
		ts.Feedback = verdict.Feedback
		ts.Failed = outcome.State == dispatch.StateFailed
	}

	ts.TotalScore = TotalScore(ts.Dimensions)
	ts.MaxScore = MaxScore(ts.Dimensions)
	return ts
}

// zeroScores fills every requested dimension with zero. Only requested
// dimensions are touched: unset and zero stay distinct concepts.
func zeroScores(dims []model.Dimension) model.DimensionScores {
	scores := make(model.DimensionScores, len(dims))
	for _, d := range dims {
		scores[d] = 0
	}
	return scores
}
