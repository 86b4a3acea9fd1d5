package score

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ppiankov/dealbench/internal/dispatch"
	"github.com/ppiankov/dealbench/internal/judge"
	"github.com/ppiankov/dealbench/internal/model"
)

// flakyJudge fails a configured number of times before succeeding.
type flakyJudge struct {
	failures int
	calls    int
}

func (j *flakyJudge) Name() string { return "flaky" }

func (j *flakyJudge) Score(_ context.Context, req judge.ScoreRequest) (*judge.Verdict, error) {
	j.calls++
	if j.calls <= j.failures {
		return nil, errors.New("judge unavailable")
	}
	scores := make(model.DimensionScores, len(req.Dimensions))
	for _, d := range req.Dimensions {
		scores[d] = 8
	}
	return &judge.Verdict{Dimensions: scores, Feedback: "ok"}, nil
}

func stubSleep(t *testing.T) {
	t.Helper()
	orig := sleepFunc
	sleepFunc = func(time.Duration) {}
	t.Cleanup(func() { sleepFunc = orig })
}

func scoreTask() *model.EvaluationTask {
	return &model.EvaluationTask{
		ID:                "t1",
		Type:              model.TaskDealAnalysis,
		Prompt:            "Analyze.",
		ScoringDimensions: model.BaseDimensions,
	}
}

func TestScoreTask_RetriesThenSucceeds(t *testing.T) {
	stubSleep(t)

	j := &flakyJudge{failures: 2}
	s := NewScorer(j, 3)

	ts := s.ScoreTask(context.Background(), scoreTask(),
		&dispatch.AgentTaskOutcome{Answer: "answer", State: dispatch.StateComplete}, model.GroundTruth{})

	if j.calls != 3 {
		t.Errorf("judge called %d times, want 3", j.calls)
	}
	if ts.Failed {
		t.Error("successful retry marked failed")
	}
	if ts.TotalScore != 8*len(model.BaseDimensions) {
		t.Errorf("total = %d, want %d", ts.TotalScore, 8*len(model.BaseDimensions))
	}
	if ts.MaxScore != 10*len(model.BaseDimensions) {
		t.Errorf("max = %d, want %d", ts.MaxScore, 10*len(model.BaseDimensions))
	}
}

func TestScoreTask_ExhaustedRetriesZeroScores(t *testing.T) {
	stubSleep(t)

	j := &flakyJudge{failures: 100}
	s := NewScorer(j, 3)

	task := scoreTask()
	ts := s.ScoreTask(context.Background(), task,
		&dispatch.AgentTaskOutcome{Answer: "answer", State: dispatch.StateComplete}, model.GroundTruth{})

	if !ts.Failed {
		t.Error("exhausted retries not marked failed")
	}
	if ts.TotalScore != 0 {
		t.Errorf("failed task total = %d, want 0", ts.TotalScore)
	}
	// Every declared dimension is explicitly zero, never missing.
	if len(ts.Dimensions) != len(task.ScoringDimensions) {
		t.Errorf("failed task has %d dimensions, want %d", len(ts.Dimensions), len(task.ScoringDimensions))
	}
	for d, v := range ts.Dimensions {
		if v != 0 {
			t.Errorf("dimension %s = %d, want 0", d, v)
		}
	}
	if ts.MaxScore != 10*len(task.ScoringDimensions) {
		t.Errorf("failed task max = %d, want declared-dimension ceiling", ts.MaxScore)
	}
}

func TestScoreTask_FailedDispatchStaysFailed(t *testing.T) {
	stubSleep(t)

	j := &flakyJudge{}
	s := NewScorer(j, 3)

	ts := s.ScoreTask(context.Background(), scoreTask(),
		&dispatch.AgentTaskOutcome{Answer: "", State: dispatch.StateFailed}, model.GroundTruth{})

	if !ts.Failed {
		t.Error("degraded dispatch outcome not marked failed in the score")
	}
}

func TestScoreTask_OnlyDeclaredDimensions(t *testing.T) {
	stubSleep(t)

	j := &flakyJudge{}
	s := NewScorer(j, 1)

	task := scoreTask()
	task.ScoringDimensions = []model.Dimension{model.DimRiskIdentification}

	ts := s.ScoreTask(context.Background(), task,
		&dispatch.AgentTaskOutcome{Answer: "answer", State: dispatch.StateComplete}, model.GroundTruth{})

	if len(ts.Dimensions) != 1 {
		t.Errorf("score has %d dimensions, want only the declared one", len(ts.Dimensions))
	}
	if ts.MaxScore != 10 {
		t.Errorf("max = %d, want 10 for a single dimension", ts.MaxScore)
	}
}
