// Package pipeline orchestrates a benchmark run: load deals, classify,
// build checkpoints, dispatch tasks to the agent under bounded concurrency,
// judge the answers, and aggregate everything into the run result.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/ppiankov/dealbench/internal/checkpoint"
	"github.com/ppiankov/dealbench/internal/classify"
	"github.com/ppiankov/dealbench/internal/dispatch"
	"github.com/ppiankov/dealbench/internal/model"
	"github.com/ppiankov/dealbench/internal/score"
	"github.com/ppiankov/dealbench/internal/worker"
)

// Pipeline wires the benchmark stages together. The agent caller and judge
// are injected so dry runs and tests never touch the network.
type Pipeline struct {
	cfg        *model.Config
	classifier *classify.Classifier
	builder    *checkpoint.Builder
	dispatcher *dispatch.Dispatcher
	scorer     *score.Scorer
}

// NewPipeline creates a pipeline from configuration plus the injected
// external collaborators.
func NewPipeline(cfg *model.Config, caller dispatch.Caller, scorer *score.Scorer) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		classifier: classify.NewClassifier(cfg.Classifier),
		builder:    checkpoint.NewBuilder(),
		dispatcher: dispatch.NewDispatcher(caller, cfg.Agent, cfg.Anonymize),
		scorer:     scorer,
	}
}

// DealPlan is one deal prepared for dispatch: its classification and the
// built checkpoint sequence.
type DealPlan struct {
	Classification model.DealClassification   `json:"classification"`
	Deal           *model.ArtifactDeal        `json:"deal"`
	Checkpoints    []model.ArtifactCheckpoint `json:"checkpoints"`
}

// Plan loads, classifies, and builds checkpoints for every selected deal.
// This is the whole pipeline minus network calls: dry runs and skipExternal
// runs stop here. Contract violations (dangling references, unordered
// checkpoints) fail the run immediately with the deal named.
func (p *Pipeline) Plan(ctx context.Context) ([]DealPlan, error) {
	dirs, err := ListDealDirs(p.cfg.DealsDir, p.cfg.Deals)
	if err != nil {
		return nil, err
	}

	plans := make([]DealPlan, 0, len(dirs))
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		deal, err := LoadDeal(dir)
		if err != nil {
			return nil, err
		}

		stats := classify.StatsFromDeal(deal)
		stats = classify.InspectDealDir(dir, stats)
		classification := p.classifier.Classify(dir, stats)

		checkpoints, err := p.builder.Build(deal, classification.Tier)
		if err != nil {
			return nil, err
		}

		plans = append(plans, DealPlan{
			Classification: classification,
			Deal:           deal,
			Checkpoints:    checkpoints,
		})
	}

	return plans, nil
}

// taskJob is one (deal, checkpoint, task) dispatch unit. Jobs share nothing
// mutable; their results are merged after the pool drains.
type taskJob struct {
	pipeline *Pipeline
	plan     *DealPlan
	dealIdx  int
	cpIdx    int
	taskIdx  int
}

// taskResult carries a scored task back to the assembler, keyed by plan
// position so assembly order never depends on completion order.
type taskResult struct {
	dealIdx int
	cpIdx   int
	taskIdx int
	score   model.TaskScore
	err     error
}

// GetError implements worker.Result.
func (r *taskResult) GetError() error { return r.err }

// Execute implements worker.Job: dispatch the multi-turn exchange, then
// judge the final answer. Both stages degrade internally; the only error
// escaping here is the anonymization gate, which fails the whole deal.
func (j *taskJob) Execute(ctx context.Context) worker.Result {
	cp := &j.plan.Checkpoints[j.cpIdx]
	task := &cp.Tasks[j.taskIdx]

	res := &taskResult{dealIdx: j.dealIdx, cpIdx: j.cpIdx, taskIdx: j.taskIdx}

	outcome, err := j.pipeline.dispatcher.RunTask(ctx, j.plan.Deal, cp, task)
	if err != nil {
		res.err = err
		return res
	}

	res.score = j.pipeline.scorer.ScoreTask(ctx, task, outcome, cp.GroundTruth)
	return res
}

// Run executes the full benchmark and returns the run result. With dryRun
// or skipExternal set the agent and judge are never called and every deal
// reports zero scored tasks.
func (p *Pipeline) Run(ctx context.Context) (*model.ArtifactBenchmarkResult, error) {
	plans, err := p.Plan(ctx)
	if err != nil {
		return nil, err
	}

	if p.cfg.DryRun || p.cfg.SkipExternal {
		return p.assemble(plans, nil), nil
	}

	pool := worker.NewPool(p.cfg.Concurrency.TaskWorkers)
	pool.Start(ctx)

	for di := range plans {
		plan := &plans[di]
		if p.cfg.Anonymize && !plan.Deal.Anonymized() {
			// Anonymization failures are fatal for the deal only; the run
			// continues and the deal reports the refusal.
			continue
		}
		for ci := range plan.Checkpoints {
			for ti := range plan.Checkpoints[ci].Tasks {
				job := &taskJob{pipeline: p, plan: plan, dealIdx: di, cpIdx: ci, taskIdx: ti}
				if !pool.Submit(ctx, job) {
					break
				}
			}
		}
	}

	results := pool.Wait()

	taskScores := make(map[int]map[int]map[int]model.TaskScore)
	for _, r := range results {
		tr := r.(*taskResult)
		if tr.err != nil {
			fmt.Fprintf(os.Stderr, "✗ task failed: %v\n", tr.err)
			continue
		}
		if taskScores[tr.dealIdx] == nil {
			taskScores[tr.dealIdx] = make(map[int]map[int]model.TaskScore)
		}
		if taskScores[tr.dealIdx][tr.cpIdx] == nil {
			taskScores[tr.dealIdx][tr.cpIdx] = make(map[int]model.TaskScore)
		}
		taskScores[tr.dealIdx][tr.cpIdx][tr.taskIdx] = tr.score
	}

	return p.assemble(plans, taskScores), nil
}

// assemble merges task scores into the deterministic run result. Tasks that
// never completed (cancellation, anonymization refusal) appear zero-scored
// rather than missing, so aggregates stay comparable across runs.
func (p *Pipeline) assemble(plans []DealPlan, taskScores map[int]map[int]map[int]model.TaskScore) *model.ArtifactBenchmarkResult {
	scored := taskScores != nil

	dealResults := make([]model.DealResult, 0, len(plans))
	for di := range plans {
		plan := &plans[di]

		var checkpointResults []model.CheckpointResult
		for ci := range plan.Checkpoints {
			cp := &plan.Checkpoints[ci]

			var scores []model.TaskScore
			for ti := range cp.Tasks {
				task := &cp.Tasks[ti]
				if ts, ok := lookupScore(taskScores, di, ci, ti); ok {
					scores = append(scores, ts)
					continue
				}
				if !scored {
					continue
				}
				scores = append(scores, zeroTaskScore(task))
			}
			checkpointResults = append(checkpointResults, score.AggregateCheckpoint(cp.ID, scores))
		}

		dr := score.AggregateDeal(plan.Deal, plan.Classification.Tier, checkpointResults)
		if scored && p.cfg.Anonymize && !plan.Deal.Anonymized() {
			dr.Error = fmt.Sprintf("deal %s: artifacts not anonymized; dispatch refused", plan.Deal.ID)
		}
		dealResults = append(dealResults, dr)
	}

	return score.AggregateRun(p.cfg.Agent.ID, p.cfg.Agent.Endpoint, p.cfg.Mode, dealResults)
}

func lookupScore(m map[int]map[int]map[int]model.TaskScore, di, ci, ti int) (model.TaskScore, bool) {
	if m == nil || m[di] == nil || m[di][ci] == nil {
		return model.TaskScore{}, false
	}
	ts, ok := m[di][ci][ti]
	return ts, ok
}

// zeroTaskScore records a task that never reached the judge as
// judged-and-failed on every declared dimension.
func zeroTaskScore(task *model.EvaluationTask) model.TaskScore {
	dims := make(model.DimensionScores, len(task.ScoringDimensions))
	for _, d := range task.ScoringDimensions {
		dims[d] = 0
	}
	return model.TaskScore{
		TaskID:     task.ID,
		TaskType:   task.Type,
		Dimensions: dims,
		TotalScore: 0,
		MaxScore:   score.MaxScore(dims),
		Failed:     true,
		Feedback:   "task was not dispatched",
	}
}
