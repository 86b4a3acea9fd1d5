package dispatch

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/dealbench/internal/model"
)

// TaskState is the terminal state of a task's dispatch loop.
type TaskState string

const (
	StateAwaitingResponse TaskState = "awaiting_response"
	StateComplete         TaskState = "complete"
	StateMaxTurnsReached  TaskState = "max_turns_reached"
	StateFailed           TaskState = "failed"
)

// AgentTaskOutcome is the final answer extracted from the multi-turn
// exchange for one task. A failed exchange still yields an outcome (empty
// answer, zero confidence) so the run's aggregate stays computable.
type AgentTaskOutcome struct {
	DealID       string
	CheckpointID string
	TaskID       string
	TaskType     model.TaskType

	Answer     string
	Reasoning  string
	Confidence float64
	Turns      int
	State      TaskState
	Err        string
}

// ErrNotAnonymized marks a deal refused by the anonymization gate. The deal
// fails; the run continues with other deals.
type ErrNotAnonymized struct {
	DealID     string
	ArtifactID string
}

func (e *ErrNotAnonymized) Error() string {
	return fmt.Sprintf("deal %s: artifact %s is not anonymized; refusing to dispatch", e.DealID, e.ArtifactID)
}

// Dispatcher runs the bounded multi-turn protocol against an agent caller.
// It holds no mutable state across tasks, so concurrent RunTask calls are
// safe.
type Dispatcher struct {
	caller            Caller
	defaultMaxTurns   int
	maxTurnsByType    map[model.TaskType]int
	requireAnonymized bool
}

// NewDispatcher creates a dispatcher over the given caller.
func NewDispatcher(caller Caller, cfg model.AgentConfig, requireAnonymized bool) *Dispatcher {
	defaultMaxTurns := cfg.DefaultMaxTurns
	if defaultMaxTurns <= 0 {
		defaultMaxTurns = 3
	}
	return &Dispatcher{
		caller:            caller,
		defaultMaxTurns:   defaultMaxTurns,
		maxTurnsByType:    cfg.MaxTurnsByType,
		requireAnonymized: requireAnonymized,
	}
}

// MaxTurns returns the turn limit for a task type.
func (d *Dispatcher) MaxTurns(tt model.TaskType) int {
	if n, ok := d.maxTurnsByType[tt]; ok && n > 0 {
		return n
	}
	return d.defaultMaxTurns
}

// RunTask drives one task to a terminal state.
//
// Turn 1 goes out with the task prompt; while the agent answers
// isComplete=false and turns remain, the prior reasoning and answer are
// appended as context for the next turn. At the turn limit the last answer
// is used regardless of isComplete. Call failures (after the caller's own
// retries) degrade to an empty answer rather than propagating.
func (d *Dispatcher) RunTask(ctx context.Context, deal *model.ArtifactDeal, cp *model.ArtifactCheckpoint, task *model.EvaluationTask) (*AgentTaskOutcome, error) {
	outcome := &AgentTaskOutcome{
		DealID:       deal.ID,
		CheckpointID: cp.ID,
		TaskID:       task.ID,
		TaskType:     task.Type,
		State:        StateAwaitingResponse,
	}

	artifacts, err := d.resolveArtifacts(deal, task)
	if err != nil {
		return nil, err
	}

	version := wireVersion(deal, cp)
	maxTurns := d.MaxTurns(task.Type)
	if version == model.WireV1 {
		// v1 has no turn tracking; the exchange is a single shot.
		maxTurns = 1
	}

	prompt := task.Prompt
	for turn := 1; turn <= maxTurns; turn++ {
		req := &model.ArtifactAgentRequest{
			Version:      version,
			CheckpointID: cp.ID,
			TaskID:       task.ID,
			TaskType:     task.Type,
			Prompt:       prompt,
			DealSnapshot: cp.DealSnapshot,
			Stakeholders: cp.Stakeholders,
		}
		if version == model.WireV2 {
			req.Artifacts = artifacts
			req.TurnNumber = turn
			req.MaxTurns = maxTurns
		}

		resp, err := d.caller.Call(ctx, req)
		if err != nil {
			// Degraded fallback: empty answer, zero confidence, complete.
			outcome.Answer = ""
			outcome.Confidence = 0
			outcome.Turns = turn
			outcome.State = StateFailed
			outcome.Err = err.Error()
			return outcome, nil
		}

		outcome.Answer = resp.Answer
		outcome.Reasoning = resp.Reasoning
		outcome.Confidence = resp.Confidence
		outcome.Turns = turn

		if resp.IsComplete {
			outcome.State = StateComplete
			return outcome, nil
		}
		if turn == maxTurns {
			// The last answer is used even though the agent wanted more.
			outcome.State = StateMaxTurnsReached
			return outcome, nil
		}

		prompt = continuationPrompt(task.Prompt, resp)
	}

	outcome.State = StateMaxTurnsReached
	return outcome, nil
}

// resolveArtifacts gathers required then optional artifact content for the
// request, enforcing the anonymization gate when configured.
func (d *Dispatcher) resolveArtifacts(deal *model.ArtifactDeal, task *model.EvaluationTask) ([]model.Artifact, error) {
	seen := make(map[string]bool, len(task.RequiredArtifacts)+len(task.OptionalArtifacts))

	var required []model.Artifact
	for _, id := range task.RequiredArtifacts {
		if seen[id] {
			continue
		}
		seen[id] = true

		a, ok := deal.Artifacts[id]
		if !ok {
			return nil, fmt.Errorf("deal %s task %s: required artifact %q not found", deal.ID, task.ID, id)
		}
		if d.requireAnonymized && !a.Anonymized {
			return nil, &ErrNotAnonymized{DealID: deal.ID, ArtifactID: id}
		}
		required = append(required, a)
	}

	var optional []model.Artifact
	for _, id := range task.OptionalArtifacts {
		if seen[id] {
			continue
		}
		seen[id] = true

		a, ok := deal.Artifacts[id]
		if !ok {
			continue
		}
		if d.requireAnonymized && !a.Anonymized {
			return nil, &ErrNotAnonymized{DealID: deal.ID, ArtifactID: id}
		}
		optional = append(optional, a)
	}

	// Required artifacts lead; optional context follows oldest-first, in a
	// stable order independent of map iteration.
	sort.SliceStable(optional, func(i, j int) bool {
		return optional[i].Date().Before(optional[j].Date())
	})

	return append(required, optional...), nil
}

// wireVersion selects the request shape: v1 for summary-only checkpoints and
// schema-version-1 deals, v2 otherwise.
func wireVersion(deal *model.ArtifactDeal, cp *model.ArtifactCheckpoint) int {
	if deal.Version == 1 || len(cp.AvailableArtifacts) == 0 {
		return model.WireV1
	}
	return model.WireV2
}

// continuationPrompt carries the prior turn into the next request.
func continuationPrompt(base string, prior *model.ArtifactAgentResponse) string {
	var b strings.Builder
	b.WriteString(base)
	if prior.Reasoning != "" {
		b.WriteString("\n\nYour reasoning so far:\n")
		b.WriteString(prior.Reasoning)
	}
	if prior.Answer != "" {
		b.WriteString("\n\nYour draft answer so far:\n")
		b.WriteString(prior.Answer)
	}
	b.WriteString("\n\nContinue and complete your answer.")
	return b.String()
}
