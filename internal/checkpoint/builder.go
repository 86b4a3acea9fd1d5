// Package checkpoint turns a classified deal's artifacts into the ordered
// checkpoint sequence the dispatcher runs against. Building is synchronous
// and deterministic: the same deal and tier always produce byte-identical
// checkpoints, which is what makes dry runs reproducible.
package checkpoint

import (
	"fmt"
	"sort"
	"time"

	"github.com/ppiankov/dealbench/internal/model"
)

// Builder constructs checkpoints and their evaluation tasks.
type Builder struct{}

// NewBuilder creates a checkpoint builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build produces the checkpoint sequence for a deal under the given tier.
//
// Summary-only deals get exactly one checkpoint with no artifact list.
// Artifact tiers walk the artifacts chronologically and emit one checkpoint
// per narrative juncture (each transcript, each email thread with more than
// one message), with availableArtifacts accumulating monotonically. A deal
// that claims an artifact tier but resolves no artifacts falls back to the
// summary-only shape rather than an empty sequence.
func (b *Builder) Build(deal *model.ArtifactDeal, tier model.Tier) ([]model.ArtifactCheckpoint, error) {
	if err := deal.Validate(); err != nil {
		return nil, fmt.Errorf("build checkpoints: %w", err)
	}

	if tier == model.TierSummaryOnly || len(deal.Artifacts) == 0 {
		return b.buildSummaryOnly(deal), nil
	}

	ordered := chronological(deal.Artifacts)

	// Checkpoint seeds authored in the deal file carry the ground truth and
	// snapshots; the builder cannot invent what happened next. Without seeds
	// the junctures are derived from the artifacts themselves.
	seeds := deal.Checkpoints
	if len(seeds) == 0 {
		seeds = synthesizeSeeds(deal, ordered)
	}
	if len(seeds) == 0 {
		return b.buildSummaryOnly(deal), nil
	}

	checkpoints := make([]model.ArtifactCheckpoint, 0, len(seeds))
	for i, seed := range seeds {
		cp := model.ArtifactCheckpoint{
			ID:           fmt.Sprintf("%s-cp-%03d", deal.ID, i+1),
			DealID:       deal.ID,
			Version:      model.SchemaVersion,
			Timestamp:    seed.Timestamp,
			DealSnapshot: seed.DealSnapshot,
			Stakeholders: seed.Stakeholders,
			GroundTruth:  seed.GroundTruth,
		}

		// Everything dated at or before the checkpoint is visible. Later
		// checkpoints see strictly more: information accumulates, never
		// disappears.
		for _, a := range ordered {
			if !a.Date().After(seed.Timestamp) {
				cp.AvailableArtifacts = append(cp.AvailableArtifacts, a.Summary())
			}
		}

		// Authored tasks win; generation only fills the gap.
		if len(seed.Tasks) > 0 {
			cp.Tasks = seed.Tasks
		} else {
			cp.Tasks = b.buildTasks(&cp, tier, i, len(seeds))
		}
		checkpoints = append(checkpoints, cp)
	}

	built := &model.ArtifactDeal{
		ID:          deal.ID,
		Name:        deal.Name,
		Version:     deal.Version,
		Artifacts:   deal.Artifacts,
		Checkpoints: checkpoints,
		Metadata:    deal.Metadata,
	}
	if err := built.Validate(); err != nil {
		return nil, fmt.Errorf("build checkpoints: deal %s: %w", deal.ID, err)
	}

	return checkpoints, nil
}

// buildSummaryOnly emits the single prose-context checkpoint.
func (b *Builder) buildSummaryOnly(deal *model.ArtifactDeal) []model.ArtifactCheckpoint {
	cp := model.ArtifactCheckpoint{
		ID:        fmt.Sprintf("%s-cp-001", deal.ID),
		DealID:    deal.ID,
		Version:   model.SchemaVersion,
		Timestamp: deal.Metadata.DateRange.End,
	}
	if len(deal.Checkpoints) > 0 {
		// Keep the authored ground truth and snapshot from the last (most
		// complete) seed; only the artifact exposure collapses.
		seed := deal.Checkpoints[len(deal.Checkpoints)-1]
		cp.Timestamp = seed.Timestamp
		cp.DealSnapshot = seed.DealSnapshot
		cp.Stakeholders = seed.Stakeholders
		cp.GroundTruth = seed.GroundTruth
	}

	cp.Tasks = []model.EvaluationTask{
		b.newTask(&cp, model.TierSummaryOnly, model.TaskDealAnalysis, 1),
		b.newTask(&cp, model.TierSummaryOnly, model.TaskRiskAssessment, 2),
	}

	return []model.ArtifactCheckpoint{cp}
}

// buildTasks selects 1-3 task types for a checkpoint. Selection depends only
// on tier, position, and the visible artifacts, so reruns are stable.
func (b *Builder) buildTasks(cp *model.ArtifactCheckpoint, tier model.Tier, index, total int) []model.EvaluationTask {
	var types []model.TaskType

	lastVisible := latestArtifact(cp.AvailableArtifacts)
	switch {
	case lastVisible != nil && lastVisible.Type == model.ArtifactTranscript:
		types = append(types, model.TaskCallSummary, model.TaskFollowUpDraft)
	case index == 0:
		types = append(types, model.TaskDealAnalysis, model.TaskRiskAssessment)
	default:
		types = append(types, model.TaskDealAnalysis, model.TaskActionItems)
	}

	if index == total-1 {
		types = append(types, model.TaskDealQualification)
	} else if tier == model.TierArtifactRich {
		if index%2 == 1 {
			types = append(types, model.TaskStakeholderAnalysis)
		} else if index > 0 {
			types = append(types, model.TaskObjectionHandling)
		}
	}

	if len(types) > 3 {
		types = types[:3]
	}

	tasks := make([]model.EvaluationTask, 0, len(types))
	for i, tt := range types {
		tasks = append(tasks, b.newTask(cp, tier, tt, i+1))
	}
	return tasks
}

// newTask builds one task with its prompt, artifact references, and the
// dimension set its tier unlocks.
func (b *Builder) newTask(cp *model.ArtifactCheckpoint, tier model.Tier, tt model.TaskType, seq int) model.EvaluationTask {
	task := model.EvaluationTask{
		ID:                fmt.Sprintf("%s-t%d", cp.ID, seq),
		Type:              tt,
		Prompt:            taskPrompt(tt, cp.DealSnapshot),
		ScoringDimensions: dimensionsFor(tt, tier),
	}

	if tier == model.TierSummaryOnly || len(cp.AvailableArtifacts) == 0 {
		return task
	}

	// Call-anchored tasks require the juncture artifact; everything else in
	// the window rides along as optional context (most recent first, capped
	// so request bodies stay bounded).
	latest := latestArtifact(cp.AvailableArtifacts)
	switch tt {
	case model.TaskCallSummary, model.TaskFollowUpDraft, model.TaskObjectionHandling:
		task.RequiredArtifacts = []string{latest.ID}
	default:
		task.RequiredArtifacts = []string{cp.AvailableArtifacts[0].ID}
	}

	const optionalCap = 5
	for i := len(cp.AvailableArtifacts) - 1; i >= 0 && len(task.OptionalArtifacts) < optionalCap; i-- {
		id := cp.AvailableArtifacts[i].ID
		if id == task.RequiredArtifacts[0] {
			continue
		}
		task.OptionalArtifacts = append(task.OptionalArtifacts, id)
	}

	return task
}

// dimensionsFor returns the base dimensions plus the extended dimensions a
// task type exercises. Summary-only tasks never carry extended dimensions.
func dimensionsFor(tt model.TaskType, tier model.Tier) []model.Dimension {
	dims := append([]model.Dimension{}, model.BaseDimensions...)
	if tier == model.TierSummaryOnly {
		return dims
	}

	switch tt {
	case model.TaskDealAnalysis:
		dims = append(dims, model.DimInformationSynthesis, model.DimDealQualification)
	case model.TaskCallSummary:
		dims = append(dims, model.DimInformationSynthesis, model.DimCommunicationQuality)
	case model.TaskFollowUpDraft:
		dims = append(dims, model.DimCommunicationQuality)
	case model.TaskStakeholderAnalysis:
		dims = append(dims, model.DimStakeholderMapping)
	case model.TaskRiskAssessment:
		dims = append(dims, model.DimInformationSynthesis)
	case model.TaskDealQualification:
		dims = append(dims, model.DimDealQualification)
	case model.TaskObjectionHandling:
		dims = append(dims, model.DimCommunicationQuality, model.DimStakeholderMapping)
	}
	return dims
}

// taskPrompt renders the per-type prompt template.
func taskPrompt(tt model.TaskType, snap model.DealSnapshot) string {
	company := snap.Company
	if company == "" {
		company = "the prospect"
	}

	switch tt {
	case model.TaskDealAnalysis:
		return fmt.Sprintf("Analyze the current state of the deal with %s (stage: %s). What is working, what is at risk, and what should happen next?", company, snap.Stage)
	case model.TaskCallSummary:
		return fmt.Sprintf("Summarize the most recent call with %s: key points discussed, commitments made, and open questions.", company)
	case model.TaskFollowUpDraft:
		return fmt.Sprintf("Draft a follow-up email to %s based on the most recent interaction. Confirm next steps and address any open concerns.", company)
	case model.TaskStakeholderAnalysis:
		return fmt.Sprintf("Map the stakeholders at %s: who influences the decision, their sentiment, and any gaps in our coverage.", company)
	case model.TaskRiskAssessment:
		return fmt.Sprintf("Identify the top risks to closing the deal with %s and how each should be mitigated.", company)
	case model.TaskDealQualification:
		return fmt.Sprintf("Qualify the deal with %s: budget, authority, need, and timeline. Is this deal worth pursuing at its current stage (%s)?", company, snap.Stage)
	case model.TaskObjectionHandling:
		return fmt.Sprintf("Identify the objections raised by %s in the latest interaction and propose how to handle each one.", company)
	case model.TaskActionItems:
		return fmt.Sprintf("List the concrete action items for the account team on the %s deal, ordered by priority.", company)
	default:
		return fmt.Sprintf("Assess the deal with %s.", company)
	}
}

// latestArtifact returns the most recent visible artifact, or nil when the
// window is empty. AvailableArtifacts are already chronological.
func latestArtifact(available []model.ArtifactSummary) *model.ArtifactSummary {
	if len(available) == 0 {
		return nil
	}
	return &available[len(available)-1]
}

// chronological returns the deal's artifacts ordered by date, with id as a
// stable tiebreak so map iteration order never leaks into output.
func chronological(artifacts map[string]model.Artifact) []model.Artifact {
	out := make([]model.Artifact, 0, len(artifacts))
	for _, a := range artifacts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].Date(), out[j].Date()
		if di.Equal(dj) {
			return out[i].ID < out[j].ID
		}
		return di.Before(dj)
	})
	return out
}

// synthesizeSeeds derives checkpoint seeds from the artifact timeline when
// the deal file authored none. Ground truth stays empty: the builder never
// invents outcomes.
func synthesizeSeeds(deal *model.ArtifactDeal, ordered []model.Artifact) []model.ArtifactCheckpoint {
	firstContact := time.Time{}
	if len(ordered) > 0 {
		firstContact = ordered[0].Date()
	}

	var seeds []model.ArtifactCheckpoint
	var lastTS time.Time
	for _, a := range ordered {
		if !isJuncture(&a) {
			continue
		}
		ts := a.Date()
		// Checkpoints must be strictly time-ordered; junctures sharing a
		// timestamp collapse into one.
		if len(seeds) > 0 && !ts.After(lastTS) {
			continue
		}
		seeds = append(seeds, model.ArtifactCheckpoint{
			DealID:    deal.ID,
			Timestamp: ts,
			DealSnapshot: model.DealSnapshot{
				Company:               deal.Name,
				Stage:                 stageAt(ordered, ts),
				DaysSinceFirstContact: int(ts.Sub(firstContact).Hours() / 24),
			},
		})
		lastTS = ts
	}
	return seeds
}

// isJuncture reports whether an artifact marks a narrative juncture worth a
// checkpoint: every transcript, and email threads with a real back-and-forth.
func isJuncture(a *model.Artifact) bool {
	switch a.Type {
	case model.ArtifactTranscript:
		return true
	case model.ArtifactEmail:
		return a.Email != nil && len(a.Email.Messages) >= 2
	}
	return false
}

// stageAt returns the deal stage from the latest CRM snapshot at or before
// the given time, if any snapshot records one.
func stageAt(ordered []model.Artifact, ts time.Time) string {
	stage := ""
	for _, a := range ordered {
		if a.Date().After(ts) {
			break
		}
		if a.Type == model.ArtifactCRMSnapshot && a.CRMSnapshot != nil {
			if s, ok := a.CRMSnapshot.DealProperties["stage"]; ok {
				stage = s
			}
		}
	}
	return stage
}
