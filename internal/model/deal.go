package model

import (
	"fmt"
	"time"
)

// SchemaVersion is the current deal/wire schema version. Version 1 deals
// (summary-only, no artifact map) remain accepted on input.
const SchemaVersion = 2

// ArtifactDeal is the benchmark unit: one sales opportunity with its source
// artifacts and a chronological sequence of evaluation checkpoints. The deal
// owns the artifacts map and checkpoints exclusively; checkpoints reference
// artifacts by id so large transcript text exists in exactly one place.
type ArtifactDeal struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Version      int                  `json:"version"`
	Artifacts    map[string]Artifact  `json:"artifacts"`
	Checkpoints  []ArtifactCheckpoint `json:"checkpoints"`
	FinalOutcome string               `json:"finalOutcome,omitempty"`
	Metadata     DealMetadata         `json:"metadata"`
}

// DealMetadata summarizes a deal's artifact inventory.
type DealMetadata struct {
	TranscriptCount int       `json:"transcriptCount"`
	ArtifactCount   int       `json:"artifactCount"`
	DateRange       DateRange `json:"dateRange"`
}

// DateRange spans the earliest and latest artifact dates in a deal.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ArtifactCheckpoint is a point-in-time snapshot of a deal: what the agent
// may see as of this point, the ground truth of what actually happened next,
// and the evaluation tasks bound to this moment.
type ArtifactCheckpoint struct {
	ID                 string            `json:"id"`
	DealID             string            `json:"dealId"`
	Version            int               `json:"version"`
	Timestamp          time.Time         `json:"timestamp"`
	AvailableArtifacts []ArtifactSummary `json:"availableArtifacts"`
	DealSnapshot       DealSnapshot      `json:"dealSnapshot"`
	Stakeholders       []Stakeholder     `json:"stakeholders"`
	GroundTruth        GroundTruth       `json:"groundTruth"`
	Tasks              []EvaluationTask  `json:"tasks"`
}

// DealSnapshot is the coarse deal state visible at a checkpoint.
type DealSnapshot struct {
	Company               string `json:"company"`
	Stage                 string `json:"stage"`
	DaysSinceFirstContact int    `json:"daysSinceFirstContact"`
}

// Stakeholder is a named participant on the buying side.
type Stakeholder struct {
	Name      string `json:"name"`
	Role      string `json:"role"`
	Sentiment string `json:"sentiment,omitempty"`
}

// GroundTruth records what actually happened after a checkpoint, used only
// by the judge and never shown to the agent.
type GroundTruth struct {
	WhatHappenedNext            string   `json:"whatHappenedNext"`
	ActualRisksThatMaterialized []string `json:"actualRisksThatMaterialized,omitempty"`
	OutcomeAtThisPoint          string   `json:"outcomeAtThisPoint"`
}

// TaskType identifies one of the eight evaluation task kinds.
type TaskType string

const (
	TaskDealAnalysis        TaskType = "deal_analysis"
	TaskCallSummary         TaskType = "call_summary"
	TaskFollowUpDraft       TaskType = "follow_up_draft"
	TaskStakeholderAnalysis TaskType = "stakeholder_analysis"
	TaskRiskAssessment      TaskType = "risk_assessment"
	TaskDealQualification   TaskType = "deal_qualification"
	TaskObjectionHandling   TaskType = "objection_handling"
	TaskActionItems         TaskType = "action_items"
)

// TaskTypes lists every valid task type in a stable order.
var TaskTypes = []TaskType{
	TaskDealAnalysis,
	TaskCallSummary,
	TaskFollowUpDraft,
	TaskStakeholderAnalysis,
	TaskRiskAssessment,
	TaskDealQualification,
	TaskObjectionHandling,
	TaskActionItems,
}

// ValidTaskType reports whether t is one of the eight known task types.
func ValidTaskType(t TaskType) bool {
	for _, known := range TaskTypes {
		if t == known {
			return true
		}
	}
	return false
}

// EvaluationTask is a single prompt bound to a checkpoint, scored along the
// dimensions it declares. Required artifacts must resolve in the owning deal;
// optional ones are included when present.
type EvaluationTask struct {
	ID                string      `json:"id"`
	Type              TaskType    `json:"type"`
	Prompt            string      `json:"prompt"`
	RequiredArtifacts []string    `json:"requiredArtifacts,omitempty"`
	OptionalArtifacts []string    `json:"optionalArtifacts,omitempty"`
	ScoringDimensions []Dimension `json:"scoringDimensions"`
}

// Validate checks the deal's structural invariants: matching artifact
// ownership, resolvable checkpoint/task references, strictly time-ordered
// checkpoints, and monotonically accumulating availableArtifacts. These are
// configuration-time errors and fail fast with the offending deal/checkpoint
// named.
func (d *ArtifactDeal) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("deal missing id")
	}

	for id, a := range d.Artifacts {
		if a.ID != id {
			return fmt.Errorf("deal %s: artifact map key %q does not match artifact id %q", d.ID, id, a.ID)
		}
		if a.DealID != d.ID {
			return fmt.Errorf("deal %s: artifact %s belongs to deal %q", d.ID, id, a.DealID)
		}
		if err := a.Validate(); err != nil {
			return fmt.Errorf("deal %s: %w", d.ID, err)
		}
	}

	var prev *ArtifactCheckpoint
	for i := range d.Checkpoints {
		cp := &d.Checkpoints[i]
		if cp.DealID != d.ID {
			return fmt.Errorf("deal %s: checkpoint %s belongs to deal %q", d.ID, cp.ID, cp.DealID)
		}
		if prev != nil && !cp.Timestamp.After(prev.Timestamp) {
			return fmt.Errorf("deal %s: checkpoint %s not after checkpoint %s", d.ID, cp.ID, prev.ID)
		}
		if prev != nil && !supersetOf(cp.AvailableArtifacts, prev.AvailableArtifacts) {
			return fmt.Errorf("deal %s: checkpoint %s drops artifacts visible at %s", d.ID, cp.ID, prev.ID)
		}
		for _, s := range cp.AvailableArtifacts {
			if _, ok := d.Artifacts[s.ID]; !ok {
				return fmt.Errorf("deal %s: checkpoint %s references unknown artifact %q", d.ID, cp.ID, s.ID)
			}
		}
		for _, t := range cp.Tasks {
			if !ValidTaskType(t.Type) {
				return fmt.Errorf("deal %s: checkpoint %s task %s: unknown type %q", d.ID, cp.ID, t.ID, t.Type)
			}
			for _, ref := range t.RequiredArtifacts {
				if _, ok := d.Artifacts[ref]; !ok {
					return fmt.Errorf("deal %s: checkpoint %s task %s: required artifact %q not found", d.ID, cp.ID, t.ID, ref)
				}
			}
			for _, ref := range t.OptionalArtifacts {
				if _, ok := d.Artifacts[ref]; !ok {
					return fmt.Errorf("deal %s: checkpoint %s task %s: optional artifact %q not found", d.ID, cp.ID, t.ID, ref)
				}
			}
			for _, dim := range t.ScoringDimensions {
				if !ValidDimension(dim) {
					return fmt.Errorf("deal %s: checkpoint %s task %s: unknown dimension %q", d.ID, cp.ID, t.ID, dim)
				}
			}
		}
		prev = cp
	}

	return nil
}

// Anonymized reports whether every artifact in the deal is anonymized.
func (d *ArtifactDeal) Anonymized() bool {
	for _, a := range d.Artifacts {
		if !a.Anonymized {
			return false
		}
	}
	return true
}

// supersetOf reports whether every artifact id in sub also appears in super.
func supersetOf(super, sub []ArtifactSummary) bool {
	ids := make(map[string]bool, len(super))
	for _, s := range super {
		ids[s.ID] = true
	}
	for _, s := range sub {
		if !ids[s.ID] {
			return false
		}
	}
	return true
}
