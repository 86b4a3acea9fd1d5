package model

import "time"

// Dimension is one axis of rubric-based quality measurement, scored 0-10.
type Dimension string

// Base dimensions apply to every scored task, including summary-only mode.
const (
	DimRiskIdentification Dimension = "riskIdentification"
	DimNextStepQuality    Dimension = "nextStepQuality"
	DimPrioritization     Dimension = "prioritization"
	DimOutcomeAlignment   Dimension = "outcomeAlignment"
)

// Extended dimensions are unlocked by artifact-based evaluation.
const (
	DimStakeholderMapping   Dimension = "stakeholderMapping"
	DimDealQualification    Dimension = "dealQualification"
	DimInformationSynthesis Dimension = "informationSynthesis"
	DimCommunicationQuality Dimension = "communicationQuality"
)

// BaseDimensions lists the four dimensions present in every scoring object.
var BaseDimensions = []Dimension{
	DimRiskIdentification,
	DimNextStepQuality,
	DimPrioritization,
	DimOutcomeAlignment,
}

// ExtendedDimensions lists the four dimensions added for artifact tiers.
var ExtendedDimensions = []Dimension{
	DimStakeholderMapping,
	DimDealQualification,
	DimInformationSynthesis,
	DimCommunicationQuality,
}

// AllDimensions lists all eight dimensions in a stable order.
var AllDimensions = append(append([]Dimension{}, BaseDimensions...), ExtendedDimensions...)

// ValidDimension reports whether d is one of the eight known dimensions.
func ValidDimension(d Dimension) bool {
	for _, known := range AllDimensions {
		if d == known {
			return true
		}
	}
	return false
}

// DimensionScores maps dimensions to integer scores 0-10. Absence of a key
// means the dimension was not applicable to the task; zero means the judge
// scored it and it failed. The two are never conflated.
type DimensionScores map[Dimension]int

// MaxDimensionScore is the ceiling of a single dimension score.
const MaxDimensionScore = 10

// TaskScore holds the judge's verdict for one task.
type TaskScore struct {
	TaskID     string          `json:"taskId"`
	TaskType   TaskType        `json:"taskType"`
	Dimensions DimensionScores `json:"dimensions"`
	Feedback   string          `json:"feedback,omitempty"`
	TotalScore int             `json:"totalScore"`
	MaxScore   int             `json:"maxScore"`
	Failed     bool            `json:"failed,omitempty"`
}

// CheckpointResult aggregates the task scores of one checkpoint.
type CheckpointResult struct {
	CheckpointID string      `json:"checkpointId"`
	TaskScores   []TaskScore `json:"taskScores"`
	TotalScore   int         `json:"totalScore"`
	MaxScore     int         `json:"maxScore"`
	Band         string      `json:"band"`
}

// DealResult aggregates the checkpoint results of one deal.
type DealResult struct {
	DealID            string             `json:"dealId"`
	DealName          string             `json:"dealName"`
	Tier              Tier               `json:"tier"`
	CheckpointResults []CheckpointResult `json:"checkpointResults"`
	TotalScore        int                `json:"totalScore"`
	MaxScore          int                `json:"maxScore"`
	Band              string             `json:"band"`
	Error             string             `json:"error,omitempty"`
}

// ArtifactBenchmarkResult is the run-level output artifact. One file is
// written per run; failed tasks appear as zero-scored entries so aggregate
// statistics stay comparable across runs.
type ArtifactBenchmarkResult struct {
	RunID               string                `json:"runId"`
	AgentID             string                `json:"agentId"`
	AgentEndpoint       string                `json:"agentEndpoint"`
	Version             int                   `json:"version"`
	Mode                string                `json:"mode"`
	RunTimestamp        time.Time             `json:"runTimestamp"`
	DealResults         []DealResult          `json:"dealResults"`
	AggregateScore      int                   `json:"aggregateScore"`
	MaxPossibleScore    int                   `json:"maxPossibleScore"`
	AggregateDimensions map[Dimension]float64 `json:"aggregateDimensions"`
}

// Run modes.
const (
	ModePublic  = "public"
	ModePrivate = "private"
)

// BenchmarkResult is the legacy 4-dimension result shape kept for old
// consumers. Extended dimensions are dropped from aggregates on conversion.
type BenchmarkResult struct {
	AgentID             string                `json:"agentId"`
	AgentEndpoint       string                `json:"agentEndpoint"`
	Version             int                   `json:"version"`
	Mode                string                `json:"mode"`
	RunTimestamp        time.Time             `json:"runTimestamp"`
	DealScores          []LegacyDealScore     `json:"dealScores"`
	AggregateScore      int                   `json:"aggregateScore"`
	MaxPossibleScore    int                   `json:"maxPossibleScore"`
	AggregateDimensions map[Dimension]float64 `json:"aggregateDimensions"`
}

// LegacyDealScore is the per-deal entry of the legacy result shape.
type LegacyDealScore struct {
	DealID     string `json:"dealId"`
	TotalScore int    `json:"totalScore"`
	MaxScore   int    `json:"maxScore"`
	Band       string `json:"band"`
}
