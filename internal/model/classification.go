package model

// Tier classifies a deal's artifact richness. The tier selects the
// checkpoint/task generation strategy and nothing else; it is recomputed on
// every pipeline run and never persisted as source of truth.
type Tier string

const (
	TierArtifactRich     Tier = "artifact-rich"
	TierArtifactStandard Tier = "artifact-standard"
	TierSummaryOnly      Tier = "summary-only"
)

// DealClassification is the classifier's verdict for one deal directory.
type DealClassification struct {
	DealDir         string `json:"dealDir"`
	Tier            Tier   `json:"tier"`
	TranscriptCount int    `json:"transcriptCount"`
	HasContextMD    bool   `json:"hasContextMd"`
	HasOutputs      bool   `json:"hasOutputs"`
}
