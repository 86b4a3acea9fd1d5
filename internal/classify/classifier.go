// Package classify assigns each deal a tier that selects the
// checkpoint/task generation strategy downstream. Tiering is a pure
// function of the deal's stats: same inputs, same tier, on every run.
package classify

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/dealbench/internal/model"
)

// DealStats are the classification inputs inspected from a deal.
type DealStats struct {
	TranscriptCount  int
	HasNonTranscript bool
	HasContextMD     bool
	HasOutputs       bool
}

// Classifier applies the tiering policy. Thresholds are configuration, not
// constants; the defaults live in model.DefaultConfig.
type Classifier struct {
	richMinTranscripts     int
	standardMinTranscripts int
}

// NewClassifier creates a classifier from the configured thresholds.
func NewClassifier(cfg model.ClassifierConfig) *Classifier {
	rich := cfg.RichMinTranscripts
	if rich <= 0 {
		rich = 5
	}
	standard := cfg.StandardMinTranscripts
	if standard <= 0 {
		standard = 1
	}
	return &Classifier{
		richMinTranscripts:     rich,
		standardMinTranscripts: standard,
	}
}

// Classify assigns a tier from the deal's stats. The policy looks only at
// transcript count, context-doc presence, and output presence: a deal with
// zero transcripts classifies summary-only no matter how rich its CRM or
// email artifacts are.
func (c *Classifier) Classify(dealDir string, stats DealStats) model.DealClassification {
	tier := model.TierSummaryOnly

	switch {
	case stats.TranscriptCount >= c.richMinTranscripts && stats.HasNonTranscript && stats.HasOutputs:
		tier = model.TierArtifactRich
	case stats.TranscriptCount >= c.standardMinTranscripts && stats.HasContextMD:
		tier = model.TierArtifactStandard
	}

	return model.DealClassification{
		DealDir:         dealDir,
		Tier:            tier,
		TranscriptCount: stats.TranscriptCount,
		HasContextMD:    stats.HasContextMD,
		HasOutputs:      stats.HasOutputs,
	}
}

// StatsFromDeal derives classification inputs from a loaded deal's artifact
// inventory. A document artifact with documentType "context" counts as the
// context doc.
func StatsFromDeal(deal *model.ArtifactDeal) DealStats {
	var stats DealStats
	for _, a := range deal.Artifacts {
		if a.Type == model.ArtifactTranscript {
			stats.TranscriptCount++
			continue
		}
		stats.HasNonTranscript = true
		if a.Type == model.ArtifactDocument && a.Document != nil &&
			strings.EqualFold(a.Document.DocumentType, "context") {
			stats.HasContextMD = true
		}
	}
	return stats
}

// InspectDealDir supplements deal-derived stats with filesystem evidence:
// a context.md beside the deal file and a non-empty outputs directory.
// The result is recomputed each run and never persisted as source of truth.
func InspectDealDir(dir string, stats DealStats) DealStats {
	if _, err := os.Stat(filepath.Join(dir, "context.md")); err == nil {
		stats.HasContextMD = true
	}

	entries, err := os.ReadDir(filepath.Join(dir, "outputs"))
	if err == nil && len(entries) > 0 {
		stats.HasOutputs = true
	}

	return stats
}
