package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ppiankov/dealbench/internal/model"
)

// DealFileName is the deal definition file expected in each deal directory.
const DealFileName = "deal.json"

// ListDealDirs returns the deal directories under dealsDir, sorted by name
// for a stable processing order. With a non-empty filter only the named
// deals are returned; naming a missing deal is an error rather than a
// silent skip.
func ListDealDirs(dealsDir string, filter []string) ([]string, error) {
	entries, err := os.ReadDir(dealsDir)
	if err != nil {
		return nil, fmt.Errorf("read deals dir: %w", err)
	}

	available := make(map[string]bool)
	var dirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dealFile := filepath.Join(dealsDir, e.Name(), DealFileName)
		if _, err := os.Stat(dealFile); err != nil {
			continue
		}
		available[e.Name()] = true
		dirs = append(dirs, filepath.Join(dealsDir, e.Name()))
	}

	if len(filter) > 0 {
		dirs = dirs[:0]
		for _, name := range filter {
			if !available[name] {
				return nil, fmt.Errorf("deal %q not found under %s", name, dealsDir)
			}
			dirs = append(dirs, filepath.Join(dealsDir, name))
		}
	}

	sort.Strings(dirs)
	return dirs, nil
}

// LoadDeal reads and validates a deal directory's deal.json. Input may use
// snake_case field names; they are normalized before decoding. Missing
// metadata is derived from the artifact inventory so downstream code can
// rely on it.
func LoadDeal(dir string) (*model.ArtifactDeal, error) {
	raw, err := os.ReadFile(filepath.Join(dir, DealFileName))
	if err != nil {
		return nil, fmt.Errorf("read deal file: %w", err)
	}

	normalized, err := model.NormalizeJSONKeys(raw)
	if err != nil {
		return nil, fmt.Errorf("deal %s: %w", dir, err)
	}

	var deal model.ArtifactDeal
	if err := json.Unmarshal(normalized, &deal); err != nil {
		return nil, fmt.Errorf("deal %s: decode: %w", dir, err)
	}

	if deal.Version == 0 {
		// Pre-versioned deal files are schema version 1.
		deal.Version = 1
	}

	fillMetadata(&deal)

	if err := deal.Validate(); err != nil {
		return nil, err
	}

	return &deal, nil
}

// fillMetadata derives transcript/artifact counts and the date range when
// the deal file did not author them.
func fillMetadata(deal *model.ArtifactDeal) {
	if deal.Metadata.ArtifactCount != 0 || len(deal.Artifacts) == 0 {
		return
	}

	var meta model.DealMetadata
	var start, end time.Time
	for _, a := range deal.Artifacts {
		meta.ArtifactCount++
		if a.Type == model.ArtifactTranscript {
			meta.TranscriptCount++
		}
		d := a.Date()
		if start.IsZero() || d.Before(start) {
			start = d
		}
		if d.After(end) {
			end = d
		}
	}
	meta.DateRange = model.DateRange{Start: start, End: end}
	deal.Metadata = meta
}
