package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ppiankov/dealbench/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func runResult(agentID string, scored, max int) *model.ArtifactBenchmarkResult {
	return &model.ArtifactBenchmarkResult{
		RunID:            agentID + "-" + time.Now().Format("150405.000000000"),
		AgentID:          agentID,
		Version:          model.SchemaVersion,
		Mode:             model.ModePublic,
		RunTimestamp:     time.Now().UTC(),
		AggregateScore:   scored,
		MaxPossibleScore: max,
	}
}

func TestStore_SaveAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveRun(ctx, runResult("agent-a", 30, 40), "good"); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.SaveRun(ctx, runResult("agent-b", 10, 40), "poor"); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	records, err := s.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("listed %d runs, want 2", len(records))
	}
	for _, r := range records {
		if r.RunID == "" || r.AgentID == "" || r.Band == "" {
			t.Errorf("incomplete record: %+v", r)
		}
	}
}

func TestStore_ListLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := s.SaveRun(ctx, runResult("agent-a", i, 40), "poor"); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	records, err := s.ListRuns(ctx, 3)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("listed %d runs, want limit of 3", len(records))
	}
}

func TestStore_Leaderboard(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// agent-a improves over two runs; the leaderboard keeps the best.
	if err := s.SaveRun(ctx, runResult("agent-a", 20, 40), "fair"); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveRun(ctx, runResult("agent-a", 32, 40), "good"); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveRun(ctx, runResult("agent-b", 10, 40), "poor"); err != nil {
		t.Fatal(err)
	}

	entries, err := s.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("leaderboard has %d entries, want 2", len(entries))
	}

	if entries[0].AgentID != "agent-a" {
		t.Errorf("leader = %s, want agent-a", entries[0].AgentID)
	}
	if entries[0].AggregateScore != 32 {
		t.Errorf("leader best score = %d, want the better run's 32", entries[0].AggregateScore)
	}
	if entries[0].Runs != 2 {
		t.Errorf("leader run count = %d, want 2", entries[0].Runs)
	}
}

func TestStore_DuplicateRunID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	result := runResult("agent-a", 20, 40)
	if err := s.SaveRun(ctx, result, "fair"); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveRun(ctx, result, "fair"); err == nil {
		t.Error("duplicate run id accepted")
	}
}
