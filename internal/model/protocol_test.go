package model

import (
	"strings"
	"testing"
)

func v2Request() *ArtifactAgentRequest {
	return &ArtifactAgentRequest{
		Version:      WireV2,
		CheckpointID: "cp-1",
		TaskID:       "t1",
		TaskType:     TaskDealAnalysis,
		Prompt:       "Analyze the deal.",
		TurnNumber:   1,
		MaxTurns:     3,
	}
}

func TestRequest_Validate_V2(t *testing.T) {
	if err := v2Request().Validate(); err != nil {
		t.Fatalf("valid v2 request rejected: %v", err)
	}

	r := v2Request()
	r.TurnNumber = 0
	if err := r.Validate(); err == nil {
		t.Error("expected error for 0-indexed turnNumber")
	}

	r = v2Request()
	r.TurnNumber = 4
	if err := r.Validate(); err == nil || !strings.Contains(err.Error(), "exceeds maxTurns") {
		t.Errorf("expected turn limit error, got %v", err)
	}

	r = v2Request()
	r.MaxTurns = 0
	if err := r.Validate(); err == nil {
		t.Error("expected error for zero maxTurns")
	}
}

func TestRequest_Validate_V1(t *testing.T) {
	r := &ArtifactAgentRequest{
		Version:      WireV1,
		CheckpointID: "cp-1",
		TaskID:       "t1",
		TaskType:     TaskRiskAssessment,
		Prompt:       "Identify the risks.",
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("valid v1 request rejected: %v", err)
	}

	r.Artifacts = []Artifact{{ID: "a1"}}
	if err := r.Validate(); err == nil || !strings.Contains(err.Error(), "must not carry artifacts") {
		t.Errorf("expected artifact rejection for v1, got %v", err)
	}

	r.Artifacts = nil
	r.TurnNumber = 1
	if err := r.Validate(); err == nil || !strings.Contains(err.Error(), "turn tracking") {
		t.Errorf("expected turn-tracking rejection for v1, got %v", err)
	}
}

func TestRequest_Validate_Common(t *testing.T) {
	r := v2Request()
	r.Version = 9
	if err := r.Validate(); err == nil || !strings.Contains(err.Error(), "unknown wire version") {
		t.Errorf("expected unknown version error, got %v", err)
	}

	r = v2Request()
	r.TaskType = "cold_call"
	if err := r.Validate(); err == nil {
		t.Error("expected error for unknown task type")
	}

	r = v2Request()
	r.Prompt = ""
	if err := r.Validate(); err == nil {
		t.Error("expected error for empty prompt")
	}
}

func TestResponse_Validate(t *testing.T) {
	resp := &ArtifactAgentResponse{Version: WireV2, Answer: "ok", IsComplete: true, Confidence: 0.7}
	if err := resp.Validate(); err != nil {
		t.Fatalf("valid response rejected: %v", err)
	}

	resp.Confidence = 1.5
	if err := resp.Validate(); err == nil {
		t.Error("expected error for confidence > 1")
	}

	resp.Confidence = -0.1
	if err := resp.Validate(); err == nil {
		t.Error("expected error for negative confidence")
	}

	resp = &ArtifactAgentResponse{Version: 3, Confidence: 0.5}
	if err := resp.Validate(); err == nil {
		t.Error("expected error for unknown version")
	}
}
