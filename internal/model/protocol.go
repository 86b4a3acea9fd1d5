package model

import "fmt"

// Wire schema versions for the agent request/response contract.
const (
	WireV1 = 1 // summary-only: no artifacts, no turn tracking
	WireV2 = 2 // artifact-based, multi-turn
)

// ArtifactAgentRequest is the request body sent to the agent endpoint.
// Version controls which fields are required: a v1 request carries no
// artifacts and no turn tracking, a v2 request carries both.
type ArtifactAgentRequest struct {
	Version      int           `json:"version"`
	CheckpointID string        `json:"checkpointId"`
	TaskID       string        `json:"taskId"`
	TaskType     TaskType      `json:"taskType"`
	Prompt       string        `json:"prompt"`
	Artifacts    []Artifact    `json:"artifacts,omitempty"`
	DealSnapshot DealSnapshot  `json:"dealSnapshot"`
	Stakeholders []Stakeholder `json:"stakeholders,omitempty"`
	TurnNumber   int           `json:"turnNumber,omitempty"`
	MaxTurns     int           `json:"maxTurns,omitempty"`
}

// ArtifactAgentResponse is the agent's reply for one turn. IsComplete=false
// permits another turn until the dispatcher's turn limit is reached.
type ArtifactAgentResponse struct {
	Version    int     `json:"version"`
	Reasoning  string  `json:"reasoning,omitempty"`
	Answer     string  `json:"answer"`
	IsComplete bool    `json:"isComplete"`
	Confidence float64 `json:"confidence"`
}

// requestValidators is the per-version validation table. Each version's
// required fields are checked exhaustively; optional-field sniffing is
// deliberately not how versions are told apart.
var requestValidators = map[int]func(*ArtifactAgentRequest) error{
	WireV1: validateRequestV1,
	WireV2: validateRequestV2,
}

// Validate checks the request against its declared wire version.
func (r *ArtifactAgentRequest) Validate() error {
	validate, ok := requestValidators[r.Version]
	if !ok {
		return fmt.Errorf("unknown wire version %d", r.Version)
	}
	return validate(r)
}

func validateRequestCommon(r *ArtifactAgentRequest) error {
	if r.CheckpointID == "" {
		return fmt.Errorf("request missing checkpointId")
	}
	if r.TaskID == "" {
		return fmt.Errorf("request missing taskId")
	}
	if !ValidTaskType(r.TaskType) {
		return fmt.Errorf("request task %s: unknown task type %q", r.TaskID, r.TaskType)
	}
	if r.Prompt == "" {
		return fmt.Errorf("request task %s: missing prompt", r.TaskID)
	}
	return nil
}

func validateRequestV1(r *ArtifactAgentRequest) error {
	if err := validateRequestCommon(r); err != nil {
		return err
	}
	if len(r.Artifacts) > 0 {
		return fmt.Errorf("request task %s: v1 request must not carry artifacts", r.TaskID)
	}
	if r.TurnNumber != 0 || r.MaxTurns != 0 {
		return fmt.Errorf("request task %s: v1 request must not carry turn tracking", r.TaskID)
	}
	return nil
}

func validateRequestV2(r *ArtifactAgentRequest) error {
	if err := validateRequestCommon(r); err != nil {
		return err
	}
	if r.TurnNumber < 1 {
		return fmt.Errorf("request task %s: turnNumber must be 1-indexed, got %d", r.TaskID, r.TurnNumber)
	}
	if r.MaxTurns < 1 {
		return fmt.Errorf("request task %s: maxTurns must be >= 1, got %d", r.TaskID, r.MaxTurns)
	}
	if r.TurnNumber > r.MaxTurns {
		return fmt.Errorf("request task %s: turnNumber %d exceeds maxTurns %d", r.TaskID, r.TurnNumber, r.MaxTurns)
	}
	return nil
}

// Validate checks the response: a version the contract knows and a
// confidence inside [0, 1]. Anything else is treated by the dispatcher as a
// malformed response and degraded, never propagated.
func (r *ArtifactAgentResponse) Validate() error {
	if r.Version != WireV1 && r.Version != WireV2 {
		return fmt.Errorf("unknown wire version %d", r.Version)
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("confidence %.3f outside [0, 1]", r.Confidence)
	}
	return nil
}
