package model

import (
	"encoding/json"
	"fmt"
)

// Canonical output is camelCase, but deal files produced by older exporters
// use snake_case field names. NormalizeJSONKeys rewrites known snake_case
// field names to their camelCase form so both decode into the same structs.
// Only field names from the alias table are touched; data-bearing keys
// (artifact ids, dealProperties entries) pass through untouched.

var snakeAliases = map[string]string{
	"deal_id":                        "dealId",
	"created_at":                     "createdAt",
	"crm_snapshot":                   "crmSnapshot",
	"slack_thread":                   "slackThread",
	"calendar_event":                 "calendarEvent",
	"deal_properties":                "dealProperties",
	"activity_log":                   "activityLog",
	"document_type":                  "documentType",
	"final_outcome":                  "finalOutcome",
	"transcript_count":               "transcriptCount",
	"artifact_count":                 "artifactCount",
	"date_range":                     "dateRange",
	"available_artifacts":            "availableArtifacts",
	"deal_snapshot":                  "dealSnapshot",
	"days_since_first_contact":       "daysSinceFirstContact",
	"ground_truth":                   "groundTruth",
	"what_happened_next":             "whatHappenedNext",
	"actual_risks_that_materialized": "actualRisksThatMaterialized",
	"outcome_at_this_point":          "outcomeAtThisPoint",
	"required_artifacts":             "requiredArtifacts",
	"optional_artifacts":             "optionalArtifacts",
	"scoring_dimensions":             "scoringDimensions",
	"checkpoint_id":                  "checkpointId",
	"task_id":                        "taskId",
	"task_type":                      "taskType",
	"turn_number":                    "turnNumber",
	"max_turns":                      "maxTurns",
	"is_complete":                    "isComplete",
}

// opaqueKeys name object fields whose entire value is data, not schema; the
// normalizer must not descend into them.
var opaqueKeys = map[string]bool{
	"dealProperties": true,
}

// idKeyedMaps name object fields keyed by data ids whose values are schema
// objects: the values are normalized, the keys are not, even when an id
// collides with an alias.
var idKeyedMaps = map[string]bool{
	"artifacts": true,
}

// NormalizeJSONKeys decodes raw JSON, rewrites aliased keys, and re-encodes.
func NormalizeJSONKeys(raw []byte) ([]byte, error) {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	return json.Marshal(normalizeValue(doc))
}

func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, child := range val {
			canonical, aliased := snakeAliases[k]
			if !aliased {
				canonical = k
			}
			switch {
			case opaqueKeys[canonical]:
				out[canonical] = child
			case idKeyedMaps[canonical]:
				out[canonical] = normalizeEntries(child)
			default:
				out[canonical] = normalizeValue(child)
			}
		}
		return out
	case []interface{}:
		for i, child := range val {
			val[i] = normalizeValue(child)
		}
		return val
	default:
		return v
	}
}

// normalizeEntries normalizes each value of an id-keyed map while leaving
// the ids themselves alone.
func normalizeEntries(v interface{}) interface{} {
	entries, ok := v.(map[string]interface{})
	if !ok {
		return normalizeValue(v)
	}
	out := make(map[string]interface{}, len(entries))
	for id, child := range entries {
		out[id] = normalizeValue(child)
	}
	return out
}
