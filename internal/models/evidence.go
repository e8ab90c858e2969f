package models

import "time"

// AgentEvidence is one tool's output for one entity.
type AgentEvidence struct {
	ToolName        string      `json:"tool_name"`
	EntityType      string      `json:"entity_type"`
	EntityValue     string      `json:"entity_value"`
	Payload         interface{} `json:"payload,omitempty"`
	Success         bool        `json:"success"`
	ErrorMessage    string      `json:"error_message,omitempty"`
	ExecutionTimeMS int64       `json:"execution_time_ms"`
}

// RiskLevel is the tri-valued verdict label.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ReasoningMethod records how a verdict was produced.
type ReasoningMethod string

const (
	ReasoningLLM       ReasoningMethod = "llm"
	ReasoningHeuristic ReasoningMethod = "heuristic"
)

// AgentResult is the persisted, append-only verdict for one task.
type AgentResult struct {
	TaskID           string          `json:"task_id"`
	SessionID        string          `json:"session_id,omitempty"`
	EntitiesFound    ExtractedEntities `json:"entities_found"`
	Evidence         []AgentEvidence `json:"evidence"`
	RiskLevel        RiskLevel       `json:"risk_level"`
	Confidence       int             `json:"confidence"`
	ReasoningText    string          `json:"reasoning_text"`
	ReasoningMethod  ReasoningMethod `json:"reasoning_method"`
	ToolsUsed        []string        `json:"tools_used"`
	ProcessingTimeMS int64           `json:"processing_time_ms"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Valid reports whether the result satisfies the universal invariants of
// spec §8: risk level in the tri-valued set, confidence in [0,100], method
// in the recognized set.
func (r AgentResult) Valid() bool {
	switch r.RiskLevel {
	case RiskLow, RiskMedium, RiskHigh:
	default:
		return false
	}
	if r.Confidence < 0 || r.Confidence > 100 {
		return false
	}
	switch r.ReasoningMethod {
	case ReasoningLLM, ReasoningHeuristic:
	default:
		return false
	}
	return true
}
