package models

import "time"

// EventType is a member of the closed, wire-visible event type set.
type EventType string

const (
	EventTaskStart              EventType = "task_start"
	EventTaskProgress           EventType = "task_progress"
	EventTaskComplete           EventType = "task_complete"
	EventTaskError              EventType = "task_error"
	EventAgentThinking          EventType = "agent_thinking"
	EventAgentAction            EventType = "agent_action"
	EventAgentObservation       EventType = "agent_observation"
	EventCodeAnalyzing          EventType = "code_analyzing"
	EventCodePlanning           EventType = "code_planning"
	EventCodeGenerating         EventType = "code_generating"
	EventCodeValidating         EventType = "code_validating"
	EventValidationCheckStart   EventType = "validation_check_start"
	EventValidationCheckComplete EventType = "validation_check_complete"
	EventValidationSummary      EventType = "validation_summary"
	EventToolStart              EventType = "tool_start"
	EventToolProgress           EventType = "tool_progress"
	EventToolComplete           EventType = "tool_complete"
	EventToolError              EventType = "tool_error"
	EventBudgetWarning          EventType = "budget_warning"
	EventBudgetExceeded         EventType = "budget_exceeded"
	EventApprovalRequired       EventType = "approval_required"
	EventApprovalReceived       EventType = "approval_received"
	EventPlanModified           EventType = "plan_modified"
	EventLog                    EventType = "log"
	EventWarning                EventType = "warning"
	EventError                  EventType = "error"
)

// Event is one entry on the Event Bus: a monotonic id, a type from the
// closed set above, a timestamp, an optional owning task id and a data payload.
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	TaskID    string         `json:"taskId,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}
