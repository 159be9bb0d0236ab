package config

import "time"

// DefaultCoverageThreshold is the Release Gate's default TestCoverageCheck
// threshold (spec §4.7).
const DefaultCoverageThreshold = 80

// DefaultApprovalTimeout is how long a task waits at the approval
// checkpoint before failing with approval_timeout (spec §4.9).
const DefaultApprovalTimeout = 5 * time.Minute

// DefaultEventBusHistory is the Event Bus's default bounded replay window
// (spec §4.6).
const DefaultEventBusHistory = 1000

// DefaultHTTPAddr is the API server's default listen address.
const DefaultHTTPAddr = ":8080"

// DefaultWarnThreshold is the Token Budget Manager's default warn-at ratio
// (spec §4.3).
const DefaultWarnThreshold = 0.8

// builtinSubAgents are the sub-agents registered when orchestrator.yaml
// does not define its own sub_agents block — one of each kind, enough to
// run the pipeline end to end out of the box.
func builtinSubAgents() map[string]SubAgentConfig {
	return map[string]SubAgentConfig{
		"codegen": {
			Kind:        "codegen",
			Description: "Generates one file per plan step, retrying on syntax failure.",
			TokenBudget: 50_000,
		},
		"testgen": {
			Kind:        "testgen",
			Description: "Generates a test file for each backend/frontend file a codegen step produces.",
			TokenBudget: 30_000,
		},
		"migration": {
			Kind:        "migration",
			Description: "Generates forward and reverse SQL for schema-changing steps.",
			TokenBudget: 20_000,
		},
	}
}
