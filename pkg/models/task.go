// Package models defines the core domain types shared across the
// orchestrator: tasks, phases, plans, bundles and events.
package models

import "time"

// TaskStatus is the lifecycle status of a Task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskAnalyzing  TaskStatus = "analyzing"
	TaskPlanning   TaskStatus = "planning"
	TaskGenerating TaskStatus = "generating"
	TaskValidating TaskStatus = "validating"
	TaskComplete   TaskStatus = "complete"
	TaskFailed     TaskStatus = "failed"
)

// PhaseName identifies one of the four pipeline phases.
type PhaseName string

const (
	PhaseAnalyze  PhaseName = "analyze"
	PhasePlan     PhaseName = "plan"
	PhaseGenerate PhaseName = "generate"
	PhaseValidate PhaseName = "validate"
)

// phaseOrder fixes the sequence phases must complete in.
var phaseOrder = []PhaseName{PhaseAnalyze, PhasePlan, PhaseGenerate, PhaseValidate}

// PhaseOrder returns the fixed phase sequence.
func PhaseOrder() []PhaseName {
	out := make([]PhaseName, len(phaseOrder))
	copy(out, phaseOrder)
	return out
}

// PhaseStatus is the lifecycle status of a single phase record.
type PhaseStatus string

const (
	PhaseStatusPending    PhaseStatus = "pending"
	PhaseStatusInProgress PhaseStatus = "in_progress"
	PhaseStatusComplete   PhaseStatus = "complete"
	PhaseStatusFailed     PhaseStatus = "failed"
	PhaseStatusSkipped    PhaseStatus = "skipped"
)

// Phase is the durable record of one pipeline phase's execution.
type Phase struct {
	Name        PhaseName      `json:"name"`
	Status      PhaseStatus    `json:"status"`
	Result      map[string]any `json:"result,omitempty"`
	Error       string         `json:"error,omitempty"`
	StartedAt   *time.Time     `json:"startedAt,omitempty"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
}

// TaskError carries the user-facing description of a task failure.
type TaskError struct {
	Message     string   `json:"message"`
	Phase       string   `json:"phase,omitempty"`
	Recoverable bool     `json:"recoverable"`
	Blockers    []string `json:"blockers,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
}

// Suggestion is a structured fix recommendation attached to a validation failure.
type Suggestion struct {
	Check       string   `json:"check"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
}

// ContextFile is a single workspace file handed to the orchestrator as context.
type ContextFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// PhaseMetric records token/time/cost for one completed phase.
type PhaseMetric struct {
	Phase       PhaseName `json:"phase"`
	TokensUsed  int       `json:"tokensUsed"`
	WallClockMs int64     `json:"wallClockMs"`
	CostUSD     float64   `json:"costUsd"`
}

// Metrics aggregates per-phase metrics for a task.
type Metrics struct {
	Phases          []PhaseMetric `json:"phases"`
	TokensUsedTotal int           `json:"tokensUsedTotal"`
	CostUSDTotal    float64       `json:"costUsdTotal"`
	Retries         int           `json:"retries"` // TODO: never incremented; semantics of multi-retry accounting undecided
}

// Task is the unit of work the orchestrator drives through the pipeline.
type Task struct {
	ID            string               `json:"id"`
	Request       string               `json:"request"`
	Context       []ContextFile        `json:"context"`
	Workspace     []string             `json:"workspace"`
	Status        TaskStatus           `json:"status"`
	Phases        map[PhaseName]*Phase `json:"phases"`
	Plan          *Plan                `json:"plan,omitempty"`
	GeneratedBundle *Bundle            `json:"generatedBundle,omitempty"`
	BundleID      string               `json:"bundleId,omitempty"`
	Error         *TaskError           `json:"error,omitempty"`
	Metrics       Metrics              `json:"metrics"`
	RegeneratedFrom string             `json:"regeneratedFrom,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// NewTask constructs a fresh Task in the pending status with empty phase records.
func NewTask(id, request string, context []ContextFile, workspace []string) *Task {
	now := time.Now().UTC()
	phases := make(map[PhaseName]*Phase, len(phaseOrder))
	for _, n := range phaseOrder {
		phases[n] = &Phase{Name: n, Status: PhaseStatusPending}
	}
	return &Task{
		ID:        id,
		Request:   request,
		Context:   context,
		Workspace: workspace,
		Status:    TaskPending,
		Phases:    phases,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
