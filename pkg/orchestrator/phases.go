package orchestrator

import (
	"context"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/llm"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
)

// Analyzer performs the analyze phase's LLM-backed work. What it asks the
// model and how it reads the answer is outside this module's scope (spec
// §1: "the actual prompts for analyze/plan/generate/validate" are an
// external collaborator's concern) — the Orchestrator only owns the phase
// harness around the call: reserving/consuming budget, retrying by error
// class, persisting, and emitting events.
type Analyzer interface {
	Analyze(ctx context.Context, client llm.Client, task *models.Task) (analysis map[string]any, usage llm.Usage, err error)
}

// Planner performs the plan phase's LLM-backed work, turning an analysis
// into a structured Plan (spec §3).
type Planner interface {
	Plan(ctx context.Context, client llm.Client, task *models.Task, analysis map[string]any) (plan *models.Plan, usage llm.Usage, err error)
}
