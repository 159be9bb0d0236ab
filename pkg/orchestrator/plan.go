package orchestrator

import (
	"context"
	"time"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/llm"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/retry"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/taskstore"
)

// runPlan drives the plan phase over the prior phase's analysis, storing
// the resulting Plan on task.
func (o *Orchestrator) runPlan(ctx context.Context, task *models.Task, analysis map[string]any) error {
	o.beginPhase(task, models.PhasePlan)
	start := time.Now()
	before := o.Budget.GetReport().Used

	var plan *models.Plan
	op := func(ctx context.Context, attempt int) error {
		return o.reserveAndCharge(models.CategoryPlan, func() (llm.Usage, error) {
			p, usage, callErr := o.Planner.Plan(ctx, o.LLM, task, analysis)
			if callErr != nil {
				return usage, callErr
			}
			plan = p
			return usage, nil
		})
	}
	hooks := retry.Hooks{
		AddFeedback: func(message string) { o.log.Debug("plan retry: feeding back parse error", "message", message) },
	}
	err := o.Retry.Do(ctx, op, hooks)

	o.recordMetric(task, models.PhasePlan, o.Budget.GetReport().Used-before, time.Since(start))
	if err != nil {
		o.failPhase(task, models.PhasePlan, err)
		return err
	}

	task.Plan = plan
	if updErr := o.Store.UpdateTask(task.ID, taskstore.Update{Plan: plan}); updErr != nil {
		o.log.Error("failed to persist plan", "task_id", task.ID, "error", updErr)
	}
	o.completePhase(task, models.PhasePlan, map[string]any{"stepCount": len(plan.Steps), "complexity": string(plan.Complexity)})
	return nil
}
