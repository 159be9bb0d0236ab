package orchestrator

import (
	"context"
	"time"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/llm"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/retry"
)

// runAnalyze drives the analyze phase: reserve budget, call the Analyzer
// through the retry harness, record the phase's token/wall-clock metric,
// and persist the result on success. Returns the analysis for the plan
// phase to consume.
func (o *Orchestrator) runAnalyze(ctx context.Context, task *models.Task) (map[string]any, error) {
	o.beginPhase(task, models.PhaseAnalyze)
	start := time.Now()
	before := o.Budget.GetReport().Used

	var analysis map[string]any
	op := func(ctx context.Context, attempt int) error {
		return o.reserveAndCharge(models.CategoryAnalyze, func() (llm.Usage, error) {
			a, usage, callErr := o.Analyzer.Analyze(ctx, o.LLM, task)
			if callErr != nil {
				return usage, callErr
			}
			analysis = a
			return usage, nil
		})
	}
	hooks := retry.Hooks{
		AddFeedback: func(message string) { o.log.Debug("analyze retry: feeding back parse error", "message", message) },
	}
	err := o.Retry.Do(ctx, op, hooks)

	o.recordMetric(task, models.PhaseAnalyze, o.Budget.GetReport().Used-before, time.Since(start))
	if err != nil {
		o.failPhase(task, models.PhaseAnalyze, err)
		return nil, err
	}
	o.completePhase(task, models.PhaseAnalyze, analysis)
	return analysis, nil
}
