package orchestrator

import (
	"context"
	"time"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/gate"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/retry"
)

// runValidateWith runs g over b, and on a clean pass signs it. A failed gate
// is not retried in-process — spec §7: validation failures are recovered by
// the client calling retry-validation or regenerate, not automatically —
// but the sign step itself goes through the retry harness since key I/O
// failures are ordinary recoverable errors. g is explicit rather than always
// o.Gate so RetryValidation can supply one built with an overridden coverage
// threshold and/or skipped checks.
func (o *Orchestrator) runValidateWith(ctx context.Context, task *models.Task, b models.Bundle, g *gate.Gate) (models.SignedBundle, gate.Summary, error) {
	o.beginPhase(task, models.PhaseValidate)
	start := time.Now()
	before := o.Budget.GetReport().Used

	summary := g.Run(b, func(t models.EventType, data map[string]any) { o.emit(task.ID, t, data) })

	if !summary.Passed {
		o.recordMetric(task, models.PhaseValidate, o.Budget.GetReport().Used-before, time.Since(start))
		o.failValidation(task, summary)
		return models.SignedBundle{}, summary, nil
	}

	var signed models.SignedBundle
	op := func(ctx context.Context, attempt int) error {
		sb, err := o.Signer.SignBundle(b)
		if err != nil {
			return err
		}
		signed = sb
		return nil
	}
	err := o.Retry.Do(ctx, op, retry.Hooks{})

	o.recordMetric(task, models.PhaseValidate, o.Budget.GetReport().Used-before, time.Since(start))
	if err != nil {
		o.failPhase(task, models.PhaseValidate, err)
		return models.SignedBundle{}, summary, err
	}
	o.completePhase(task, models.PhaseValidate, map[string]any{"passed": true, "bundleId": signed.ID})
	return signed, summary, nil
}
