package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/bundle"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/retry"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/scheduler"
)

// runGenerate fans task.Plan's steps out through the Scheduler and
// normalizes the settled results into an unsigned Bundle.
func (o *Orchestrator) runGenerate(ctx context.Context, task *models.Task) (models.Bundle, error) {
	o.beginPhase(task, models.PhaseGenerate)
	start := time.Now()
	before := o.Budget.GetReport().Used

	var built models.Bundle
	op := func(ctx context.Context, attempt int) error {
		o.Scheduler.Reset()
		result, err := o.Scheduler.Run(ctx, task.Plan.Steps, func() bool { return o.Budget.GetRemaining() > 0 })
		if err != nil {
			return err
		}
		files, tests, migrations, stepErr := collectStepResults(result)
		if stepErr != nil {
			return stepErr
		}
		built = bundle.Build(bundle.Input{
			Plan:       task.Plan,
			Files:      files,
			Tests:      tests,
			Migrations: migrations,
			TokensUsed: o.Scheduler.AggregateUsage().TokensUsed,
			WallClock:  time.Since(start),
		})
		return nil
	}
	hooks := retry.Hooks{
		TryAlternative: func(attempt int) { o.log.Debug("generate retry: trying alternative strategy", "attempt", attempt) },
	}
	err := o.Retry.Do(ctx, op, hooks)

	o.recordMetric(task, models.PhaseGenerate, o.Budget.GetReport().Used-before, time.Since(start))
	if err != nil {
		o.failPhase(task, models.PhaseGenerate, err)
		return models.Bundle{}, err
	}
	o.completePhase(task, models.PhaseGenerate, map[string]any{
		"fileCount": len(built.Files), "testCount": len(built.Tests), "migrationCount": len(built.Migrations),
	})
	return built, nil
}

// collectStepResults splits a settled scheduler.Result into the bundle
// builder's three entry lists, failing if any step settled with an error —
// every batch has already fully settled by the time Scheduler.Run returns
// (spec §4.8's settle-don't-cancel rule), so this just separates outcomes.
func collectStepResults(result scheduler.Result) (files []models.FileEntry, tests []models.TestEntry, migrations []models.MigrationEntry, err error) {
	var failures []string
	for _, batch := range result.Batches {
		for _, r := range batch.Results {
			switch {
			case r.Err != nil:
				failures = append(failures, fmt.Sprintf("%s: %v", r.StepID, r.Err))
			case r.File != nil:
				files = append(files, *r.File)
			case r.Test != nil:
				tests = append(tests, *r.Test)
			case r.Migration != nil:
				migrations = append(migrations, *r.Migration)
			}
		}
	}
	if len(failures) > 0 {
		return nil, nil, nil, fmt.Errorf("generate: %d step(s) failed: %s", len(failures), strings.Join(failures, "; "))
	}
	return files, tests, migrations, nil
}
