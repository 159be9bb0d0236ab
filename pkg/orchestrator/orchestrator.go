// Package orchestrator implements the pipeline state machine described in
// spec §4.9: it drives a Task through analyze → plan → (approval
// checkpoint) → generate → validate, wrapping every phase in the retry
// harness, persisting through the State Manager before each status-change
// event, and producing a signed Bundle on a clean Release Gate pass.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/budget"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/bundlestore"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/eventbus"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/gate"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/llm"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/retry"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/scheduler"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/signer"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/taskstore"
)

// phaseStartEvent is the named event emitted at the start of each phase
// (spec §8 scenario 1's literal event sequence).
var phaseStartEvent = map[models.PhaseName]models.EventType{
	models.PhaseAnalyze:  models.EventCodeAnalyzing,
	models.PhasePlan:     models.EventCodePlanning,
	models.PhaseGenerate: models.EventCodeGenerating,
	models.PhaseValidate: models.EventCodeValidating,
}

// phaseStatus maps a phase name to the Task-level status active while it runs.
var phaseStatus = map[models.PhaseName]models.TaskStatus{
	models.PhaseAnalyze:  models.TaskAnalyzing,
	models.PhasePlan:     models.TaskPlanning,
	models.PhaseGenerate: models.TaskGenerating,
	models.PhaseValidate: models.TaskValidating,
}

// Config tunes one Orchestrator instance.
type Config struct {
	RequireApproval   bool
	ApprovalTimeout   time.Duration // default 5 minutes
	CoverageThreshold float64       // TestCoverageCheck threshold, default 80
	Model             string
	Temperature       float32
	MaxOutputTokens   int // per-phase reservation for analyze/plan LLM calls
}

func (c Config) withDefaults() Config {
	if c.ApprovalTimeout == 0 {
		c.ApprovalTimeout = 5 * time.Minute
	}
	if c.CoverageThreshold == 0 {
		c.CoverageThreshold = 80
	}
	if c.MaxOutputTokens == 0 {
		c.MaxOutputTokens = 4096
	}
	return c
}

// Deps bundles every collaborator the Orchestrator drives. Sub-agents are
// not listed here directly: they are registered inside Scheduler by the
// caller (cmd/orchestrator's wiring), since their own LLM/budget deps are
// per-agent, not per-orchestrator.
type Deps struct {
	Budget    *budget.Manager
	Bus       *eventbus.Bus
	Store     *taskstore.Store
	Retry     *retry.Handler
	Scheduler *scheduler.Scheduler
	Gate      *gate.Gate
	Signer    *signer.Signer
	LLM       llm.Client
	Analyzer  Analyzer
	Planner   Planner
	// Bundles is the durable bundle archive. Optional: a nil Bundles means
	// signed bundles only survive in the in-memory map for this process's
	// lifetime (GetBundle still works; a restart loses them).
	Bundles *bundlestore.Store
}

// Orchestrator drives tasks through the four-phase pipeline.
type Orchestrator struct {
	cfg Config
	Deps

	mu               sync.Mutex
	pendingApprovals map[string]chan approvalResult
	bundles          map[string]models.SignedBundle

	log *slog.Logger
}

// New constructs an Orchestrator. Panics if a required dependency is nil —
// there is no sensible degraded mode for a missing collaborator.
func New(cfg Config, deps Deps) *Orchestrator {
	for name, present := range map[string]bool{
		"Budget": deps.Budget != nil, "Bus": deps.Bus != nil, "Store": deps.Store != nil,
		"Retry": deps.Retry != nil, "Scheduler": deps.Scheduler != nil, "Gate": deps.Gate != nil,
		"Signer": deps.Signer != nil, "LLM": deps.LLM != nil, "Analyzer": deps.Analyzer != nil,
		"Planner": deps.Planner != nil,
	} {
		if !present {
			panic(fmt.Sprintf("orchestrator: missing required dependency %s", name))
		}
	}
	return &Orchestrator{
		cfg:              cfg.withDefaults(),
		Deps:             deps,
		pendingApprovals: make(map[string]chan approvalResult),
		bundles:          make(map[string]models.SignedBundle),
		log:              slog.With("component", "orchestrator"),
	}
}

// GetBundle returns a previously signed bundle by id, checking the
// in-process cache first and falling back to the durable archive (if one is
// configured) so GET /bundle/{bundleId} keeps working across a restart.
func (o *Orchestrator) GetBundle(ctx context.Context, bundleID string) (models.SignedBundle, error) {
	o.mu.Lock()
	sb, ok := o.bundles[bundleID]
	o.mu.Unlock()
	if ok {
		return sb, nil
	}

	if o.Bundles == nil {
		return models.SignedBundle{}, fmt.Errorf("%w: %s", ErrBundleNotFound, bundleID)
	}
	sb, err := o.Bundles.GetBundle(ctx, bundleID)
	if err != nil {
		return models.SignedBundle{}, fmt.Errorf("%w: %s", ErrBundleNotFound, bundleID)
	}
	return sb, nil
}

func (o *Orchestrator) emit(taskID string, t models.EventType, data map[string]any) {
	o.Bus.Publish(models.Event{Type: t, TaskID: taskID, Data: data})
}

// RunTask drives task through the full pipeline to completion or failure.
// The caller is expected to have already registered task with the State
// Manager (CreateTask) before calling this.
func (o *Orchestrator) RunTask(ctx context.Context, task *models.Task) error {
	o.emit(task.ID, models.EventTaskStart, map[string]any{"request": task.Request})

	analysis, err := o.runAnalyze(ctx, task)
	if err != nil {
		return err
	}
	if err := o.runPlan(ctx, task, analysis); err != nil {
		return err
	}

	risk := AssessRisk(task.Plan)
	if o.cfg.RequireApproval && RequiresApproval(risk) {
		approved, err := o.awaitApproval(ctx, task, risk)
		if err != nil {
			return err
		}
		if !approved {
			return nil
		}
	}

	genBundle, err := o.runGenerate(ctx, task)
	if err != nil {
		return err
	}
	task.GeneratedBundle = &genBundle
	if err := o.Store.UpdateTask(task.ID, taskstore.Update{GeneratedBundle: &genBundle}); err != nil {
		o.log.Error("failed to persist generated bundle", "task_id", task.ID, "error", err)
	}

	_, err = o.validateAndFinish(ctx, task, genBundle, o.Gate)
	return err
}

// validateAndFinish runs g against b, signs and archives the bundle on a
// clean pass, and brings task to completion — the tail shared by RunTask
// and RetryValidation once an unsigned Bundle is in hand.
func (o *Orchestrator) validateAndFinish(ctx context.Context, task *models.Task, b models.Bundle, g *gate.Gate) (gate.Summary, error) {
	signed, summary, err := o.runValidateWith(ctx, task, b, g)
	if err != nil {
		return summary, err
	}
	if !summary.Passed {
		return summary, nil
	}

	o.mu.Lock()
	o.bundles[signed.ID] = signed
	o.mu.Unlock()
	if o.Bundles != nil {
		if err := o.Bundles.InsertBundle(ctx, signed); err != nil {
			o.log.Error("failed to archive signed bundle", "task_id", task.ID, "bundle_id", signed.ID, "error", err)
		}
	}

	bundleID := signed.ID
	task.BundleID = bundleID
	task.Status = models.TaskComplete
	if err := o.Store.UpdateTask(task.ID, taskstore.Update{BundleID: &bundleID, Status: &task.Status}); err != nil {
		o.log.Error("failed to persist task completion", "task_id", task.ID, "error", err)
	}
	o.emit(task.ID, models.EventTaskComplete, map[string]any{"bundleId": bundleID, "bundleType": string(signed.Type)})
	return summary, nil
}

// RetryValidation re-runs the Release Gate over task's already-generated
// bundle with an optionally overridden coverage threshold and/or an
// additional set of skipped checks, without repeating analyze/plan/generate
// (spec §6: POST /bundle/retry-validation/{taskId}).
func (o *Orchestrator) RetryValidation(ctx context.Context, taskID string, coverageThreshold float64, skipChecks []string) error {
	task, err := o.Store.GetTask(taskID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	if task.GeneratedBundle == nil {
		return fmt.Errorf("orchestrator: task %s has no generated bundle to validate", taskID)
	}
	if coverageThreshold == 0 {
		coverageThreshold = o.cfg.CoverageThreshold
	}

	g := gate.New(coverageThreshold, skipChecks)
	_, err = o.validateAndFinish(ctx, task, *task.GeneratedBundle, g)
	return err
}

// Regenerate registers a new Task linked to the original via
// RegeneratedFrom, folding fixInstructions into the request that re-enters
// the pipeline from analyze (spec §6: POST /bundle/regenerate/{taskId}).
// The caller is responsible for invoking RunTask on the returned task, same
// as for a fresh POST /bundle/generate.
func (o *Orchestrator) Regenerate(originalTaskID, fixInstructions string) (*models.Task, error) {
	original, err := o.Store.GetTask(originalTaskID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, originalTaskID)
	}

	request := original.Request
	if fixInstructions != "" {
		request = fmt.Sprintf("%s\n\nFix instructions: %s", request, fixInstructions)
	}

	newTask := models.NewTask(uuid.NewString(), request, original.Context, original.Workspace)
	newTask.RegeneratedFrom = originalTaskID
	if err := o.Store.CreateTask(newTask); err != nil {
		return nil, fmt.Errorf("orchestrator: register regenerated task: %w", err)
	}
	return newTask, nil
}

// beginPhase transitions task into the phase's in-progress state,
// write-through persists it, then emits the phase's named start event —
// persist-before-emit is the spec §4.3 write-through discipline.
func (o *Orchestrator) beginPhase(task *models.Task, name models.PhaseName) {
	now := time.Now().UTC()
	p := &models.Phase{Name: name, Status: models.PhaseStatusInProgress, StartedAt: &now}
	task.Phases[name] = p
	status := phaseStatus[name]
	task.Status = status

	if err := o.Store.UpdateTask(task.ID, taskstore.Update{
		Status: &status,
		Phases: map[models.PhaseName]*models.Phase{name: p},
	}); err != nil {
		o.log.Error("failed to persist phase start", "task_id", task.ID, "phase", name, "error", err)
	}
	o.emit(task.ID, phaseStartEvent[name], map[string]any{"phase": string(name)})
}

func (o *Orchestrator) completePhase(task *models.Task, name models.PhaseName, result map[string]any) {
	now := time.Now().UTC()
	p := task.Phases[name]
	p.Status = models.PhaseStatusComplete
	p.CompletedAt = &now
	p.Result = result
	if err := o.Store.UpdateTask(task.ID, taskstore.Update{Phases: map[models.PhaseName]*models.Phase{name: p}}); err != nil {
		o.log.Error("failed to persist phase completion", "task_id", task.ID, "phase", name, "error", err)
	}
}

// failPhase marks name failed, the task failed, persists, and emits
// task_error (spec §7: "unrecovered errors bubble to the Orchestrator,
// which marks the phase failed, marks the task failed, persists, and emits
// task_error").
func (o *Orchestrator) failPhase(task *models.Task, name models.PhaseName, err error) {
	now := time.Now().UTC()
	p := task.Phases[name]
	p.Status = models.PhaseStatusFailed
	p.CompletedAt = &now
	p.Error = err.Error()

	taskErr := &models.TaskError{
		Message:     err.Error(),
		Phase:       string(name),
		Recoverable: retry.Classify(err).Recoverable(),
	}
	task.Error = taskErr
	task.Status = models.TaskFailed

	if updErr := o.Store.UpdateTask(task.ID, taskstore.Update{
		Status: &task.Status,
		Phases: map[models.PhaseName]*models.Phase{name: p},
		Error:  taskErr,
	}); updErr != nil {
		o.log.Error("failed to persist phase failure", "task_id", task.ID, "phase", name, "error", updErr)
	}
	o.emit(task.ID, models.EventTaskError, map[string]any{
		"phase": string(name), "message": taskErr.Message, "recoverable": taskErr.Recoverable,
	})
}

// failValidation marks the validate phase and task failed with the Release
// Gate's structured blockers/warnings/suggestions attached, without
// treating it as a retryable error — gate failures are recovered by the
// client calling retry-validation or regenerate, never automatically.
func (o *Orchestrator) failValidation(task *models.Task, summary gate.Summary) {
	now := time.Now().UTC()
	p := task.Phases[models.PhaseValidate]
	p.Status = models.PhaseStatusFailed
	p.CompletedAt = &now

	blockerNames := make([]string, 0, len(summary.Blockers))
	for _, b := range summary.Blockers {
		blockerNames = append(blockerNames, b.Name)
	}
	warningNames := make([]string, 0, len(summary.Warnings))
	for _, w := range summary.Warnings {
		warningNames = append(warningNames, w.Name)
	}

	taskErr := &models.TaskError{
		Message:     fmt.Sprintf("validation failed: %s", strings.Join(blockerNames, ", ")),
		Phase:       string(models.PhaseValidate),
		Recoverable: true,
		Blockers:    blockerNames,
		Warnings:    warningNames,
		Suggestions: suggestionsForBlockers(summary.Blockers),
	}
	p.Error = taskErr.Message
	task.Error = taskErr
	task.Status = models.TaskFailed

	if err := o.Store.UpdateTask(task.ID, taskstore.Update{
		Status: &task.Status,
		Phases: map[models.PhaseName]*models.Phase{models.PhaseValidate: p},
		Error:  taskErr,
	}); err != nil {
		o.log.Error("failed to persist validation failure", "task_id", task.ID, "error", err)
	}
	o.emit(task.ID, models.EventTaskError, map[string]any{
		"phase": string(models.PhaseValidate), "message": taskErr.Message, "recoverable": true,
	})
}

// recordMetric appends one phase's token/wall-clock/cost metric and
// persists the updated totals.
func (o *Orchestrator) recordMetric(task *models.Task, name models.PhaseName, tokenDelta int, wallClock time.Duration) {
	if tokenDelta < 0 {
		tokenDelta = 0
	}
	m := models.PhaseMetric{Phase: name, TokensUsed: tokenDelta, WallClockMs: wallClock.Milliseconds(), CostUSD: estimateCostUSD(tokenDelta)}
	task.Metrics.Phases = append(task.Metrics.Phases, m)
	task.Metrics.TokensUsedTotal += tokenDelta
	task.Metrics.CostUSDTotal += m.CostUSD

	if err := o.Store.UpdateTask(task.ID, taskstore.Update{Metrics: &task.Metrics}); err != nil {
		o.log.Error("failed to persist phase metric", "task_id", task.ID, "phase", name, "error", err)
	}
}
