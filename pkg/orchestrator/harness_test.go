package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/budget"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/eventbus"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/gate"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/llm"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/retry"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/scheduler"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/signer"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/taskstore"
)

// fakeAnalyzer and fakePlanner let each scenario control exactly what the
// analyze/plan phases produce without going through a real LLM call.
type fakeAnalyzer struct {
	analysis map[string]any
	usage    llm.Usage
	err      error
}

func (f fakeAnalyzer) Analyze(ctx context.Context, client llm.Client, task *models.Task) (map[string]any, llm.Usage, error) {
	return f.analysis, f.usage, f.err
}

type fakePlanner struct {
	plan  *models.Plan
	usage llm.Usage
	err   error
}

func (f fakePlanner) Plan(ctx context.Context, client llm.Client, task *models.Task, analysis map[string]any) (*models.Plan, llm.Usage, error) {
	return f.plan, f.usage, f.err
}

// noopLLM never actually gets called when Analyzer/Planner are faked, but
// Deps.LLM must be non-nil.
type noopLLM struct{}

func (noopLLM) Generate(ctx context.Context, req llm.GenerateRequest) (llm.GenerateResponse, error) {
	return llm.GenerateResponse{}, nil
}

// fakeAgent is a minimal scheduler.Agent that always returns a fixed file.
type fakeAgent struct {
	kind scheduler.Kind
	file *models.FileEntry
	test *models.TestEntry
	mig  *models.MigrationEntry
	err  error
}

func (a *fakeAgent) Kind() scheduler.Kind { return a.kind }
func (a *fakeAgent) Usage() scheduler.Usage { return scheduler.Usage{TokensUsed: 10, TokenBudget: 100} }
func (a *fakeAgent) Reset() {}
func (a *fakeAgent) Execute(ctx context.Context, step models.Step) scheduler.StepResult {
	return scheduler.StepResult{StepID: step.ID, Kind: a.kind, File: a.file, Test: a.test, Migration: a.mig, Err: a.err}
}

type harness struct {
	t     *testing.T
	o     *Orchestrator
	bus   *eventbus.Bus
	store *taskstore.Store
}

func newHarness(t *testing.T, cfg Config, analyzer Analyzer, planner Planner, agents map[scheduler.Kind]scheduler.Agent) *harness {
	t.Helper()
	bus := eventbus.New(1000)
	store := taskstore.New("")
	bmgr := budget.NewManager(1_000_000)
	rh := retry.NewHandler(retry.Config{MaxRetries: 0, DelaySchedule: []time.Duration{time.Millisecond}})
	sch := scheduler.New(agents)
	g := gate.New(80, nil)
	sgn := signer.New()
	if err := sgn.Initialize(t.TempDir()); err != nil {
		t.Fatalf("initialize signer: %v", err)
	}

	o := New(cfg, Deps{
		Budget:    bmgr,
		Bus:       bus,
		Store:     store,
		Retry:     rh,
		Scheduler: sch,
		Gate:      g,
		Signer:    sgn,
		LLM:       noopLLM{},
		Analyzer:  analyzer,
		Planner:   planner,
	})
	return &harness{t: t, o: o, bus: bus, store: store}
}

func (h *harness) newTask(id, request string) *models.Task {
	task := models.NewTask(id, request, nil, nil)
	if err := h.store.CreateTask(task); err != nil {
		h.t.Fatalf("create task: %v", err)
	}
	return task
}

func eventTypes(events []models.Event) []models.EventType {
	out := make([]models.EventType, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}
