// Package scheduler implements the Sub-Agent Scheduler: topological
// batching of plan steps, concurrent dispatch within a batch, and
// settle-don't-cancel behavior when a sibling step fails.
package scheduler

import (
	"context"
	"log/slog"
	"sync"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
)

// BatchResult is one batch's settled outcome.
type BatchResult struct {
	Steps   []string
	Results []StepResult
	Failed  bool
}

// Result is the scheduler's full settled outcome across every batch that
// ran before either completion or a budget/circular-dependency stop.
type Result struct {
	Batches []BatchResult
	Failed  bool
}

// Scheduler dispatches plan steps to the agent registered for each step's
// selected Kind, batch by batch, sequentially between batches and
// concurrently within one (spec §4.8).
type Scheduler struct {
	mu      sync.Mutex
	agents  map[Kind]Agent
	log     *slog.Logger
}

// New constructs a Scheduler over a fixed agent registry, one per Kind.
func New(agents map[Kind]Agent) *Scheduler {
	return &Scheduler{agents: agents, log: slog.With("component", "scheduler")}
}

// Run batches steps (failing outright on a circular dependency, before any
// dispatch happens) and then executes batch by batch. Within a batch every
// step runs concurrently; siblings already dispatched are never cancelled
// because one of them failed — the batch settles fully before the
// scheduler decides whether to continue to the next batch. Once a batch
// settles with any failure, later batches are not dispatched (spec §4.8,
// §5 "Cancellation & timeouts").
//
// canContinue is polled before each batch starts; it models the budget
// manager's exceeded threshold: in-flight work always finishes but no new
// batch is admitted once it returns false.
func (s *Scheduler) Run(ctx context.Context, steps []models.Step, canContinue func() bool) (Result, error) {
	batches, err := Batch(steps)
	if err != nil {
		return Result{}, err
	}

	var result Result
	for _, batch := range batches {
		if canContinue != nil && !canContinue() {
			s.log.Warn("stopping before next batch: budget exhausted or caller cancelled")
			break
		}

		br := s.runBatch(ctx, batch)
		result.Batches = append(result.Batches, br)
		if br.Failed {
			result.Failed = true
			break
		}
	}
	return result, nil
}

func (s *Scheduler) runBatch(ctx context.Context, batch []models.Step) BatchResult {
	ids := make([]string, len(batch))
	for i, st := range batch {
		ids[i] = st.ID
	}

	resultsCh := make(chan StepResult, len(batch))
	var wg sync.WaitGroup
	for _, step := range batch {
		wg.Add(1)
		go func(st models.Step) {
			defer wg.Done()
			resultsCh <- s.dispatch(ctx, st)
		}(step)
	}

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	var results []StepResult
	failed := false
	for r := range resultsCh {
		results = append(results, r)
		if r.Err != nil {
			failed = true
		}
	}

	return BatchResult{Steps: ids, Results: results, Failed: failed}
}

func (s *Scheduler) dispatch(ctx context.Context, step models.Step) StepResult {
	kind := SelectKind(step)

	s.mu.Lock()
	agent, ok := s.agents[kind]
	s.mu.Unlock()

	if !ok {
		return StepResult{StepID: step.ID, Kind: kind, Err: ErrNoAgentForKind(kind)}
	}
	return agent.Execute(ctx, step)
}

// AggregateUsage sums every registered agent's own usage counters into one
// snapshot (spec §4.8: "the scheduler exposes an aggregate usage snapshot").
func (s *Scheduler) AggregateUsage() Usage {
	s.mu.Lock()
	defer s.mu.Unlock()

	var agg Usage
	for _, a := range s.agents {
		u := a.Usage()
		agg.TokensUsed += u.TokensUsed
		agg.TokenBudget += u.TokenBudget
	}
	return agg
}

// Reset zeroes every registered agent's usage counters.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.agents {
		a.Reset()
	}
}
