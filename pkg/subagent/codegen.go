// Package subagent implements the three sub-agent variants — CodeGen,
// TestGen, Migration — behind the scheduler's single Agent interface
// (spec §7 "Polymorphism over mixed sub-agents").
package subagent

import (
	"context"
	"log/slog"
	"sync"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/budget"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/gate"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/llm"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/scheduler"
)

// DefaultMaxSyntaxRetries is the spec-default retry cap for a CodeGen
// sub-agent's post-generation syntax-validation loop.
const DefaultMaxSyntaxRetries = 2

// Deps bundles what every sub-agent variant needs: the opaque LLM client,
// the process-wide Token Budget Manager, which category to reserve
// against, and the model/token parameters for its calls.
type Deps struct {
	LLM             llm.Client
	Budget          *budget.Manager
	Category        models.BudgetCategory
	Model           string
	Temperature     float32
	MaxOutputTokens int
}

// CodeGen generates one file per step, retrying on syntax failure with the
// parser's error message fed back into the prompt (spec §4.8).
type CodeGen struct {
	Deps
	MaxRetries int

	mu          sync.Mutex
	tokensUsed  int
	tokenBudget int
	log         *slog.Logger
}

// NewCodeGen constructs a CodeGen sub-agent with a fixed own token budget
// (spec §4.8's per-agent tokensUsed/tokenBudget accounting).
func NewCodeGen(deps Deps, ownTokenBudget int) *CodeGen {
	if deps.MaxOutputTokens == 0 {
		deps.MaxOutputTokens = 4096
	}
	return &CodeGen{
		Deps:        deps,
		MaxRetries:  DefaultMaxSyntaxRetries,
		tokenBudget: ownTokenBudget,
		log:         slog.With("component", "subagent.codegen"),
	}
}

func (c *CodeGen) Kind() scheduler.Kind { return scheduler.KindCodeGen }

func (c *CodeGen) Execute(ctx context.Context, step models.Step) scheduler.StepResult {
	var lastErr error
	feedback := ""

	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		content, err := c.generate(ctx, step, feedback)
		if err != nil {
			return scheduler.StepResult{StepID: step.ID, Kind: scheduler.KindCodeGen, Err: err}
		}

		if syntaxErr := gate.ValidateSyntax(step.TargetPath, content); syntaxErr != nil {
			lastErr = syntaxErr
			feedback = syntaxErr.Error()
			c.log.Warn("codegen syntax validation failed, retrying",
				"step", step.ID, "attempt", attempt, "error", syntaxErr)
			continue
		}

		return scheduler.StepResult{
			StepID: step.ID,
			Kind:   scheduler.KindCodeGen,
			File: &models.FileEntry{
				Path:        step.TargetPath,
				Action:      step.Action,
				Content:     content,
				Layer:       step.Layer,
				Description: step.Description,
				Size:        len(content),
			},
		}
	}

	return scheduler.StepResult{StepID: step.ID, Kind: scheduler.KindCodeGen, Err: lastErr}
}

func (c *CodeGen) generate(ctx context.Context, step models.Step, feedback string) (string, error) {
	resp, err := callLLM(ctx, &c.Deps, &c.mu, &c.tokensUsed, buildCodeGenMessages(step, feedback))
	if err != nil {
		return "", err
	}
	return ExtractCodeBlock(resp.Text), nil
}

func (c *CodeGen) Usage() scheduler.Usage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return scheduler.Usage{TokensUsed: c.tokensUsed, TokenBudget: c.tokenBudget}
}

func (c *CodeGen) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokensUsed = 0
}
