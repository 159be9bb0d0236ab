package subagent

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/scheduler"
)

// TestGen generates one test file per step. Unlike CodeGen it has no
// syntax-retry loop — spec §4.8 scopes the retry-on-syntax-error behavior
// to code generation specifically.
type TestGen struct {
	Deps

	mu          sync.Mutex
	tokensUsed  int
	tokenBudget int
	log         *slog.Logger
}

func NewTestGen(deps Deps, ownTokenBudget int) *TestGen {
	if deps.MaxOutputTokens == 0 {
		deps.MaxOutputTokens = 4096
	}
	return &TestGen{Deps: deps, tokenBudget: ownTokenBudget, log: slog.With("component", "subagent.testgen")}
}

func (t *TestGen) Kind() scheduler.Kind { return scheduler.KindTestGen }

func (t *TestGen) Execute(ctx context.Context, step models.Step) scheduler.StepResult {
	resp, err := callLLM(ctx, &t.Deps, &t.mu, &t.tokensUsed, buildTestGenMessages(step))
	if err != nil {
		return scheduler.StepResult{StepID: step.ID, Kind: scheduler.KindTestGen, Err: err}
	}

	content := ExtractCodeBlock(resp.Text)
	return scheduler.StepResult{
		StepID: step.ID,
		Kind:   scheduler.KindTestGen,
		Test: &models.TestEntry{
			Path:       step.TargetPath,
			Content:    content,
			SourceFile: sourceFileFor(step.TargetPath),
		},
	}
}

func (t *TestGen) Usage() scheduler.Usage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return scheduler.Usage{TokensUsed: t.tokensUsed, TokenBudget: t.tokenBudget}
}

func (t *TestGen) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tokensUsed = 0
}

// sourceFileFor strips a conventional .test./.spec. marker from a test
// file's path to recover the source file it covers, for TestCoverageCheck
// to match against when the sub-agent didn't set SourceFile explicitly.
func sourceFileFor(testPath string) string {
	for _, marker := range []string{".test.", ".spec."} {
		if idx := strings.Index(testPath, marker); idx >= 0 {
			ext := testPath[idx+len(marker):]
			return testPath[:idx] + "." + ext
		}
	}
	return ""
}
