package scheduler

import (
	"context"
	"path"
	"strings"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
)

// Kind is a sub-agent variant, selected deterministically per step.
type Kind string

const (
	KindCodeGen   Kind = "codegen"
	KindTestGen   Kind = "testgen"
	KindMigration Kind = "migration"
)

// SelectKind applies the deterministic rule from spec §4.8: layer test or a
// test/spec-named target routes to TestGen; a migration-named target or the
// database layer routes to Migration; everything else is CodeGen.
func SelectKind(s models.Step) Kind {
	if s.Layer == models.LayerTest || looksLikeTest(s.TargetPath) {
		return KindTestGen
	}
	if strings.Contains(strings.ToLower(s.TargetPath), "migration") || s.Layer == models.LayerDatabase {
		return KindMigration
	}
	return KindCodeGen
}

func looksLikeTest(targetPath string) bool {
	base := strings.ToLower(path.Base(targetPath))
	return strings.Contains(base, ".test.") || strings.Contains(base, ".spec.") ||
		strings.HasSuffix(base, "_test.go") || strings.HasPrefix(base, "test_")
}

// Usage is one sub-agent's own token accounting (spec §4.8: "each maintains
// its own tokensUsed/tokenBudget").
type Usage struct {
	TokensUsed  int
	TokenBudget int
}

// StepResult is the outcome of one dispatched step. Exactly one of File,
// Test, or Migration is populated on success, matching the dispatching
// agent's Kind; Err is set on failure and the others are left zero.
type StepResult struct {
	StepID    string
	Kind      Kind
	File      *models.FileEntry
	Test      *models.TestEntry
	Migration *models.MigrationEntry
	Err       error
}

// Agent is the single polymorphic interface every sub-agent variant
// implements (spec §7 "Polymorphism over mixed sub-agents"): one method to
// execute a step end-to-end, plus its own usage accounting.
type Agent interface {
	Kind() Kind
	Execute(ctx context.Context, step models.Step) StepResult
	Usage() Usage
	Reset()
}
