package subagent

import (
	"context"
	"testing"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/budget"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/llm"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	responses []string
	calls     int
	usage     llm.Usage
}

func (f *fakeLLM) Generate(ctx context.Context, req llm.GenerateRequest) (llm.GenerateResponse, error) {
	idx := f.calls
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	f.calls++
	return llm.GenerateResponse{Text: f.responses[idx], Usage: f.usage}, nil
}

func newDeps(client llm.Client) Deps {
	return Deps{
		LLM:             client,
		Budget:          budget.NewManager(100000),
		Category:        models.CategoryGenerate,
		Model:           "test-model",
		MaxOutputTokens: 1000,
	}
}

func TestCodeGenProducesFileOnValidSyntax(t *testing.T) {
	fake := &fakeLLM{responses: []string{"```ts\nexport const x = 1;\n```"}, usage: llm.Usage{InputTokens: 10, OutputTokens: 20}}
	c := NewCodeGen(newDeps(fake), 1000)

	result := c.Execute(context.Background(), models.Step{ID: "s1", TargetPath: "src/a.ts", Action: models.ActionCreate})
	require.NoError(t, result.Err)
	require.NotNil(t, result.File)
	assert.Equal(t, "export const x = 1;", result.File.Content)
	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, 30, c.Usage().TokensUsed)
}

func TestCodeGenRetriesOnSyntaxErrorAndEventuallySucceeds(t *testing.T) {
	fake := &fakeLLM{responses: []string{
		"```ts\nexport function f() { return 1;\n```",
		"```ts\nexport function f() { return 1; }\n```",
	}}
	c := NewCodeGen(newDeps(fake), 1000)

	result := c.Execute(context.Background(), models.Step{ID: "s1", TargetPath: "src/a.ts"})
	require.NoError(t, result.Err)
	require.NotNil(t, result.File)
	assert.Equal(t, 2, fake.calls)
}

func TestCodeGenExhaustsRetriesAndReturnsLastSyntaxError(t *testing.T) {
	fake := &fakeLLM{responses: []string{"```ts\nexport function f() { return 1;\n```"}}
	c := NewCodeGen(newDeps(fake), 1000)
	c.MaxRetries = 2

	result := c.Execute(context.Background(), models.Step{ID: "s1", TargetPath: "src/a.ts"})
	require.Error(t, result.Err)
	assert.Nil(t, result.File)
	assert.Equal(t, 3, fake.calls, "initial attempt plus MaxRetries retries")
}

func TestTestGenProducesTestEntryWithDerivedSourceFile(t *testing.T) {
	fake := &fakeLLM{responses: []string{"```ts\ntest('x', () => {});\n```"}}
	tg := NewTestGen(newDeps(fake), 1000)

	result := tg.Execute(context.Background(), models.Step{ID: "s1", TargetPath: "src/widget.test.ts"})
	require.NoError(t, result.Err)
	require.NotNil(t, result.Test)
	assert.Equal(t, "src/widget.ts", result.Test.SourceFile)
}

func TestMigrationProducesForwardAndReverseSQL(t *testing.T) {
	fake := &fakeLLM{responses: []string{
		"```forward\nCREATE TABLE widgets (id INT);\n```\n```reverse\nDROP TABLE widgets;\n```",
	}}
	m := NewMigration(newDeps(fake), "postgres", 1000)

	result := m.Execute(context.Background(), models.Step{ID: "s1", TargetPath: "db/migrations/0001.sql", Description: "add widgets table"})
	require.NoError(t, result.Err)
	require.NotNil(t, result.Migration)
	assert.Contains(t, result.Migration.SQLForward, "CREATE TABLE widgets")
	assert.Contains(t, result.Migration.SQLReverse, "DROP TABLE widgets")
	assert.Equal(t, models.DataLossHigh, result.Migration.DataLossRisk)
}

func TestMigrationFailsWhenReverseBlockMissing(t *testing.T) {
	fake := &fakeLLM{responses: []string{"```forward\nCREATE TABLE widgets (id INT);\n```"}}
	m := NewMigration(newDeps(fake), "postgres", 1000)

	result := m.Execute(context.Background(), models.Step{ID: "s1", TargetPath: "db/migrations/0001.sql"})
	require.Error(t, result.Err)
	assert.Nil(t, result.Migration)
}

func TestCodeGenUsageResetZeroesCounter(t *testing.T) {
	fake := &fakeLLM{responses: []string{"```ts\nexport const x = 1;\n```"}, usage: llm.Usage{InputTokens: 5, OutputTokens: 5}}
	c := NewCodeGen(newDeps(fake), 1000)
	c.Execute(context.Background(), models.Step{ID: "s1", TargetPath: "a.ts"})
	assert.NotZero(t, c.Usage().TokensUsed)
	c.Reset()
	assert.Zero(t, c.Usage().TokensUsed)
}
