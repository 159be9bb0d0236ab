package orchestrator

import (
	"testing"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/gate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestionForKnownCheck(t *testing.T) {
	s := suggestionFor("SyntaxCheck")
	assert.Equal(t, "SyntaxCheck", s.Check)
	assert.NotEmpty(t, s.Actions)
}

func TestSuggestionForUnknownCheckFallsBackToGeneric(t *testing.T) {
	s := suggestionFor("SomeNewCheck")
	assert.Equal(t, "SomeNewCheck", s.Check)
	assert.Equal(t, "Validation failed", s.Title)
}

func TestSuggestionsForBlockersPreservesOrder(t *testing.T) {
	blockers := []gate.CheckResult{
		{Name: "SchemaCheck"},
		{Name: "SyntaxCheck"},
	}
	out := suggestionsForBlockers(blockers)
	require.Len(t, out, 2)
	assert.Equal(t, "SchemaCheck", out[0].Check)
	assert.Equal(t, "SyntaxCheck", out[1].Check)
}
