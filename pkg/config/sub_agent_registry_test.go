package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubAgentRegistryGetFound(t *testing.T) {
	reg := NewSubAgentRegistry(map[string]SubAgentConfig{
		"codegen": {Kind: "codegen", TokenBudget: 100},
	})

	cfg, err := reg.Get("codegen")
	require.NoError(t, err)
	assert.Equal(t, "codegen", cfg.Kind)
	assert.Equal(t, 100, cfg.TokenBudget)
}

func TestSubAgentRegistryGetNotFound(t *testing.T) {
	reg := NewSubAgentRegistry(nil)

	_, err := reg.Get("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSubAgentNotFound))
}

func TestSubAgentRegistryEntriesIsACopy(t *testing.T) {
	reg := NewSubAgentRegistry(map[string]SubAgentConfig{
		"codegen": {Kind: "codegen", TokenBudget: 100},
	})

	entries := reg.Entries()
	entries["codegen"] = SubAgentConfig{Kind: "testgen", TokenBudget: 1}

	cfg, err := reg.Get("codegen")
	require.NoError(t, err)
	assert.Equal(t, "codegen", cfg.Kind, "mutating the returned map must not affect the registry")
}

func TestSubAgentRegistryNamesSorted(t *testing.T) {
	reg := NewSubAgentRegistry(map[string]SubAgentConfig{
		"zeta":  {Kind: "codegen", TokenBudget: 1},
		"alpha": {Kind: "testgen", TokenBudget: 1},
	})

	assert.Equal(t, []string{"alpha", "zeta"}, reg.Names())
}

func TestSubAgentRegistryByKind(t *testing.T) {
	reg := NewSubAgentRegistry(map[string]SubAgentConfig{
		"cg1": {Kind: "codegen", TokenBudget: 1},
		"cg2": {Kind: "codegen", TokenBudget: 1},
		"tg1": {Kind: "testgen", TokenBudget: 1},
	})

	assert.Equal(t, []string{"cg1", "cg2"}, reg.ByKind("codegen"))
	assert.Equal(t, []string{"tg1"}, reg.ByKind("testgen"))
	assert.Empty(t, reg.ByKind("migration"))
}
