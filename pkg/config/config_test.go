package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		configDir: "/etc/orchestrator",
		HTTP:      HTTPConfig{Addr: DefaultHTTPAddr},
		Budget:    BudgetConfig{TotalTokens: 1_000_000, WarnThreshold: DefaultWarnThreshold},
		Gate:      GateConfig{CoverageThreshold: DefaultCoverageThreshold},
		Signer:    SignerConfig{KeyDir: "/etc/orchestrator/keys"},
		EventBus:  EventBusConfig{HistorySize: DefaultEventBusHistory},
		Orchestrator: OrchestratorConfig{
			RequireApproval: true,
			ApprovalTimeout: DefaultApprovalTimeout,
			Model:           "gpt-4",
		},
		SubAgentRegistry: NewSubAgentRegistry(builtinSubAgents()),
	}
}

func TestConfigDir(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, "/etc/orchestrator", cfg.ConfigDir())
}

func TestConfigStats(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, 3, cfg.Stats().SubAgents)
}

func TestConfigGetSubAgentFound(t *testing.T) {
	cfg := testConfig()
	sa, err := cfg.GetSubAgent("codegen")
	require.NoError(t, err)
	assert.Equal(t, "codegen", sa.Kind)
}

func TestConfigGetSubAgentNotFound(t *testing.T) {
	cfg := testConfig()
	_, err := cfg.GetSubAgent("does-not-exist")
	assert.Error(t, err)
}
