package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAllPasses(t *testing.T) {
	cfg := testConfig()
	require.NoError(t, NewValidator(cfg).ValidateAll())
}

func TestValidateHTTPMissingAddr(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.Addr = ""
	assert.ErrorIs(t, NewValidator(cfg).ValidateAll(), ErrMissingRequiredField)
}

func TestValidateBudgetZeroTotalTokens(t *testing.T) {
	cfg := testConfig()
	cfg.Budget.TotalTokens = 0
	assert.ErrorIs(t, NewValidator(cfg).ValidateAll(), ErrInvalidValue)
}

func TestValidateBudgetWarnThresholdOutOfRange(t *testing.T) {
	cfg := testConfig()
	cfg.Budget.WarnThreshold = 1.5
	assert.ErrorIs(t, NewValidator(cfg).ValidateAll(), ErrInvalidValue)
}

func TestValidateGateCoverageThresholdOutOfRange(t *testing.T) {
	cfg := testConfig()
	cfg.Gate.CoverageThreshold = 150
	assert.ErrorIs(t, NewValidator(cfg).ValidateAll(), ErrInvalidValue)
}

func TestValidateGateUnknownSkipCheck(t *testing.T) {
	cfg := testConfig()
	cfg.Gate.SkipChecks = []string{"NotARealCheck"}
	assert.ErrorIs(t, NewValidator(cfg).ValidateAll(), ErrInvalidValue)
}

func TestValidateGateKnownSkipChecksPass(t *testing.T) {
	cfg := testConfig()
	cfg.Gate.SkipChecks = []string{"SecurityCheck", "TestCoverageCheck"}
	require.NoError(t, NewValidator(cfg).ValidateAll())
}

func TestValidateSignerMissingKeyDir(t *testing.T) {
	cfg := testConfig()
	cfg.Signer.KeyDir = ""
	assert.ErrorIs(t, NewValidator(cfg).ValidateAll(), ErrMissingRequiredField)
}

func TestValidateEventBusZeroHistory(t *testing.T) {
	cfg := testConfig()
	cfg.EventBus.HistorySize = 0
	assert.ErrorIs(t, NewValidator(cfg).ValidateAll(), ErrInvalidValue)
}

func TestValidateOrchestratorZeroApprovalTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.Orchestrator.ApprovalTimeout = 0
	assert.ErrorIs(t, NewValidator(cfg).ValidateAll(), ErrInvalidValue)
}

func TestValidateSubAgentsEmptyRegistry(t *testing.T) {
	cfg := testConfig()
	cfg.SubAgentRegistry = NewSubAgentRegistry(nil)
	assert.ErrorIs(t, NewValidator(cfg).ValidateAll(), ErrMissingRequiredField)
}

func TestValidateSubAgentsInvalidKind(t *testing.T) {
	cfg := testConfig()
	cfg.SubAgentRegistry = NewSubAgentRegistry(map[string]SubAgentConfig{
		"weird": {Kind: "not-a-kind", TokenBudget: 10},
	})
	assert.ErrorIs(t, NewValidator(cfg).ValidateAll(), ErrInvalidValue)
}

func TestValidateSubAgentsRequiresCodegen(t *testing.T) {
	cfg := testConfig()
	cfg.SubAgentRegistry = NewSubAgentRegistry(map[string]SubAgentConfig{
		"testgen": {Kind: "testgen", TokenBudget: 10},
	})
	assert.ErrorIs(t, NewValidator(cfg).ValidateAll(), ErrMissingRequiredField)
}
