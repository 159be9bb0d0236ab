package config

import "time"

// HTTPConfig configures the API server's listen address (spec §6).
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// BudgetConfig configures the process-wide Token Budget Manager (spec §4.3).
type BudgetConfig struct {
	TotalTokens   int     `yaml:"total_tokens" validate:"required,min=1"`
	WarnThreshold float64 `yaml:"warn_threshold,omitempty" validate:"omitempty,gt=0,lte=1"`
}

// GateConfig configures the Release Gate (spec §4.7).
type GateConfig struct {
	CoverageThreshold float64  `yaml:"coverage_threshold" validate:"min=0,max=100"`
	SkipChecks        []string `yaml:"skip_checks,omitempty"`
}

// SignerConfig configures the Bundle Signer's RSA keypair (spec §4.10).
type SignerConfig struct {
	KeyDir string `yaml:"key_dir" validate:"required"`
}

// EventBusConfig configures the Event Bus's bounded replay history (spec §4.6).
type EventBusConfig struct {
	HistorySize int `yaml:"history_size" validate:"required,min=1"`
}

// OrchestratorConfig configures the 4-phase pipeline harness (spec §4.9).
type OrchestratorConfig struct {
	RequireApproval   bool          `yaml:"require_approval"`
	ApprovalTimeout   time.Duration `yaml:"approval_timeout,omitempty"`
	Model             string        `yaml:"model" validate:"required"`
	Temperature       float32       `yaml:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	MaxOutputTokens   int           `yaml:"max_output_tokens,omitempty" validate:"omitempty,min=1"`
}

// SubAgentConfig describes one sub-agent available for scheduler dispatch
// (spec §4.8): which Kind it answers for, its own token budget slice, and
// the model parameters its LLM calls use.
type SubAgentConfig struct {
	Kind            string  `yaml:"kind" validate:"required,oneof=codegen testgen migration"`
	Description     string  `yaml:"description,omitempty"`
	TokenBudget     int     `yaml:"token_budget" validate:"required,min=1"`
	Model           string  `yaml:"model,omitempty"`
	Temperature     float32 `yaml:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	MaxOutputTokens int     `yaml:"max_output_tokens,omitempty" validate:"omitempty,min=1"`
}
