package config

import "fmt"

// validCheckNames are the six Release Gate checks that may appear in a
// gate.skip_checks list (spec §4.7).
var validCheckNames = map[string]bool{
	"SyntaxCheck":                true,
	"DependencyCheck":            true,
	"SchemaCheck":                true,
	"MigrationReversibilityCheck": true,
	"SecurityCheck":               true,
	"TestCoverageCheck":           true,
}

// Validator validates configuration comprehensively with clear error messages.
type Validator struct {
	cfg *Config
}

// NewValidator creates a validator for the given configuration.
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateAll performs comprehensive validation (fail-fast — stops at the
// first error).
func (v *Validator) ValidateAll() error {
	if err := v.validateHTTP(); err != nil {
		return fmt.Errorf("http validation failed: %w", err)
	}
	if err := v.validateBudget(); err != nil {
		return fmt.Errorf("budget validation failed: %w", err)
	}
	if err := v.validateGate(); err != nil {
		return fmt.Errorf("gate validation failed: %w", err)
	}
	if err := v.validateSigner(); err != nil {
		return fmt.Errorf("signer validation failed: %w", err)
	}
	if err := v.validateEventBus(); err != nil {
		return fmt.Errorf("event_bus validation failed: %w", err)
	}
	if err := v.validateOrchestrator(); err != nil {
		return fmt.Errorf("orchestrator validation failed: %w", err)
	}
	if err := v.validateSubAgents(); err != nil {
		return fmt.Errorf("sub_agents validation failed: %w", err)
	}
	return nil
}

func (v *Validator) validateHTTP() error {
	if v.cfg.HTTP.Addr == "" {
		return fmt.Errorf("%w: addr", ErrMissingRequiredField)
	}
	return nil
}

func (v *Validator) validateBudget() error {
	b := v.cfg.Budget
	if b.TotalTokens < 1 {
		return fmt.Errorf("%w: total_tokens must be at least 1, got %d", ErrInvalidValue, b.TotalTokens)
	}
	if b.WarnThreshold <= 0 || b.WarnThreshold > 1 {
		return fmt.Errorf("%w: warn_threshold must be in (0,1], got %v", ErrInvalidValue, b.WarnThreshold)
	}
	return nil
}

func (v *Validator) validateGate() error {
	g := v.cfg.Gate
	if g.CoverageThreshold < 0 || g.CoverageThreshold > 100 {
		return fmt.Errorf("%w: coverage_threshold must be between 0 and 100, got %v", ErrInvalidValue, g.CoverageThreshold)
	}
	for _, name := range g.SkipChecks {
		if !validCheckNames[name] {
			return fmt.Errorf("%w: unknown skip_checks entry %q", ErrInvalidValue, name)
		}
	}
	return nil
}

func (v *Validator) validateSigner() error {
	if v.cfg.Signer.KeyDir == "" {
		return fmt.Errorf("%w: key_dir", ErrMissingRequiredField)
	}
	return nil
}

func (v *Validator) validateEventBus() error {
	if v.cfg.EventBus.HistorySize < 1 {
		return fmt.Errorf("%w: history_size must be at least 1, got %d", ErrInvalidValue, v.cfg.EventBus.HistorySize)
	}
	return nil
}

func (v *Validator) validateOrchestrator() error {
	o := v.cfg.Orchestrator
	if o.ApprovalTimeout <= 0 {
		return fmt.Errorf("%w: approval_timeout must be positive, got %v", ErrInvalidValue, o.ApprovalTimeout)
	}
	if o.Temperature < 0 || o.Temperature > 2 {
		return fmt.Errorf("%w: temperature must be between 0 and 2, got %v", ErrInvalidValue, o.Temperature)
	}
	return nil
}

func (v *Validator) validateSubAgents() error {
	entries := v.cfg.SubAgentRegistry.Entries()
	if len(entries) == 0 {
		return fmt.Errorf("%w: at least one sub-agent must be registered", ErrMissingRequiredField)
	}
	haveKind := map[string]bool{}
	for name, sa := range entries {
		switch sa.Kind {
		case "codegen", "testgen", "migration":
		default:
			return fmt.Errorf("%w: sub_agents.%s.kind %q must be one of codegen, testgen, migration", ErrInvalidValue, name, sa.Kind)
		}
		if sa.TokenBudget < 1 {
			return fmt.Errorf("%w: sub_agents.%s.token_budget must be at least 1, got %d", ErrInvalidValue, name, sa.TokenBudget)
		}
		haveKind[sa.Kind] = true
	}
	if !haveKind["codegen"] {
		return fmt.Errorf("%w: no sub-agent registered for kind codegen", ErrMissingRequiredField)
	}
	return nil
}
