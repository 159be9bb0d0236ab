package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// OrchestratorYAMLConfig represents the complete orchestrator.yaml structure.
type OrchestratorYAMLConfig struct {
	HTTP         *HTTPConfig               `yaml:"http"`
	Budget       *BudgetConfig             `yaml:"budget"`
	Gate         *GateConfig               `yaml:"gate"`
	Signer       *SignerConfig             `yaml:"signer"`
	EventBus     *EventBusConfig           `yaml:"event_bus"`
	Orchestrator *OrchestratorConfig       `yaml:"orchestrator"`
	SubAgents    map[string]SubAgentConfig `yaml:"sub_agents"`
}

// Initialize loads, validates, and returns ready-to-use configuration. This
// is the primary entry point for configuration loading.
//
// Steps performed:
//  1. Load orchestrator.yaml from configDir
//  2. Expand environment variables
//  3. Parse YAML into structs
//  4. Merge built-in + user-defined sub-agents
//  5. Apply default values
//  6. Build the sub-agent registry
//  7. Validate all configuration
//  8. Return Config ready for use
func Initialize(ctx context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("initializing configuration")

	cfg, err := load(ctx, configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	stats := cfg.Stats()
	log.Info("configuration initialized successfully", "sub_agents", stats.SubAgents)

	return cfg, nil
}

func load(_ context.Context, configDir string) (*Config, error) {
	loader := &configLoader{configDir: configDir}

	yamlCfg, err := loader.loadOrchestratorYAML()
	if err != nil {
		return nil, NewLoadError("orchestrator.yaml", err)
	}

	subAgents := mergeSubAgents(builtinSubAgents(), yamlCfg.SubAgents)

	// Built-in defaults form the base of each section; any field the user
	// sets in orchestrator.yaml overrides it (mergo.WithOverride), exactly
	// as the queue section was resolved in the system this one descends from.
	httpCfg := HTTPConfig{Addr: DefaultHTTPAddr}
	if yamlCfg.HTTP != nil {
		if err := mergo.Merge(&httpCfg, *yamlCfg.HTTP, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge http config: %w", err)
		}
	}

	budgetCfg := BudgetConfig{WarnThreshold: DefaultWarnThreshold}
	if yamlCfg.Budget != nil {
		if err := mergo.Merge(&budgetCfg, *yamlCfg.Budget, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge budget config: %w", err)
		}
	}

	gateCfg := GateConfig{CoverageThreshold: DefaultCoverageThreshold}
	if yamlCfg.Gate != nil {
		if err := mergo.Merge(&gateCfg, *yamlCfg.Gate, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge gate config: %w", err)
		}
	}

	signerCfg := SignerConfig{KeyDir: filepath.Join(configDir, "keys")}
	if yamlCfg.Signer != nil {
		if err := mergo.Merge(&signerCfg, *yamlCfg.Signer, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge signer config: %w", err)
		}
	}

	eventBusCfg := EventBusConfig{HistorySize: DefaultEventBusHistory}
	if yamlCfg.EventBus != nil {
		if err := mergo.Merge(&eventBusCfg, *yamlCfg.EventBus, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge event_bus config: %w", err)
		}
	}

	orchestratorCfg := OrchestratorConfig{
		RequireApproval: true,
		ApprovalTimeout: DefaultApprovalTimeout,
	}
	if yamlCfg.Orchestrator != nil {
		if err := mergo.Merge(&orchestratorCfg, *yamlCfg.Orchestrator, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge orchestrator config: %w", err)
		}
	}

	return &Config{
		configDir:        configDir,
		HTTP:             httpCfg,
		Budget:           budgetCfg,
		Gate:             gateCfg,
		Signer:           signerCfg,
		EventBus:         eventBusCfg,
		Orchestrator:     orchestratorCfg,
		SubAgentRegistry: NewSubAgentRegistry(subAgents),
	}, nil
}

func validateConfig(cfg *Config) error {
	validator := NewValidator(cfg)
	return validator.ValidateAll()
}

type configLoader struct {
	configDir string
}

func (l *configLoader) loadYAML(filename string, target any) error {
	path := filepath.Join(l.configDir, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return err
	}

	data = ExpandEnv(data)

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return nil
}

func (l *configLoader) loadOrchestratorYAML() (*OrchestratorYAMLConfig, error) {
	var cfg OrchestratorYAMLConfig
	cfg.SubAgents = make(map[string]SubAgentConfig)

	if err := l.loadYAML("orchestrator.yaml", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
