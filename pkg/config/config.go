// Package config provides configuration management for the code-generation
// orchestrator: sub-agent registry, token budget, Release Gate policy,
// bundle signer, HTTP, and Event Bus settings.
package config

// Config is the umbrella configuration object returned by Initialize and
// used to wire every component the orchestrator depends on.
type Config struct {
	configDir string

	HTTP         HTTPConfig
	Budget       BudgetConfig
	Gate         GateConfig
	Signer       SignerConfig
	EventBus     EventBusConfig
	Orchestrator OrchestratorConfig

	SubAgentRegistry *SubAgentRegistry
}

// ConfigDir returns the configuration directory path.
func (c *Config) ConfigDir() string {
	return c.configDir
}

// ConfigStats summarizes loaded configuration for startup logging.
type ConfigStats struct {
	SubAgents int
}

// Stats returns configuration statistics for logging/monitoring.
func (c *Config) Stats() ConfigStats {
	return ConfigStats{
		SubAgents: len(c.SubAgentRegistry.Entries()),
	}
}

// GetSubAgent retrieves a sub-agent configuration by name.
func (c *Config) GetSubAgent(name string) (SubAgentConfig, error) {
	return c.SubAgentRegistry.Get(name)
}
