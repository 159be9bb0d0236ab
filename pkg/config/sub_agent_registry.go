package config

import (
	"fmt"
	"sort"
)

// SubAgentRegistry holds sub-agents eligible for scheduler dispatch,
// keyed by name (spec §4.8).
type SubAgentRegistry struct {
	agents map[string]SubAgentConfig
}

// NewSubAgentRegistry creates a registry from a name-to-config map,
// defensively copied so later external mutation can't reach it.
func NewSubAgentRegistry(agents map[string]SubAgentConfig) *SubAgentRegistry {
	copied := make(map[string]SubAgentConfig, len(agents))
	for k, v := range agents {
		copied[k] = v
	}
	return &SubAgentRegistry{agents: copied}
}

// Get retrieves a sub-agent configuration by name.
func (r *SubAgentRegistry) Get(name string) (SubAgentConfig, error) {
	cfg, ok := r.agents[name]
	if !ok {
		return SubAgentConfig{}, fmt.Errorf("%w: %s", ErrSubAgentNotFound, name)
	}
	return cfg, nil
}

// Entries returns a copy of the full name-to-config map.
func (r *SubAgentRegistry) Entries() map[string]SubAgentConfig {
	result := make(map[string]SubAgentConfig, len(r.agents))
	for k, v := range r.agents {
		result[k] = v
	}
	return result
}

// Names returns the sorted list of registered sub-agent names.
func (r *SubAgentRegistry) Names() []string {
	names := make([]string, 0, len(r.agents))
	for name := range r.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByKind returns the names of every sub-agent registered under the given
// kind ("codegen", "testgen", "migration"), sorted.
func (r *SubAgentRegistry) ByKind(kind string) []string {
	var names []string
	for name, cfg := range r.agents {
		if cfg.Kind == kind {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
