package config

// mergeSubAgents merges built-in and user-defined sub-agent configurations.
// User-defined sub-agents override built-in ones with the same name.
func mergeSubAgents(builtin, user map[string]SubAgentConfig) map[string]SubAgentConfig {
	result := make(map[string]SubAgentConfig, len(builtin)+len(user))
	for name, cfg := range builtin {
		result[name] = cfg
	}
	for name, cfg := range user {
		result[name] = cfg
	}
	return result
}
