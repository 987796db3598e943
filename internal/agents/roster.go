package agents

import (
	"missionforge/internal/agent"
	"missionforge/internal/artifactstore"
	"missionforge/internal/llm"
)

// Populate returns a registry hook installing the built-in roster. Pass it
// to agent.NewRegistry; the hook runs once on first registry access.
func Populate(cli llm.Client, store artifactstore.Store) func(*agent.Registry) {
	return func(r *agent.Registry) {
		r.Register(NewCopywriter(cli, store))
		r.Register(NewScout(cli))
		r.Register(NewDesignCritic(cli))
	}
}
