package agent

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is an explicitly constructed catalog mapping agent names to
// instances and their bound skills. It is built once at process start and
// passed by reference; there is no ambient global instance.
//
// Population is lazy and idempotent: the first Get/Available triggers the
// populate hook exactly once, even under concurrent first access.
type Registry struct {
	populate func(*Registry)

	once sync.Once

	mu     sync.RWMutex
	agents map[string]Agent
	skills map[string]map[string]Skill // agent name -> skill name -> skill
}

// NewRegistry returns an empty registry. The optional populate hook runs at
// most once, on first access.
func NewRegistry(populate func(*Registry)) *Registry {
	return &Registry{
		populate: populate,
		agents:   map[string]Agent{},
		skills:   map[string]map[string]Skill{},
	}
}

func (r *Registry) ensure() {
	r.once.Do(func() {
		if r.populate != nil {
			r.populate(r)
		}
	})
}

// Register adds or replaces an agent by name.
func (r *Registry) Register(a Agent) {
	if r == nil || a == nil || a.Name() == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[a.Name()] = a
}

// Get returns the named agent after ensuring the registry is populated.
func (r *Registry) Get(name string) (Agent, bool) {
	r.ensure()
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[name]
	return a, ok
}

// Available lists registered agent names, sorted for determinism.
func (r *Registry) Available() []string {
	r.ensure()
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.agents))
	for n := range r.agents {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// BindSkill attaches a named callable to an agent. The agent does not need
// to be redeployed: skills are resolved through the registry at run time,
// which is how synthesized capability reaches existing agents.
func (r *Registry) BindSkill(agentName string, s Skill) error {
	if s.Name == "" {
		return fmt.Errorf("skill name is required")
	}
	r.ensure()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.agents[agentName]; !ok {
		return fmt.Errorf("unknown agent %q", agentName)
	}
	m := r.skills[agentName]
	if m == nil {
		m = map[string]Skill{}
		r.skills[agentName] = m
	}
	m[s.Name] = s
	return nil
}

// SkillsFor returns the skills bound to an agent, sorted by name.
func (r *Registry) SkillsFor(agentName string) []Skill {
	r.ensure()
	r.mu.RLock()
	defer r.mu.RUnlock()
	m := r.skills[agentName]
	out := make([]Skill, 0, len(m))
	for _, s := range m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
