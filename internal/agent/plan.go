package agent

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ValidatePlan checks the dependency graph: every dependency id must resolve
// to a step id within the same plan, and the graph must be acyclic.
func ValidatePlan(p *Plan) error {
	if p == nil {
		return fmt.Errorf("plan is nil")
	}
	ids := make(map[string]bool, len(p.Steps))
	for _, s := range p.Steps {
		if s.ID == "" {
			return fmt.Errorf("plan step with empty id")
		}
		if ids[s.ID] {
			return fmt.Errorf("duplicate step id %q", s.ID)
		}
		ids[s.ID] = true
	}
	for _, s := range p.Steps {
		for _, dep := range s.Dependencies {
			if !ids[dep] {
				return fmt.Errorf("step %q depends on unknown step %q", s.ID, dep)
			}
			if dep == s.ID {
				return fmt.Errorf("step %q depends on itself", s.ID)
			}
		}
	}
	if _, err := StepOrder(p); err != nil {
		return err
	}
	return nil
}

// StepOrder returns a topological walk of the plan's steps. Ties are broken
// by declaration order, so a dependency-free plan executes exactly as
// declared. An error is returned when the graph contains a cycle.
func StepOrder(p *Plan) ([]PlanStep, error) {
	n := len(p.Steps)
	pos := make(map[string]int, n)
	for i, s := range p.Steps {
		pos[s.ID] = i
	}

	indeg := make([]int, n)
	adj := make([][]int, n)
	for i, s := range p.Steps {
		for _, dep := range s.Dependencies {
			j, ok := pos[dep]
			if !ok {
				return nil, fmt.Errorf("step %q depends on unknown step %q", s.ID, dep)
			}
			adj[j] = append(adj[j], i)
			indeg[i]++
		}
	}

	ready := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if indeg[i] == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]PlanStep, 0, n)
	for len(ready) > 0 {
		sort.Ints(ready)
		u := ready[0]
		ready = ready[1:]
		order = append(order, p.Steps[u])
		for _, v := range adj[u] {
			indeg[v]--
			if indeg[v] == 0 {
				ready = append(ready, v)
			}
		}
	}
	if len(order) != n {
		return nil, fmt.Errorf("plan dependency graph contains a cycle")
	}
	return order, nil
}

// MutatedArtifacts reports the artifact names a step writes, parsed from a
// conventional "artifact" payload field. Steps that both name the same
// artifact must not run concurrently.
func MutatedArtifacts(s PlanStep) []string {
	if len(s.Payload) == 0 {
		return nil
	}
	var p struct {
		Artifact  string   `json:"artifact"`
		Artifacts []string `json:"artifacts"`
	}
	if err := json.Unmarshal(s.Payload, &p); err != nil {
		return nil
	}
	out := p.Artifacts
	if p.Artifact != "" {
		out = append(out, p.Artifact)
	}
	return out
}
