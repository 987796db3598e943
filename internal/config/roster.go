package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Roster is the optional declarative agent catalog loaded at startup.
// Entries extend the built-in roster; they never replace it.
type Roster struct {
	Agents []RosterAgent `yaml:"agents"`
	Skills []RosterSkill `yaml:"skills"`
}

// RosterAgent declares a prompt-template agent.
type RosterAgent struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Capabilities []string `yaml:"capabilities"`
	Prompt       string   `yaml:"prompt"`
}

// RosterSkill binds a named skill to an agent declared here or built in.
type RosterSkill struct {
	Agent       string `yaml:"agent"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// LoadRoster parses the YAML roster at path. A missing path is an error;
// callers decide whether a roster is optional.
func LoadRoster(path string) (*Roster, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	var r Roster
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	for i, a := range r.Agents {
		if a.Name == "" {
			return nil, fmt.Errorf("roster agent %d has no name", i)
		}
		if a.Prompt == "" {
			return nil, fmt.Errorf("roster agent %q has no prompt", a.Name)
		}
	}
	for i, s := range r.Skills {
		if s.Agent == "" || s.Name == "" {
			return nil, fmt.Errorf("roster skill %d needs agent and name", i)
		}
	}
	return &r, nil
}
