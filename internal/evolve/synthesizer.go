package evolve

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"missionforge/internal/agent"
	"missionforge/internal/classify"
	"missionforge/internal/jsonutil"
	"missionforge/internal/llm"
)

// ScoutedCapability is one candidate reported by the scout collaborator.
type ScoutedCapability struct {
	Name          string   `json:"name"`
	Capabilities  []string `json:"capabilities"`
	Source        string   `json:"source"`
	Compatibility string   `json:"compatibility"`
}

// GeneratedCapability is a freshly synthesized agent or skill specification.
type GeneratedCapability struct {
	Kind           string   `json:"kind"` // "agent" or "skill"
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Capabilities   []string `json:"capabilities"`
	Implementation string   `json:"implementation"`
}

// Outcome is what one synthesis run produced.
type Outcome struct {
	Scouted   []ScoutedCapability
	Generated []GeneratedCapability
	Remaining []classify.Gap
}

const promptGenesis = `You are synthesizing a new capability for an agent orchestrator.

Input JSON describes one capability gap (domain, reason, keywords).

Return STRICT JSON:
{
  "kind":           "string",   // "agent" or "skill"
  "name":           "string",   // snake_case identifier
  "description":    "string",
  "capabilities":   ["string"],
  "implementation": "string"    // complete implementation sketch
}

Rules:
- JSON only; no comments or trailing commas.
- The name must not collide with common words; prefer domain_verb form.`

// scoutArtifactName is the artifact the scout contract promises.
const scoutArtifactName = "recommended agents"

// Synthesizer fills capability gaps: scout first, generate second, record
// outcomes into pattern memory. It runs only when gaps are non-empty.
type Synthesizer struct {
	llm      llm.Client
	reg      *agent.Registry
	patterns PatternStore

	// ScoutAgent names the registry entry used as the scout collaborator.
	ScoutAgent string
}

func NewSynthesizer(cli llm.Client, reg *agent.Registry, patterns PatternStore) *Synthesizer {
	return &Synthesizer{llm: cli, reg: reg, patterns: patterns, ScoutAgent: "scout"}
}

// Fill resolves gaps in two passes. Scouted capabilities whose tags
// intersect a gap's keywords remove that gap; leftovers go to generation.
// Generation failures are logged and tolerated: the mission continues with
// a smaller capability set.
func (s *Synthesizer) Fill(ctx context.Context, c classify.Classification, gaps []classify.Gap) Outcome {
	var out Outcome
	if len(gaps) == 0 {
		return out
	}

	out.Scouted = s.scout(ctx, c, gaps)
	remaining := removeCovered(gaps, out.Scouted)

	for _, gap := range remaining {
		gen, err := s.generate(ctx, gap)
		if err != nil {
			log.Printf("evolve: generation for %s gap failed: %v", gap.Domain, err)
			out.Remaining = append(out.Remaining, gap)
			continue
		}
		out.Generated = append(out.Generated, gen)
		s.install(gen)
	}
	return out
}

// scout delegates to the scout agent's full plan-then-execute cycle and parses
// its "recommended agents" artifact. Any failure yields no candidates.
func (s *Synthesizer) scout(ctx context.Context, c classify.Classification, gaps []classify.Gap) []ScoutedCapability {
	scout, ok := s.reg.Get(s.ScoutAgent)
	if !ok {
		return nil
	}

	reasons := make([]string, 0, len(gaps))
	for _, g := range gaps {
		reasons = append(reasons, fmt.Sprintf("%s: %s", g.Domain, g.Reason))
	}
	mc := &agent.MissionContext{
		MissionText: "Find existing third-party solutions for these capability gaps: " + strings.Join(reasons, "; "),
	}

	plan, err := scout.Plan(ctx, mc)
	if err != nil {
		log.Printf("evolve: scout planning failed: %v", err)
		return nil
	}
	res, err := scout.Execute(ctx, plan, mc)
	if err != nil || res == nil {
		log.Printf("evolve: scout execution failed: %v", err)
		return nil
	}
	for _, a := range res.Artifacts {
		if a.Name != scoutArtifactName {
			continue
		}
		var caps []ScoutedCapability
		if err := json.Unmarshal([]byte(a.Value), &caps); err != nil {
			log.Printf("evolve: scout artifact unparseable: %v", err)
			return nil
		}
		return caps
	}
	return nil
}

// removeCovered drops every gap whose keywords intersect some scouted
// capability's tags.
func removeCovered(gaps []classify.Gap, scouted []ScoutedCapability) []classify.Gap {
	if len(scouted) == 0 {
		return gaps
	}
	tagset := map[string]bool{}
	for _, sc := range scouted {
		for _, tag := range sc.Capabilities {
			tagset[strings.ToLower(tag)] = true
		}
	}
	out := gaps[:0:0]
	for _, g := range gaps {
		covered := false
		for _, kw := range g.Keywords {
			if tagset[strings.ToLower(kw)] {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, g)
		}
	}
	return out
}

func (s *Synthesizer) generate(ctx context.Context, gap classify.Gap) (GeneratedCapability, error) {
	var zero GeneratedCapability
	if s.llm == nil {
		return zero, llm.ErrInvalidJSON
	}
	raw, err := s.llm.GenerateJSON(ctx, promptGenesis, gap)
	if err != nil {
		return zero, err
	}
	var gen GeneratedCapability
	if err := jsonutil.UnmarshalLoose(raw, &gen); err != nil {
		return zero, err
	}
	if gen.Name == "" || (gen.Kind != "agent" && gen.Kind != "skill") {
		return zero, fmt.Errorf("generated capability is incomplete")
	}
	return gen, nil
}

// install registers generated capability. Agents become prompt-template
// workers; skills bind to the domain's first available agent with the
// generated implementation as their callable.
func (s *Synthesizer) install(gen GeneratedCapability) {
	switch gen.Kind {
	case "agent":
		s.reg.Register(&generatedAgent{spec: gen, llm: s.llm})
	case "skill":
		for _, name := range s.reg.Available() {
			if err := s.reg.BindSkill(name, agent.Skill{
				Name:        gen.Name,
				Description: gen.Description,
				Run:         s.skillRun(gen),
			}); err == nil {
				return
			}
		}
	}
}

// skillRun wraps a generated implementation as the skill's callable, the
// same way generatedAgent runs its implementation as a prompt template.
func (s *Synthesizer) skillRun(gen GeneratedCapability) func(ctx context.Context, payload []byte) ([]byte, error) {
	return func(ctx context.Context, payload []byte) ([]byte, error) {
		if s.llm == nil {
			return nil, fmt.Errorf("skill %s has no text-generation client", gen.Name)
		}
		var input any
		if len(payload) > 0 {
			input = json.RawMessage(payload)
		}
		raw, err := s.llm.GenerateJSON(ctx, gen.Implementation, input)
		if err != nil {
			return nil, fmt.Errorf("skill %s: %w", gen.Name, err)
		}
		return raw, nil
	}
}

// Record feeds a downstream mission outcome into pattern memory.
func (s *Synthesizer) Record(ctx context.Context, c classify.Classification, match classify.CapabilityMatch, out Outcome, success bool, learnings []string) error {
	sol := Solution{Agents: match.Agents, Skills: match.Skills}
	for _, g := range out.Generated {
		switch g.Kind {
		case "agent":
			sol.GeneratedAgents = append(sol.GeneratedAgents, g.Name)
		case "skill":
			sol.GeneratedSkills = append(sol.GeneratedSkills, g.Name)
		}
	}
	_, err := RecordPattern(ctx, s.patterns, c, sol, success, learnings)
	return err
}
