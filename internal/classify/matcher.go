package classify

import (
	"sort"
	"strings"

	"missionforge/internal/agent"
)

// Gap names a mission requirement no registered agent or skill can satisfy.
type Gap struct {
	Domain   Domain   `json:"domain"`
	Reason   string   `json:"reason"`
	Keywords []string `json:"keywords,omitempty"`
}

// CapabilityMatch is the matcher's routing answer for one classification.
type CapabilityMatch struct {
	Agents []string `json:"agents,omitempty"`
	Skills []string `json:"skills,omitempty"`
	Gaps   []Gap    `json:"gaps,omitempty"`
}

// domainAgents is the static domain to preferred agent-name table. Agents
// listed here still have to be present in the registry to count.
var domainAgents = map[Domain][]string{
	DomainMarketing:  {"copywriter"},
	DomainSEO:        {"seo_auditor"},
	DomainCode:       {"codewright"},
	DomainDesign:     {"designcritic"},
	DomainResearch:   {"scout"},
	DomainDocuments:  {"copywriter"},
	DomainData:       {"analyst"},
	DomainAutomation: {"operator"},
	DomainFinance:    {"analyst"},
	DomainGeneral:    {"copywriter"},
}

// domainSkills names skills a domain is known to need. A listed skill that
// is not bound to any matched agent is reported as a gap regardless of
// complexity.
var domainSkills = map[Domain][]string{
	DomainSEO:        {"serp_fetch"},
	DomainAutomation: {"headless_browse"},
}

// Matcher consults the static routing table plus live registry availability.
type Matcher struct {
	reg *agent.Registry
}

func NewMatcher(reg *agent.Registry) *Matcher {
	return &Matcher{reg: reg}
}

// Match builds the agents/skills/gaps answer for a classification. A gap is
// recorded when the domain has no available agent AND the mission is at or
// above Complex, or when a domain skill is known to be missing.
func (m *Matcher) Match(c Classification) CapabilityMatch {
	var out CapabilityMatch

	for _, name := range domainAgents[c.Domain] {
		if _, ok := m.reg.Get(name); ok {
			out.Agents = append(out.Agents, name)
		}
	}

	if len(out.Agents) == 0 && c.Complexity >= Complex {
		out.Gaps = append(out.Gaps, Gap{
			Domain:   c.Domain,
			Reason:   "no registered agent for domain",
			Keywords: gapKeywords(c),
		})
	}

	for _, want := range domainSkills[c.Domain] {
		found := false
		for _, name := range out.Agents {
			for _, s := range m.reg.SkillsFor(name) {
				if s.Name == want {
					found = true
					break
				}
			}
		}
		if found {
			out.Skills = append(out.Skills, want)
		} else {
			out.Gaps = append(out.Gaps, Gap{
				Domain:   c.Domain,
				Reason:   "missing skill " + want,
				Keywords: []string{want},
			})
		}
	}

	sort.Strings(out.Agents)
	sort.Strings(out.Skills)
	return out
}

func gapKeywords(c Classification) []string {
	words := strings.Fields(strings.ToLower(c.Intent))
	keep := make([]string, 0, 4)
	for _, w := range words {
		w = strings.Trim(w, ".,!?\"'")
		if len(w) >= 4 {
			keep = append(keep, w)
		}
		if len(keep) == 4 {
			break
		}
	}
	keep = append(keep, string(c.Domain))
	return keep
}
