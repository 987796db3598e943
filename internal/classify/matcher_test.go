package classify

import (
	"context"
	"testing"

	"missionforge/internal/agent"
)

type nopAgent struct{ name string }

func (a *nopAgent) Name() string             { return a.name }
func (a *nopAgent) Description() string      { return "test agent" }
func (a *nopAgent) Capabilities() []string   { return nil }
func (a *nopAgent) RequiredSkills() []string { return nil }
func (a *nopAgent) Plan(ctx context.Context, mc *agent.MissionContext) (*agent.Plan, error) {
	return &agent.Plan{}, nil
}
func (a *nopAgent) Execute(ctx context.Context, p *agent.Plan, mc *agent.MissionContext) (*agent.Result, error) {
	return &agent.Result{Success: true}, nil
}
func (a *nopAgent) Verify(ctx context.Context, r *agent.Result, mc *agent.MissionContext) (*agent.SelfReport, error) {
	return &agent.SelfReport{Claimed: true}, nil
}

func TestMatchFindsRegisteredAgent(t *testing.T) {
	reg := agent.NewRegistry(func(r *agent.Registry) {
		r.Register(&nopAgent{name: "copywriter"})
	})
	m := NewMatcher(reg)

	got := m.Match(Classification{Domain: DomainMarketing, Complexity: Complex, Intent: "write copy"})
	if len(got.Agents) != 1 || got.Agents[0] != "copywriter" {
		t.Fatalf("agents = %v", got.Agents)
	}
	if len(got.Gaps) != 0 {
		t.Fatalf("unexpected gaps: %v", got.Gaps)
	}
}

func TestMatchReportsGapForUnservedComplexDomain(t *testing.T) {
	reg := agent.NewRegistry(nil)
	m := NewMatcher(reg)

	got := m.Match(Classification{Domain: DomainCode, Complexity: Complex, Intent: "rebuild the deploy tooling"})
	if len(got.Gaps) == 0 {
		t.Fatal("expected at least one gap for unmatched complex mission")
	}
}

func TestMatchNoGapBelowComplex(t *testing.T) {
	reg := agent.NewRegistry(nil)
	m := NewMatcher(reg)

	got := m.Match(Classification{Domain: DomainCode, Complexity: Moderate, Intent: "small fix"})
	if len(got.Gaps) != 0 {
		t.Fatalf("unexpected gaps for moderate mission: %v", got.Gaps)
	}
}

func TestMatchReportsMissingSkillRegardlessOfComplexity(t *testing.T) {
	reg := agent.NewRegistry(func(r *agent.Registry) {
		r.Register(&nopAgent{name: "seo_auditor"})
	})
	m := NewMatcher(reg)

	got := m.Match(Classification{Domain: DomainSEO, Complexity: Simple, Intent: "check rankings"})
	found := false
	for _, g := range got.Gaps {
		if g.Reason == "missing skill serp_fetch" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected serp_fetch skill gap, got %v", got.Gaps)
	}
}

func TestMatchSeesBoundSkill(t *testing.T) {
	reg := agent.NewRegistry(func(r *agent.Registry) {
		r.Register(&nopAgent{name: "seo_auditor"})
	})
	if err := reg.BindSkill("seo_auditor", agent.Skill{Name: "serp_fetch"}); err != nil {
		t.Fatalf("BindSkill() error = %v", err)
	}
	m := NewMatcher(reg)

	got := m.Match(Classification{Domain: DomainSEO, Complexity: Simple, Intent: "check rankings"})
	if len(got.Gaps) != 0 {
		t.Fatalf("unexpected gaps: %v", got.Gaps)
	}
	if len(got.Skills) != 1 || got.Skills[0] != "serp_fetch" {
		t.Fatalf("skills = %v", got.Skills)
	}
}
