package mission

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"missionforge/internal/agent"
	"missionforge/internal/billing"
	"missionforge/internal/classify"
	"missionforge/internal/evolve"
	"missionforge/internal/llm"
	"missionforge/internal/pipeline"
	"missionforge/internal/verify"
)

type okRunner struct{}

func (okRunner) Run(ctx context.Context, payload json.RawMessage) (*agent.Result, error) {
	return &agent.Result{Success: true, Cost: 50}, nil
}

type stubAgent struct{ name string }

func (a *stubAgent) Name() string             { return a.name }
func (a *stubAgent) Description() string      { return "stub" }
func (a *stubAgent) Capabilities() []string   { return nil }
func (a *stubAgent) RequiredSkills() []string { return nil }
func (a *stubAgent) Plan(ctx context.Context, mc *agent.MissionContext) (*agent.Plan, error) {
	return &agent.Plan{Steps: []agent.PlanStep{{ID: "s1", Action: "noop", Tool: a.name}}}, nil
}
func (a *stubAgent) Execute(ctx context.Context, p *agent.Plan, mc *agent.MissionContext) (*agent.Result, error) {
	return &agent.Result{Success: true}, nil
}
func (a *stubAgent) Verify(ctx context.Context, r *agent.Result, mc *agent.MissionContext) (*agent.SelfReport, error) {
	return &agent.SelfReport{Claimed: true}, nil
}

func buildCoordinator(cli *llm.FakeClient, reg *agent.Registry) (*Coordinator, *evolve.MemoryPatternStore) {
	ledger := billing.NewMemoryLedger()
	ledger.Credit(context.Background(), "u1", 1000)
	patterns := evolve.NewMemoryPatternStore()
	pl := pipeline.New(cli, ledger, reg, map[pipeline.ToolKind]pipeline.ToolRunner{
		pipeline.ToolDocConvert: okRunner{},
	})
	return NewCoordinator(
		classify.NewClassifier(cli),
		classify.NewMatcher(reg),
		evolve.NewSynthesizer(cli, reg, patterns),
		pl,
		verify.NewVerifier(reg),
	), patterns
}

func TestRunHappyPathRecordsPattern(t *testing.T) {
	cli := llm.NewFakeClient().
		Script("classifying", map[string]any{
			"intent":     "Convert the quarterly report to PDF",
			"domain":     "documents",
			"complexity": "simple",
			"confidence": 0.9,
		}).
		Script("architect stage", map[string]any{
			"tool":    "doc_convert",
			"payload": map[string]any{"source": "report.docx"},
		})
	reg := agent.NewRegistry(func(r *agent.Registry) {
		r.Register(&stubAgent{name: "copywriter"})
	})
	c, patterns := buildCoordinator(cli, reg)

	out, err := c.Run(context.Background(), "u1", "convert the quarterly report to PDF")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Classification.Domain != classify.DomainDocuments {
		t.Fatalf("domain = %s", out.Classification.Domain)
	}
	if len(out.Match.Gaps) != 0 {
		t.Fatalf("gaps = %+v", out.Match.Gaps)
	}
	if out.Pipeline.Status != pipeline.StatusCompleted {
		t.Fatalf("pipeline = %s (%s)", out.Pipeline.Status, out.Pipeline.Error)
	}
	if out.Verification == nil || !out.Verification.Passed {
		t.Fatalf("verification = %+v", out.Verification)
	}
	if !out.Succeeded() {
		t.Fatal("mission should count as succeeded")
	}

	recs, _ := patterns.List(context.Background(), classify.DomainDocuments)
	if len(recs) != 1 || recs[0].SuccessRate != 1.0 {
		t.Fatalf("patterns = %+v", recs)
	}
}

func TestRunGapTriggersSynthesisAndRematch(t *testing.T) {
	cli := llm.NewFakeClient().
		Script("classifying", map[string]any{
			"intent":     "Build a full analytics dashboard from our warehouse",
			"domain":     "data",
			"complexity": "complex",
			"confidence": 0.8,
		}).
		Script("synthesizing", map[string]any{
			"kind":           "agent",
			"name":           "analyst",
			"description":    "queries and charts warehouse data",
			"capabilities":   []string{"data"},
			"implementation": "prompt template over warehouse exports",
		}).
		Script("architect stage", map[string]any{
			"tool":    "doc_convert",
			"payload": map[string]any{"source": "dashboard spec"},
		})
	reg := agent.NewRegistry(nil)
	c, _ := buildCoordinator(cli, reg)

	out, err := c.Run(context.Background(), "u1", "build a full analytics dashboard")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Evolution == nil || len(out.Evolution.Generated) != 1 {
		t.Fatalf("evolution = %+v", out.Evolution)
	}
	if out.Evolution.Generated[0].Name != "analyst" {
		t.Fatalf("generated = %+v", out.Evolution.Generated)
	}
	found := false
	for _, name := range out.Match.Agents {
		if name == "analyst" {
			found = true
		}
	}
	if !found {
		t.Fatalf("rematch did not pick up installed agent: %+v", out.Match)
	}
}

func TestRunRejectedMissionSkipsVerification(t *testing.T) {
	cli := llm.NewFakeClient().
		Script("classifying", map[string]any{
			"intent":     "Do something impossible",
			"domain":     "general",
			"complexity": "simple",
			"confidence": 0.5,
		}).
		ScriptRaw("architect stage", "no spec for you")
	reg := agent.NewRegistry(func(r *agent.Registry) {
		r.Register(&stubAgent{name: "copywriter"})
	})
	c, patterns := buildCoordinator(cli, reg)

	out, err := c.Run(context.Background(), "u1", "do something impossible")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Pipeline.Status != pipeline.StatusRejected {
		t.Fatalf("status = %s", out.Pipeline.Status)
	}
	if out.Verification != nil {
		t.Fatal("rejected mission must not be verified")
	}
	if out.Succeeded() {
		t.Fatal("rejected mission must not count as succeeded")
	}

	recs, _ := patterns.List(context.Background(), classify.DomainGeneral)
	if len(recs) != 1 || recs[0].SuccessRate != 0.0 {
		t.Fatalf("patterns = %+v", recs)
	}
	if !strings.Contains(out.Pipeline.Error, "unparseable") {
		t.Fatalf("error = %q", out.Pipeline.Error)
	}
}
