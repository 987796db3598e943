package verify

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"missionforge/internal/agent"
)

// criticStub returns a fixed quality score; negative score means panic.
type criticStub struct {
	score float64
	block bool
}

func (c *criticStub) Name() string             { return "designcritic" }
func (c *criticStub) Description() string      { return "visual audit" }
func (c *criticStub) Capabilities() []string   { return []string{"design"} }
func (c *criticStub) RequiredSkills() []string { return nil }

func (c *criticStub) Plan(ctx context.Context, mc *agent.MissionContext) (*agent.Plan, error) {
	return &agent.Plan{Steps: []agent.PlanStep{{ID: "audit", Action: "audit", Tool: "audit"}}}, nil
}

func (c *criticStub) Execute(ctx context.Context, p *agent.Plan, mc *agent.MissionContext) (*agent.Result, error) {
	if c.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if c.score < 0 {
		panic("critic exploded")
	}
	b, _ := json.Marshal(map[string]float64{"qualityScore": c.score})
	return &agent.Result{Success: true, Data: b}, nil
}

func (c *criticStub) Verify(ctx context.Context, r *agent.Result, mc *agent.MissionContext) (*agent.SelfReport, error) {
	return &agent.SelfReport{Claimed: true}, nil
}

type source map[string]agent.Agent

func (s source) Get(name string) (agent.Agent, bool) {
	a, ok := s[name]
	return a, ok
}

func newTestVerifier(t *testing.T, critic agent.Agent) *Verifier {
	t.Helper()
	v := NewVerifier(source{"designcritic": critic})
	v.WorkDir = t.TempDir()
	return v
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestEmptyCheckSetPassesVacuously(t *testing.T) {
	v := newTestVerifier(t, &criticStub{score: 100})
	rep := v.Verify(context.Background(), &agent.Result{Success: false, TaskOutput: &agent.TaskOutput{}}, nil)
	if !rep.Passed {
		t.Fatal("empty check set must pass vacuously")
	}
	if len(rep.Checks) != 0 {
		t.Fatalf("checks = %v", rep.Checks)
	}
}

func TestPassedIsANDOfChecks(t *testing.T) {
	v := newTestVerifier(t, &criticStub{score: 100})
	ok := writeFile(t, v.WorkDir, "a.txt", "hello")

	res := &agent.Result{TaskOutput: &agent.TaskOutput{Criteria: []agent.CompletionCriterion{
		{Type: agent.CriterionFileExists, Target: ok},
		{Type: agent.CriterionFileExists, Target: "definitely-missing.txt"},
	}}}
	rep := v.Verify(context.Background(), res, nil)
	if rep.Passed {
		t.Fatal("one failed check must fail the report")
	}
	if len(rep.Checks) != 2 || !rep.Checks[0].Passed || rep.Checks[1].Passed {
		t.Fatalf("checks = %+v", rep.Checks)
	}
}

func TestFallbackChecksFileArtifacts(t *testing.T) {
	v := newTestVerifier(t, &criticStub{score: 100})
	ok := writeFile(t, v.WorkDir, "out.md", "done")

	res := &agent.Result{Success: true, Artifacts: []agent.Artifact{
		{Type: agent.ArtifactFile, Name: "report", Value: ok},
		{Type: agent.ArtifactURL, Name: "link", Value: "https://example.com"},
	}}
	rep := v.Verify(context.Background(), res, nil)
	if !rep.Passed {
		t.Fatalf("report = %+v", rep)
	}
	if len(rep.Checks) != 1 {
		t.Fatalf("url artifacts must not be checked: %+v", rep.Checks)
	}
}

func TestFallbackResolvesRelativeToWorkDir(t *testing.T) {
	v := newTestVerifier(t, &criticStub{score: 100})
	writeFile(t, v.WorkDir, "rel.txt", "x")

	res := &agent.Result{Artifacts: []agent.Artifact{{Type: agent.ArtifactFile, Name: "r", Value: "rel.txt"}}}
	rep := v.Verify(context.Background(), res, nil)
	if !rep.Passed {
		t.Fatalf("relative path should resolve against WorkDir: %+v", rep.Checks)
	}
}

func TestContentContains(t *testing.T) {
	v := newTestVerifier(t, &criticStub{score: 100})
	p := writeFile(t, v.WorkDir, "copy.txt", "launch day special offer")

	res := &agent.Result{TaskOutput: &agent.TaskOutput{Criteria: []agent.CompletionCriterion{
		{Type: agent.CriterionContentContains, Target: p, Expected: "special offer"},
	}}}
	if rep := v.Verify(context.Background(), res, nil); !rep.Passed {
		t.Fatalf("report = %+v", rep.Checks)
	}

	res.TaskOutput.Criteria[0].Expected = "absent phrase"
	if rep := v.Verify(context.Background(), res, nil); rep.Passed {
		t.Fatal("missing phrase must fail")
	}
}

func TestContentContainsMissingFileFailsWithoutPanic(t *testing.T) {
	v := newTestVerifier(t, &criticStub{score: 100})
	res := &agent.Result{TaskOutput: &agent.TaskOutput{Criteria: []agent.CompletionCriterion{
		{Type: agent.CriterionContentContains, Target: "nope.txt", Expected: "x"},
	}}}
	rep := v.Verify(context.Background(), res, nil)
	if rep.Passed {
		t.Fatal("missing file must fail")
	}
	if d := rep.Checks[0].Detail; !strings.Contains(d, "missing") {
		t.Fatalf("detail = %q, want a missing-file message", d)
	}
}

func TestVisualQualityThresholdIsStrict(t *testing.T) {
	cases := []struct {
		score float64
		want  bool
	}{{84, false}, {85, true}, {100, true}}
	for _, tc := range cases {
		v := newTestVerifier(t, &criticStub{score: tc.score})
		res := &agent.Result{TaskOutput: &agent.TaskOutput{Criteria: []agent.CompletionCriterion{
			{Type: agent.CriterionVisualQuality, Target: "banner.png"},
		}}}
		rep := v.Verify(context.Background(), res, nil)
		if rep.Passed != tc.want {
			t.Fatalf("score %v: passed = %v, want %v", tc.score, rep.Passed, tc.want)
		}
	}
}

func TestVisualQualityPanicIsRecordedAsFailedCheck(t *testing.T) {
	v := newTestVerifier(t, &criticStub{score: -1})
	res := &agent.Result{TaskOutput: &agent.TaskOutput{Criteria: []agent.CompletionCriterion{
		{Type: agent.CriterionVisualQuality, Target: "banner.png"},
		{Type: agent.CriterionFileExists, Target: writeFile(t, v.WorkDir, "ok.txt", "x")},
	}}}
	rep := v.Verify(context.Background(), res, nil)
	if rep.Passed {
		t.Fatal("panicking check must fail the report")
	}
	if !rep.Checks[1].Passed {
		t.Fatal("a panicking check must not abort the remaining checks")
	}
}

func TestVisualQualityTimeoutBoundsDelegation(t *testing.T) {
	v := newTestVerifier(t, &criticStub{block: true})
	v.VisualTimeout = 20 * time.Millisecond

	res := &agent.Result{TaskOutput: &agent.TaskOutput{Criteria: []agent.CompletionCriterion{
		{Type: agent.CriterionVisualQuality, Target: "banner.png"},
	}}}
	done := make(chan *Report, 1)
	go func() { done <- v.Verify(context.Background(), res, nil) }()
	select {
	case rep := <-done:
		if rep.Passed {
			t.Fatal("timed-out audit must fail")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("verifier did not respect the delegation timeout")
	}
}

func TestNilResultFails(t *testing.T) {
	v := newTestVerifier(t, &criticStub{score: 100})
	if rep := v.Verify(context.Background(), nil, nil); rep.Passed {
		t.Fatal("nil result must not verify")
	}
}

func TestUnknownCriterionTypeIsSkippedAndPasses(t *testing.T) {
	v := newTestVerifier(t, &criticStub{score: 100})
	res := &agent.Result{TaskOutput: &agent.TaskOutput{Criteria: []agent.CompletionCriterion{
		{Type: "aura_alignment", Target: "x"},
	}}}
	rep := v.Verify(context.Background(), res, nil)
	if !rep.Passed {
		t.Fatal("unknown criterion type passes by default")
	}
	if !rep.Checks[0].Skipped {
		t.Fatalf("check should be marked skipped: %+v", rep.Checks[0])
	}
}

func TestSelfReportedSuccessIsIgnored(t *testing.T) {
	v := newTestVerifier(t, &criticStub{score: 100})
	res := &agent.Result{
		Success: true, // the producer's claim
		TaskOutput: &agent.TaskOutput{Criteria: []agent.CompletionCriterion{
			{Type: agent.CriterionFileExists, Target: "never-made.txt"},
		}},
	}
	if rep := v.Verify(context.Background(), res, nil); rep.Passed {
		t.Fatal("verifier must not trust the producer's success flag")
	}
}
