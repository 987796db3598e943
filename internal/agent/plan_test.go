package agent

import "testing"

func step(id string, deps ...string) PlanStep {
	return PlanStep{ID: id, Action: "do " + id, Tool: "noop", Dependencies: deps}
}

func TestValidatePlanResolvesDependencies(t *testing.T) {
	p := &Plan{Steps: []PlanStep{step("a"), step("b", "a"), step("c", "a", "b")}}
	if err := ValidatePlan(p); err != nil {
		t.Fatalf("ValidatePlan() error = %v", err)
	}
}

func TestValidatePlanDanglingDependency(t *testing.T) {
	p := &Plan{Steps: []PlanStep{step("a"), step("b", "zz")}}
	if err := ValidatePlan(p); err == nil {
		t.Fatal("expected error for dangling dependency")
	}
}

func TestValidatePlanCycle(t *testing.T) {
	p := &Plan{Steps: []PlanStep{step("a", "b"), step("b", "a")}}
	if err := ValidatePlan(p); err == nil {
		t.Fatal("expected error for cyclic dependencies")
	}
}

func TestValidatePlanDuplicateID(t *testing.T) {
	p := &Plan{Steps: []PlanStep{step("a"), step("a")}}
	if err := ValidatePlan(p); err == nil {
		t.Fatal("expected error for duplicate step id")
	}
}

func TestStepOrderRespectsDependencies(t *testing.T) {
	p := &Plan{Steps: []PlanStep{step("c", "b"), step("a"), step("b", "a")}}
	order, err := StepOrder(p)
	if err != nil {
		t.Fatalf("StepOrder() error = %v", err)
	}
	seen := map[string]int{}
	for i, s := range order {
		seen[s.ID] = i
	}
	if !(seen["a"] < seen["b"] && seen["b"] < seen["c"]) {
		t.Fatalf("order violates dependencies: %v", order)
	}
}

func TestStepOrderKeepsDeclarationOrderWithoutDeps(t *testing.T) {
	p := &Plan{Steps: []PlanStep{step("z"), step("m"), step("a")}}
	order, err := StepOrder(p)
	if err != nil {
		t.Fatalf("StepOrder() error = %v", err)
	}
	want := []string{"z", "m", "a"}
	for i, s := range order {
		if s.ID != want[i] {
			t.Fatalf("order[%d] = %s, want %s", i, s.ID, want[i])
		}
	}
}

func TestMutatedArtifacts(t *testing.T) {
	s := PlanStep{ID: "a", Payload: []byte(`{"artifact":"report.md"}`)}
	got := MutatedArtifacts(s)
	if len(got) != 1 || got[0] != "report.md" {
		t.Fatalf("MutatedArtifacts() = %v", got)
	}
	if got := MutatedArtifacts(PlanStep{ID: "b"}); got != nil {
		t.Fatalf("expected nil for empty payload, got %v", got)
	}
}
