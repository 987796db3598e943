package evolve

import (
	"context"
	"encoding/json"
	"time"

	"missionforge/internal/agent"
	"missionforge/internal/llm"
)

// generatedAgent wraps a synthesized specification as a runnable agent. It
// is a single-step prompt-template worker over the text-generation service.
type generatedAgent struct {
	spec GeneratedCapability
	llm  llm.Client
}

func (g *generatedAgent) Name() string             { return g.spec.Name }
func (g *generatedAgent) Description() string      { return g.spec.Description }
func (g *generatedAgent) Capabilities() []string   { return g.spec.Capabilities }
func (g *generatedAgent) RequiredSkills() []string { return nil }

func (g *generatedAgent) Plan(ctx context.Context, mc *agent.MissionContext) (*agent.Plan, error) {
	return &agent.Plan{
		Steps: []agent.PlanStep{{
			ID:     "run",
			Action: g.spec.Description,
			Tool:   g.spec.Name,
		}},
		Reasoning: "synthesized single-step plan",
	}, nil
}

func (g *generatedAgent) Execute(ctx context.Context, plan *agent.Plan, mc *agent.MissionContext) (*agent.Result, error) {
	start := time.Now()
	res := &agent.Result{Cost: 1}
	defer func() { res.DurationMS = time.Since(start).Milliseconds() }()

	if g.llm == nil {
		res.Error = "no text-generation client"
		return res, nil
	}
	raw, err := g.llm.GenerateJSON(ctx, g.spec.Implementation, map[string]any{"mission": mc.MissionText})
	if err != nil {
		res.Error = err.Error()
		return res, nil
	}
	res.Success = true
	res.Data = json.RawMessage(raw)
	return res, nil
}

func (g *generatedAgent) Verify(ctx context.Context, res *agent.Result, mc *agent.MissionContext) (*agent.SelfReport, error) {
	return &agent.SelfReport{Claimed: res != nil && res.Success, Timestamp: time.Now().UTC()}, nil
}
