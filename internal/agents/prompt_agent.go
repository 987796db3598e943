package agents

import (
	"context"
	"time"

	"missionforge/internal/agent"
	"missionforge/internal/llm"
)

// PromptAgent is a declaratively configured single-step agent: one prompt
// template, one generation call, one data artifact. Roster entries from the
// YAML catalog are installed as PromptAgents.
type PromptAgent struct {
	name         string
	description  string
	capabilities []string
	prompt       string
	llm          llm.Client
}

func NewPromptAgent(name, description string, capabilities []string, prompt string, cli llm.Client) *PromptAgent {
	return &PromptAgent{
		name:         name,
		description:  description,
		capabilities: capabilities,
		prompt:       prompt,
		llm:          cli,
	}
}

func (p *PromptAgent) Name() string             { return p.name }
func (p *PromptAgent) Description() string      { return p.description }
func (p *PromptAgent) Capabilities() []string   { return p.capabilities }
func (p *PromptAgent) RequiredSkills() []string { return nil }

func (p *PromptAgent) Plan(ctx context.Context, mc *agent.MissionContext) (*agent.Plan, error) {
	return &agent.Plan{
		Steps: []agent.PlanStep{
			{ID: "generate", Action: "run the configured prompt", Tool: p.name},
		},
		EstimatedCost: 10,
	}, nil
}

func (p *PromptAgent) Execute(ctx context.Context, plan *agent.Plan, mc *agent.MissionContext) (*agent.Result, error) {
	start := time.Now()
	if p.llm == nil {
		return &agent.Result{Success: false, Error: "no text-generation client", DurationMS: time.Since(start).Milliseconds()}, nil
	}
	raw, err := p.llm.GenerateJSON(ctx, p.prompt, map[string]any{"mission": mc.MissionText, "locale": mc.Locale})
	if err != nil {
		return &agent.Result{Success: false, Error: err.Error(), Cost: 10, DurationMS: time.Since(start).Milliseconds()}, nil
	}
	return &agent.Result{
		Success:    true,
		Data:       raw,
		Cost:       10,
		DurationMS: time.Since(start).Milliseconds(),
	}, nil
}

func (p *PromptAgent) Verify(ctx context.Context, res *agent.Result, mc *agent.MissionContext) (*agent.SelfReport, error) {
	return &agent.SelfReport{
		Claimed:   res != nil && res.Success,
		Timestamp: time.Now().UTC(),
	}, nil
}
