package agents

import (
	"context"
	"time"

	"missionforge/internal/agent"
	"missionforge/internal/jsonutil"
	"missionforge/internal/llm"
)

const promptScout = `You are scouting existing third-party capabilities.

Input JSON carries a mission describing one or more capability gaps.

Return STRICT JSON:
[
  {
    "name":          "string",
    "capabilities":  ["string"],  // lowercase tags
    "source":        "string",    // vendor, marketplace, or repository
    "compatibility": "string"     // "drop-in", "adapter", or "fork"
  }
]

Rules:
- JSON only; no comments or trailing commas.
- Recommend at most five candidates; an empty array is a valid answer.`

// recommendedAgentsArtifact is the artifact name the evolution layer reads.
const recommendedAgentsArtifact = "recommended agents"

// Scout surveys existing third-party capabilities and reports candidates as
// a single JSON artifact. It never installs anything itself.
type Scout struct {
	llm llm.Client
}

func NewScout(cli llm.Client) *Scout {
	return &Scout{llm: cli}
}

func (s *Scout) Name() string        { return "scout" }
func (s *Scout) Description() string { return "surveys existing capabilities for gap coverage" }
func (s *Scout) Capabilities() []string {
	return []string{"research"}
}
func (s *Scout) RequiredSkills() []string { return nil }

func (s *Scout) Plan(ctx context.Context, mc *agent.MissionContext) (*agent.Plan, error) {
	return &agent.Plan{
		Steps: []agent.PlanStep{
			{ID: "survey", Action: "survey candidate capabilities", Tool: "scout"},
		},
		EstimatedCost: 10,
		Reasoning:     "single survey pass",
	}, nil
}

func (s *Scout) Execute(ctx context.Context, plan *agent.Plan, mc *agent.MissionContext) (*agent.Result, error) {
	start := time.Now()
	fail := func(msg string) (*agent.Result, error) {
		return &agent.Result{Success: false, Error: msg, DurationMS: time.Since(start).Milliseconds()}, nil
	}

	if s.llm == nil {
		return fail("scout has no text-generation client")
	}
	raw, err := s.llm.GenerateJSON(ctx, promptScout, map[string]any{"mission": mc.MissionText})
	if err != nil {
		return fail("scouting failed: " + err.Error())
	}
	// Validate and normalize before publishing; the consumer expects a
	// clean JSON array, never a fenced code block.
	var candidates []map[string]any
	if err := jsonutil.UnmarshalLoose(raw, &candidates); err != nil {
		return fail("scouting returned unparseable candidates")
	}
	clean, err := jsonutil.MarshalNoEscape(candidates)
	if err != nil {
		return fail("scouting produced unserializable candidates")
	}

	return &agent.Result{
		Success: true,
		Cost:    10,
		Artifacts: []agent.Artifact{{
			Type:  agent.ArtifactData,
			Name:  recommendedAgentsArtifact,
			Value: string(clean),
		}},
		DurationMS: time.Since(start).Milliseconds(),
	}, nil
}

func (s *Scout) Verify(ctx context.Context, res *agent.Result, mc *agent.MissionContext) (*agent.SelfReport, error) {
	return &agent.SelfReport{
		Claimed:   res != nil && res.Success,
		Timestamp: time.Now().UTC(),
	}, nil
}
