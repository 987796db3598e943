package agents

import (
	"context"
	"time"

	"missionforge/internal/agent"
	"missionforge/internal/jsonutil"
	"missionforge/internal/llm"
)

const promptCritique = `You are auditing the visual quality of a deliverable.

Input JSON names the target and the mission context.

Return STRICT JSON:
{
  "qualityScore": 0,          // integer 0-100
  "issues":       ["string"],
  "strengths":    ["string"]
}

Rules:
- JSON only; no comments or trailing commas.
- Score conservatively; 85 and above means ship-ready.`

// DesignCritic scores visual deliverables on a 0-100 scale. The verifier
// delegates visual_quality criteria here and reads qualityScore from the
// result data.
type DesignCritic struct {
	llm llm.Client
}

func NewDesignCritic(cli llm.Client) *DesignCritic {
	return &DesignCritic{llm: cli}
}

func (d *DesignCritic) Name() string        { return "designcritic" }
func (d *DesignCritic) Description() string { return "audits visual quality of deliverables" }
func (d *DesignCritic) Capabilities() []string {
	return []string{"design"}
}
func (d *DesignCritic) RequiredSkills() []string { return nil }

func (d *DesignCritic) Plan(ctx context.Context, mc *agent.MissionContext) (*agent.Plan, error) {
	return &agent.Plan{
		Steps: []agent.PlanStep{
			{ID: "audit", Action: "score visual quality", Tool: "designcritic"},
		},
		EstimatedCost: 10,
		Reasoning:     "single audit pass",
	}, nil
}

func (d *DesignCritic) Execute(ctx context.Context, plan *agent.Plan, mc *agent.MissionContext) (*agent.Result, error) {
	start := time.Now()
	fail := func(msg string) (*agent.Result, error) {
		return &agent.Result{Success: false, Error: msg, DurationMS: time.Since(start).Milliseconds()}, nil
	}

	if d.llm == nil {
		return fail("designcritic has no text-generation client")
	}
	raw, err := d.llm.GenerateJSON(ctx, promptCritique, map[string]any{"mission": mc.MissionText})
	if err != nil {
		return fail("visual audit failed: " + err.Error())
	}
	var verdict struct {
		QualityScore float64  `json:"qualityScore"`
		Issues       []string `json:"issues"`
		Strengths    []string `json:"strengths"`
	}
	if err := jsonutil.UnmarshalLoose(raw, &verdict); err != nil {
		return fail("visual audit returned an unparseable verdict")
	}
	if verdict.QualityScore < 0 {
		verdict.QualityScore = 0
	}
	if verdict.QualityScore > 100 {
		verdict.QualityScore = 100
	}

	data, err := jsonutil.MarshalNoEscape(verdict)
	if err != nil {
		return fail("visual audit verdict unserializable")
	}
	return &agent.Result{
		Success:    true,
		Data:       data,
		Cost:       10,
		Confidence: verdict.QualityScore / 100,
		DurationMS: time.Since(start).Milliseconds(),
	}, nil
}

func (d *DesignCritic) Verify(ctx context.Context, res *agent.Result, mc *agent.MissionContext) (*agent.SelfReport, error) {
	return &agent.SelfReport{
		Claimed:   res != nil && res.Success,
		Timestamp: time.Now().UTC(),
	}, nil
}
