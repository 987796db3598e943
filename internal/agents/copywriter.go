// Package agents holds the built-in agent roster. Each agent implements the
// three-phase contract from the agent package and is registered through
// Populate at process start.
package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"missionforge/internal/agent"
	"missionforge/internal/artifactstore"
	"missionforge/internal/jsonutil"
	"missionforge/internal/llm"
)

const promptCopywrite = `You are a senior copywriter.

Input JSON carries the mission text and locale.

Return STRICT JSON:
{
  "headline": "string",
  "body":     "string"   // markdown, ready to publish
}

Rules:
- JSON only; no comments or trailing commas.
- Match the mission's language and tone.`

// Copywriter drafts publishable copy and stores it as a file artifact. Its
// results declare a structured task output so downstream verification can
// re-check the file independently.
type Copywriter struct {
	llm   llm.Client
	store artifactstore.Store
}

func NewCopywriter(cli llm.Client, store artifactstore.Store) *Copywriter {
	return &Copywriter{llm: cli, store: store}
}

func (c *Copywriter) Name() string        { return "copywriter" }
func (c *Copywriter) Description() string { return "drafts marketing and document copy" }
func (c *Copywriter) Capabilities() []string {
	return []string{"marketing", "documents", "general"}
}
func (c *Copywriter) RequiredSkills() []string { return nil }

func (c *Copywriter) Plan(ctx context.Context, mc *agent.MissionContext) (*agent.Plan, error) {
	if mc == nil || strings.TrimSpace(mc.MissionText) == "" {
		return nil, fmt.Errorf("mission text is required")
	}
	plan := &agent.Plan{
		Steps: []agent.PlanStep{
			{ID: "draft", Action: "draft the copy", Tool: "copywriter"},
			{ID: "store", Action: "persist the draft as an artifact", Tool: "copywriter", Dependencies: []string{"draft"}},
		},
		EstimatedCost:  50,
		RequiredSkills: nil,
		Reasoning:      "single-pass drafting with artifact persistence",
	}
	return plan, nil
}

func (c *Copywriter) Execute(ctx context.Context, plan *agent.Plan, mc *agent.MissionContext) (*agent.Result, error) {
	start := time.Now()
	fail := func(msg string) (*agent.Result, error) {
		return &agent.Result{Success: false, Error: msg, DurationMS: time.Since(start).Milliseconds()}, nil
	}

	if c.llm == nil {
		return fail("copywriter has no text-generation client")
	}
	raw, err := c.llm.GenerateJSON(ctx, promptCopywrite, map[string]any{
		"mission": mc.MissionText,
		"locale":  mc.Locale,
	})
	if err != nil {
		return fail("copy generation failed: " + err.Error())
	}
	var draft struct {
		Headline string `json:"headline"`
		Body     string `json:"body"`
	}
	if err := jsonutil.UnmarshalLoose(raw, &draft); err != nil || draft.Body == "" {
		return fail("copy generation returned no usable draft")
	}

	content := draft.Body
	if draft.Headline != "" {
		content = "# " + draft.Headline + "\n\n" + draft.Body
	}

	res := &agent.Result{Success: true, Cost: 50}
	if c.store != nil {
		path, err := c.store.Put(ctx, mc.MissionID, "copy.md", []byte(content))
		if err != nil {
			return fail("artifact store rejected the draft: " + err.Error())
		}
		res.Artifacts = append(res.Artifacts, agent.Artifact{
			Type:  agent.ArtifactFile,
			Name:  "copy.md",
			Value: path,
		})
		res.TaskOutput = &agent.TaskOutput{
			Outputs: []agent.DeclaredOutput{{Type: "file", Path: path}},
			Criteria: []agent.CompletionCriterion{
				{Type: agent.CriterionFileExists, Target: path},
				{Type: agent.CriterionContentContains, Target: path, Expected: draft.Headline},
			},
		}
	} else {
		res.Artifacts = append(res.Artifacts, agent.Artifact{
			Type:  agent.ArtifactData,
			Name:  "copy.md",
			Value: content,
		})
	}
	res.DurationMS = time.Since(start).Milliseconds()
	return res, nil
}

func (c *Copywriter) Verify(ctx context.Context, res *agent.Result, mc *agent.MissionContext) (*agent.SelfReport, error) {
	claimed := res != nil && res.Success && len(res.Artifacts) > 0
	return &agent.SelfReport{
		Claimed:   claimed,
		Notes:     []string{"self-assessment only; authoritative checks run downstream"},
		Timestamp: time.Now().UTC(),
	}, nil
}
