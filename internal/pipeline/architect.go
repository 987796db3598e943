package pipeline

import (
	"context"
	"strings"

	"missionforge/internal/jsonutil"
)

const promptArchitect = `You are the architect stage of a mission pipeline.

Convert the user mission into a structured spec.

Return STRICT JSON:
{
  "tool":      "string",  // one of: doc_convert, web_search, sheet_create, slide_create, analytics_pull, browser_run, or "agent:<name>" to delegate
  "payload":   {},        // tool-specific arguments
  "reasoning": "string"
}

Rules:
- JSON only; no comments or trailing commas.
- Pick exactly one tool.`

// architect converts mission text into a validated Spec. Parse or
// validation failure rejects the mission; there is no retry inside this
// node.
func (p *Pipeline) architect(ctx context.Context, st *State) bool {
	if strings.TrimSpace(st.MissionText) == "" {
		return p.reject(st, "mission text is empty")
	}
	if p.llm == nil {
		return p.reject(st, "architect unavailable: no text-generation client")
	}

	raw, err := p.llm.GenerateJSON(ctx, promptArchitect, map[string]any{
		"mission": st.MissionText,
		"tools":   KnownToolNames(),
	})
	if err != nil {
		return p.reject(st, "architect generation failed: "+err.Error())
	}

	var spec Spec
	if err := jsonutil.UnmarshalLoose(raw, &spec); err != nil {
		return p.reject(st, "architect returned unparseable spec: "+err.Error())
	}
	tool, err := ParseTool(spec.ToolName)
	if err != nil {
		return p.reject(st, "architect spec invalid: "+err.Error())
	}
	spec.Tool = tool

	st.Spec = &spec
	p.transition(st, StatusPlanned)
	return true
}
