package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"missionforge/internal/agent"
	"missionforge/internal/jsonutil"
	"missionforge/internal/llm"
)

// promptRunner executes a direct tool through one generation call and
// publishes the output as an inline data artifact.
type promptRunner struct {
	llm      llm.Client
	kind     ToolKind
	prompt   string
	artifact string
}

func (r *promptRunner) Run(ctx context.Context, payload json.RawMessage) (*agent.Result, error) {
	start := time.Now()
	if r.llm == nil {
		return nil, fmt.Errorf("%s runner has no text-generation client", r.kind)
	}
	var input any
	if len(payload) > 0 {
		input = payload
	}
	raw, err := r.llm.GenerateJSON(ctx, r.prompt, input)
	if err != nil {
		return nil, fmt.Errorf("%s generation: %w", r.kind, err)
	}
	var out struct {
		Content string `json:"content"`
	}
	if err := jsonutil.UnmarshalLoose(raw, &out); err != nil || out.Content == "" {
		return nil, fmt.Errorf("%s returned no content", r.kind)
	}
	return &agent.Result{
		Success: true,
		Cost:    int64(r.kind.CostClass()),
		Artifacts: []agent.Artifact{{
			Type:  agent.ArtifactData,
			Name:  r.artifact,
			Value: out.Content,
		}},
		DurationMS: time.Since(start).Milliseconds(),
	}, nil
}

const runnerPromptFormat = `You are executing the %s tool of a mission pipeline.

Input JSON is the tool payload produced by the planning stage.

Return STRICT JSON:
{
  "content": "string"   // %s
}

Rules:
- JSON only; no comments or trailing commas.`

// DefaultRunners builds the direct-tool dispatch table. Every runner is a
// single generation call; agent delegation does not go through here.
func DefaultRunners(cli llm.Client) map[ToolKind]ToolRunner {
	mk := func(kind ToolKind, output, artifact string) ToolRunner {
		return &promptRunner{
			llm:      cli,
			kind:     kind,
			prompt:   fmt.Sprintf(runnerPromptFormat, kind, output),
			artifact: artifact,
		}
	}
	return map[ToolKind]ToolRunner{
		ToolDocConvert:    mk(ToolDocConvert, "the converted document body, markdown", "document.md"),
		ToolWebSearch:     mk(ToolWebSearch, "a markdown digest of findings with sources", "search_digest.md"),
		ToolSheetCreate:   mk(ToolSheetCreate, "the sheet as CSV with a header row", "sheet.csv"),
		ToolSlideCreate:   mk(ToolSlideCreate, "one markdown section per slide", "slides.md"),
		ToolAnalyticsPull: mk(ToolAnalyticsPull, "a markdown table of the requested metrics", "analytics.md"),
		ToolBrowserRun:    mk(ToolBrowserRun, "a step-by-step log of the browser session", "browser_log.md"),
	}
}
