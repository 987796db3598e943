package pipeline

import (
	"fmt"
	"strings"

	"missionforge/internal/billing"
)

// ToolKind is the closed set of executable tool variants. Adding a tool is
// a compile-visible variant addition here plus arms in the total switches
// below; there is no string-convention dispatch.
type ToolKind int

const (
	ToolUnknown ToolKind = iota
	ToolDocConvert
	ToolWebSearch
	ToolSheetCreate
	ToolSlideCreate
	ToolAnalyticsPull
	ToolBrowserRun
	ToolAgent // delegation to a registered agent via the overseer
)

// Tool pairs a kind with, for ToolAgent, the target agent name.
type Tool struct {
	Kind  ToolKind
	Agent string
}

const agentPrefix = "agent:"

// ParseTool validates a tool identifier against the closed enumeration.
// "agent:<name>" resolves to ToolAgent with the target name.
func ParseTool(s string) (Tool, error) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, agentPrefix); ok {
		name := strings.TrimSpace(rest)
		if name == "" {
			return Tool{}, fmt.Errorf("agent tool requires a target name")
		}
		return Tool{Kind: ToolAgent, Agent: name}, nil
	}
	switch s {
	case "doc_convert":
		return Tool{Kind: ToolDocConvert}, nil
	case "web_search":
		return Tool{Kind: ToolWebSearch}, nil
	case "sheet_create":
		return Tool{Kind: ToolSheetCreate}, nil
	case "slide_create":
		return Tool{Kind: ToolSlideCreate}, nil
	case "analytics_pull":
		return Tool{Kind: ToolAnalyticsPull}, nil
	case "browser_run":
		return Tool{Kind: ToolBrowserRun}, nil
	}
	return Tool{}, fmt.Errorf("unknown tool %q", s)
}

func (k ToolKind) String() string {
	switch k {
	case ToolDocConvert:
		return "doc_convert"
	case ToolWebSearch:
		return "web_search"
	case ToolSheetCreate:
		return "sheet_create"
	case ToolSlideCreate:
		return "slide_create"
	case ToolAnalyticsPull:
		return "analytics_pull"
	case ToolBrowserRun:
		return "browser_run"
	case ToolAgent:
		return "agent"
	}
	return "unknown"
}

func (t Tool) String() string {
	if t.Kind == ToolAgent {
		return agentPrefix + t.Agent
	}
	return t.Kind.String()
}

// CostClass is the fixed price tier per tool kind. Total over all valid
// kinds.
func (k ToolKind) CostClass() billing.CostClass {
	switch k {
	case ToolWebSearch:
		return billing.CostLight
	case ToolDocConvert, ToolSheetCreate, ToolAnalyticsPull:
		return billing.CostStandard
	case ToolSlideCreate, ToolBrowserRun, ToolAgent:
		return billing.CostHeavy
	}
	return billing.CostStandard
}

func (t Tool) CostClass() billing.CostClass { return t.Kind.CostClass() }

// KnownToolNames lists the direct tool identifiers for prompt construction.
func KnownToolNames() []string {
	return []string{"doc_convert", "web_search", "sheet_create", "slide_create", "analytics_pull", "browser_run"}
}
