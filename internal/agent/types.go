package agent

import (
	"encoding/json"
	"time"
)

// MissionContext carries everything an agent may consult while working a
// mission. It is immutable per invocation and passed by reference through
// all three contract phases.
type MissionContext struct {
	MissionID    string            `json:"mission_id"`
	UserID       string            `json:"user_id"`
	MissionText  string            `json:"mission_text"`
	Locale       string            `json:"locale,omitempty"`
	PriorResults []*Result         `json:"prior_results,omitempty"`
	Config       map[string]string `json:"config,omitempty"`
}

// PlanStep is one executable unit of a Plan. Immutable once created.
// Dependencies reference other step IDs within the same Plan.
type PlanStep struct {
	ID           string          `json:"id"`
	Action       string          `json:"action"`
	Tool         string          `json:"tool"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	Dependencies []string        `json:"dependencies,omitempty"`
}

// Plan is a DAG encoded as a flat step list.
type Plan struct {
	Steps          []PlanStep `json:"steps"`
	EstimatedCost  int64      `json:"estimated_cost"`
	RequiredSkills []string   `json:"required_skills,omitempty"`
	Reasoning      string     `json:"reasoning,omitempty"`
}

// ArtifactType enumerates how an artifact value is to be interpreted.
type ArtifactType string

const (
	ArtifactURL  ArtifactType = "url"
	ArtifactFile ArtifactType = "file"
	ArtifactData ArtifactType = "data"
)

// Artifact is one produced output. Names are NOT guaranteed unique within a
// Result; consumers must not key on them.
type Artifact struct {
	Type  ArtifactType `json:"type"`
	Name  string       `json:"name"`
	Value string       `json:"value"`
}

// CriterionType enumerates completion-criterion kinds an agent may declare.
type CriterionType string

const (
	CriterionFileExists      CriterionType = "file_exists"
	CriterionContentContains CriterionType = "content_contains"
	CriterionVisualQuality   CriterionType = "visual_quality"
)

// CompletionCriterion is a machine-checkable condition declared by the
// executing agent. It is consumed only by the independent verifier; the
// declaring agent's own pass/fail claim is never trusted.
type CompletionCriterion struct {
	Type     CriterionType `json:"type"`
	Target   string        `json:"target"`
	Expected string        `json:"expected,omitempty"`
}

// DeclaredOutput names one output the agent claims to have produced.
type DeclaredOutput struct {
	Type string `json:"type"` // "file", "test", or other
	Path string `json:"path"`
}

// TaskOutput is the agent's structured self-report of what it produced and
// how completion should be judged.
type TaskOutput struct {
	Outputs  []DeclaredOutput      `json:"outputs,omitempty"`
	Criteria []CompletionCriterion `json:"criteria,omitempty"`
}

// Result is the outcome of Execute. Cost and DurationMS are populated even
// on failure.
type Result struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data,omitempty"`
	Error      string          `json:"error,omitempty"`
	Cost       int64           `json:"cost"`
	DurationMS int64           `json:"duration_ms"`
	Artifacts  []Artifact      `json:"artifacts,omitempty"`
	Confidence float64         `json:"confidence,omitempty"`
	TaskOutput *TaskOutput     `json:"task_output,omitempty"`
}

// SelfReport is an agent's advisory self-check of its own Result. It is a
// claim, not a verdict: only the independent verifier's VerifiedOutcome may
// decide pass/fail.
type SelfReport struct {
	Claimed   bool      `json:"claimed"`
	Notes     []string  `json:"notes,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
