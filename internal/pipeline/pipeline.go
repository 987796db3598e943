package pipeline

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"missionforge/internal/agent"
	"missionforge/internal/billing"
	"missionforge/internal/llm"
)

// Status enumerates the pipeline states. No state is revisited; REJECTED is
// terminal from any stage.
type Status string

const (
	StatusStarting  Status = "starting"
	StatusPlanned   Status = "PLANNED"
	StatusApproved  Status = "APPROVED"
	StatusCompleted Status = "COMPLETED"
	StatusRejected  Status = "REJECTED"
)

// Spec is the Architect's structured conversion of mission text.
type Spec struct {
	Tool      Tool            `json:"-"`
	ToolName  string          `json:"tool"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Reasoning string          `json:"reasoning,omitempty"`
}

// State is one mission's trip through the pipeline.
type State struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	MissionText string           `json:"mission_text"`
	Status      Status           `json:"status"`
	History     []Status         `json:"history"`
	Spec        *Spec            `json:"spec,omitempty"`
	Receipt     *billing.Receipt `json:"receipt,omitempty"`
	Result      *agent.Result    `json:"result,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// ToolRunner executes one direct (non-agent) tool. Implementations wrap
// external collaborators; the pipeline only needs this contract.
type ToolRunner interface {
	Run(ctx context.Context, payload json.RawMessage) (*agent.Result, error)
}

// AgentSource resolves agent names for the overseer.
type AgentSource interface {
	Get(name string) (agent.Agent, bool)
}

// Pipeline is the three-node state machine: Architect, Billing Gate,
// Executor, with conditional edges so a rejected stage short-circuits to
// termination. There is no retry loop inside; retries happen one level up
// by re-invoking the whole pipeline.
type Pipeline struct {
	llm    llm.Client
	ledger billing.Ledger
	agents AgentSource
	tools  map[ToolKind]ToolRunner

	// OnTransition, when set, observes every status change.
	OnTransition func(st *State)
}

func New(cli llm.Client, ledger billing.Ledger, agents AgentSource, tools map[ToolKind]ToolRunner) *Pipeline {
	if tools == nil {
		tools = map[ToolKind]ToolRunner{}
	}
	return &Pipeline{llm: cli, ledger: ledger, agents: agents, tools: tools}
}

// Run drives one mission through all three stages.
func (p *Pipeline) Run(ctx context.Context, userID, missionText string) *State {
	st := &State{
		ID:          uuid.NewString(),
		UserID:      userID,
		MissionText: missionText,
	}
	p.transition(st, StatusStarting)

	if !p.architect(ctx, st) {
		return st
	}
	if !p.billingGate(ctx, st) {
		return st
	}
	p.execute(ctx, st)
	return st
}

func (p *Pipeline) transition(st *State, s Status) {
	st.Status = s
	st.History = append(st.History, s)
	log.Printf("mission %s: %s", st.ID, s)
	if p.OnTransition != nil {
		p.OnTransition(st)
	}
}

func (p *Pipeline) reject(st *State, msg string) bool {
	st.Error = msg
	p.transition(st, StatusRejected)
	return false
}

// execute dispatches the approved spec. Execution errors are converted into
// a failed Result and never crash the pipeline.
func (p *Pipeline) execute(ctx context.Context, st *State) {
	if st.Spec == nil {
		st.Result = &agent.Result{}
		p.transition(st, StatusCompleted)
		return
	}

	var res *agent.Result
	if st.Spec.Tool.Kind == ToolAgent {
		res = p.oversee(ctx, st.Spec.Tool.Agent, st)
	} else {
		res = p.runDirect(ctx, st)
	}
	st.Result = res
	p.transition(st, StatusCompleted)
}

func (p *Pipeline) runDirect(ctx context.Context, st *State) *agent.Result {
	runner, ok := p.tools[st.Spec.Tool.Kind]
	if !ok {
		return &agent.Result{Error: "no runner for tool " + st.Spec.Tool.String()}
	}
	start := time.Now()
	res, err := runner.Run(ctx, st.Spec.Payload)
	if err != nil {
		return &agent.Result{
			Error:      err.Error(),
			Cost:       int64(st.Spec.Tool.CostClass()),
			DurationMS: time.Since(start).Milliseconds(),
		}
	}
	if res == nil {
		res = &agent.Result{}
	}
	return res
}

// oversee is the uniform delegation path for agent:* tools: run the target
// agent's full plan, execute, verify cycle and fold its artifacts into the
// pipeline result.
func (p *Pipeline) oversee(ctx context.Context, name string, st *State) (res *agent.Result) {
	start := time.Now()
	defer func() {
		// An agent panic is an execution error, not a pipeline crash.
		if r := recover(); r != nil {
			res = &agent.Result{
				Error:      "agent panicked",
				DurationMS: time.Since(start).Milliseconds(),
			}
		}
	}()

	target, ok := p.agents.Get(name)
	if !ok {
		return &agent.Result{Error: "unknown agent " + name}
	}
	mc := &agent.MissionContext{
		MissionID:   st.ID,
		UserID:      st.UserID,
		MissionText: st.MissionText,
	}
	plan, err := target.Plan(ctx, mc)
	if err != nil {
		return &agent.Result{Error: "planning failed: " + err.Error(), DurationMS: time.Since(start).Milliseconds()}
	}
	if err := agent.ValidatePlan(plan); err != nil {
		return &agent.Result{Error: "invalid plan: " + err.Error(), DurationMS: time.Since(start).Milliseconds()}
	}
	out, err := target.Execute(ctx, plan, mc)
	if err != nil {
		return &agent.Result{Error: err.Error(), DurationMS: time.Since(start).Milliseconds()}
	}
	if out == nil {
		out = &agent.Result{}
	}
	// The agent's self-check is advisory telemetry only; the independent
	// verifier decides pass/fail one level up.
	if report, err := target.Verify(ctx, out, mc); err == nil && report != nil && !report.Claimed {
		log.Printf("mission %s: agent %s does not claim success", st.ID, name)
	}
	return out
}
