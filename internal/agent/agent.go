package agent

import "context"

// Mode marks how an agent instance is being run; used only for logging and
// telemetry, never for behavior.
type Mode string

const (
	ModeLive   Mode = "live"
	ModeReplay Mode = "replay"
)

// Agent is the three-phase contract every worker implements.
//
// Plan must be idempotent and side-effect free; it may call a
// text-generation service to draft steps but must fall back to a
// deterministic heuristic plan when generation fails. Execute performs the
// actual work and populates cost and duration even on failure. Verify is the
// agent's own advisory check; the system's trust boundary is the independent
// verifier, not this method.
type Agent interface {
	Name() string
	Description() string
	Capabilities() []string
	RequiredSkills() []string

	Plan(ctx context.Context, mc *MissionContext) (*Plan, error)
	Execute(ctx context.Context, plan *Plan, mc *MissionContext) (*Result, error)
	Verify(ctx context.Context, res *Result, mc *MissionContext) (*SelfReport, error)
}

// Skill is a named callable an agent can be bound to after deployment. The
// indirection lets the synthesizer inject freshly generated capability
// without redeploying the agent itself.
type Skill struct {
	Name        string
	Description string
	Run         func(ctx context.Context, payload []byte) ([]byte, error)
}
