package verify

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"missionforge/internal/agent"
	"missionforge/internal/jsonutil"
)

// VisualQualityThreshold is the minimum delegated quality score (0-100)
// for a visual_quality criterion to pass. Strictly >= .
const VisualQualityThreshold = 85.0

// AgentSource is the one-directional registry dependency: the verifier
// looks agents up here, and nothing in the registry may depend back on
// this package.
type AgentSource interface {
	Get(name string) (agent.Agent, bool)
}

// Check is the re-derived outcome of a single criterion or output.
type Check struct {
	Name    string `json:"name"`
	Target  string `json:"target,omitempty"`
	Passed  bool   `json:"passed"`
	Skipped bool   `json:"skipped,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Report is a VerifiedOutcome: the only pass/fail verdict the system
// trusts. Passed is the logical AND of all checks and is never defaulted
// to true; an empty check set passes vacuously.
type Report struct {
	Passed          bool     `json:"passed"`
	Checks          []Check  `json:"checks"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// Verifier re-derives pass/fail from primary evidence. It never reads a
// producing agent's own success flag.
type Verifier struct {
	agents AgentSource

	// WorkDir is the secondary root for relative path resolution. Empty
	// means the process working directory.
	WorkDir string

	// VisualAgent names the delegated visual-quality collaborator.
	VisualAgent string

	// VisualTimeout bounds the delegated plan-then-execute cycle, which would
	// otherwise run unbounded.
	VisualTimeout time.Duration
}

func NewVerifier(agents AgentSource) *Verifier {
	return &Verifier{
		agents:        agents,
		VisualAgent:   "designcritic",
		VisualTimeout: 90 * time.Second,
	}
}

// Verify audits a Result. Without a structured task output it falls back to
// checking that every file-typed artifact exists. With one, it checks every
// declared output and completion criterion. Individual check errors are
// recorded as failures and never abort the remaining checks.
func (v *Verifier) Verify(ctx context.Context, res *agent.Result, mc *agent.MissionContext) *Report {
	rep := &Report{}
	if res == nil {
		rep.Checks = append(rep.Checks, Check{Name: "result_present", Passed: false, Detail: "no result to verify"})
		rep.finish()
		return rep
	}

	if res.TaskOutput == nil {
		for _, a := range res.Artifacts {
			if a.Type != agent.ArtifactFile {
				continue
			}
			rep.Checks = append(rep.Checks, v.checkFileExists("artifact_file", a.Value))
		}
		rep.finish()
		return rep
	}

	for _, out := range res.TaskOutput.Outputs {
		switch out.Type {
		case "file":
			rep.Checks = append(rep.Checks, v.checkFileExists("output_file", out.Path))
		case "test":
			// TODO: read the machine-readable test report once executors emit one.
			rep.Checks = append(rep.Checks, Check{Name: "output_test", Target: out.Path, Passed: true, Detail: "test output accepted without report"})
		default:
			log.Printf("verify: unchecked output type %q (%s)", out.Type, out.Path)
			rep.Checks = append(rep.Checks, Check{Name: "output_" + out.Type, Target: out.Path, Passed: true, Detail: "unchecked output type"})
		}
	}

	for _, cr := range res.TaskOutput.Criteria {
		rep.Checks = append(rep.Checks, v.checkCriterion(ctx, cr))
	}

	rep.finish()
	return rep
}

func (rep *Report) finish() {
	passed := true
	for _, c := range rep.Checks {
		if !c.Passed {
			passed = false
			break
		}
	}
	rep.Passed = passed
	if !passed {
		rep.Recommendations = append(rep.Recommendations, "re-run the producing agent or inspect failed checks")
	}
}

func (v *Verifier) checkCriterion(ctx context.Context, cr agent.CompletionCriterion) (out Check) {
	defer func() {
		// A delegated agent may panic; record it as a failed check rather
		// than aborting the remaining ones.
		if r := recover(); r != nil {
			out = Check{Name: string(cr.Type), Target: cr.Target, Passed: false, Detail: fmt.Sprintf("check panicked: %v", r)}
		}
	}()

	switch cr.Type {
	case agent.CriterionFileExists:
		return v.checkFileExists(string(cr.Type), cr.Target)
	case agent.CriterionContentContains:
		return v.checkContentContains(cr)
	case agent.CriterionVisualQuality:
		return v.checkVisualQuality(ctx, cr)
	default:
		// Deliberate leniency: unknown criterion types pass by default.
		// Tightening this requires flagging, not silent removal.
		log.Printf("verify: skipping unknown criterion type %q", cr.Type)
		return Check{Name: string(cr.Type), Target: cr.Target, Passed: true, Skipped: true, Detail: "unknown criterion type, skipped"}
	}
}

// resolve tries the path as given, then relative to WorkDir, and returns
// the first that exists.
func (v *Verifier) resolve(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	if _, err := os.Stat(path); err == nil {
		return path, true
	}
	root := v.WorkDir
	if root == "" {
		root, _ = os.Getwd()
	}
	joined := filepath.Join(root, path)
	if _, err := os.Stat(joined); err == nil {
		return joined, true
	}
	return "", false
}

func (v *Verifier) checkFileExists(name, target string) Check {
	if _, ok := v.resolve(target); ok {
		return Check{Name: name, Target: target, Passed: true}
	}
	return Check{Name: name, Target: target, Passed: false, Detail: "file missing: " + target}
}

func (v *Verifier) checkContentContains(cr agent.CompletionCriterion) Check {
	path, ok := v.resolve(cr.Target)
	if !ok {
		return Check{Name: string(cr.Type), Target: cr.Target, Passed: false, Detail: "file missing: " + cr.Target}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Check{Name: string(cr.Type), Target: cr.Target, Passed: false, Detail: "read failed: " + err.Error()}
	}
	if strings.Contains(string(b), cr.Expected) {
		return Check{Name: string(cr.Type), Target: cr.Target, Passed: true}
	}
	return Check{Name: string(cr.Type), Target: cr.Target, Passed: false, Detail: fmt.Sprintf("content does not contain %q", cr.Expected)}
}

// checkVisualQuality delegates to the named collaborator agent and accepts
// only when its reported qualityScore meets the threshold.
func (v *Verifier) checkVisualQuality(ctx context.Context, cr agent.CompletionCriterion) Check {
	name := string(cr.Type)
	critic, ok := v.agents.Get(v.VisualAgent)
	if !ok {
		return Check{Name: name, Target: cr.Target, Passed: false, Detail: "visual-quality agent unavailable"}
	}

	if v.VisualTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.VisualTimeout)
		defer cancel()
	}

	mc := &agent.MissionContext{MissionText: "Audit visual quality of " + cr.Target}
	plan, err := critic.Plan(ctx, mc)
	if err != nil {
		return Check{Name: name, Target: cr.Target, Passed: false, Detail: "audit planning failed: " + err.Error()}
	}
	res, err := critic.Execute(ctx, plan, mc)
	if err != nil || res == nil {
		return Check{Name: name, Target: cr.Target, Passed: false, Detail: fmt.Sprintf("audit execution failed: %v", err)}
	}

	var data struct {
		QualityScore float64 `json:"qualityScore"`
	}
	if len(res.Data) == 0 || jsonutil.UnmarshalLoose(res.Data, &data) != nil {
		return Check{Name: name, Target: cr.Target, Passed: false, Detail: "audit returned no quality score"}
	}
	if data.QualityScore >= VisualQualityThreshold {
		return Check{Name: name, Target: cr.Target, Passed: true, Detail: fmt.Sprintf("quality %.0f", data.QualityScore)}
	}
	return Check{Name: name, Target: cr.Target, Passed: false, Detail: fmt.Sprintf("quality %.0f below threshold %.0f", data.QualityScore, VisualQualityThreshold)}
}
