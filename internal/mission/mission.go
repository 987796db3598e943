// Package mission coordinates a full mission lifecycle: classify the
// request, match it against the agent roster, synthesize capabilities for
// any gaps, run the execution pipeline, then verify the outcome with an
// independent checker and fold the episode into pattern memory.
package mission

import (
	"context"
	"log"

	"missionforge/internal/agent"
	"missionforge/internal/classify"
	"missionforge/internal/evolve"
	"missionforge/internal/pipeline"
	"missionforge/internal/verify"
)

// Outcome is the consolidated record of one mission run.
type Outcome struct {
	MissionID      string                   `json:"missionId"`
	Classification classify.Classification  `json:"classification"`
	Match          classify.CapabilityMatch `json:"match"`
	Evolution      *evolve.Outcome          `json:"evolution,omitempty"`
	Pipeline       *pipeline.State          `json:"pipeline"`
	Verification   *verify.Report           `json:"verification,omitempty"`
}

// Succeeded reports whether the mission both completed and passed the
// independent verification. A producer's own success flag never counts
// on its own.
func (o *Outcome) Succeeded() bool {
	return o.Pipeline != nil &&
		o.Pipeline.Status == pipeline.StatusCompleted &&
		o.Verification != nil &&
		o.Verification.Passed
}

// Coordinator wires the stages together. All collaborators are injected;
// the coordinator owns no state beyond them and is safe for concurrent
// use if its collaborators are.
type Coordinator struct {
	classifier  *classify.Classifier
	matcher     *classify.Matcher
	synthesizer *evolve.Synthesizer
	pipeline    *pipeline.Pipeline
	verifier    *verify.Verifier
}

func NewCoordinator(
	classifier *classify.Classifier,
	matcher *classify.Matcher,
	synthesizer *evolve.Synthesizer,
	pl *pipeline.Pipeline,
	verifier *verify.Verifier,
) *Coordinator {
	return &Coordinator{
		classifier:  classifier,
		matcher:     matcher,
		synthesizer: synthesizer,
		pipeline:    pl,
		verifier:    verifier,
	}
}

// Run drives a mission end to end. A rejected pipeline is a valid outcome,
// not an error; errors are reserved for infrastructure failures outside
// the mission's own control flow.
func (c *Coordinator) Run(ctx context.Context, userID, missionText string) (*Outcome, error) {
	cls := c.classifier.Classify(ctx, missionText)
	log.Printf("[mission] classified domain=%s complexity=%s intent=%q", cls.Domain, cls.Complexity, cls.Intent)

	match := c.matcher.Match(cls)
	out := &Outcome{Classification: cls, Match: match}

	if len(match.Gaps) > 0 && c.synthesizer != nil {
		log.Printf("[mission] %d capability gap(s), invoking synthesis", len(match.Gaps))
		evo := c.synthesizer.Fill(ctx, cls, match.Gaps)
		out.Evolution = &evo
		// Re-match so freshly installed agents and skills are visible
		// to the rest of the run.
		match = c.matcher.Match(cls)
		out.Match = match
	}

	st := c.pipeline.Run(ctx, userID, missionText)
	out.MissionID = st.ID
	out.Pipeline = st

	if st.Status == pipeline.StatusRejected {
		log.Printf("[mission] %s rejected: %s", st.ID, st.Error)
		c.record(ctx, out, false)
		return out, nil
	}

	mc := &agent.MissionContext{
		MissionID:   st.ID,
		UserID:      userID,
		MissionText: missionText,
	}
	out.Verification = c.verifier.Verify(ctx, st.Result, mc)
	log.Printf("[mission] %s verified passed=%v checks=%d", st.ID, out.Verification.Passed, len(out.Verification.Checks))

	c.record(ctx, out, out.Succeeded())
	return out, nil
}

func (c *Coordinator) record(ctx context.Context, out *Outcome, success bool) {
	if c.synthesizer == nil {
		return
	}
	var evo evolve.Outcome
	if out.Evolution != nil {
		evo = *out.Evolution
	}
	var learnings []string
	if out.Verification != nil {
		learnings = out.Verification.Recommendations
	}
	if err := c.synthesizer.Record(ctx, out.Classification, out.Match, evo, success, learnings); err != nil {
		log.Printf("[mission] pattern record failed: %v", err)
	}
}
