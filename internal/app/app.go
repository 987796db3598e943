// Package app wires configuration into a running orchestrator. Both the CLI
// and the API server build through here so backend selection (in-memory vs
// postgres, redis, s3) stays in one place.
package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"missionforge/internal/agent"
	"missionforge/internal/agents"
	"missionforge/internal/artifactstore"
	"missionforge/internal/billing"
	"missionforge/internal/classify"
	"missionforge/internal/config"
	"missionforge/internal/evolve"
	"missionforge/internal/llm"
	"missionforge/internal/mission"
	"missionforge/internal/pipeline"
	"missionforge/internal/verify"
)

// App is the assembled orchestrator with everything the entry points need.
type App struct {
	Coordinator *mission.Coordinator
	Pipeline    *pipeline.Pipeline
	Registry    *agent.Registry
	Ledger      billing.Ledger
	Creditor    interface {
		Credit(ctx context.Context, userID string, amount int64) error
	}

	closers []io.Closer
}

// Build assembles the orchestrator from configuration. Missing backends fall
// back to in-process implementations so a bare environment still works.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	var cli llm.Client
	if cfg.LLM.APIKey != "" {
		gem, err := llm.NewGeminiClient(ctx, cfg.LLM.APIKey, cfg.LLM.Model)
		if err != nil {
			return nil, fmt.Errorf("llm client: %w", err)
		}
		cli = llm.Wrap(gem,
			llm.Retry(3, 500*time.Millisecond),
			llm.Timeout(2*time.Minute),
			llm.WithLogging(log.Default()),
		)
		a.closers = append(a.closers, gem)
	} else {
		log.Printf("app: no GEMINI_API_KEY, running with the offline fake client")
		cli = llm.NewFakeClient()
	}

	var store artifactstore.Store
	if cfg.Artifact.Enabled {
		s3, err := artifactstore.NewS3Store(artifactstore.S3Config{
			Endpoint:  cfg.Artifact.Endpoint,
			Region:    cfg.Artifact.Region,
			AccessKey: cfg.Artifact.AccessKey,
			SecretKey: cfg.Artifact.SecretKey,
			Bucket:    cfg.Artifact.Bucket,
			UseSSL:    cfg.Artifact.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("artifact store: %w", err)
		}
		store = s3
	} else {
		local, err := artifactstore.NewLocalStore(cfg.Artifact.LocalRoot)
		if err != nil {
			return nil, fmt.Errorf("artifact store: %w", err)
		}
		store = local
	}

	a.Registry = agent.NewRegistry(agents.Populate(cli, store))
	if cfg.Roster != "" {
		roster, err := config.LoadRoster(cfg.Roster)
		if err != nil {
			return nil, err
		}
		installRoster(a.Registry, roster, cli)
	}

	if cfg.Database.DSN != "" {
		pg, err := billing.NewPostgresLedger(cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("ledger: %w", err)
		}
		a.Ledger = pg
		a.Creditor = pg
		a.closers = append(a.closers, pg)
	} else {
		mem := billing.NewMemoryLedger()
		a.Ledger = mem
		a.Creditor = mem
	}

	var patterns evolve.PatternStore
	if cfg.Redis.URL != "" {
		rs, err := evolve.NewRedisPatternStore(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("pattern store: %w", err)
		}
		patterns = rs
		a.closers = append(a.closers, rs)
	} else {
		patterns = evolve.NewMemoryPatternStore()
	}

	a.Pipeline = pipeline.New(cli, a.Ledger, a.Registry, pipeline.DefaultRunners(cli))

	verifier := verify.NewVerifier(a.Registry)
	verifier.WorkDir = cfg.WorkDir

	a.Coordinator = mission.NewCoordinator(
		classify.NewClassifier(cli),
		classify.NewMatcher(a.Registry),
		evolve.NewSynthesizer(cli, a.Registry, patterns),
		a.Pipeline,
		verifier,
	)
	return a, nil
}

func installRoster(reg *agent.Registry, roster *config.Roster, cli llm.Client) {
	for _, ra := range roster.Agents {
		reg.Register(agents.NewPromptAgent(ra.Name, ra.Description, ra.Capabilities, ra.Prompt, cli))
	}
	for _, rs := range roster.Skills {
		if err := reg.BindSkill(rs.Agent, agent.Skill{Name: rs.Name, Description: rs.Description}); err != nil {
			log.Printf("app: roster skill %q not bound: %v", rs.Name, err)
		}
	}
}

// Close releases backend connections in reverse acquisition order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			log.Printf("app: close: %v", err)
		}
	}
}
