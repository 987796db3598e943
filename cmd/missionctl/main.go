package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"missionforge/internal/app"
	"missionforge/internal/config"
	"missionforge/internal/pipeline"
)

func main() {
	user := flag.String("user", "local", "wallet id to bill")
	credit := flag.Int64("credit", 0, "credit the wallet before running (0 skips)")
	outDir := flag.String("out", "out", "output directory for the mission record")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	missionText := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if missionText == "" {
		log.Fatal("usage: missionctl [flags] <mission text>")
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	a, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer a.Close()

	if *credit > 0 {
		if err := a.Creditor.Credit(ctx, *user, *credit); err != nil {
			log.Fatal(err)
		}
		log.Printf("credited %d to wallet %s", *credit, *user)
	}

	a.Pipeline.OnTransition = func(st *pipeline.State) {
		log.Printf("mission %s moved to %s", st.ID, st.Status)
	}

	out, err := a.Coordinator.Run(ctx, *user, missionText)
	if err != nil {
		log.Fatal(err)
	}
	writeJSON(*outDir, "mission_"+out.MissionID+".json", out)

	if out.Pipeline.Status == pipeline.StatusRejected {
		log.Printf("mission rejected: %s", out.Pipeline.Error)
		os.Exit(1)
	}
	fmt.Printf("mission %s completed, verified=%v\n", out.MissionID, out.Succeeded())
	if out.Pipeline.Result != nil {
		for _, art := range out.Pipeline.Result.Artifacts {
			fmt.Printf("  artifact %s (%s)\n", art.Name, art.Type)
		}
	}
}

func writeJSON(dir, name string, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	if err := os.WriteFile(filepath.Join(dir, name), b, 0o644); err != nil {
		log.Printf("write %s: %v", name, err)
	}
}
