// Command mkfixture writes a synthetic workspace snapshot for
// demos and manual testing of the report pipeline.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
)

type projectSpec struct {
	name     string
	display  string
	runs     int
	failRate float64
}

var specs = []projectSpec{
	{"fraud-detection", "Fraud Detection", 420, 0.08},
	{"churn-model", "Churn Model", 180, 0.22},
	{"feature-store", "Feature Store", 90, 0.05},
	{"llm-eval", "LLM Eval", 35, 0.4},
}

var userNames = []struct {
	name, full string
	service    bool
}{
	{"ada", "Ada Lovelace", false},
	{"grace", "Grace Hopper", false},
	{"linus", "Linus T", false},
	{"ci-bot", "CI Bot", true},
}

func main() {
	out := flag.String("out", "", "output snapshot path")
	year := flag.Int("year", time.Now().Year(), "snapshot year")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()
	if *out == "" {
		fmt.Fprintln(os.Stderr, "usage: mkfixture -out <path>")
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(*seed))

	users := make([]map[string]any, 0, len(userNames))
	userIDs := make([]string, 0, len(userNames))
	for _, u := range userNames {
		id := uuid.NewString()
		userIDs = append(userIDs, id)
		users = append(users, map[string]any{
			"id":                 id,
			"name":               u.name,
			"full_name":          u.full,
			"is_service_account": u.service,
		})
	}

	projects := make([]map[string]any, 0, len(specs))
	for _, spec := range specs {
		projects = append(projects,
			buildProject(rng, spec, *year, userIDs))
	}

	snap := map[string]any{
		"workspace": "acme-ml",
		"year":      *year,
		"users":     users,
		"projects":  projects,
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		log.Fatalf("marshaling snapshot: %v", err)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Fatalf("writing snapshot: %v", err)
	}

	total := 0
	for _, spec := range specs {
		total += spec.runs
	}
	fmt.Printf("wrote %d runs across %d projects to %s\n",
		total, len(specs), *out)
}

func buildProject(
	rng *rand.Rand, spec projectSpec, year int, userIDs []string,
) map[string]any {
	pipelineCount := 2 + rng.Intn(3)
	pipelines := make([]map[string]any, 0, pipelineCount)
	pipelineIDs := make([]string, 0, pipelineCount)
	for i := 0; i < pipelineCount; i++ {
		id := uuid.NewString()
		pipelineIDs = append(pipelineIDs, id)
		pipelines = append(pipelines, map[string]any{
			"id":   id,
			"name": fmt.Sprintf("%s-pipeline-%d", spec.name, i+1),
		})
	}

	runs := make([]map[string]any, 0, spec.runs)
	for i := 0; i < spec.runs; i++ {
		status := "completed"
		if rng.Float64() < spec.failRate {
			status = "failed"
		}
		created := time.Date(
			year, time.Month(1+rng.Intn(12)), 1+rng.Intn(28),
			rng.Intn(24), rng.Intn(60), 0, 0, time.UTC,
		)
		pi := rng.Intn(len(pipelineIDs))
		runs = append(runs, map[string]any{
			"id":      uuid.NewString(),
			"status":  status,
			"created": created.Format(time.RFC3339),
			"user_id": userIDs[rng.Intn(len(userIDs))],
			"pipeline": map[string]any{
				"id":   pipelineIDs[pi],
				"name": pipelines[pi]["name"],
			},
		})
	}

	models := []map[string]any{
		{
			"id":                 uuid.NewString(),
			"created":            fmt.Sprintf("%d-06-15T09:00:00Z", year),
			"number_of_versions": 3 + rng.Intn(10),
		},
		{
			"id":                  uuid.NewString(),
			"created":             fmt.Sprintf("%d-09-01T14:30:00Z", year),
			"latest_version_name": "v1",
		},
	}

	return map[string]any{
		"id":           uuid.NewString(),
		"name":         spec.name,
		"display_name": spec.display,
		"pipelines":    pipelines,
		"runs":         runs,
		"models":       models,
		"artifacts": []map[string]any{
			{
				"id":      uuid.NewString(),
				"created": fmt.Sprintf("%d-03-10T08:00:00Z", year),
			},
		},
		"schedules": []map[string]any{
			{"id": uuid.NewString(), "active": true},
			{"id": uuid.NewString(), "active": false},
		},
		"services": []map[string]any{
			{"id": uuid.NewString(), "state": "active"},
			{"id": uuid.NewString(), "state": "inactive"},
		},
		"stacks": 1 + rng.Intn(3),
	}
}
