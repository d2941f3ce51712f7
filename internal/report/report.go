// Package report assembles the final year-in-review object from
// the aggregation stages and writes it as JSON. The report's
// top-level keys are a stable contract consumed by the static
// "unwrapped" page; renaming one is a breaking change.
package report

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/runlab/unwrapped/internal/record"
	"github.com/runlab/unwrapped/internal/stats"
)

// WorkspaceMeta describes the multi-project workspace the
// report covers.
type WorkspaceMeta struct {
	Name     string `json:"name"`
	Projects int    `json:"projects"`
}

// Report is the complete in-memory report object. FunFacts is a
// flat []string in single-workspace mode and a
// stats.FunFacts{specific, generic} pair in multi-project mode.
type Report struct {
	GeneratedAt   string               `json:"generated_at"`
	Year          int                  `json:"year"`
	CoreStats     stats.CoreStats      `json:"core_stats"`
	TimeAnalytics stats.TimeAnalytics  `json:"time_analytics"`
	Users         []stats.UserStat     `json:"users"`
	TopPipelines  []stats.PipelineCount `json:"top_pipelines"`
	Awards        map[string]stats.Award `json:"awards"`
	FunFacts      any                  `json:"fun_facts"`

	// Multi-project mode only.
	Projects     []stats.ProjectStat        `json:"projects,omitempty"`
	Leaderboards *stats.ProjectLeaderboards `json:"project_leaderboards,omitempty"`
	Workspace    *WorkspaceMeta             `json:"workspace,omitempty"`
	Anonymized   *stats.AnonymizationMap    `json:"anonymized,omitempty"`
}

// Build computes the full report from a snapshot. The rng
// drives only the anonymization shuffle; now stamps
// generated_at. Everything else is a pure function of the
// snapshot.
func Build(
	snap record.Snapshot, year int, rng *rand.Rand, now time.Time,
) Report {
	if year == 0 {
		year = snap.Year
	}
	if year == 0 {
		year = now.Year()
	}

	all := snap.AllRecords()
	maps := stats.BuildPipelineMaps(all.Pipelines)

	core := stats.ComputeCoreStats(all, year, maps)
	analytics := stats.ComputeTimeAnalytics(all.Runs)
	users := stats.ComputeUserStats(all.Runs, all.Users, maps)
	top := stats.ComputeTopPipelines(all.Runs, maps)
	awards := stats.ComputeAwards(users)

	rep := Report{
		GeneratedAt:   now.UTC().Format(time.RFC3339),
		Year:          year,
		CoreStats:     core,
		TimeAnalytics: analytics,
		Users:         users,
		TopPipelines:  top,
		Awards:        awards,
	}

	if !snap.MultiProject() {
		facts := stats.ComputeFunFacts(core, analytics, top, "", year)
		rep.FunFacts = facts.Specific
		return rep
	}

	projects := stats.ComputeProjectStats(snap.Projects, year)
	boards := stats.ComputeProjectLeaderboards(projects)
	stats.ComputeProjectAwards(awards, projects)

	leading := ""
	if len(projects) > 0 && projects[0].Core.TotalRuns > 0 {
		leading = projects[0].Name
	}
	facts := stats.ComputeFunFacts(core, analytics, top, leading, year)

	projectNames := make([]string, 0, len(projects))
	for _, p := range projects {
		projectNames = append(projectNames, p.Name)
	}
	pipelineNames := make([]string, 0, len(all.Pipelines))
	for _, p := range all.Pipelines {
		pipelineNames = append(pipelineNames, p.Name)
	}
	anon := stats.BuildAnonymizationMap(projectNames, pipelineNames, rng)

	rep.FunFacts = facts
	rep.Projects = projects
	rep.Leaderboards = &boards
	rep.Workspace = &WorkspaceMeta{
		Name:     snap.Workspace,
		Projects: len(snap.Projects),
	}
	rep.Anonymized = &anon
	return rep
}

// Write marshals the report with indentation and writes it to
// path, creating parent directories as needed.
func Write(rep Report, path string) error {
	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
