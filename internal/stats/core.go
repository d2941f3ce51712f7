package stats

import (
	"math"

	"github.com/runlab/unwrapped/internal/record"
)

// CoreStats holds the headline counters for one scope (the
// whole workspace or a single project).
type CoreStats struct {
	TotalRuns         int            `json:"total_runs"`
	SuccessfulRuns    int            `json:"successful_runs"`
	FailedRuns        int            `json:"failed_runs"`
	SuccessRate       float64        `json:"success_rate"`
	UniquePipelines   int            `json:"unique_pipelines"`
	UniqueUsers       int            `json:"unique_users"`
	ArtifactsProduced int            `json:"artifacts_produced"`
	ModelsCreated     int            `json:"models_created"`
	ModelVersions     int            `json:"model_versions"`
	TotalStacks       int            `json:"total_stacks"`
	ActiveSchedules   int            `json:"active_schedules"`
	ActiveServices    int            `json:"active_services"`
	StatusBreakdown   map[string]int `json:"status_breakdown"`
}

// round1 rounds to one decimal place, the precision used for
// every percentage and average in the report.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// successRate computes completed/total*100 rounded to one
// decimal. Zero total yields 0, never a division error.
func successRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(completed) / float64(total) * 100)
}

// ComputeCoreStats runs the single-pass counters over a record
// set. Runs are assumed pre-filtered to the target year at
// fetch time; artifacts and models are year-filtered here by
// their created timestamps. The scope parameter-free design
// means workspace mode and per-project mode share this path.
func ComputeCoreStats(
	set record.Set, year int, maps PipelineMaps,
) CoreStats {
	stats := CoreStats{
		StatusBreakdown: make(map[string]int),
		TotalRuns:       len(set.Runs),
		TotalStacks:     set.Stacks,
	}

	pipelineIDs := make(map[string]bool)
	userIDs := make(map[string]bool)

	for _, run := range set.Runs {
		stats.StatusBreakdown[run.Status]++

		if id, _ := maps.ResolvePipeline(run); id != "" {
			pipelineIDs[id] = true
		}
		if uid := ResolveUser(run); uid != "" {
			userIDs[uid] = true
		}
	}

	stats.SuccessfulRuns = stats.StatusBreakdown[record.StatusCompleted]
	stats.FailedRuns = stats.StatusBreakdown[record.StatusFailed]
	stats.SuccessRate = successRate(stats.SuccessfulRuns, stats.TotalRuns)
	stats.UniquePipelines = len(pipelineIDs)
	stats.UniqueUsers = len(userIDs)

	for _, a := range set.Artifacts {
		if record.InYear(a.Created, year) {
			stats.ArtifactsProduced++
		}
	}
	for _, m := range set.Models {
		if record.InYear(m.Created, year) {
			stats.ModelsCreated++
			stats.ModelVersions += m.VersionCount()
		}
	}
	for _, s := range set.Schedules {
		if s.Active {
			stats.ActiveSchedules++
		}
	}
	for _, s := range set.Services {
		if s.Active() {
			stats.ActiveServices++
		}
	}

	return stats
}
