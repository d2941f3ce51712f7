package stats

import (
	"sort"

	"github.com/runlab/unwrapped/internal/record"
)

// ProjectStat is the per-project aggregate: the same core
// counters as the workspace scope plus the monthly run
// distribution and its mean month-over-month growth.
type ProjectStat struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Core         CoreStats `json:"core_stats"`
	RunsPerMonth [12]int `json:"runs_per_month"`
	// Growth is the mean month-over-month percentage change in
	// run count across months with a nonzero prior month.
	Growth float64 `json:"mom_growth"`
}

// ComputeProjectStats aggregates each project through the same
// scope-agnostic core/time paths used for the workspace. Output
// is sorted descending by total runs, stable on ties.
func ComputeProjectStats(projects []record.Project, year int) []ProjectStat {
	stats := make([]ProjectStat, 0, len(projects))
	for _, p := range projects {
		maps := BuildPipelineMaps(p.Records.Pipelines)
		months := monthBuckets(p.Records.Runs)
		stats = append(stats, ProjectStat{
			ID:           p.ID,
			Name:         p.Label(),
			Core:         ComputeCoreStats(p.Records, year, maps),
			RunsPerMonth: months,
			Growth:       meanMonthlyGrowth(months),
		})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Core.TotalRuns > stats[j].Core.TotalRuns
	})
	return stats
}

// ProjectLeaderboards holds three independently ranked project
// name lists.
type ProjectLeaderboards struct {
	ByRuns        []string `json:"by_runs"`
	BySuccessRate []string `json:"by_success_rate"`
	ByUsers       []string `json:"by_users"`
}

// minRunsForRateRanking gates the success-rate leaderboard so a
// two-run project can't top it.
const minRunsForRateRanking = 10

// ComputeProjectLeaderboards ranks projects three ways. The
// success-rate board only considers projects with at least 10
// runs; when none qualify it falls back to the by-runs order.
// All sorts are stable on the already-by-runs-sorted input.
func ComputeProjectLeaderboards(stats []ProjectStat) ProjectLeaderboards {
	names := func(s []ProjectStat) []string {
		out := make([]string, len(s))
		for i, p := range s {
			out[i] = p.Name
		}
		return out
	}

	byRuns := make([]ProjectStat, len(stats))
	copy(byRuns, stats)
	sort.SliceStable(byRuns, func(i, j int) bool {
		return byRuns[i].Core.TotalRuns > byRuns[j].Core.TotalRuns
	})

	var qualified []ProjectStat
	for _, p := range stats {
		if p.Core.TotalRuns >= minRunsForRateRanking {
			qualified = append(qualified, p)
		}
	}
	byRate := names(byRuns)
	if len(qualified) > 0 {
		sort.SliceStable(qualified, func(i, j int) bool {
			return qualified[i].Core.SuccessRate > qualified[j].Core.SuccessRate
		})
		byRate = names(qualified)
	}

	byUsers := make([]ProjectStat, len(stats))
	copy(byUsers, stats)
	sort.SliceStable(byUsers, func(i, j int) bool {
		return byUsers[i].Core.UniqueUsers > byUsers[j].Core.UniqueUsers
	})

	return ProjectLeaderboards{
		ByRuns:        names(byRuns),
		BySuccessRate: byRate,
		ByUsers:       names(byUsers),
	}
}
