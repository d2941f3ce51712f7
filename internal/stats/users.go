package stats

import (
	"sort"

	"github.com/runlab/unwrapped/internal/record"
)

// UserStat is the per-user aggregate. DefaultAvgHour is the
// midday fallback when a user has no parseable timestamps.
const DefaultAvgHour = 12.0

// UserStat holds one user's aggregated run statistics.
type UserStat struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	FullName        string  `json:"full_name"`
	Avatar          string  `json:"avatar"`
	TotalRuns       int     `json:"total_runs"`
	FailedRuns      int     `json:"failed_runs"`
	CompletedRuns   int     `json:"completed_runs"`
	SuccessRate     float64 `json:"success_rate"`
	AvgHour         float64 `json:"avg_hour"`
	WeekendRuns     int     `json:"weekend_runs"`
	UniquePipelines int     `json:"unique_pipelines"`
}

// ComputeUserStats groups runs by resolved user ID and
// aggregates per user. Runs without a user reference, users
// missing from the user collection, and service accounts are
// dropped. Output is sorted descending by total run count with
// a stable sort, so ties keep encounter order.
func ComputeUserStats(
	runs []record.Run, users []record.User, maps PipelineMaps,
) []UserStat {
	userByID := make(map[string]record.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}

	runsByUser := make(map[string][]record.Run)
	var order []string // first-encounter order of user IDs
	for _, run := range runs {
		uid := ResolveUser(run)
		if uid == "" {
			continue
		}
		if _, seen := runsByUser[uid]; !seen {
			order = append(order, uid)
		}
		runsByUser[uid] = append(runsByUser[uid], run)
	}

	stats := make([]UserStat, 0, len(order))
	for _, uid := range order {
		user, known := userByID[uid]
		if !known || user.IsServiceAccount {
			continue
		}
		stats = append(stats, aggregateUser(uid, user, runsByUser[uid], maps))
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TotalRuns > stats[j].TotalRuns
	})
	return stats
}

// aggregateUser computes one user's stat line from their runs.
func aggregateUser(
	uid string, user record.User, runs []record.Run,
	maps PipelineMaps,
) UserStat {
	stat := UserStat{
		ID:        uid,
		TotalRuns: len(runs),
		Avatar:    user.AvatarURL,
	}

	// Display name fallback: full_name → name → truncated ID.
	stat.Name = user.Name
	if stat.Name == "" {
		stat.Name = record.ShortID(uid)
	}
	stat.FullName = user.FullName
	if stat.FullName == "" {
		stat.FullName = stat.Name
	}

	var hourSum int
	var hourCount int
	pipelineIDs := make(map[string]bool)

	for _, run := range runs {
		switch run.Status {
		case record.StatusFailed:
			stat.FailedRuns++
		case record.StatusCompleted:
			stat.CompletedRuns++
		}
		if run.Created != nil {
			hourSum += run.Created.Hour()
			hourCount++
			if isoWeekday(*run.Created) >= 5 {
				stat.WeekendRuns++
			}
		}
		if id, _ := maps.ResolvePipeline(run); id != "" {
			pipelineIDs[id] = true
		}
	}

	stat.SuccessRate = successRate(stat.CompletedRuns, stat.TotalRuns)
	stat.AvgHour = DefaultAvgHour
	if hourCount > 0 {
		stat.AvgHour = round1(float64(hourSum) / float64(hourCount))
	}
	stat.UniquePipelines = len(pipelineIDs)

	return stat
}
