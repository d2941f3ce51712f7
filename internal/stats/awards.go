package stats

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Award keys as they appear in the report's awards map.
const (
	AwardPipelineOverlord = "pipeline_overlord"
	AwardFailureChampion  = "failure_champion"
	AwardSuccessStreak    = "success_streak"
	AwardNightOwl         = "night_owl"
	AwardEarlyBird        = "early_bird"
	AwardWeekendWarrior   = "weekend_warrior"
	AwardVarietyPack      = "variety_pack"
	AwardWorkhorse        = "workhorse"
	AwardRisingStar       = "rising_star"
)

// Eligibility thresholds. An award is absent from the map when
// no candidate clears its threshold; there are no placeholder
// awards.
const (
	minFailuresForChampion = 5
	minRunsForStreak       = 20
	minRunsForRisingStar   = 20
	nightOwlStartHour      = 18.0
	nightOwlEndHour        = 6.0
	earlyBirdMinHour       = 5.0
	earlyBirdMaxHour       = 9.0
)

// Award is one rule-gated recognition.
type Award struct {
	Title       string `json:"title"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	User        string `json:"user,omitempty"`
	UserEmail   string `json:"user_email,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	Project     string `json:"project,omitempty"`
	Value       string `json:"value"`
}

// firstMax returns the index of the first element in input
// order whose score is maximal, or -1 for an empty slice. The
// strict comparison makes the selection stable: ties go to the
// earlier element.
func firstMax[T any](items []T, score func(T) float64) int {
	best := -1
	var bestScore float64
	for i, item := range items {
		s := score(item)
		if best == -1 || s > bestScore {
			best = i
			bestScore = s
		}
	}
	return best
}

// firstMin is firstMax with the comparison reversed.
func firstMin[T any](items []T, score func(T) float64) int {
	best := -1
	var bestScore float64
	for i, item := range items {
		s := score(item)
		if best == -1 || s < bestScore {
			best = i
			bestScore = s
		}
	}
	return best
}

// inNightWindow reports whether a mean start hour counts as
// late-night. The rule is mean-based, not majority-based: a
// user whose late runs average out to midday gets no award.
func inNightWindow(avgHour float64) bool {
	return avgHour >= nightOwlStartHour || avgHour <= nightOwlEndHour
}

// clockValue renders a fractional mean hour as an average start
// time string.
func clockValue(avgHour float64) string {
	hour := int(avgHour)
	minute := int((avgHour - float64(hour)) * 60)
	return fmt.Sprintf("Avg start time: %02d:%02d", hour, minute)
}

// userAward fills the user-identifying fields shared by every
// user-level award.
func userAward(title, icon, description string, u UserStat, value string) Award {
	return Award{
		Title:       title,
		Icon:        icon,
		Description: description,
		User:        u.FullName,
		UserEmail:   u.Name,
		Avatar:      u.Avatar,
		Value:       value,
	}
}

// ComputeAwards evaluates the user-level award rules over the
// ranked user stats. Each rule is independent; the map contains
// only awards whose eligibility predicate held.
func ComputeAwards(userStats []UserStat) map[string]Award {
	awards := make(map[string]Award)
	if len(userStats) == 0 {
		return awards
	}

	// Pipeline Overlord: most runs, unconditional.
	top := userStats[firstMax(userStats, func(u UserStat) float64 {
		return float64(u.TotalRuns)
	})]
	awards[AwardPipelineOverlord] = userAward(
		"Pipeline Overlord", "👑", "Ruled the pipeline kingdom",
		top, fmt.Sprintf("%d runs", top.TotalRuns),
	)

	// Failure Champion: most failures among users with >= 5.
	var failers []UserStat
	for _, u := range userStats {
		if u.FailedRuns >= minFailuresForChampion {
			failers = append(failers, u)
		}
	}
	if len(failers) > 0 {
		champ := failers[firstMax(failers, func(u UserStat) float64 {
			return float64(u.FailedRuns)
		})]
		awards[AwardFailureChampion] = userAward(
			"Failure Champion", "🔥", "Learning through iteration",
			champ, fmt.Sprintf("%d failed runs", champ.FailedRuns),
		)
	}

	// Success Streak: best rate among users with >= 20 runs.
	var seasoned []UserStat
	for _, u := range userStats {
		if u.TotalRuns >= minRunsForStreak {
			seasoned = append(seasoned, u)
		}
	}
	if len(seasoned) > 0 {
		reliable := seasoned[firstMax(seasoned, func(u UserStat) float64 {
			return u.SuccessRate
		})]
		awards[AwardSuccessStreak] = userAward(
			"Success Streak", "⭐", "The reliable one",
			reliable, fmt.Sprintf("%v%% success rate", reliable.SuccessRate),
		)
	}

	// Night Owl: maximize avg hour, scoring 0 outside the
	// night window; awarded only when the winner is in-window.
	owl := userStats[firstMax(userStats, func(u UserStat) float64 {
		if inNightWindow(u.AvgHour) {
			return u.AvgHour
		}
		return 0
	})]
	if inNightWindow(owl.AvgHour) {
		awards[AwardNightOwl] = userAward(
			"Night Owl", "🌙", "When everyone's asleep",
			owl, clockValue(owl.AvgHour),
		)
	}

	// Early Bird: earliest avg hour within 05:00-09:00.
	var early []UserStat
	for _, u := range userStats {
		if u.AvgHour >= earlyBirdMinHour && u.AvgHour <= earlyBirdMaxHour {
			early = append(early, u)
		}
	}
	if len(early) > 0 {
		bird := early[firstMin(early, func(u UserStat) float64 {
			return u.AvgHour
		})]
		awards[AwardEarlyBird] = userAward(
			"Early Bird", "🌅", "First to production",
			bird, clockValue(bird.AvgHour),
		)
	}

	// Weekend Warrior: most weekend runs, if anyone has any.
	warrior := userStats[firstMax(userStats, func(u UserStat) float64 {
		return float64(u.WeekendRuns)
	})]
	if warrior.WeekendRuns > 0 {
		awards[AwardWeekendWarrior] = userAward(
			"Weekend Warrior", "💪", "No rest for ML",
			warrior, fmt.Sprintf("%d weekend runs", warrior.WeekendRuns),
		)
	}

	// Variety Pack: most distinct pipelines, if more than one.
	variety := userStats[firstMax(userStats, func(u UserStat) float64 {
		return float64(u.UniquePipelines)
	})]
	if variety.UniquePipelines > 1 {
		awards[AwardVarietyPack] = userAward(
			"Variety Pack", "🎨", "Jack of all pipelines",
			variety, fmt.Sprintf("%d different pipelines", variety.UniquePipelines),
		)
	}

	return awards
}

// ComputeProjectAwards evaluates the project-level award rules
// and merges them into awards.
func ComputeProjectAwards(awards map[string]Award, projects []ProjectStat) {
	if len(projects) == 0 {
		return
	}

	// Workhorse: most runs, unconditional.
	horse := projects[firstMax(projects, func(p ProjectStat) float64 {
		return float64(p.Core.TotalRuns)
	})]
	awards[AwardWorkhorse] = Award{
		Title:       "Workhorse",
		Icon:        "🏗️",
		Description: "The project that never stopped",
		Project:     horse.Name,
		Value: fmt.Sprintf(
			"%s runs", humanize.Comma(int64(horse.Core.TotalRuns)),
		),
	}

	// Rising Star: best positive growth among projects with
	// >= 20 runs.
	var rising []ProjectStat
	for _, p := range projects {
		if p.Core.TotalRuns >= minRunsForRisingStar && p.Growth > 0 {
			rising = append(rising, p)
		}
	}
	if len(rising) > 0 {
		star := rising[firstMax(rising, func(p ProjectStat) float64 {
			return p.Growth
		})]
		awards[AwardRisingStar] = Award{
			Title:       "Rising Star",
			Icon:        "🚀",
			Description: "Fastest growing project",
			Project:     star.Name,
			Value:       fmt.Sprintf("+%v%% MoM growth", star.Growth),
		}
	}
}
