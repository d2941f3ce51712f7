package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeAwards_Empty(t *testing.T) {
	awards := ComputeAwards(nil)
	assert.Empty(t, awards)
}

func TestComputeAwards_PipelineOverlord(t *testing.T) {
	awards := ComputeAwards([]UserStat{
		{Name: "ada", FullName: "Ada Lovelace", TotalRuns: 30, AvgHour: 12},
		{Name: "grace", FullName: "Grace Hopper", TotalRuns: 10, AvgHour: 12},
	})

	overlord, ok := awards[AwardPipelineOverlord]
	require.True(t, ok)
	assert.Equal(t, "Ada Lovelace", overlord.User)
	assert.Equal(t, "ada", overlord.UserEmail)
	assert.Equal(t, "30 runs", overlord.Value)
}

func TestComputeAwards_FailureChampionThreshold(t *testing.T) {
	under := ComputeAwards([]UserStat{
		{Name: "ada", TotalRuns: 10, FailedRuns: 4, AvgHour: 12},
	})
	assert.NotContains(t, under, AwardFailureChampion,
		"four failures is below the bar")

	at := ComputeAwards([]UserStat{
		{Name: "ada", TotalRuns: 10, FailedRuns: 5, AvgHour: 12},
	})
	champ, ok := at[AwardFailureChampion]
	require.True(t, ok)
	assert.Equal(t, "5 failed runs", champ.Value)
}

func TestComputeAwards_SuccessStreak(t *testing.T) {
	awards := ComputeAwards([]UserStat{
		{Name: "dabbler", TotalRuns: 5, SuccessRate: 100, AvgHour: 12},
		{Name: "steady", TotalRuns: 25, SuccessRate: 92.5, AvgHour: 12},
		{Name: "busy", TotalRuns: 40, SuccessRate: 80, AvgHour: 12},
	})

	streak, ok := awards[AwardSuccessStreak]
	require.True(t, ok, "needs at least one user with 20+ runs")
	assert.Equal(t, "steady", streak.UserEmail,
		"perfect rate on too few runs does not qualify")
	assert.Equal(t, "92.5% success rate", streak.Value)
}

func TestComputeAwards_NightOwlIsMeanBased(t *testing.T) {
	// A mean start hour of 14.7 sits outside the night window
	// even when individual runs were late.
	none := ComputeAwards([]UserStat{
		{Name: "ada", TotalRuns: 3, AvgHour: 14.7},
	})
	assert.NotContains(t, none, AwardNightOwl)

	late := ComputeAwards([]UserStat{
		{Name: "ada", TotalRuns: 3, AvgHour: 14.7},
		{Name: "owl", TotalRuns: 3, AvgHour: 22.5},
	})
	award, ok := late[AwardNightOwl]
	require.True(t, ok)
	assert.Equal(t, "owl", award.UserEmail)
	assert.Equal(t, "Avg start time: 22:30", award.Value)
}

func TestComputeAwards_NightOwlEarlyMorningWindow(t *testing.T) {
	awards := ComputeAwards([]UserStat{
		{Name: "predawn", TotalRuns: 3, AvgHour: 3.0},
	})
	_, ok := awards[AwardNightOwl]
	assert.True(t, ok, "hours before 06:00 count as night")
}

func TestComputeAwards_EarlyBird(t *testing.T) {
	awards := ComputeAwards([]UserStat{
		{Name: "late", TotalRuns: 3, AvgHour: 11},
		{Name: "earliest", TotalRuns: 3, AvgHour: 5.5},
		{Name: "early", TotalRuns: 3, AvgHour: 8},
	})

	bird, ok := awards[AwardEarlyBird]
	require.True(t, ok)
	assert.Equal(t, "earliest", bird.UserEmail)
	assert.Equal(t, "Avg start time: 05:30", bird.Value)
}

func TestComputeAwards_WeekendWarriorNeedsWeekendRuns(t *testing.T) {
	none := ComputeAwards([]UserStat{
		{Name: "ada", TotalRuns: 10, AvgHour: 12},
	})
	assert.NotContains(t, none, AwardWeekendWarrior)

	some := ComputeAwards([]UserStat{
		{Name: "ada", TotalRuns: 10, WeekendRuns: 2, AvgHour: 12},
	})
	warrior, ok := some[AwardWeekendWarrior]
	require.True(t, ok)
	assert.Equal(t, "2 weekend runs", warrior.Value)
}

func TestComputeAwards_VarietyPackNeedsMoreThanOne(t *testing.T) {
	none := ComputeAwards([]UserStat{
		{Name: "ada", TotalRuns: 10, UniquePipelines: 1, AvgHour: 12},
	})
	assert.NotContains(t, none, AwardVarietyPack)

	some := ComputeAwards([]UserStat{
		{Name: "ada", TotalRuns: 10, UniquePipelines: 4, AvgHour: 12},
	})
	variety, ok := some[AwardVarietyPack]
	require.True(t, ok)
	assert.Equal(t, "4 different pipelines", variety.Value)
}

func TestComputeAwards_TiesGoToFirstInOrder(t *testing.T) {
	awards := ComputeAwards([]UserStat{
		{Name: "first", TotalRuns: 10, AvgHour: 12},
		{Name: "second", TotalRuns: 10, AvgHour: 12},
	})
	assert.Equal(t, "first", awards[AwardPipelineOverlord].UserEmail)
}

func TestComputeProjectAwards(t *testing.T) {
	awards := make(map[string]Award)
	ComputeProjectAwards(awards, []ProjectStat{
		{Name: "Fraud Detection",
			Core: CoreStats{TotalRuns: 1234}, Growth: 12.5},
		{Name: "Churn Model",
			Core: CoreStats{TotalRuns: 400}, Growth: 48.0},
		{Name: "Tiny", Core: CoreStats{TotalRuns: 5}, Growth: 300},
	})

	horse, ok := awards[AwardWorkhorse]
	require.True(t, ok)
	assert.Equal(t, "Fraud Detection", horse.Project)
	assert.Equal(t, "1,234 runs", horse.Value)

	star, ok := awards[AwardRisingStar]
	require.True(t, ok)
	assert.Equal(t, "Churn Model", star.Project,
		"growth only counts with 20+ runs")
	assert.Equal(t, "+48% MoM growth", star.Value)
}

func TestComputeProjectAwards_NoRisingStarWithoutGrowth(t *testing.T) {
	awards := make(map[string]Award)
	ComputeProjectAwards(awards, []ProjectStat{
		{Name: "Flat", Core: CoreStats{TotalRuns: 100}, Growth: 0},
		{Name: "Shrinking", Core: CoreStats{TotalRuns: 80}, Growth: -10},
	})

	assert.Contains(t, awards, AwardWorkhorse)
	assert.NotContains(t, awards, AwardRisingStar)
}

func TestClockValue(t *testing.T) {
	assert.Equal(t, "Avg start time: 05:30", clockValue(5.5))
	assert.Equal(t, "Avg start time: 18:15", clockValue(18.25))
	assert.Equal(t, "Avg start time: 00:00", clockValue(0))
}
