package report

import (
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runlab/unwrapped/internal/record"
	"github.com/runlab/unwrapped/internal/stats"
)

var fixedNow = time.Date(2025, 12, 31, 18, 0, 0, 0, time.UTC)

func ts(year int, month time.Month, day, hour int) *time.Time {
	t := time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
	return &t
}

func singleSnapshot() record.Snapshot {
	return record.Snapshot{
		Workspace: "acme",
		Year:      2025,
		Records: record.Set{
			Runs: []record.Run{
				{ID: "r1", Status: "completed", PipelineID: "p1",
					PipelineName: "train", UserID: "u1",
					Created: ts(2025, 3, 1, 20)},
				{ID: "r2", Status: "completed", PipelineID: "p1",
					PipelineName: "train", UserID: "u1",
					Created: ts(2025, 3, 1, 22)},
				{ID: "r3", Status: "failed", PipelineID: "p2",
					PipelineName: "deploy", UserID: "u1",
					Created: ts(2025, 3, 2, 2)},
			},
			Pipelines: []record.Pipeline{
				{ID: "p1", Name: "train"},
				{ID: "p2", Name: "deploy"},
			},
			Users: []record.User{
				{ID: "u1", Name: "ada", FullName: "Ada Lovelace"},
			},
		},
	}
}

func multiSnapshot() record.Snapshot {
	mkRuns := func(n int, pipelineID, name, userID string) []record.Run {
		runs := make([]record.Run, n)
		for i := range runs {
			runs[i] = record.Run{
				Status:       "completed",
				PipelineID:   pipelineID,
				PipelineName: name,
				UserID:       userID,
				Created: ts(2025, time.Month(1+i%6), 10, 14),
			}
		}
		return runs
	}
	return record.Snapshot{
		Workspace: "acme",
		Year:      2025,
		Records: record.Set{
			Users: []record.User{
				{ID: "u1", Name: "ada", FullName: "Ada Lovelace"},
				{ID: "u2", Name: "grace", FullName: "Grace Hopper"},
			},
		},
		Projects: []record.Project{
			{
				ID: "proj1", Name: "fraud", DisplayName: "Fraud Detection",
				Records: record.Set{
					Runs: mkRuns(30, "p1", "train", "u1"),
					Pipelines: []record.Pipeline{
						{ID: "p1", Name: "train", ProjectID: "proj1"},
					},
				},
			},
			{
				ID: "proj2", Name: "churn",
				Records: record.Set{
					Runs: mkRuns(10, "p2", "score", "u2"),
					Pipelines: []record.Pipeline{
						{ID: "p2", Name: "score", ProjectID: "proj2"},
					},
				},
			},
		},
	}
}

func TestBuild_SingleWorkspace(t *testing.T) {
	rep := Build(singleSnapshot(), 2025,
		rand.New(rand.NewSource(1)), fixedNow)

	assert.Equal(t, "2025-12-31T18:00:00Z", rep.GeneratedAt)
	assert.Equal(t, 2025, rep.Year)
	assert.Equal(t, 3, rep.CoreStats.TotalRuns)
	assert.Equal(t, 66.7, rep.CoreStats.SuccessRate)

	require.Len(t, rep.Users, 1)
	assert.Equal(t, "Ada Lovelace", rep.Users[0].FullName)

	facts, ok := rep.FunFacts.([]string)
	require.True(t, ok, "single mode emits a flat fact list")
	assert.NotEmpty(t, facts)

	assert.Nil(t, rep.Leaderboards)
	assert.Nil(t, rep.Workspace)
	assert.Nil(t, rep.Anonymized)
	assert.Empty(t, rep.Projects)
}

func TestBuild_MultiProject(t *testing.T) {
	rep := Build(multiSnapshot(), 2025,
		rand.New(rand.NewSource(1)), fixedNow)

	assert.Equal(t, 40, rep.CoreStats.TotalRuns,
		"projects roll up into the workspace totals")
	assert.Equal(t, 2, rep.CoreStats.UniqueUsers)

	require.Len(t, rep.Projects, 2)
	assert.Equal(t, "Fraud Detection", rep.Projects[0].Name,
		"sorted by runs")

	require.NotNil(t, rep.Leaderboards)
	assert.Equal(t, []string{"Fraud Detection", "churn"},
		rep.Leaderboards.ByRuns)

	require.NotNil(t, rep.Workspace)
	assert.Equal(t, "acme", rep.Workspace.Name)
	assert.Equal(t, 2, rep.Workspace.Projects)

	require.NotNil(t, rep.Anonymized)
	assert.Len(t, rep.Anonymized.Projects, 2)
	assert.Len(t, rep.Anonymized.Pipelines, 2)

	facts, ok := rep.FunFacts.(stats.FunFacts)
	require.True(t, ok, "multi mode emits the specific/generic pair")
	assert.Equal(t, len(facts.Specific), len(facts.Generic))

	horse, ok := rep.Awards[stats.AwardWorkhorse]
	require.True(t, ok)
	assert.Equal(t, "Fraud Detection", horse.Project)
}

func TestBuild_DeterministicExceptAnonymization(t *testing.T) {
	first := Build(multiSnapshot(), 2025,
		rand.New(rand.NewSource(5)), fixedNow)
	second := Build(multiSnapshot(), 2025,
		rand.New(rand.NewSource(5)), fixedNow)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("same inputs, different report (-first +second):\n%s", diff)
	}
}

func TestBuild_YearFallback(t *testing.T) {
	snap := singleSnapshot()

	rep := Build(snap, 0, rand.New(rand.NewSource(1)), fixedNow)
	assert.Equal(t, 2025, rep.Year, "snapshot year wins when flag unset")

	snap.Year = 0
	rep = Build(snap, 0, rand.New(rand.NewSource(1)), fixedNow)
	assert.Equal(t, fixedNow.Year(), rep.Year)
}

func TestBuild_EmptySnapshot(t *testing.T) {
	rep := Build(record.Snapshot{}, 2025,
		rand.New(rand.NewSource(1)), fixedNow)

	assert.Equal(t, 0, rep.CoreStats.TotalRuns)
	assert.Empty(t, rep.Users)
	assert.Empty(t, rep.Awards)
	facts, ok := rep.FunFacts.([]string)
	require.True(t, ok)
	assert.Empty(t, facts)

	// The list-valued keys stay arrays in JSON even when empty.
	out, err := json.Marshal(rep)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	for _, key := range []string{"fun_facts", "top_pipelines", "users"} {
		assert.IsType(t, []any{}, decoded[key], "%s must be [], not null", key)
	}
}

func TestWrite(t *testing.T) {
	rep := Build(singleSnapshot(), 2025,
		rand.New(rand.NewSource(1)), fixedNow)
	path := filepath.Join(t.TempDir(), "nested", "metrics.json")

	require.NoError(t, Write(rep, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	for _, key := range []string{
		"generated_at", "year", "core_stats", "time_analytics",
		"users", "top_pipelines", "awards", "fun_facts",
	} {
		assert.Contains(t, decoded, key)
	}
	assert.NotContains(t, decoded, "projects",
		"multi-project keys omitted in single mode")
	assert.NotContains(t, decoded, "workspace")
}
