package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runlab/unwrapped/internal/record"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "snapshot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func ts(year int, month time.Month, day, hour int) *time.Time {
	t := time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
	return &t
}

func intp(n int) *int { return &n }

func testSnapshot() record.Snapshot {
	return record.Snapshot{
		Workspace: "acme",
		Year:      2025,
		Records: record.Set{
			Users: []record.User{
				{ID: "u1", Name: "ada", FullName: "Ada Lovelace",
					AvatarURL: "https://example.com/ada.png"},
				{ID: "bot", Name: "ci", IsServiceAccount: true},
			},
			Stacks: 2,
		},
		Projects: []record.Project{
			{
				ID: "proj1", Name: "fraud", DisplayName: "Fraud Detection",
				Records: record.Set{
					Runs: []record.Run{
						{ID: "r1", PipelineID: "p1", PipelineName: "train",
							UserID: "u1", Status: "completed",
							Created: ts(2025, 3, 1, 20)},
						{ID: "r2", ConfigName: "train", UserID: "u1",
							Status: "failed"}, // nil Created round-trips
					},
					Pipelines: []record.Pipeline{
						{ID: "p1", Name: "train", ProjectID: "proj1"},
					},
					Artifacts: []record.Artifact{
						{ID: "a1", Created: ts(2025, 1, 5, 0)},
						{ID: "a2"},
					},
					Models: []record.Model{
						{ID: "m1", Created: ts(2025, 6, 1, 0),
							NumVersions: intp(4)},
						{ID: "m2", LatestVersionName: "v1",
							LatestVersionNumber: intp(1)},
					},
					Schedules: []record.Schedule{
						{ID: "s1", Active: true},
					},
					Services: []record.Service{
						{ID: "svc1", State: "active"},
						{ID: "svc2", State: "inactive"},
					},
					Stacks: 3,
				},
			},
			{ID: "proj2", Name: "churn"},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)
	want := testSnapshot()

	require.NoError(t, db.Save(want))
	got, err := db.Load()
	require.NoError(t, err)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("snapshot mismatch after round trip (-want +got):\n%s", diff)
	}
}

func TestSaveReplacesPreviousSnapshot(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.Save(testSnapshot()))
	require.NoError(t, db.Save(record.Snapshot{
		Workspace: "other",
		Year:      2024,
		Records: record.Set{
			Runs: []record.Run{{ID: "only", Status: "completed"}},
		},
	}))

	got, err := db.Load()
	require.NoError(t, err)
	assert.Equal(t, "other", got.Workspace)
	assert.Equal(t, 2024, got.Year)
	require.Len(t, got.Records.Runs, 1)
	assert.Empty(t, got.Projects, "old projects cleared")
}

func TestLoadPreservesRunOrder(t *testing.T) {
	db := openTestDB(t)

	snap := record.Snapshot{Workspace: "acme", Year: 2025}
	for _, id := range []string{"z", "a", "m", "b"} {
		snap.Records.Runs = append(snap.Records.Runs, record.Run{
			ID: id, Status: "completed",
		})
	}
	require.NoError(t, db.Save(snap))

	got, err := db.Load()
	require.NoError(t, err)
	require.Len(t, got.Records.Runs, 4)
	for i, id := range []string{"z", "a", "m", "b"} {
		assert.Equal(t, id, got.Records.Runs[i].ID,
			"input order survives the round trip")
	}
}

func TestLoadEmptyDatabase(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no snapshot stored")
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "snapshot.db")
	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Save(record.Snapshot{Workspace: "w", Year: 2025}))
}
