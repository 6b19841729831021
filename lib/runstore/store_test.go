package runstore

import (
	"context"
	"database/sql"
	"errors"
	"itdashboard-robot/lib/reconcile"
	"itdashboard-robot/lib/runstore/db"
	"itdashboard-robot/lib/testutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func setup(t testing.TB) Store {
	return NewStore(testutil.SetupDB(t, testutil.DBParams{Schema: db.Schema}))
}

func TestStore(t *testing.T) {
	store := setup(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	{
		runs, err := store.ListRuns(ctx, 10)
		require.NoError(t, err)
		require.Len(t, runs, 0)
	}

	start := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	findings := []Finding{
		{UII: "006-000001234", Source: "output/006-000001234.pdf", Verdict: reconcile.Match},
		{
			UII:          "006-000005678",
			Source:       "output/006-000005678.pdf",
			Verdict:      reconcile.TitleMismatch,
			ClosestTitle: "Field Operations",
			Similarity:   0.91,
		},
		{UII: "006-000009999", Verdict: reconcile.FieldMissing, Error: "download failed"},
	}
	err := store.SaveRun(ctx, Run{
		ID:         "first",
		StartedAt:  start,
		FinishedAt: start.Add(time.Minute),
		SiteUrl:    "https://itdashboard.gov/",
		Agency:     "Department of Commerce",
		Sheet:      "Department of Commerce",
		Findings:   findings,
	})
	require.NoError(t, err)

	err = store.SaveRun(ctx, Run{
		ID:         "second",
		StartedAt:  start.Add(time.Hour),
		FinishedAt: start.Add(time.Hour + time.Minute),
		SiteUrl:    "https://itdashboard.gov/",
		Agency:     "NASA",
		Sheet:      "NASA",
		Findings:   []Finding{{UII: "026-1", Verdict: reconcile.Match}},
	})
	require.NoError(t, err)

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, "second", runs[0].ID)
	require.True(t, runs[0].Passing())
	require.Equal(t, "first", runs[1].ID)
	require.Equal(t, 3, runs[1].Total)
	require.Equal(t, 2, runs[1].Mismatches)
	require.False(t, runs[1].Passing())
	require.True(t, runs[1].StartedAt.Equal(start))

	got, err := store.GetFindings(ctx, "first")
	require.NoError(t, err)
	diff := cmp.Diff(findings, got)
	if diff != "" {
		t.Fatal(diff)
	}

	run, err := store.GetRun(ctx, "second")
	require.NoError(t, err)
	require.Equal(t, "NASA", run.Agency)

	_, err = store.GetRun(ctx, "missing")
	require.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestSaveRunDuplicateRollsBack(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	run := Run{ID: "dup", StartedAt: time.Now(), FinishedAt: time.Now()}
	require.NoError(t, store.SaveRun(ctx, run))
	run.Findings = []Finding{{UII: "x", Verdict: reconcile.Match}}
	require.Error(t, store.SaveRun(ctx, run))

	findings, err := store.GetFindings(ctx, "dup")
	require.NoError(t, err)
	require.Len(t, findings, 0)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "runs.db")
	store, err := Open(Config{File: path})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// schema creation is idempotent
	store, err = Open(Config{File: path})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = Open(Config{})
	require.Error(t, err)
}

func TestIsRemote(t *testing.T) {
	require.True(t, isRemote("libsql://robot.turso.io"))
	require.True(t, isRemote("https://robot.turso.io"))
	require.False(t, isRemote("output/runs.db"))
	require.False(t, isRemote(":memory:"))
}
