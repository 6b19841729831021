package cmd

import (
	"itdashboard-robot/lib/reconcile"
	"itdashboard-robot/lib/runstore"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPrintFindings(t *testing.T) {
	var out strings.Builder
	printFindings(&out, []runstore.Finding{
		{UII: "005-000000001", Verdict: reconcile.Match},
		{UII: "005-000000002", Verdict: reconcile.TitleMismatch, ClosestTitle: "Fire and Aviation Management", Similarity: 0.93},
		{UII: "999-000000000", Verdict: reconcile.FieldMissing, Orphan: true},
	})

	text := out.String()
	require.Contains(t, text, "TITLE_MISMATCH")
	require.Contains(t, text, "Fire and Aviation Management (0.93)")
	require.Contains(t, text, "no sheet row")
	require.Contains(t, text, "1/3 MATCH")
}

func TestPrintRunHeader(t *testing.T) {
	var out strings.Builder
	started := time.Date(2026, 10, 1, 9, 0, 0, 0, time.Local)
	printRunHeader(&out, runstore.RunSummary{
		ID:         "abc123",
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Minute),
		SiteUrl:    "https://itdashboard.gov/",
		Agency:     "Department of Commerce",
		Sheet:      "Department of Commerce",
		Total:      12,
		Mismatches: 2,
	})

	text := out.String()
	require.Contains(t, text, "Run abc123 against https://itdashboard.gov/")
	require.Contains(t, text, `Agency: Department of Commerce (sheet "Department of Commerce")`)
	require.Contains(t, text, "Started 2026-10-01 09:00:00, finished 2026-10-01 09:03:00")
	require.Contains(t, text, "2 of 12 business cases do not match")
}
