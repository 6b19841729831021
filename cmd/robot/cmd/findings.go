package cmd

import (
	"fmt"
	"io"
	"itdashboard-robot/lib/reconcile"
	"itdashboard-robot/lib/runstore"

	"github.com/jedib0t/go-pretty/v6/table"
)

func printFindings(out io.Writer, findings []runstore.Finding) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"UII", "Verdict", "Closest title", "Note"})

	counts := map[reconcile.Verdict]int{}
	for _, f := range findings {
		counts[f.Verdict]++

		closest := ""
		if f.ClosestTitle != "" {
			closest = fmt.Sprintf("%s (%.2f)", f.ClosestTitle, f.Similarity)
		}
		note := f.Error
		if f.Orphan {
			note = "no sheet row"
		}
		t.AppendRow(table.Row{f.UII, f.Verdict.String(), closest, note})
	}
	t.AppendFooter(table.Row{
		"",
		fmt.Sprintf("%d/%d match", counts[reconcile.Match], len(findings)),
		"",
		"",
	})
	t.Render()
}

func printRunHeader(out io.Writer, run runstore.RunSummary) {
	fmt.Fprintf(out, "Run %s against %s\n", run.ID, run.SiteUrl)
	fmt.Fprintf(out, "Agency: %s (sheet %q)\n", run.Agency, run.Sheet)
	fmt.Fprintf(
		out, "Started %s, finished %s, %d of %d business cases do not match\n",
		run.StartedAt.Format("2006-01-02 15:04:05"),
		run.FinishedAt.Format("2006-01-02 15:04:05"),
		run.Mismatches, run.Total,
	)
}
