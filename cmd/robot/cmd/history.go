package cmd

import (
	"itdashboard-robot/lib/runstore"
	"itdashboard-robot/lib/serviceutil"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "how many runs to list")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history [run id]",
	Short: "List past runs, or the findings of one run.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		config, err := loadConfig()
		if err != nil {
			serviceutil.Fatal("failed to load config", err)
		}
		store, err := runstore.Open(config.Store)
		if err != nil {
			serviceutil.Fatal("failed to open run history", err)
		}
		defer store.Close()

		if len(args) == 1 {
			run, err := store.GetRun(ctx, args[0])
			if err != nil {
				return err
			}
			findings, err := store.GetFindings(ctx, run.ID)
			if err != nil {
				return err
			}
			printRunHeader(os.Stdout, run)
			printFindings(os.Stdout, findings)
			return nil
		}

		runs, err := store.ListRuns(ctx, historyLimit)
		if err != nil {
			return err
		}
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"Run", "Started", "Agency", "Business cases", "Mismatches", "Passing"})
		for _, r := range runs {
			t.AppendRow(table.Row{
				r.ID,
				r.StartedAt.Format("2006-01-02 15:04"),
				r.Agency,
				r.Total,
				r.Mismatches,
				r.Passing(),
			})
		}
		t.Render()
		return nil
	},
}
