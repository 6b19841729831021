package cmd

import (
	"itdashboard-robot/lib/serviceutil"
	"itdashboard-robot/lib/workbook"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var agenciesWorkbook string

func init() {
	agenciesCmd.Flags().StringVar(&agenciesWorkbook, "workbook", "", "list the Agencies sheet of a saved workbook instead of scraping")
	rootCmd.AddCommand(agenciesCmd)
}

var agenciesCmd = &cobra.Command{
	Use:   "agencies",
	Short: "List the agencies on the dashboard with their spending.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var rows []workbook.AgencyRow
		if agenciesWorkbook != "" {
			wb, err := workbook.Open(agenciesWorkbook)
			if err != nil {
				return err
			}
			defer wb.Close()
			rows, err = wb.ReadAgencies()
			if err != nil {
				return err
			}
		} else {
			config, err := loadConfig()
			if err != nil {
				serviceutil.Fatal("failed to load config", err)
			}
			client, err := newDashboard(ctx, config)
			if err != nil {
				serviceutil.Fatal("failed to create dashboard client", err)
			}
			agencies, err := client.FetchAgencies(ctx)
			if err != nil {
				return err
			}
			for _, a := range agencies {
				rows = append(rows, workbook.AgencyRow{Name: a.Name, Spending: a.Spending})
			}
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"Agency", "Spending"})
		for _, a := range rows {
			t.AppendRow(table.Row{a.Name, a.Spending})
		}
		t.Render()
		return nil
	},
}
