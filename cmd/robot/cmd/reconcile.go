package cmd

import (
	"fmt"
	"itdashboard-robot/lib/pdftext"
	"itdashboard-robot/lib/serviceutil"
	"itdashboard-robot/lib/workbook"
	"itdashboard-robot/services/robot"
	"os"

	"github.com/spf13/cobra"
)

var (
	reconcileDir      string
	reconcileWorkbook string
	reconcileSheet    string
)

func init() {
	reconcileCmd.Flags().StringVar(&reconcileDir, "dir", "", "directory of business case PDFs, the configured output directory by default")
	reconcileCmd.Flags().StringVar(&reconcileWorkbook, "workbook", "", "workbook holding the investments sheet, the configured workbook by default")
	reconcileCmd.Flags().StringVar(&reconcileSheet, "sheet", "", "investments sheet, the first one by default")
	rootCmd.AddCommand(reconcileCmd)
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile already downloaded business cases against a workbook without scraping.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		config, err := loadConfig()
		if err != nil {
			serviceutil.Fatal("failed to load config", err)
		}
		if reconcileDir == "" {
			reconcileDir = config.OutputDir
		}
		if reconcileWorkbook == "" {
			reconcileWorkbook = config.Workbook
		}

		wb, err := workbook.Open(reconcileWorkbook)
		if err != nil {
			return err
		}
		defer wb.Close()

		sheet := reconcileSheet
		if sheet == "" {
			sheets := wb.InvestmentSheets()
			if len(sheets) == 0 {
				return fmt.Errorf("%s has no investments sheet", reconcileWorkbook)
			}
			sheet = sheets[0]
		}
		records, err := wb.ReadInvestments(sheet)
		if err != nil {
			return err
		}

		r := &robot.Robot{
			ReadDocument: pdftext.ReadDocument,
			Concurrency:  config.Concurrency,
		}
		findings, report, err := r.ReconcileDirectory(ctx, reconcileDir, records)
		if err != nil {
			return err
		}

		printFindings(os.Stdout, findings)
		if !report.IsFullyPassing() {
			return errNotPassing
		}
		return nil
	},
}
