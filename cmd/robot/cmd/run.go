package cmd

import (
	"itdashboard-robot/lib/notify"
	"itdashboard-robot/lib/pdftext"
	"itdashboard-robot/lib/runstore"
	"itdashboard-robot/lib/serviceutil"
	"itdashboard-robot/lib/telemetry"
	"itdashboard-robot/lib/workbook"
	"itdashboard-robot/services/robot"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var agencyFlag string

func init() {
	runCmd.Flags().StringVarP(&agencyFlag, "agency", "a", "", "agency to collect, a random one when empty")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrape agencies and investments, download every business case and reconcile them.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		config, err := loadConfig()
		if err != nil {
			serviceutil.Fatal("failed to load config", err)
		}
		if agencyFlag != "" {
			config.Agency = agencyFlag
		}

		client, err := newDashboard(ctx, config)
		if err != nil {
			serviceutil.Fatal("failed to create dashboard client", err)
		}
		wb, err := workbook.Create(config.Workbook)
		if err != nil {
			serviceutil.Fatal("failed to create workbook", err)
		}
		defer wb.Close()

		r := &robot.Robot{
			Dashboard:    client,
			Workbook:     wb,
			ReadDocument: pdftext.ReadDocument,
			SiteUrl:      config.SiteUrl,
			AgencyName:   config.Agency,
			OutputDir:    config.OutputDir,
			Concurrency:  config.Concurrency,
		}
		if config.Store.File != "" {
			store, err := runstore.Open(config.Store)
			if err != nil {
				serviceutil.Fatal("failed to open run history", err)
			}
			defer store.Close()
			r.Store = store
		}
		if config.Smtp.Enabled() {
			r.Notifier = notify.NewMailer(config.Smtp)
		}

		telemetry.InstrumentPerfStats(ctx, 15*time.Second)

		run, report, err := r.Run(ctx)
		if err != nil {
			return err
		}

		printFindings(os.Stdout, run.Findings)
		if !report.IsFullyPassing() {
			return errNotPassing
		}
		return nil
	},
}
