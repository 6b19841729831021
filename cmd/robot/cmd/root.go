package cmd

import (
	"context"
	"errors"
	"fmt"
	"itdashboard-robot/lib/serviceutil"
	"itdashboard-robot/lib/telemetry"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// errNotPassing makes the process exit 1 after the report has been printed.
var errNotPassing = errors.New("some business cases do not match the investments sheet")

var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "robot",
	Short: "robot scrapes the IT Dashboard and checks business case PDFs against the investments table.",
	// a non-passing report is not a usage error
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(verbose)
		return telemetry.SetupFromEnv(cmd.Context(), "itdashboard-robot")
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level and dump every http exchange")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "robot.json5", "path to the robot configuration")
}

func Execute() {
	ctx := serviceutil.SignalContext()
	err := rootCmd.ExecuteContext(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	shutdownErr := telemetry.Shutdown(shutdownCtx)
	if shutdownErr != nil {
		slog.Warn("failed to flush telemetry", "err", shutdownErr)
	}

	if errors.Is(err, errNotPassing) {
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
