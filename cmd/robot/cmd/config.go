package cmd

import (
	"context"
	"itdashboard-robot/lib/configutil"
	"itdashboard-robot/lib/dashboard"
	"itdashboard-robot/lib/restyutil"
	"itdashboard-robot/lib/workitems"
	"itdashboard-robot/services/robot"
	"log/slog"
	"path/filepath"
)

// loadConfig reads robot.json5 (plus its local override) over the defaults,
// then applies work item variables on top.
func loadConfig() (robot.Config, error) {
	config, err := configutil.ReadConfigWithDefaults(configPath, robot.DefaultConfig())
	if err != nil {
		return robot.Config{}, err
	}
	vars, err := workitems.Load()
	if err != nil {
		return robot.Config{}, err
	}
	if vars.SiteUrl != "" {
		config.SiteUrl = vars.SiteUrl
	}
	if vars.AgencyName != "" {
		config.Agency = vars.AgencyName
	}
	return config, nil
}

func newDashboard(ctx context.Context, config robot.Config) (*dashboard.Client, error) {
	opts := config.ClientOptions()
	if verbose {
		dir := filepath.Join(config.OutputDir, "http")
		output, err := restyutil.NewFilesystemOutput(dir)
		if err != nil {
			return nil, err
		}
		slog.DebugContext(ctx, "dumping http exchanges", "dir", dir)
		opts.Dump = output
	}
	return dashboard.NewClient(ctx, opts)
}
