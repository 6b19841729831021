package robot

import (
	"context"
	"fmt"
	"itdashboard-robot/lib/dashboard"
	"itdashboard-robot/lib/notify"
	"itdashboard-robot/lib/reconcile"
	"itdashboard-robot/lib/runstore"
	"itdashboard-robot/lib/workbook"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("itdashboard.services.robot")

// Config is the contents of robot.json5.
type Config struct {
	SiteUrl   string `json:"site_url"`
	Agency    string `json:"agency"`
	OutputDir string `json:"output_dir"`
	Workbook  string `json:"workbook"`
	// per request timeout
	TimeoutSeconds int `json:"timeout_seconds"`
	// wait between polls of a business case that is still being generated
	DownloadWaitMs   int               `json:"download_wait_ms"`
	Concurrency      int               `json:"concurrency"`
	BypassCloudflare bool              `json:"bypass_cloudflare"`
	Store            runstore.Config   `json:"store"`
	Smtp             notify.SmtpConfig `json:"smtp"`
}

func DefaultConfig() Config {
	return Config{
		SiteUrl:        dashboard.DefaultBaseUrl,
		OutputDir:      "output",
		Workbook:       "output/data.xlsx",
		TimeoutSeconds: 30,
		DownloadWaitMs: 2000,
		Concurrency:    4,
		Store:          runstore.Config{File: "output/history.db"},
	}
}

func (c Config) ClientOptions() dashboard.ClientOptions {
	return dashboard.ClientOptions{
		BaseUrl:          c.SiteUrl,
		Timeout:          time.Duration(c.TimeoutSeconds) * time.Second,
		DownloadWait:     time.Duration(c.DownloadWaitMs) * time.Millisecond,
		BypassCloudflare: c.BypassCloudflare,
	}
}

// Dashboard is the part of the IT Dashboard the robot scrapes.
type Dashboard interface {
	FetchAgencies(ctx context.Context) ([]dashboard.Agency, error)
	FetchInvestments(ctx context.Context, agency dashboard.Agency) ([]dashboard.Investment, error)
	DownloadBusinessCase(ctx context.Context, detailHref, dir, uii string) (string, error)
}

// DocumentReader extracts the labelled fields of a downloaded business case.
type DocumentReader func(ctx context.Context, path string) (reconcile.ExtractedDocument, error)

type RunStore interface {
	SaveRun(ctx context.Context, run runstore.Run) error
}

type Notifier interface {
	SendReport(ctx context.Context, run runstore.Run) error
}

type Robot struct {
	Dashboard    Dashboard
	Workbook     *workbook.Workbook
	ReadDocument DocumentReader
	// optional, runs are not persisted when nil
	Store RunStore
	// optional, no report is sent when nil
	Notifier Notifier

	SiteUrl    string
	AgencyName string
	OutputDir  string
	// how many business cases are downloaded or read at the same time
	Concurrency int
	// source of the random agency choice, the global source when nil
	Rand *rand.Rand
}

func (r *Robot) concurrency() int {
	if r.Concurrency <= 0 {
		return 1
	}
	return r.Concurrency
}

// Run performs one full pass: agencies, the chosen agency's investments,
// every business case, and the reconciliation of each against the sheet.
// Per investment failures end up as findings, only failures that leave
// nothing to reconcile are returned as errors.
func (r *Robot) Run(ctx context.Context) (runstore.Run, *reconcile.Report, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	run, report, err := r.run(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "robot run failed")
		return run, report, err
	}
	span.SetAttributes(
		attribute.String("run", run.ID),
		attribute.Int("findings", len(run.Findings)),
		attribute.Bool("passing", report.IsFullyPassing()),
	)
	return run, report, nil
}

func (r *Robot) run(ctx context.Context) (runstore.Run, *reconcile.Report, error) {
	id, err := random.String(12)
	if err != nil {
		return runstore.Run{}, nil, fmt.Errorf("generate run id: %w", err)
	}
	run := runstore.Run{
		ID:        id,
		StartedAt: time.Now(),
		SiteUrl:   r.SiteUrl,
	}
	slog.InfoContext(ctx, "starting run", "run", id, "site", r.SiteUrl)

	agencies, err := r.FillAgencies(ctx)
	if err != nil {
		return run, nil, err
	}
	agency, err := r.ChooseAgency(agencies)
	if err != nil {
		return run, nil, err
	}
	run.Agency = agency.Name
	slog.InfoContext(ctx, "chose agency", "agency", agency.Name, "spending", agency.Spending)

	sheet, investments, err := r.CollectInvestments(ctx, agency)
	if err != nil {
		return run, nil, err
	}
	run.Sheet = sheet

	records := make([]reconcile.TabularRecord, len(investments))
	for i, inv := range investments {
		records[i] = inv.Record
	}

	downloads := r.DownloadDocuments(ctx, investments)
	findings, report := r.reconcileAll(ctx, NewMatcher(records), downloads)
	run.Findings = findings
	run.FinishedAt = time.Now()

	slog.InfoContext(
		ctx, "finished run",
		"run", id,
		"findings", len(findings),
		"passing", report.IsFullyPassing(),
	)

	if r.Store != nil {
		err = r.Store.SaveRun(ctx, run)
		if err != nil {
			slog.ErrorContext(ctx, "failed to save run", "run", id, "err", err)
		}
	}
	if r.Notifier != nil {
		err = r.Notifier.SendReport(ctx, run)
		if err != nil {
			slog.ErrorContext(ctx, "failed to send report", "run", id, "err", err)
		}
	}

	return run, report, nil
}
