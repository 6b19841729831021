package robot

import (
	"context"
	"itdashboard-robot/lib/dashboard"
	"itdashboard-robot/lib/reconcile"
	"itdashboard-robot/lib/runstore"
	"itdashboard-robot/lib/telemetry"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

// Download is the outcome of fetching one business case.
type Download struct {
	UII  string
	Path string
	Err  error
}

// DownloadDocuments saves the business case of every investment that links
// to a detail page. Investments without a link are skipped. A failed
// download is kept in the result with its error.
func (r *Robot) DownloadDocuments(ctx context.Context, investments []dashboard.Investment) []Download {
	ctx, span := tracer.Start(ctx, "DownloadDocuments")
	defer span.End()

	var linked []dashboard.Investment
	for _, inv := range investments {
		if inv.DetailHref == "" {
			slog.DebugContext(ctx, "investment has no detail page", "uii", inv.Record.UII)
			continue
		}
		linked = append(linked, inv)
	}

	downloads := make([]Download, len(linked))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.concurrency())
	for i, inv := range linked {
		group.Go(func() error {
			path, err := r.Dashboard.DownloadBusinessCase(groupCtx, inv.DetailHref, r.OutputDir, inv.Record.UII)
			if err != nil {
				slog.WarnContext(groupCtx, "failed to download business case", "uii", inv.Record.UII, "err", err)
			}
			downloads[i] = Download{UII: inv.Record.UII, Path: path, Err: err}
			return nil
		})
	}
	group.Wait()

	failed := 0
	for _, d := range downloads {
		if d.Err != nil {
			failed++
		}
	}
	span.SetAttributes(
		attribute.Int("skipped", len(investments)-len(linked)),
		attribute.Int("downloaded", len(downloads)-failed),
		attribute.Int("failed", failed),
	)
	return downloads
}

// ReconcileDirectory reconciles every PDF in dir against records, the
// identifier a PDF is first looked up by is its file name.
func (r *Robot) ReconcileDirectory(ctx context.Context, dir string, records []reconcile.TabularRecord) ([]runstore.Finding, *reconcile.Report, error) {
	ctx, span := tracer.Start(ctx, "ReconcileDirectory")
	defer span.End()
	span.SetAttributes(attribute.String("dir", dir))

	entries, err := os.ReadDir(dir)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list documents")
		return nil, nil, err
	}

	var documents []Download
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		documents = append(documents, Download{
			UII:  strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())),
			Path: filepath.Join(dir, e.Name()),
		})
	}
	sort.Slice(documents, func(i, j int) bool {
		return documents[i].Path < documents[j].Path
	})

	findings, report := r.reconcileAll(ctx, NewMatcher(records), documents)
	return findings, report, nil
}

// FailurePrefix marks report entries of business cases that could not be
// downloaded or read, they never reached Reconcile.
const FailurePrefix = "error:"

// ReportIdentifier is the key a finding is recorded under in a report.
func ReportIdentifier(f runstore.Finding) string {
	identifier := f.UII
	if identifier == "" {
		identifier = filepath.Base(f.Source)
	}
	if f.Error != "" {
		return FailurePrefix + identifier
	}
	return identifier
}

// reconcileAll reads every document concurrently, then records one verdict
// per document through a collector in the order of documents.
func (r *Robot) reconcileAll(ctx context.Context, matcher Matcher, documents []Download) ([]runstore.Finding, *reconcile.Report) {
	ctx, span := tracer.Start(ctx, "reconcileAll")
	defer span.End()

	findings := make([]runstore.Finding, len(documents))

	group := errgroup.Group{}
	group.SetLimit(r.concurrency())
	for i, d := range documents {
		group.Go(func() error {
			findings[i] = r.reconcileDocument(ctx, matcher, d)
			return nil
		})
	}
	group.Wait()

	collector := reconcile.NewCollector(reconcile.NewReport(), len(findings))
	for _, f := range findings {
		collector.Submit(ReportIdentifier(f), f.Verdict)
		telemetry.CountVerdict(ctx, f.Verdict.String())
	}
	report := collector.Close()

	span.SetAttributes(
		attribute.Int("documents", report.Len()),
		attribute.Bool("passing", report.IsFullyPassing()),
	)
	return findings, report
}

func (r *Robot) reconcileDocument(ctx context.Context, matcher Matcher, d Download) runstore.Finding {
	if d.Err != nil {
		return runstore.Finding{
			UII:     d.UII,
			Source:  d.Path,
			Verdict: reconcile.FieldMissing,
			Error:   d.Err.Error(),
		}
	}

	doc, err := r.ReadDocument(ctx, d.Path)
	if err != nil {
		slog.WarnContext(ctx, "failed to read business case", "path", d.Path, "err", err)
		return runstore.Finding{
			UII:     d.UII,
			Source:  d.Path,
			Verdict: reconcile.FieldMissing,
			Error:   err.Error(),
		}
	}

	finding := matcher.MatchRecord(d.UII, doc)
	if finding.Verdict != reconcile.Match {
		slog.InfoContext(
			ctx, "business case does not match",
			"uii", finding.UII,
			"verdict", finding.Verdict.String(),
			"orphan", finding.Orphan,
			"closest_title", finding.ClosestTitle,
		)
	}
	return finding
}
