package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var robotMeter = otel.Meter("itdashboard.robot")
var verdictCounter, _ = robotMeter.Int64Counter(
	"reconcile_verdicts",
	metric.WithDescription("verdicts produced by reconciliation, by kind"),
)
var downloadCounter, _ = robotMeter.Int64Counter(
	"business_case_downloads",
	metric.WithDescription("business case downloads, by outcome"),
)

func CountVerdict(ctx context.Context, verdict string) {
	verdictCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("verdict", verdict)))
}

func CountDownload(ctx context.Context, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	downloadCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
