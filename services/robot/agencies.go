package robot

import (
	"context"
	"errors"
	"fmt"
	"itdashboard-robot/lib/dashboard"
	"itdashboard-robot/lib/reconcile"
	"itdashboard-robot/lib/textutil"
	"itdashboard-robot/lib/workbook"
	"log/slog"
	"math/rand/v2"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var errNoAgencies = errors.New("the dashboard lists no agencies")

// FillAgencies scrapes the agency tiles into the Agencies sheet.
func (r *Robot) FillAgencies(ctx context.Context) ([]dashboard.Agency, error) {
	ctx, span := tracer.Start(ctx, "FillAgencies")
	defer span.End()

	agencies, err := r.Dashboard.FetchAgencies(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch agencies")
		return nil, fmt.Errorf("fetch agencies: %w", err)
	}
	if len(agencies) == 0 {
		span.SetStatus(codes.Error, errNoAgencies.Error())
		return nil, errNoAgencies
	}

	rows := make([]workbook.AgencyRow, len(agencies))
	for i, a := range agencies {
		rows[i] = workbook.AgencyRow{Name: a.Name, Spending: a.Spending}
	}
	err = r.Workbook.WriteAgencies(rows)
	if err == nil {
		err = r.Workbook.Save()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write agencies")
		return nil, fmt.Errorf("write agencies: %w", err)
	}

	span.SetAttributes(attribute.Int("agencies", len(agencies)))
	slog.InfoContext(ctx, "filled agencies", "count", len(agencies), "workbook", r.Workbook.Path())
	return agencies, nil
}

// ChooseAgency picks the agency named by AgencyName, compared without
// regard to case or spacing, falling back to the first agency whose name
// contains it. Without a name the agency is random.
func (r *Robot) ChooseAgency(agencies []dashboard.Agency) (dashboard.Agency, error) {
	if len(agencies) == 0 {
		return dashboard.Agency{}, errNoAgencies
	}

	key := textutil.NormalizeKey(r.AgencyName)
	if key == "" {
		var i int
		if r.Rand != nil {
			i = r.Rand.IntN(len(agencies))
		} else {
			i = rand.IntN(len(agencies))
		}
		return agencies[i], nil
	}

	for _, a := range agencies {
		if textutil.NormalizeKey(a.Name) == key {
			return a, nil
		}
	}
	// a partial name picks the first agency containing it
	for _, a := range agencies {
		if textutil.MatchName(a.Name, []string{r.AgencyName}) {
			slog.Info("agency chosen by partial name", "name", r.AgencyName, "agency", a.Name)
			return a, nil
		}
	}
	return dashboard.Agency{}, fmt.Errorf("%w: %q", dashboard.ErrAgencyNotFound, r.AgencyName)
}

// CollectInvestments scrapes the agency's investments table into a sheet
// named after the agency.
func (r *Robot) CollectInvestments(ctx context.Context, agency dashboard.Agency) (string, []dashboard.Investment, error) {
	ctx, span := tracer.Start(ctx, "CollectInvestments")
	defer span.End()
	span.SetAttributes(attribute.String("agency", agency.Name))

	investments, err := r.Dashboard.FetchInvestments(ctx, agency)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch investments")
		return "", nil, fmt.Errorf("fetch investments: %w", err)
	}

	records := make([]reconcile.TabularRecord, len(investments))
	for i, inv := range investments {
		records[i] = inv.Record
	}
	sheet, err := r.Workbook.WriteInvestments(agency.Name, records)
	if err == nil {
		err = r.Workbook.Save()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write investments")
		return "", nil, fmt.Errorf("write investments: %w", err)
	}

	span.SetAttributes(attribute.Int("investments", len(investments)))
	slog.InfoContext(ctx, "collected investments", "agency", agency.Name, "sheet", sheet, "count", len(investments))
	return sheet, investments, nil
}
