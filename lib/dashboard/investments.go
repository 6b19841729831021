package dashboard

import (
	"context"
	"errors"
	"fmt"
	"itdashboard-robot/lib/htmlutil"
	"itdashboard-robot/lib/reconcile"
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrAgencyNotFound = errors.New("agency not found")

type Investment struct {
	Record reconcile.TabularRecord
	// absolute link to the investment's detail page, empty when the UII cell
	// is not a link
	DetailHref string
}

const investmentRowSelector = "#investments-table-object tbody tr"

// FetchInvestments scrapes the full investments table of an agency.
func (c *Client) FetchInvestments(ctx context.Context, agency Agency) ([]Investment, error) {
	ctx, span := tracer.Start(ctx, "FetchInvestments")
	defer span.End()
	span.SetAttributes(attribute.String("agency", agency.Name))

	if agency.Href == "" {
		span.SetStatus(codes.Error, "agency has no link")
		return nil, fmt.Errorf("%w: %q has no investments link", ErrAgencyNotFound, agency.Name)
	}

	link, err := c.resolve(agency.Href)
	if err != nil {
		return nil, err
	}
	doc, err := c.fetchDocument(ctx, link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch agency page")
		return nil, err
	}

	investments := parseInvestments(ctx, c, doc)
	span.SetAttributes(attribute.Int("investments", len(investments)))
	return investments, nil
}

func parseInvestments(ctx context.Context, c *Client, doc *goquery.Document) []Investment {
	var investments []Investment
	doc.Find(investmentRowSelector).Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < len(reconcile.Columns) {
			slog.DebugContext(ctx, "skipping short investments row", "index", i, "cells", cells.Length())
			return
		}

		values := make([]string, len(reconcile.Columns))
		for idx := range values {
			values[idx] = htmlutil.CleanText(cells.Eq(idx))
		}
		investment := Investment{Record: reconcile.RecordFromRow(values)}

		anchors := htmlutil.GetAnchors(ctx, c.BaseUrl, cells.Eq(0).Find("a"))
		if len(anchors) > 0 {
			investment.DetailHref = anchors[0].Href
		}
		investments = append(investments, investment)
	})
	return investments
}
