package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"itdashboard-robot/lib/htmlutil"
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Agency is one tile of the dashboard's agency overview.
type Agency struct {
	Name     string
	Spending string
	// absolute link to the agency's investments page, empty when the tile
	// has no link
	Href string
}

const agencyTileSelector = "#agency-tiles-widget .col-sm-12"

func (c *Client) fetchDocument(ctx context.Context, link string) (*goquery.Document, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("GET %s: %s", link, res.Status())
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
}

// FetchAgencies scrapes the name and total spending of every agency tile on
// the landing page.
func (c *Client) FetchAgencies(ctx context.Context) ([]Agency, error) {
	ctx, span := tracer.Start(ctx, "FetchAgencies")
	defer span.End()

	doc, err := c.fetchDocument(ctx, c.BaseUrl.String())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch landing page")
		return nil, err
	}
	agencies := parseAgencies(ctx, c, doc)
	span.SetAttributes(attribute.Int("agencies", len(agencies)))
	if len(agencies) == 0 {
		span.SetStatus(codes.Error, "no agency tiles")
		return nil, fmt.Errorf("no agency tiles found with %q", agencyTileSelector)
	}
	return agencies, nil
}

// a tile renders as three lines: name, "Total FY2021 Spending:", amount
func parseAgencies(ctx context.Context, c *Client, doc *goquery.Document) []Agency {
	var agencies []Agency
	doc.Find(agencyTileSelector).Each(func(i int, tile *goquery.Selection) {
		lines := htmlutil.Lines(tile)
		if len(lines) < 3 {
			slog.WarnContext(ctx, "skipping malformed agency tile", "index", i, "lines", lines)
			return
		}
		agency := Agency{
			Name:     lines[0],
			Spending: lines[2],
		}
		anchors := htmlutil.GetAnchors(ctx, c.BaseUrl, tile.Find("a"))
		if len(anchors) > 0 {
			agency.Href = anchors[0].Href
		}
		agencies = append(agencies, agency)
	})
	return agencies
}
