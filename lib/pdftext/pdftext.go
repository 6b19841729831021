package pdftext

import (
	"context"
	"fmt"
	"itdashboard-robot/lib/reconcile"
	"itdashboard-robot/lib/textutil"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("itdashboard.lib.pdftext")

// Line is one visual row of a page, Y grows upwards like in PDF space.
type Line struct {
	Y    float64
	Size float64
	Text string
}

// a numbered item ("1. Name of ...", "12. Cost ...") always starts a new box
var itemStart = regexp.MustCompile(`^\d+\.\s`)

// rows further apart than this many font sizes belong to different boxes
const boxGap = 1.6

// GroupLines merges wrapped rows into text boxes, returning one text unit per
// box in reading order.
func GroupLines(lines []Line) []string {
	sorted := make([]Line, 0, len(lines))
	for _, l := range lines {
		l.Text = textutil.Normalize(l.Text)
		if l.Text == "" {
			continue
		}
		sorted = append(sorted, l)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Y > sorted[j].Y
	})

	var units []string
	var current []string
	var last Line
	for i, l := range sorted {
		newBox := i == 0 ||
			itemStart.MatchString(l.Text) ||
			last.Y-l.Y > boxGap*math.Max(last.Size, 1)
		if newBox && len(current) > 0 {
			units = append(units, strings.Join(current, " "))
			current = nil
		}
		current = append(current, l.Text)
		last = l
	}
	if len(current) > 0 {
		units = append(units, strings.Join(current, " "))
	}
	return units
}

// rowText joins the glyph runs of a row, inserting a space wherever the
// horizontal gap between runs is wider than a fraction of the font size.
func rowText(texts []pdf.Text) (string, float64) {
	sorted := append([]pdf.Text(nil), texts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].X < sorted[j].X
	})

	var b strings.Builder
	var size float64
	end := math.Inf(-1)
	for _, t := range sorted {
		if t.FontSize > size {
			size = t.FontSize
		}
		if b.Len() > 0 && t.X-end > 0.2*t.FontSize {
			b.WriteByte(' ')
		}
		b.WriteString(t.S)
		end = t.X + t.W
	}
	return b.String(), size
}

// glyphs whose baselines are closer than this many font sizes share a row
const rowTolerance = 0.3

// linesFromTexts groups positioned glyphs into visual rows, top to bottom.
func linesFromTexts(texts []pdf.Text) []Line {
	sorted := make([]pdf.Text, 0, len(texts))
	for _, t := range texts {
		if t.S == "" {
			continue
		}
		sorted = append(sorted, t)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines []Line
	var row []pdf.Text
	flush := func() {
		if len(row) == 0 {
			return
		}
		text, size := rowText(row)
		lines = append(lines, Line{Y: row[0].Y, Size: size, Text: text})
		row = nil
	}
	for _, t := range sorted {
		if len(row) > 0 && row[0].Y-t.Y > rowTolerance*math.Max(row[0].FontSize, 1) {
			flush()
		}
		row = append(row, t)
	}
	flush()
	return lines
}

// FirstPageUnits returns the text boxes of the first page of the PDF at path.
func FirstPageUnits(ctx context.Context, path string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "FirstPageUnits")
	defer span.End()
	span.SetAttributes(attribute.String("path", path))

	units, err := pageUnits(path, 1)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read pdf")
		return nil, err
	}
	span.SetAttributes(attribute.Int("units", len(units)))
	return units, nil
}

func pageUnits(path string, pageNo int) (units []string, err error) {
	// the reader panics on some malformed streams
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read %s: malformed pdf: %v", path, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if reader.NumPage() < pageNo {
		return nil, fmt.Errorf("%s has %d pages, wanted page %d", path, reader.NumPage(), pageNo)
	}
	page := reader.Page(pageNo)
	if page.V.IsNull() {
		return nil, fmt.Errorf("%s: page %d is empty", path, pageNo)
	}
	return GroupLines(linesFromTexts(page.Content().Text)), nil
}

// ReadDocument extracts the business case fields from page one of a PDF.
func ReadDocument(ctx context.Context, path string) (reconcile.ExtractedDocument, error) {
	units, err := FirstPageUnits(ctx, path)
	if err != nil {
		return reconcile.ExtractedDocument{}, err
	}
	return reconcile.BusinessCaseLabels.ExtractDocument(path, units), nil
}
