package htmlutil

import (
	"bytes"
	"context"
	"itdashboard-robot/lib/textutil"
	"net/url"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("itdashboard.lib.htmlutil")

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	// <br> separates lines inside agency tiles
	if node.Type == html.ElementNode && node.Data == "br" {
		buffer.WriteByte('\n')
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

func removeNonPrintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\n' {
			return r
		}
		if unicode.IsSpace(r) {
			return ' '
		}
		return -1
	}, s)
}

// CleanText returns the visible text of a selection on a single line.
func CleanText(sel *goquery.Selection) string {
	var buffer strings.Builder
	for _, n := range sel.Nodes {
		buffer.WriteString(GetText(n))
	}
	return textutil.Normalize(removeNonPrintable(buffer.String()))
}

// Lines returns the non-empty visible lines of a selection, each normalized.
// Block children (div, p, span, br) each start a new line.
func Lines(sel *goquery.Selection) []string {
	var lines []string
	var walk func(n *html.Node, buffer *strings.Builder)
	flush := func(buffer *strings.Builder) {
		line := textutil.Normalize(removeNonPrintable(buffer.String()))
		if line != "" {
			lines = append(lines, line)
		}
		buffer.Reset()
	}
	walk = func(n *html.Node, buffer *strings.Builder) {
		switch {
		case n.Type == html.TextNode:
			buffer.WriteString(n.Data)
			return
		case n.Type == html.ElementNode && n.Data == "br":
			flush(buffer)
			return
		}
		block := n.Type == html.ElementNode && isLineElement(n.Data)
		if block {
			flush(buffer)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child, buffer)
		}
		if block {
			flush(buffer)
		}
	}
	for _, n := range sel.Nodes {
		var buffer strings.Builder
		walk(n, &buffer)
		flush(&buffer)
	}
	return lines
}

func isLineElement(tag string) bool {
	switch tag {
	case "div", "p", "span", "li", "h1", "h2", "h3", "h4", "h5", "h6", "tr":
		return true
	}
	return false
}

type Anchor struct {
	Name string
	Href string
}

// GetAnchors returns the anchors of a selection, hrefs are resolved against
// base when it is not nil.
func GetAnchors(ctx context.Context, base *url.URL, sel *goquery.Selection) []Anchor {
	_, span := tracer.Start(ctx, "GetAnchors")
	defer span.End()

	anchors := []Anchor{}
	for _, n := range sel.Nodes {
		href := ""
		for _, a := range n.Attr {
			if a.Key == "href" {
				href = a.Val
				break
			}
		}
		if href == "" {
			continue
		}

		link, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "got error while parsing url")
			continue
		}
		if base != nil {
			link = base.ResolveReference(link)
		}

		name := textutil.Normalize(removeNonPrintable(GetText(n)))
		linkStr := link.String()
		anchors = append(anchors, Anchor{
			Name: name,
			Href: linkStr,
		})
		span.AddEvent("anchor", trace.WithAttributes(
			attribute.String("name", name),
			attribute.String("url", linkStr),
		))
	}

	return anchors
}
