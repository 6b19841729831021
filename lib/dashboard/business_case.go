package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"itdashboard-robot/lib/htmlutil"
	"itdashboard-robot/lib/telemetry"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrNoBusinessCase = errors.New("investment has no business case pdf")

var pdfSignature = []byte("%PDF")

var unsafeFileChars = regexp.MustCompile(`[^\w.\-]+`)

// FileName is the name a business case is saved under: <uii>.pdf
func FileName(uii string) string {
	return unsafeFileChars.ReplaceAllString(uii, "_") + ".pdf"
}

// DownloadBusinessCase follows the business case link of an investment's
// detail page and saves the PDF as <dir>/<uii>.pdf. The PDF is generated on
// demand, while it is not ready the server answers 202 and the request is
// retried.
func (c *Client) DownloadBusinessCase(ctx context.Context, detailHref, dir, uii string) (string, error) {
	ctx, span := tracer.Start(ctx, "DownloadBusinessCase")
	defer span.End()
	span.SetAttributes(attribute.String("uii", uii))

	path, err := c.downloadBusinessCase(ctx, detailHref, dir, uii)
	telemetry.CountDownload(ctx, err == nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to download business case")
		return "", err
	}
	return path, nil
}

func (c *Client) downloadBusinessCase(ctx context.Context, detailHref, dir, uii string) (string, error) {
	link, err := c.resolve(detailHref)
	if err != nil {
		return "", err
	}
	doc, err := c.fetchDocument(ctx, link)
	if err != nil {
		return "", err
	}
	base, err := url.Parse(link)
	if err != nil {
		return "", err
	}
	anchors := htmlutil.GetAnchors(ctx, base, doc.Find("#business-case-pdf a"))
	if len(anchors) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoBusinessCase, uii)
	}

	res, err := c.Http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/pdf").
		Get(anchors[0].Href)
	if err != nil {
		return "", err
	}
	for attempt := 0; res.StatusCode() == http.StatusAccepted; attempt++ {
		if attempt >= c.opts.DownloadRetries {
			return "", fmt.Errorf("business case for %s was not ready after %d polls", uii, attempt)
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.opts.DownloadWait):
		}
		res, err = c.Http.R().
			SetContext(ctx).
			SetHeader("Accept", "application/pdf").
			Get(anchors[0].Href)
		if err != nil {
			return "", err
		}
	}
	if res.IsError() {
		return "", fmt.Errorf("GET %s: %s", anchors[0].Href, res.Status())
	}

	return writePdf(res, dir, uii)
}

func writePdf(res *resty.Response, dir, uii string) (string, error) {
	body := res.Body()
	if !bytes.HasPrefix(body, pdfSignature) {
		return "", fmt.Errorf("business case for %s is not a pdf (%d bytes, %s)", uii, len(body), res.Header().Get("Content-Type"))
	}

	err := os.MkdirAll(dir, 0777)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName(uii))
	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", err
	}
	err = os.Rename(tmp.Name(), path)
	if err != nil {
		return "", err
	}
	return path, nil
}
