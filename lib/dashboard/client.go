package dashboard

import (
	"context"
	"fmt"
	"itdashboard-robot/lib/restyutil"
	"itdashboard-robot/lib/telemetry"
	"net/url"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("itdashboard.lib.dashboard")

const DefaultBaseUrl = "https://itdashboard.gov/"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client
	opts    ClientOptions
}

type ClientOptions struct {
	BaseUrl string
	// per request timeout, defaults to 30s
	Timeout time.Duration
	// how long to wait between polls while a business case is still being
	// generated, defaults to 2s
	DownloadWait time.Duration
	// how many times to poll a business case that is still being generated,
	// defaults to 5
	DownloadRetries int
	// wrap the transport so requests look like a browser to cloudflare
	BypassCloudflare bool
	// when not nil every HTTP exchange is dumped here at debug level
	Dump restyutil.InstrumentOutput
}

func (o *ClientOptions) setDefaults() {
	if o.BaseUrl == "" {
		o.BaseUrl = DefaultBaseUrl
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.DownloadWait <= 0 {
		o.DownloadWait = 2 * time.Second
	}
	if o.DownloadRetries <= 0 {
		o.DownloadRetries = 5
	}
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	_, span := tracer.Start(ctx, "NewClient")
	defer span.End()

	opts.setDefaults()
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if baseUrl.Scheme == "" || baseUrl.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", opts.BaseUrl)
	}

	client := resty.New()
	client.SetTimeout(opts.Timeout)
	client.SetHeader("user-agent", userAgent)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	if opts.BypassCloudflare {
		client.SetTransport(cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport))
	}

	telemetry.InstrumentResty(client, "itdashboard.lib.dashboard/http")
	restyutil.DumpExchanges(client, opts.Dump)

	return &Client{
		BaseUrl: baseUrl,
		Http:    client,
		opts:    opts,
	}, nil
}

func (c *Client) resolve(href string) (string, error) {
	link, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return c.BaseUrl.ResolveReference(link).String(), nil
}
