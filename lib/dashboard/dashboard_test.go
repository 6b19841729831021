package dashboard

import (
	"context"
	"fmt"
	"itdashboard-robot/lib/reconcile"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const landingPage = `<html><body>
<a href="#home-dive-in">DIVE IN</a>
<div id="agency-tiles-widget"><div class="row">
  <div class="col-sm-12"><a href="/drupal/summary/006">
    <span class="h4 w200">Department of Commerce</span><br>
    <span class="h5 w200">Total FY2021 Spending:</span><br>
    <span class="h1 w900">$3.2B</span>
  </a></div>
  <div class="col-sm-12"><a href="/drupal/summary/026">
    <span class="h4 w200">National Aeronautics and Space Administration</span><br>
    <span class="h5 w200">Total FY2021 Spending:</span><br>
    <span class="h1 w900">$2.4B</span>
  </a></div>
  <div class="col-sm-12"><span>broken tile</span></div>
</div></div>
</body></html>`

const agencyPage = `<html><body>
<table id="investments-table-object">
<thead><tr><th>UII</th><th>Bureau</th><th>Investment Title</th><th>Total</th><th>Type</th><th>CIO</th><th>#</th></tr></thead>
<tbody>
<tr>
  <td><a href="/drupal/summary/006/006-000001234">006-000001234</a></td>
  <td>Office of the Secretary</td>
  <td>Network  Modernization</td>
  <td>12.5</td>
  <td>Major IT Investments</td>
  <td>4</td>
  <td>3</td>
</tr>
<tr>
  <td>006-000005678</td>
  <td>Census Bureau</td>
  <td>Field Operations</td>
  <td>1.0</td>
  <td>Non-Major IT Investments</td>
  <td>NA</td>
  <td>0</td>
</tr>
<tr><td colspan="7">Showing all entries</td></tr>
</tbody>
</table>
</body></html>`

const detailPage = `<html><body>
<div id="business-case-pdf"><a href="/api/v1/business_case/006-000001234.pdf">Download Business Case PDF</a></div>
</body></html>`

const emptyDetailPage = `<html><body><div id="business-case-pdf"></div></body></html>`

func newServer(t testing.TB, pdfPolls int32) (*httptest.Server, *int32) {
	var polls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, landingPage)
	})
	mux.HandleFunc("/drupal/summary/006", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, agencyPage)
	})
	mux.HandleFunc("/drupal/summary/006/006-000001234", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, detailPage)
	})
	mux.HandleFunc("/drupal/summary/006/006-000000000", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, emptyDetailPage)
	})
	mux.HandleFunc("/api/v1/business_case/006-000001234.pdf", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&polls, 1) <= pdfPolls {
			w.WriteHeader(http.StatusAccepted)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		fmt.Fprint(w, "%PDF-1.4\n% fake business case\n")
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &polls
}

func newClient(t testing.TB, server *httptest.Server) *Client {
	client, err := NewClient(context.Background(), ClientOptions{
		BaseUrl:         server.URL + "/",
		Timeout:         5 * time.Second,
		DownloadWait:    time.Millisecond,
		DownloadRetries: 3,
	})
	require.NoError(t, err)
	return client
}

func TestFetchAgencies(t *testing.T) {
	server, _ := newServer(t, 0)
	client := newClient(t, server)

	agencies, err := client.FetchAgencies(context.Background())
	require.NoError(t, err)

	diff := cmp.Diff([]Agency{
		{
			Name:     "Department of Commerce",
			Spending: "$3.2B",
			Href:     server.URL + "/drupal/summary/006",
		},
		{
			Name:     "National Aeronautics and Space Administration",
			Spending: "$2.4B",
			Href:     server.URL + "/drupal/summary/026",
		},
	}, agencies)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestFetchInvestments(t *testing.T) {
	server, _ := newServer(t, 0)
	client := newClient(t, server)

	investments, err := client.FetchInvestments(context.Background(), Agency{
		Name: "Department of Commerce",
		Href: server.URL + "/drupal/summary/006",
	})
	require.NoError(t, err)

	diff := cmp.Diff([]Investment{
		{
			Record: reconcile.TabularRecord{
				UII:          "006-000001234",
				Bureau:       "Office of the Secretary",
				Title:        "Network Modernization",
				Spending:     "12.5",
				Type:         "Major IT Investments",
				CIORating:    "4",
				ProjectCount: "3",
			},
			DetailHref: server.URL + "/drupal/summary/006/006-000001234",
		},
		{
			Record: reconcile.TabularRecord{
				UII:          "006-000005678",
				Bureau:       "Census Bureau",
				Title:        "Field Operations",
				Spending:     "1.0",
				Type:         "Non-Major IT Investments",
				CIORating:    "NA",
				ProjectCount: "0",
			},
		},
	}, investments)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestFetchInvestmentsWithoutLink(t *testing.T) {
	server, _ := newServer(t, 0)
	client := newClient(t, server)

	_, err := client.FetchInvestments(context.Background(), Agency{Name: "Nowhere"})
	require.ErrorIs(t, err, ErrAgencyNotFound)
}

func TestDownloadBusinessCase(t *testing.T) {
	server, polls := newServer(t, 2)
	client := newClient(t, server)
	dir := t.TempDir()

	path, err := client.DownloadBusinessCase(
		context.Background(),
		server.URL+"/drupal/summary/006/006-000001234",
		dir,
		"006-000001234",
	)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "006-000001234.pdf"), path)
	require.Equal(t, int32(3), atomic.LoadInt32(polls))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(contents), "%PDF-1.4")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary download files are cleaned up")
}

func TestDownloadBusinessCaseNeverReady(t *testing.T) {
	server, _ := newServer(t, 100)
	client := newClient(t, server)

	_, err := client.DownloadBusinessCase(
		context.Background(),
		server.URL+"/drupal/summary/006/006-000001234",
		t.TempDir(),
		"006-000001234",
	)
	require.Error(t, err)
}

func TestDownloadBusinessCaseMissingLink(t *testing.T) {
	server, _ := newServer(t, 0)
	client := newClient(t, server)

	_, err := client.DownloadBusinessCase(
		context.Background(),
		server.URL+"/drupal/summary/006/006-000000000",
		t.TempDir(),
		"006-000000000",
	)
	require.ErrorIs(t, err, ErrNoBusinessCase)
}

func TestFileName(t *testing.T) {
	require.Equal(t, "006-000001234.pdf", FileName("006-000001234"))
	require.Equal(t, "a_b.pdf", FileName("a/b"))
}

func TestNewClientRejectsRelativeUrl(t *testing.T) {
	_, err := NewClient(context.Background(), ClientOptions{BaseUrl: "itdashboard.gov"})
	require.Error(t, err)
}
