package restyutil

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatHeaders(t *testing.T) {
	headers := http.Header{}
	headers.Add("User-Agent", "robot")
	headers.Add("Accept", "text/html")
	headers.Add("Accept", "application/pdf")

	require.Equal(t, "Accept: text/html\nAccept: application/pdf\nUser-Agent: robot", formatHeaders(headers))
	require.Equal(t, "", formatHeaders(http.Header{}))
}

func TestFormatRequestBodyWithoutBody(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "https://itdashboard.gov/", nil)
	require.NoError(t, err)
	require.Equal(t, "", formatRequestBody(req))
	require.Equal(t, "", formatRequestBody(nil))
}
