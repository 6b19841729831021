package workitems

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv(SiteUrlKey, "https://example.gov/")
	t.Setenv(AgencyKey, "")
	t.Setenv(InputPathKey, "")

	vars, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, Variables{SiteUrl: "https://example.gov/"}, vars)
}

func TestLoadWorkItemOverridesEnvironment(t *testing.T) {
	dir := t.TempDir()
	item := filepath.Join(dir, "work-item.json")
	err := os.WriteFile(item, []byte(`{ payload: { AGENCY_NAME: "U.S. Army Corps of Engineers" } }`), 0600)
	require.NoError(t, err)

	t.Setenv(SiteUrlKey, "https://example.gov/")
	t.Setenv(AgencyKey, "NASA")
	t.Setenv(InputPathKey, item)

	vars, err := Load(filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	require.Equal(t, Variables{
		SiteUrl:    "https://example.gov/",
		AgencyName: "U.S. Army Corps of Engineers",
	}, vars)
}

func TestLoadFlatWorkItem(t *testing.T) {
	dir := t.TempDir()
	item := filepath.Join(dir, "work-item.json")
	err := os.WriteFile(item, []byte(`{"SITE_URL": "https://mirror.gov/"}`), 0600)
	require.NoError(t, err)

	t.Setenv(SiteUrlKey, "")
	t.Setenv(AgencyKey, "")
	t.Setenv(InputPathKey, item)

	vars, err := Load(filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	require.Equal(t, Variables{SiteUrl: "https://mirror.gov/"}, vars)
}

func TestLoadBrokenWorkItem(t *testing.T) {
	dir := t.TempDir()
	item := filepath.Join(dir, "work-item.json")
	require.NoError(t, os.WriteFile(item, []byte(`{`), 0600))

	t.Setenv(InputPathKey, item)
	_, err := Load(filepath.Join(dir, "missing.env"))
	require.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(env, []byte("AGENCY_NAME=Department of Energy\n"), 0600))

	t.Setenv(SiteUrlKey, "")
	t.Setenv(AgencyKey, "")
	t.Setenv(InputPathKey, "")
	// godotenv does not override variables that are already set, even empty
	os.Unsetenv(AgencyKey)

	vars, err := Load(env)
	require.NoError(t, err)
	require.Equal(t, "Department of Energy", vars.AgencyName)
}
