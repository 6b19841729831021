package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	SiteUrl string `json:"site_url"`
	Agency  string `json:"agency"`
	Workers int    `json:"workers"`
}

func write(t testing.TB, path, contents string) {
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
}

func TestReadConfigMergesLocal(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "robot.json5"), `{
		// comments are allowed
		site_url: "https://itdashboard.gov/",
		agency: "Department of Commerce",
		workers: 2,
	}`)
	write(t, filepath.Join(dir, "robot.local.json5"), `{ agency: "NASA" }`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "robot.json5"))
	require.NoError(t, err)
	require.Equal(t, testConfig{
		SiteUrl: "https://itdashboard.gov/",
		Agency:  "NASA",
		Workers: 2,
	}, cfg)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "robot.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "robot.json5"), `{ site_url: `)
	_, err := ReadConfig[testConfig](filepath.Join(dir, "robot.json5"))
	require.Error(t, err)
	require.NotErrorIs(t, err, os.ErrNotExist)
}

func TestReadConfigWithDefaults(t *testing.T) {
	defaults := testConfig{SiteUrl: "https://itdashboard.gov/", Workers: 4}

	cfg, err := ReadConfigWithDefaults(filepath.Join(t.TempDir(), "robot.json5"), defaults)
	require.NoError(t, err)
	require.Equal(t, defaults, cfg)

	dir := t.TempDir()
	write(t, filepath.Join(dir, "robot.json5"), `{ workers: 1 }`)
	cfg, err = ReadConfigWithDefaults(filepath.Join(dir, "robot.json5"), defaults)
	require.NoError(t, err)
	require.Equal(t, testConfig{SiteUrl: "https://itdashboard.gov/", Workers: 1}, cfg)
}

func TestLocalName(t *testing.T) {
	require.Equal(t, "dir/robot.local.json5", localName("dir/robot.json5"))
	require.Equal(t, "robot.local", localName("robot"))
}
