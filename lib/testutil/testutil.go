package testutil

import (
	"database/sql"
	"itdashboard-robot/lib/telemetry"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

type DBParams struct {
	Schema string
	// if unspecified, it will use `:memory:`, otherwise it is a file name
	// inside the test's temporary directory
	Path string
}

// SetupDB opens a sqlite database with the schema applied, it is closed when
// the test ends. Logging goes to debug under `go test -v`.
func SetupDB(t testing.TB, params DBParams) *sql.DB {
	telemetry.InitSlog(testing.Verbose())

	dbpath := ":memory:"
	if params.Path != "" && params.Path != ":memory:" {
		dbpath = filepath.Join(t.TempDir(), params.Path)
	}
	database, err := sql.Open("sqlite", dbpath)
	if err != nil {
		t.Fatal(err)
	}
	database.SetMaxOpenConns(1)
	t.Cleanup(func() {
		database.Close()
	})

	if params.Schema != "" {
		_, err = database.Exec(params.Schema)
		if err != nil {
			t.Fatal(err)
		}
	}
	return database
}
