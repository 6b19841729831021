package runstore

import (
	"context"
	"database/sql"
	"fmt"
	"itdashboard-robot/lib/reconcile"
	"itdashboard-robot/lib/runstore/db"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("itdashboard.lib.runstore")

type Config struct {
	// a sqlite file path, ":memory:", or a libsql:// / https:// url of a
	// remote libsql database
	File string `json:"file"`
}

func isRemote(file string) bool {
	for _, scheme := range []string{"libsql://", "http://", "https://", "ws://", "wss://"} {
		if strings.HasPrefix(file, scheme) {
			return true
		}
	}
	return false
}

// OpenDB opens the database named by config and makes sure the schema
// exists.
func (config Config) OpenDB() (*sql.DB, error) {
	if config.File == "" {
		return nil, fmt.Errorf("a path was not specified")
	}

	var database *sql.DB
	var err error
	switch {
	case isRemote(config.File):
		database, err = sql.Open("libsql", config.File)
		if err != nil {
			return nil, err
		}
	default:
		if config.File != ":memory:" {
			err = os.MkdirAll(filepath.Dir(config.File), 0777)
			if err != nil {
				return nil, err
			}
		}
		database, err = sql.Open("sqlite", config.File)
		if err != nil {
			return nil, err
		}
		// a single connection keeps :memory: databases alive across
		// queries and avoids SQLITE_BUSY on files
		database.SetMaxOpenConns(1)
		_, err = database.Exec("PRAGMA foreign_keys = ON")
		if err != nil {
			database.Close()
			return nil, err
		}
	}

	_, err = database.Exec(db.Schema)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return database, nil
}

type Store struct {
	db  *sql.DB
	qry *db.Queries
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:  database,
		qry: db.New(database),
	}
}

func Open(config Config) (Store, error) {
	database, err := config.OpenDB()
	if err != nil {
		return Store{}, err
	}
	return NewStore(database), nil
}

func (s Store) Close() error {
	return s.db.Close()
}

// Finding is the outcome for one business case of a run.
type Finding struct {
	UII     string
	Source  string
	Verdict reconcile.Verdict
	// no sheet row carried the document's identifier
	Orphan       bool
	ClosestTitle string
	Similarity   float64
	// set when the document could not be downloaded or read, such findings
	// carry FieldMissing
	Error string
}

type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	SiteUrl    string
	Agency     string
	Sheet      string
	Findings   []Finding
}

type RunSummary struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	SiteUrl    string
	Agency     string
	Sheet      string
	Total      int
	Mismatches int
}

func (r RunSummary) Passing() bool {
	return r.Mismatches == 0
}

func (s Store) SaveRun(ctx context.Context, run Run) error {
	ctx, span := tracer.Start(ctx, "SaveRun")
	defer span.End()
	span.SetAttributes(attribute.String("run", run.ID), attribute.Int("findings", len(run.Findings)))

	err := s.saveRun(ctx, run)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save run")
	}
	return err
}

func (s Store) saveRun(ctx context.Context, run Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	mismatches := 0
	for _, f := range run.Findings {
		if f.Verdict != reconcile.Match {
			mismatches++
		}
	}

	err = txqry.CreateRun(ctx, db.Run{
		ID:         run.ID,
		StartedAt:  run.StartedAt.Unix(),
		FinishedAt: run.FinishedAt.Unix(),
		SiteUrl:    run.SiteUrl,
		Agency:     run.Agency,
		Sheet:      run.Sheet,
		Total:      int64(len(run.Findings)),
		Mismatches: int64(mismatches),
	})
	if err != nil {
		return err
	}

	for i, f := range run.Findings {
		err = txqry.CreateFinding(ctx, db.Finding{
			RunID:        run.ID,
			Idx:          int64(i),
			Uii:          f.UII,
			Source:       f.Source,
			Verdict:      f.Verdict.String(),
			Orphan:       f.Orphan,
			ClosestTitle: f.ClosestTitle,
			Similarity:   f.Similarity,
			Error:        f.Error,
		})
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func summaryFromRow(r db.Run) RunSummary {
	return RunSummary{
		ID:         r.ID,
		StartedAt:  time.Unix(r.StartedAt, 0),
		FinishedAt: time.Unix(r.FinishedAt, 0),
		SiteUrl:    r.SiteUrl,
		Agency:     r.Agency,
		Sheet:      r.Sheet,
		Total:      int(r.Total),
		Mismatches: int(r.Mismatches),
	}
}

// ListRuns returns the most recent runs first.
func (s Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.qry.ListRuns(ctx, int64(limit))
	if err != nil {
		return nil, err
	}
	out := make([]RunSummary, len(rows))
	for i, r := range rows {
		out[i] = summaryFromRow(r)
	}
	return out, nil
}

func (s Store) GetRun(ctx context.Context, id string) (RunSummary, error) {
	row, err := s.qry.GetRun(ctx, id)
	if err != nil {
		return RunSummary{}, err
	}
	return summaryFromRow(row), nil
}

func (s Store) GetFindings(ctx context.Context, runID string) ([]Finding, error) {
	rows, err := s.qry.GetFindings(ctx, runID)
	if err != nil {
		return nil, err
	}
	out := make([]Finding, len(rows))
	for i, r := range rows {
		verdict, err := reconcile.ParseVerdict(r.Verdict)
		if err != nil {
			return nil, fmt.Errorf("finding %d of run %s: %w", r.Idx, runID, err)
		}
		out[i] = Finding{
			UII:          r.Uii,
			Source:       r.Source,
			Verdict:      verdict,
			Orphan:       r.Orphan,
			ClosestTitle: r.ClosestTitle,
			Similarity:   r.Similarity,
			Error:        r.Error,
		}
	}
	return out, nil
}
