package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Run struct {
	ID         string
	StartedAt  int64
	FinishedAt int64
	SiteUrl    string
	Agency     string
	Sheet      string
	Total      int64
	Mismatches int64
}

type Finding struct {
	RunID        string
	Idx          int64
	Uii          string
	Source       string
	Verdict      string
	Orphan       bool
	ClosestTitle string
	Similarity   float64
	Error        string
}

const createRun = `insert into run (
    id, started_at, finished_at, site_url, agency, sheet, total, mismatches
) values (?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateRun(ctx context.Context, arg Run) error {
	_, err := q.db.ExecContext(ctx, createRun,
		arg.ID,
		arg.StartedAt,
		arg.FinishedAt,
		arg.SiteUrl,
		arg.Agency,
		arg.Sheet,
		arg.Total,
		arg.Mismatches,
	)
	return err
}

const createFinding = `insert into finding (
    run_id, idx, uii, source, verdict, orphan, closest_title, similarity, error
) values (?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateFinding(ctx context.Context, arg Finding) error {
	_, err := q.db.ExecContext(ctx, createFinding,
		arg.RunID,
		arg.Idx,
		arg.Uii,
		arg.Source,
		arg.Verdict,
		arg.Orphan,
		arg.ClosestTitle,
		arg.Similarity,
		arg.Error,
	)
	return err
}

const listRuns = `select id, started_at, finished_at, site_url, agency, sheet, total, mismatches
from run
order by started_at desc, id
limit ?`

func (q *Queries) ListRuns(ctx context.Context, limit int64) ([]Run, error) {
	rows, err := q.db.QueryContext(ctx, listRuns, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Run
	for rows.Next() {
		var i Run
		if err := rows.Scan(
			&i.ID,
			&i.StartedAt,
			&i.FinishedAt,
			&i.SiteUrl,
			&i.Agency,
			&i.Sheet,
			&i.Total,
			&i.Mismatches,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getRun = `select id, started_at, finished_at, site_url, agency, sheet, total, mismatches
from run
where id = ?`

func (q *Queries) GetRun(ctx context.Context, id string) (Run, error) {
	row := q.db.QueryRowContext(ctx, getRun, id)
	var i Run
	err := row.Scan(
		&i.ID,
		&i.StartedAt,
		&i.FinishedAt,
		&i.SiteUrl,
		&i.Agency,
		&i.Sheet,
		&i.Total,
		&i.Mismatches,
	)
	return i, err
}

const getFindings = `select run_id, idx, uii, source, verdict, orphan, closest_title, similarity, error
from finding
where run_id = ?
order by idx`

func (q *Queries) GetFindings(ctx context.Context, runID string) ([]Finding, error) {
	rows, err := q.db.QueryContext(ctx, getFindings, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Finding
	for rows.Next() {
		var i Finding
		if err := rows.Scan(
			&i.RunID,
			&i.Idx,
			&i.Uii,
			&i.Source,
			&i.Verdict,
			&i.Orphan,
			&i.ClosestTitle,
			&i.Similarity,
			&i.Error,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
