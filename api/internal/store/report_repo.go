package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver

	"carinfo/api/internal/report"
)

// Schema creates the archive tables. Rows are only ever inserted.
const Schema = `
create table if not exists carinfo_runs (
  id          uuid primary key,
  started_at  timestamptz not null,
  finished_at timestamptz not null,
  engine      text not null,
  model       text not null,
  total       int  not null,
  succeeded   int  not null
);
create table if not exists carinfo_results (
  run_id   uuid not null references carinfo_runs(id) on delete cascade,
  position int  not null,
  filename text not null,
  data     jsonb,
  error    text,
  primary key (run_id, position)
);`

// Run describes one finished job.
type Run struct {
	ID         uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	Engine     string
	Model      string
}

type ReportRepo struct{ DB *sql.DB }

func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{DB: db} }

// Open connects with the pgx driver and pings the server.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	return db, nil
}

// Migrate applies Schema.
func (r *ReportRepo) Migrate(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, Schema)
	return err
}

// SaveRun stores the run and all its records in one transaction.
func (r *ReportRepo) SaveRun(ctx context.Context, run Run, records []report.Record) (err error) {
	sum := report.Summarize(records)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const qRun = `
insert into carinfo_runs (id, started_at, finished_at, engine, model, total, succeeded)
values ($1,$2,$3,$4,$5,$6,$7)`
	if _, err = tx.ExecContext(ctx, qRun,
		run.ID.String(), run.StartedAt, run.FinishedAt, run.Engine, run.Model, sum.Total, sum.Succeeded,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	const qResult = `
insert into carinfo_results (run_id, position, filename, data, error)
values ($1,$2,$3,$4,$5)`
	for i, rec := range records {
		var data, errText any
		if rec.Data != nil {
			js, mErr := json.Marshal(rec.Data)
			if mErr != nil {
				err = fmt.Errorf("encode %s: %w", rec.Filename, mErr)
				return err
			}
			data = string(js)
		}
		if rec.Error != "" {
			errText = rec.Error
		}
		if _, err = tx.ExecContext(ctx, qResult, run.ID.String(), i, rec.Filename, data, errText); err != nil {
			return fmt.Errorf("insert result %s: %w", rec.Filename, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
