package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/mailclean/internal/model"
	"github.com/sells-group/mailclean/internal/report"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	input      TEXT NOT NULL,
	output     TEXT NOT NULL,
	options    TEXT,
	status     TEXT NOT NULL DEFAULT 'running',
	summary    TEXT,
	error      TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS run_changes (
	id            TEXT PRIMARY KEY,
	run_id        TEXT NOT NULL REFERENCES runs(id),
	sheet         TEXT NOT NULL,
	row           INTEGER NOT NULL,
	col           INTEGER NOT NULL,
	column_name   TEXT,
	raw           TEXT NOT NULL,
	cleaned       TEXT NOT NULL,
	action        TEXT NOT NULL,
	confidence    REAL NOT NULL,
	canonical_key TEXT,
	reason        TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_run_changes_run_id ON run_changes(run_id);
CREATE INDEX IF NOT EXISTS idx_run_changes_action ON run_changes(action);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, input, output, options string) (*Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, input, output, options, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, input, output, options, string(RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &Run{
		ID:        id,
		Input:     input,
		Output:    output,
		Options:   options,
		Status:    RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, sum report.Summary) error {
	sumJSON, err := json.Marshal(sum)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal summary")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET summary = ?, status = ?, updated_at = ? WHERE id = ?`,
		string(sumJSON), string(RunStatusComplete), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, msg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET error = ?, status = ?, updated_at = ? WHERE id = ?`,
		msg, string(RunStatusFailed), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, input, output, options, status, summary, error, created_at, updated_at FROM runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	query := `SELECT id, input, output, options, status, summary, error, created_at, updated_at FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) SaveChanges(ctx context.Context, runID string, records []*model.EmailRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin changes tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_changes (id, run_id, sheet, row, col, column_name, raw, cleaned, action, confidence, canonical_key, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare changes insert")
	}
	defer stmt.Close()

	for _, rec := range records {
		if !auditWorthy(rec) {
			continue
		}
		_, err := stmt.ExecContext(ctx,
			uuid.New().String(), runID,
			rec.Pos.Sheet, rec.Pos.Row, rec.Pos.Col, rec.Pos.Column,
			rec.Raw, rec.Cleaned, string(rec.Action), rec.Confidence,
			rec.CanonicalKey, rec.Reason,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert change for run %s", runID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit changes")
}

func (s *SQLiteStore) ListChanges(ctx context.Context, runID string) ([]model.EmailRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sheet, row, col, column_name, raw, cleaned, action, confidence, canonical_key, reason
		 FROM run_changes WHERE run_id = ? ORDER BY sheet, row, col`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list changes for run %s", runID)
	}
	defer rows.Close()

	var out []model.EmailRecord
	for rows.Next() {
		var rec model.EmailRecord
		var action string
		err := rows.Scan(
			&rec.Pos.Sheet, &rec.Pos.Row, &rec.Pos.Col, &rec.Pos.Column,
			&rec.Raw, &rec.Cleaned, &action, &rec.Confidence,
			&rec.CanonicalKey, &rec.Reason,
		)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan change")
		}
		rec.Action = model.Action(action)
		rec.Changed = rec.Cleaned != rec.Raw
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list changes iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*Run, error) {
	var r Run
	var options, summaryJSON, errMsg sql.NullString

	err := row.Scan(&r.ID, &r.Input, &r.Output, &options, &r.Status, &summaryJSON, &errMsg, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan run")
	}

	if summaryJSON.Valid && summaryJSON.String != "" {
		r.Summary = &report.Summary{}
		if err := json.Unmarshal([]byte(summaryJSON.String), r.Summary); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal summary")
		}
	}
	if errMsg.Valid {
		r.Error = errMsg.String
	}
	if options.Valid {
		r.Options = options.String
	}
	return &r, nil
}
