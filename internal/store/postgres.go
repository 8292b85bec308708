package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/mailclean/internal/db"
	"github.com/sells-group/mailclean/internal/model"
	"github.com/sells-group/mailclean/internal/report"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool; tests use it with pgxmock.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	input      TEXT NOT NULL,
	output     TEXT NOT NULL,
	options    JSONB,
	status     TEXT NOT NULL DEFAULT 'running',
	summary    JSONB,
	error      TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
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
	confidence    DOUBLE PRECISION NOT NULL,
	canonical_key TEXT,
	reason        TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_run_changes_run_id ON run_changes(run_id);
CREATE INDEX IF NOT EXISTS idx_run_changes_action ON run_changes(action);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, input, output, options string) (*Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	var opts any
	if options != "" {
		opts = options
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, input, output, options, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, input, output, opts, string(RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
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

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, sum report.Summary) error {
	sumJSON, err := json.Marshal(sum)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal summary")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET summary = $1, status = $2, updated_at = $3 WHERE id = $4`,
		string(sumJSON), string(RunStatusComplete), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, msg string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET error = $1, status = $2, updated_at = $3 WHERE id = $4`,
		msg, string(RunStatusFailed), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, input, output, options, status, summary, error, created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	)
	r, err := scanPgRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.New("run not found")
	}
	return r, err
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	query := `SELECT id, input, output, options, status, summary, error, created_at, updated_at FROM runs`
	var args []any

	argn := 1
	if filter.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(filter.Status))
		argn++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT $` + strconv.Itoa(argn)
	args = append(args, limit)
	argn++

	if filter.Offset > 0 {
		query += ` OFFSET $` + strconv.Itoa(argn)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanPgRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

var changeColumns = []string{
	"id", "run_id", "sheet", "row", "col", "column_name",
	"raw", "cleaned", "action", "confidence", "canonical_key", "reason",
}

func (s *PostgresStore) SaveChanges(ctx context.Context, runID string, records []*model.EmailRecord) error {
	var rows [][]any
	for _, rec := range records {
		if !auditWorthy(rec) {
			continue
		}
		rows = append(rows, []any{
			uuid.New().String(), runID,
			rec.Pos.Sheet, rec.Pos.Row, rec.Pos.Col, rec.Pos.Column,
			rec.Raw, rec.Cleaned, string(rec.Action), rec.Confidence,
			rec.CanonicalKey, rec.Reason,
		})
	}

	_, err := db.CopyFrom(ctx, s.pool, "run_changes", changeColumns, rows)
	return eris.Wrapf(err, "postgres: save changes for run %s", runID)
}

func (s *PostgresStore) ListChanges(ctx context.Context, runID string) ([]model.EmailRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT sheet, row, col, column_name, raw, cleaned, action, confidence, canonical_key, reason
		 FROM run_changes WHERE run_id = $1 ORDER BY sheet, row, col`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list changes for run %s", runID)
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
			return nil, eris.Wrap(err, "postgres: scan change")
		}
		rec.Action = model.Action(action)
		rec.Changed = rec.Cleaned != rec.Raw
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list changes iterate")
}

func scanPgRun(row scannable) (*Run, error) {
	var r Run
	var options, summaryJSON, errMsg *string

	err := row.Scan(&r.ID, &r.Input, &r.Output, &options, &r.Status, &summaryJSON, &errMsg, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, eris.Wrap(err, "postgres: scan run")
	}

	if summaryJSON != nil && *summaryJSON != "" {
		r.Summary = &report.Summary{}
		if err := json.Unmarshal([]byte(*summaryJSON), r.Summary); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal summary")
		}
	}
	if errMsg != nil {
		r.Error = *errMsg
	}
	if options != nil {
		r.Options = *options
	}
	return &r, nil
}
