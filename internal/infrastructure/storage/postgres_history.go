package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"CRMDashboard/internal/domain"
	"CRMDashboard/internal/ports"
)

const historyTable = "dashboard_snapshots"

const schema = `CREATE TABLE IF NOT EXISTS dashboard_snapshots (
    id         BIGSERIAL PRIMARY KEY,
    metric_key TEXT        NOT NULL,
    red        INTEGER     NOT NULL,
    yellow     INTEGER     NOT NULL,
    green      INTEGER     NOT NULL,
    total      INTEGER     NOT NULL,
    taken_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS dashboard_snapshots_metric_taken_idx
    ON dashboard_snapshots (metric_key, taken_at DESC);`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresHistory records bucket counts of every refresh in Postgres.
type PostgresHistory struct {
	db *sql.DB
}

var _ ports.HistoryRepository = (*PostgresHistory)(nil)

// Open connects with the lib/pq driver.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// NewPostgresHistory wires a sql.DB implementation.
func NewPostgresHistory(db *sql.DB) *PostgresHistory {
	return &PostgresHistory{db: db}
}

// EnsureSchema creates the history table when missing.
func (r *PostgresHistory) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create history schema: %w", err)
	}
	return nil
}

// SaveCounts inserts one row per card in a single statement.
func (r *PostgresHistory) SaveCounts(ctx context.Context, counts []domain.BucketCount) error {
	if r.db == nil || len(counts) == 0 {
		return nil
	}

	query, args, err := insertCountsQuery(counts).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert counts: %w", err)
	}
	return nil
}

// History returns the latest rows of one metric, newest first.
func (r *PostgresHistory) History(ctx context.Context, metric string, limit int) ([]domain.BucketCount, error) {
	if r.db == nil {
		return []domain.BucketCount{}, nil
	}

	query, args, err := historyQuery(metric, limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	result := []domain.BucketCount{}
	for rows.Next() {
		var c domain.BucketCount
		if err := rows.Scan(&c.Metric, &c.Red, &c.Yellow, &c.Green, &c.Total, &c.TakenAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

func insertCountsQuery(counts []domain.BucketCount) sq.InsertBuilder {
	q := psql.Insert(historyTable).Columns("metric_key", "red", "yellow", "green", "total", "taken_at")
	for _, c := range counts {
		q = q.Values(c.Metric, c.Red, c.Yellow, c.Green, c.Total, c.TakenAt)
	}
	return q
}

func historyQuery(metric string, limit int) sq.SelectBuilder {
	if limit <= 0 {
		limit = 50
	}
	return psql.Select("metric_key", "red", "yellow", "green", "total", "taken_at").
		From(historyTable).
		Where(sq.Eq{"metric_key": metric}).
		OrderBy("taken_at DESC").
		Limit(uint64(limit))
}
