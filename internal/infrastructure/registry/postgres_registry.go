package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"ArticlePublisher/internal/domain"
	"ArticlePublisher/internal/ports"
)

const (
	// DefaultTable holds one row per consumed asset.
	DefaultTable = "asset_usage"

	uniqueViolation = "23505"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRegistry keys the registry by asset URL so the database itself
// rejects cross-document reuse.
type PostgresRegistry struct {
	db     *sql.DB
	table  string
	logger *slog.Logger
}

var _ ports.UsageRegistry = (*PostgresRegistry)(nil)

// OpenPostgres opens a lib/pq connection pool for dsn.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping postgres: %v", domain.ErrTransientIO, err)
	}
	return db, nil
}

// NewPostgresRegistry wires a sql.DB implementation.
func NewPostgresRegistry(db *sql.DB, table string, logger *slog.Logger) *PostgresRegistry {
	if table == "" {
		table = DefaultTable
	}
	return &PostgresRegistry{db: db, table: table, logger: logger}
}

// EnsureSchema creates the usage table when it does not exist yet.
func (r *PostgresRegistry) EnsureSchema(ctx context.Context) error {
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    asset_url      TEXT PRIMARY KEY,
    document_title TEXT NOT NULL,
    document_id    TEXT NOT NULL,
    document_url   TEXT NOT NULL DEFAULT '',
    published_at   TIMESTAMPTZ NOT NULL
)`, pq.QuoteIdentifier(r.table))

	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("ensure registry schema: %w", err)
	}
	return nil
}

// UsedAssets returns every asset URL recorded so far.
func (r *PostgresRegistry) UsedAssets(ctx context.Context) (map[string]struct{}, error) {
	query, args, err := psql.Select("asset_url").From(pq.QuoteIdentifier(r.table)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build used assets query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query used assets: %v", domain.ErrTransientIO, err)
	}

	used := make(map[string]struct{})
	for rows.Next() {
		var asset string
		if err := rows.Scan(&asset); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		used[asset] = struct{}{}
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	r.debug("registry loaded", "table", r.table, "assets", len(used))
	return used, nil
}

// Append records every asset of record in one transaction. A unique
// violation means another document already owns one of the assets.
func (r *PostgresRegistry) Append(ctx context.Context, record domain.UsageRecord) error {
	if len(record.Assets) == 0 {
		return nil
	}

	insert := psql.Insert(pq.QuoteIdentifier(r.table)).
		Columns("asset_url", "document_title", "document_id", "document_url", "published_at")
	for _, asset := range record.Assets {
		insert = insert.Values(asset, record.Title, record.DocumentID, record.URL, record.PublishedAt.UTC())
	}
	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build append query: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin append: %v", domain.ErrTransientIO, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		_ = tx.Rollback()
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return fmt.Errorf("%w: %s", domain.ErrRegistryConflict, pqErr.Detail)
		}
		return fmt.Errorf("append usage: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}

	r.debug("registry appended", "table", r.table, "id", record.DocumentID, "assets", len(record.Assets))
	return nil
}

func (r *PostgresRegistry) debug(msg string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
