package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Priya-753/notion-clone/internal/domain/repositories"
)

// RepositoryConfig is shared by the Postgres repositories.
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames are the table names after applying TABLE_PREFIX.
type TableNames struct {
	Prefix         string
	Documents      string
	DocumentImages string
}

func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Prefix:         prefix,
		Documents:      prefix + "documents",
		DocumentImages: prefix + "document_images",
	}
}

// CreateConnectionPool opens a pgx pool and pings it.
//
// Connections through a transaction pooler (PgBouncer, port 6543 on Supabase)
// cannot use server-side prepared statements, so for that port the pool
// switches to describe caching unless the URL already chose a mode with
// default_query_exec_mode. Table names are interpolated before statements
// are prepared, so each prefix gets its own statement cache entries.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	cfg.MaxConns = 25
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute

	conn := cfg.ConnConfig
	if conn.Port == 6543 && conn.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		conn.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("using describe cache behind transaction pooler", "port", conn.Port)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction stored in ctx, or pool when there is
// none, so repositories join a surrounding ExecTx automatically.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
