package loaders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"

	"github.com/gobapps/gob-api/internal/utils"
)

// PostgresClient wraps the pgx pool used for every Supabase table.
type PostgresClient struct {
	pool      *pgxpool.Pool
	batchSize int
}

// NewPostgresClient connects to dsn with at most maxConns pooled connections.
// batchSize bounds the number of statements sent per pgx batch.
func NewPostgresClient(dsn string, maxConns int, batchSize int) (*PostgresClient, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}
	cfg.MaxConnIdleTime = 5 * time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if batchSize <= 0 {
		batchSize = 50
	}

	utils.Zlog.Info("Connected to PostgreSQL",
		zap.Int32("maxConns", cfg.MaxConns),
		zap.Int("batchSize", batchSize))

	return &PostgresClient{pool: pool, batchSize: batchSize}, nil
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

func (c *PostgresClient) Close() {
	c.pool.Close()
}

const undefinedTable = "42P01"

// ErrSchemaMissing marks queries against tables that were never created.
var ErrSchemaMissing = errors.New("table does not exist (run with AUTO_MIGRATE=true)")

// queryError wraps err for table, replacing an undefined_table failure with
// ErrSchemaMissing.
func queryError(table string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
		return fmt.Errorf("failed to query %s: %w", table, ErrSchemaMissing)
	}
	return fmt.Errorf("failed to query %s: %w", table, err)
}
