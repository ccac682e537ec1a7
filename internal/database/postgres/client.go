package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nurseryhub/nursery-api/pkg/db"
	apperrors "github.com/nurseryhub/nursery-api/pkg/errors"
	"github.com/nurseryhub/nursery-api/pkg/logger"
	"github.com/nurseryhub/nursery-api/pkg/metrics"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

// dateLayout is the wire format of birth and start dates
const dateLayout = "2006-01-02"

// Client wraps a pgx connection pool with observability
type Client struct {
	pool *pgxpool.Pool
}

// NewClient opens a pool using the shared pool settings and verifies connectivity
func NewClient(ctx context.Context, cfg db.PoolConfig) (*Client, error) {
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("PostgreSQL client initialized",
		zap.Int32("max_conns", cfg.MaxConns),
		zap.Int32("min_conns", cfg.MinConns),
	)

	return &Client{pool: pool}, nil
}

// NewClientFromPool wraps an existing pool
func NewClientFromPool(pool *pgxpool.Pool) *Client {
	return &Client{pool: pool}
}

// Close closes the connection pool
func (c *Client) Close() {
	if c.pool != nil {
		c.pool.Close()
		logger.Info("PostgreSQL connection pool closed")
	}
}

// Ping checks if the database connection is alive
func (c *Client) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

// Stats returns connection pool statistics
func (c *Client) Stats() *pgxpool.Stat {
	return c.pool.Stat()
}

// recordMetrics records database operation metrics
func recordMetrics(operation, status string, duration float64) {
	metrics.DBOperationDuration.WithLabelValues(operation, status).Observe(duration)
	metrics.DBOperationTotal.WithLabelValues(operation, status).Inc()
}

// finish records the outcome of an operation and translates driver errors
func finish(ctx context.Context, operation string, start time.Time, err error, notFound string) error {
	duration := metrics.MeasureDuration(start)

	switch {
	case err == nil:
		recordMetrics(operation, "success", duration)
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		recordMetrics(operation, "not_found", duration)
		return apperrors.NotFoundError(notFound)
	case isUniqueViolation(err):
		recordMetrics(operation, "conflict", duration)
		return apperrors.ConflictError(fmt.Sprintf("%s already exists", notFound))
	default:
		recordMetrics(operation, "error", duration)
		logger.LogAPICall(ctx, "postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("postgres %s: %w", operation, err)
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// parseDate converts a YYYY-MM-DD value into a DATE parameter
func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, apperrors.InvalidInputError(field, "must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

// nullableText maps an empty string to SQL NULL
func nullableText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
