// Package store implements the per-table record stores. Every store wraps
// one relational table with range reads, point writes, and a short-lived
// read-through cache.
//
// Reads degrade: a backing-store failure is logged and surfaces as an empty
// result, so callers cannot distinguish "no data" from "store unreachable".
// Writes return explicit errors.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the stores use.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// rangeKey builds the cache key for a (user, start, end) range read.
func rangeKey(userID string, start, end time.Time) string {
	return fmt.Sprintf("records:%s:%d:%d", userID, start.UnixNano(), end.UnixNano())
}
