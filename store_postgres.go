package main

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

const (
	pgEntryColumns = `id, date, food_name, calories, COALESCE(owner, '') AS owner`
	pgUserColumns  = `id, name, role, max_calories_per_day, password, created_at`
)

// postgresStore is the production store. Schema is managed by cmd/migrate.
type postgresStore struct {
	db *pgxpool.Pool
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

/* ─── Database helpers ────────────────────────────────────────────────── */

// queryOne runs a query and scans the first row into T using RowToStructByName.
// Logs query and scan errors for debugging (e.g. struct/column mismatches).
func queryOne[T any](ctx context.Context, q querier, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := q.Query(ctx, sql, args)
	if err != nil {
		log.Printf("[queryOne] Query error: %v", err)
		var zero T
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("[queryOne] Scan error: %v", err)
	}
	return result, err
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](ctx context.Context, q querier, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := q.Query(ctx, sql, args)
	if err != nil {
		log.Printf("[queryMany] Query error: %v", err)
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		log.Printf("[queryMany] Scan error: %v", err)
	}
	return results, err
}

// newPostgresStore creates a connection pool. We use a pool (not a single conn)
// because managed Postgres providers close idle connections.
func newPostgresStore(ctx context.Context, dbURL string) (*postgresStore, error) {
	config, err := postgresPoolConfig(dbURL)
	if err != nil {
		return nil, err
	}
	return newPostgresStoreWithConfig(ctx, config)
}

func postgresPoolConfig(dbURL string) (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse DB URL: %w", err)
	}
	// Use simple query protocol to avoid "cached plan must not change result type"
	// errors from server-side prepared statement caches after schema changes.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	return config, nil
}

func newPostgresStoreWithConfig(ctx context.Context, config *pgxpool.Config) (*postgresStore, error) {
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	log.Info("DB pool ready!")
	return &postgresStore{db: pool}, nil
}

/* ─── Entries ─────────────────────────────────────────────────────────── */

func (s *postgresStore) findEntries(ctx context.Context, owner string) ([]entry, error) {
	if owner == "" {
		return queryMany[entry](ctx, s.db,
			`SELECT `+pgEntryColumns+` FROM entries ORDER BY seq`, nil)
	}
	return queryMany[entry](ctx, s.db,
		`SELECT `+pgEntryColumns+` FROM entries WHERE owner = @owner ORDER BY seq`,
		pgx.NamedArgs{"owner": owner})
}

func (s *postgresStore) insertEntry(ctx context.Context, e entry) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO entries (id, date, food_name, calories, owner)
		 VALUES (@id, @date, @foodName, @calories, @owner)`,
		pgx.NamedArgs{
			"id": e.ID, "date": e.Date, "foodName": e.FoodName,
			"calories": e.Calories, "owner": nullIfEmpty(e.Owner),
		})
	return err
}

// updateEntries issues one UPDATE per id inside a transaction. Ids are visited
// in sorted order so concurrent batches lock rows in the same order.
func (s *postgresStore) updateEntries(ctx context.Context, changes map[string]entryFields) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		for _, id := range slices.Sorted(maps.Keys(changes)) {
			cols, vals := setClauses(changes[id])
			if len(cols) == 0 {
				continue
			}
			args := pgx.NamedArgs{"id": id}
			assignments := make([]string, len(cols))
			for i, col := range cols {
				assignments[i] = col + " = @" + col
				args[col] = vals[i]
			}
			_, err := tx.Exec(ctx,
				"UPDATE entries SET "+strings.Join(assignments, ", ")+" WHERE id = @id", args)
			if err != nil {
				return fmt.Errorf("update entry %s: %w", id, err)
			}
		}
		return nil
	})
}

func (s *postgresStore) deleteEntries(ctx context.Context, ids []string) (int64, error) {
	result, err := s.db.Exec(ctx,
		"DELETE FROM entries WHERE id = ANY(@ids)",
		pgx.NamedArgs{"ids": ids})
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

/* ─── Users ───────────────────────────────────────────────────────────── */

func (s *postgresStore) findUsers(ctx context.Context) ([]user, error) {
	return queryMany[user](ctx, s.db,
		`SELECT `+pgUserColumns+` FROM users ORDER BY created_at, name`, nil)
}

func (s *postgresStore) userByID(ctx context.Context, id string) (user, error) {
	u, err := queryOne[user](ctx, s.db,
		`SELECT `+pgUserColumns+` FROM users WHERE id = @id`,
		pgx.NamedArgs{"id": id})
	if errors.Is(err, pgx.ErrNoRows) {
		return user{}, errNotFound
	}
	return u, err
}

func (s *postgresStore) userByName(ctx context.Context, name string) (user, error) {
	u, err := queryOne[user](ctx, s.db,
		`SELECT `+pgUserColumns+` FROM users WHERE name = @name`,
		pgx.NamedArgs{"name": name})
	if errors.Is(err, pgx.ErrNoRows) {
		return user{}, errNotFound
	}
	return u, err
}

func (s *postgresStore) ping(ctx context.Context) error { return s.db.Ping(ctx) }

func (s *postgresStore) close() { s.db.Close() }
