package main

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	_ "modernc.org/sqlite"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

const (
	sqliteEntryColumns = `id, date, food_name, calories, COALESCE(owner, '')`
	sqliteUserColumns  = `id, name, role, max_calories_per_day, password, created_at`
)

// sqliteStore backs local development and tests. The schema is applied on open.
type sqliteStore struct {
	db *sql.DB
}

// newSQLiteStore opens a SQLite database at the given path, enables WAL mode
// and foreign keys, and applies the embedded schema.
func newSQLiteStore(ctx context.Context, path string) (*sqliteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps the per-connection pragmas in force for every query.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

/* ─── Entries ─────────────────────────────────────────────────────────── */

func (s *sqliteStore) findEntries(ctx context.Context, owner string) ([]entry, error) {
	query := `SELECT ` + sqliteEntryColumns + ` FROM entries`
	var args []any
	if owner != "" {
		query += ` WHERE owner = ?`
		args = append(args, owner)
	}
	rows, err := s.db.QueryContext(ctx, query+` ORDER BY seq`, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []entry
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.ID, &e.Date, &e.FoodName, &e.Calories, &e.Owner); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *sqliteStore) insertEntry(ctx context.Context, e entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (id, date, food_name, calories, owner) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Date, e.FoodName, e.Calories, nullIfEmpty(e.Owner))
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

func (s *sqliteStore) updateEntries(ctx context.Context, changes map[string]entryFields) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, id := range slices.Sorted(maps.Keys(changes)) {
		cols, vals := setClauses(changes[id])
		if len(cols) == 0 {
			continue
		}
		for i := range cols {
			cols[i] += " = ?"
		}
		_, err := tx.ExecContext(ctx,
			"UPDATE entries SET "+strings.Join(cols, ", ")+" WHERE id = ?",
			append(vals, id)...)
		if err != nil {
			return fmt.Errorf("update entry %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func (s *sqliteStore) deleteEntries(ctx context.Context, ids []string) (int64, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM entries WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return 0, fmt.Errorf("delete entries: %w", err)
	}
	return result.RowsAffected()
}

/* ─── Users ───────────────────────────────────────────────────────────── */

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (user, error) {
	var (
		u     user
		limit sql.NullInt64
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Role, &limit, &u.Password, &u.CreatedAt); err != nil {
		return user{}, err
	}
	if limit.Valid {
		v := int(limit.Int64)
		u.MaxCaloriesPerDay = &v
	}
	return u, nil
}

func (s *sqliteStore) findUsers(ctx context.Context) ([]user, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteUserColumns+` FROM users ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []user
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *sqliteStore) userByID(ctx context.Context, id string) (user, error) {
	return s.userWhere(ctx, "id", id)
}

func (s *sqliteStore) userByName(ctx context.Context, name string) (user, error) {
	return s.userWhere(ctx, "name", name)
}

func (s *sqliteStore) userWhere(ctx context.Context, col, val string) (user, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+sqliteUserColumns+` FROM users WHERE `+col+` = ?`, val))
	if errors.Is(err, sql.ErrNoRows) {
		return user{}, errNotFound
	}
	if err != nil {
		return user{}, fmt.Errorf("query user by %s: %w", col, err)
	}
	return u, nil
}

func (s *sqliteStore) ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *sqliteStore) close() { s.db.Close() }
