package main

import (
	"context"
	"fmt"
)

// store is the persistence collaborator behind the entry gateway. Implementations
// return errNotFound for missing users; every other failure is returned as-is and
// wrapped with errStore by the caller.
type store interface {
	// findEntries returns entries in insertion order. An empty owner means all entries.
	findEntries(ctx context.Context, owner string) ([]entry, error)
	insertEntry(ctx context.Context, e entry) error
	// updateEntries applies every change-set inside a single transaction. Ids
	// that match no row are skipped.
	updateEntries(ctx context.Context, changes map[string]entryFields) error
	deleteEntries(ctx context.Context, ids []string) (int64, error)

	findUsers(ctx context.Context) ([]user, error)
	userByID(ctx context.Context, id string) (user, error)
	userByName(ctx context.Context, name string) (user, error)

	ping(ctx context.Context) error
	close()
}

// openStore picks the backend named by cfg.StoreDriver.
func openStore(ctx context.Context, cfg config) (store, error) {
	switch cfg.StoreDriver {
	case "postgres":
		return newPostgresStore(ctx, cfg.DBURL)
	case "sqlite":
		return newSQLiteStore(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q (want postgres or sqlite)", cfg.StoreDriver)
	}
}

// setClauses returns the column assignments for the non-nil fields of f, in a
// fixed order, together with their values. Both SQL backends build their UPDATE
// statements from it.
func setClauses(f entryFields) (cols []string, vals []any) {
	if f.Date != nil {
		cols = append(cols, "date")
		vals = append(vals, *f.Date)
	}
	if f.FoodName != nil {
		cols = append(cols, "food_name")
		vals = append(vals, *f.FoodName)
	}
	if f.Calories != nil {
		cols = append(cols, "calories")
		vals = append(vals, *f.Calories)
	}
	if f.Owner != nil {
		cols = append(cols, "owner")
		vals = append(vals, nullIfEmpty(*f.Owner))
	}
	return cols, vals
}

// nullIfEmpty stores an unset owner as NULL so the users foreign key holds.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
