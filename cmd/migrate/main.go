// CLI tool to run pending Postgres migrations from db/.
// Checks the migrations table to skip already-applied files.
// Wraps each migration + record insert in a single transaction.
// Usage: go run ./cmd/migrate [-dir db]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

var datePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-\d{3}-`)

func main() {
	dbDir := flag.String("dir", "db", "directory containing *.sql migrations")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, os.Getenv("DB_URL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	files, err := filepath.Glob(filepath.Join(*dbDir, "*.sql"))
	if err != nil || len(files) == 0 {
		fmt.Fprintf(os.Stderr, "No migration files found in %s\n", *dbDir)
		os.Exit(1)
	}
	sort.Strings(files)

	applied, err := appliedMigrations(ctx, conn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading migrations table: %v\n", err)
		os.Exit(1)
	}

	ran := 0
	for _, f := range files {
		filename := filepath.Base(f)
		if applied[filename] {
			fmt.Printf("  skip: %s\n", filename)
			continue
		}

		content, err := os.ReadFile(f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", filename, err)
			os.Exit(1)
		}

		err = pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(content)); err != nil {
				return fmt.Errorf("run: %w", err)
			}
			if _, err := tx.Exec(ctx,
				"INSERT INTO migrations (migration, description) VALUES ($1, $2)",
				filename, descriptionFromFilename(filename)); err != nil {
				return fmt.Errorf("record: %w", err)
			}
			return nil
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error applying %s: %v\n", filename, err)
			os.Exit(1)
		}

		fmt.Printf("  applied: %s\n", filename)
		ran++
	}

	if ran == 0 {
		fmt.Println("No pending migrations.")
	} else {
		fmt.Printf("\n%d migration(s) applied.\n", ran)
	}
}

// appliedMigrations returns the set of recorded migration filenames. A missing
// migrations table (fresh database) yields an empty set.
func appliedMigrations(ctx context.Context, conn *pgx.Conn) (map[string]bool, error) {
	applied := make(map[string]bool)

	var exists bool
	if err := conn.QueryRow(ctx, "SELECT to_regclass('migrations') IS NOT NULL").Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return applied, nil
	}

	rows, err := conn.Query(ctx, "SELECT migration FROM migrations")
	if err != nil {
		return nil, err
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		applied[name] = true
	}
	return applied, nil
}

// descriptionFromFilename strips the YYYY-MM-DD-NNN- prefix and .sql suffix.
func descriptionFromFilename(filename string) string {
	name := strings.TrimSuffix(filename, ".sql")
	name = datePrefix.ReplaceAllString(name, "")
	return strings.ReplaceAll(name, "-", " ")
}
