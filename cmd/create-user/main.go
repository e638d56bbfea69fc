// CLI tool to create a user with a bcrypt-hashed password.
// Usage: go run ./cmd/create-user [-admin] [-max-calories 2100] [-driver sqlite -sqlite-path calories.db]
package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

const insertUserSQL = `INSERT INTO users (id, name, role, max_calories_per_day, password, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

func main() {
	admin := flag.Bool("admin", false, "create an admin user")
	maxCalories := flag.Int("max-calories", 0, "daily calorie limit (0 = no limit)")
	driver := flag.String("driver", "", "store driver: postgres or sqlite (default $STORE_DRIVER or postgres)")
	sqlitePath := flag.String("sqlite-path", "", "SQLite file (default $SQLITE_PATH or calories.db)")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)

	fmt.Print("Password: ")
	password, _ := reader.ReadString('\n')
	password = strings.TrimSpace(password)

	if name == "" || password == "" {
		fmt.Fprintln(os.Stderr, "Name and password are required")
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error hashing password: %v\n", err)
		os.Exit(1)
	}

	role := ""
	if *admin {
		role = "admin"
	}
	var limit any
	if *maxCalories > 0 {
		limit = *maxCalories
	}
	id := uuid.NewString()
	args := []any{id, name, role, limit, string(hash), time.Now().UTC()}

	ctx := context.Background()
	storeDriver := firstNonEmpty(*driver, os.Getenv("STORE_DRIVER"), "postgres")
	path := firstNonEmpty(*sqlitePath, os.Getenv("SQLITE_PATH"), "calories.db")
	if err := insertUser(ctx, storeDriver, path, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nUser created successfully!\n")
	fmt.Printf("  ID:   %s\n", id)
	fmt.Printf("  Name: %s\n", name)
	if role != "" {
		fmt.Printf("  Role: %s\n", role)
	}
}

// insertUser writes one users row to the backend named by storeDriver.
func insertUser(ctx context.Context, storeDriver, sqlitePath string, args []any) error {
	switch storeDriver {
	case "postgres":
		return insertPostgres(ctx, os.Getenv("DB_URL"), args)
	case "sqlite":
		return insertSQLite(ctx, sqlitePath, args)
	default:
		return fmt.Errorf("unknown driver %q", storeDriver)
	}
}

func insertPostgres(ctx context.Context, dbURL string, args []any) error {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(ctx)

	_, err = conn.Exec(ctx, insertUserSQL, args...)
	return err
}

// insertSQLite expects the schema to exist already; the API server applies it
// on first start.
func insertSQLite(ctx context.Context, path string, args []any) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, insertUserSQL, args...)
	return err
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
