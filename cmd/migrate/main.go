package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rentbook/api/internal/config"
	"github.com/rentbook/api/internal/database"
)

var migrationsDir string

func main() {
	root := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database schema migrations",
		Long: "Applies the SQL files in the migrations directory in filename order.\n" +
			"Applied versions are tracked in the schema_migrations table, so reruns\n" +
			"only pick up new files.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&migrationsDir, "dir", "migrations", "directory containing .sql migration files")

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), runUp)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), runStatus)
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func withDatabase(ctx context.Context, fn func(context.Context, *database.Database) error) error {
	_ = godotenv.Load()

	cfg, err := config.LoadDatabase()
	if err != nil {
		return err
	}

	db, err := database.NewPostgresPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(ctx, db)
}

// migrationFiles returns the .sql files in the migrations directory sorted by
// name. Version is the filename without extension.
func migrationFiles() ([]string, error) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory %s: %w", migrationsDir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	return files, nil
}

func ensureVersionTable(ctx context.Context, db *database.Database) error {
	_, err := db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    text PRIMARY KEY,
			applied_at timestamptz NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	return nil
}

func appliedVersions(ctx context.Context, db *database.Database) (map[string]bool, error) {
	rows, err := db.Pool.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

func runUp(ctx context.Context, db *database.Database) error {
	if err := ensureVersionTable(ctx, db); err != nil {
		return err
	}

	files, err := migrationFiles()
	if err != nil {
		return err
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}

	pending := 0
	for _, file := range files {
		version := strings.TrimSuffix(file, ".sql")
		if applied[version] {
			continue
		}

		sql, err := os.ReadFile(filepath.Join(migrationsDir, file))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file, err)
		}

		// Each migration runs in its own transaction, together with its
		// version bookkeeping row.
		err = pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(sql)); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version)
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %s failed: %w", file, err)
		}

		fmt.Printf("applied  %s\n", version)
		pending++
	}

	if pending == 0 {
		fmt.Println("nothing to apply")
	}

	return nil
}

func runStatus(ctx context.Context, db *database.Database) error {
	if err := ensureVersionTable(ctx, db); err != nil {
		return err
	}

	files, err := migrationFiles()
	if err != nil {
		return err
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}

	for _, file := range files {
		version := strings.TrimSuffix(file, ".sql")
		state := "pending"
		if applied[version] {
			state = "applied"
		}
		fmt.Printf("%-8s %s\n", state, version)
	}

	return nil
}
