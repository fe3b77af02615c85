package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/garyjia/ai-travel-planner/pkg/database"
)

var (
	dbPath     string
	statusOnly bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long: `Apply the schema migrations compiled into the binary to the SQLite
database. Already applied versions are skipped, so the command is safe to
run repeatedly.

Examples:
  tripctl migrate --db data/travel.db
  tripctl migrate --status`,
	RunE: runMigrate,
}

func init() {
	defaultPath := "data/travel.db"
	if p := os.Getenv("DATABASE_PATH"); p != "" {
		defaultPath = p
	}
	migrateCmd.Flags().StringVar(&dbPath, "db", defaultPath, "path to the SQLite database")
	migrateCmd.Flags().BoolVar(&statusOnly, "status", false, "list applied versions without migrating")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := database.New(database.Config{Path: dbPath, MaxOpenConns: 1}, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	out := cmd.OutOrStdout()

	if statusOnly {
		applied, err := migrator.AppliedVersions()
		if err != nil {
			return fmt.Errorf("failed to read migration status (run migrate first?): %w", err)
		}
		versions := make([]int, 0, len(applied))
		for v := range applied {
			versions = append(versions, v)
		}
		sort.Ints(versions)
		fmt.Fprintf(out, "%s: %d migrations applied %v\n", dbPath, len(versions), versions)
		return nil
	}

	count, err := migrator.Run()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: applied %d migrations\n", dbPath, count)
	return nil
}
