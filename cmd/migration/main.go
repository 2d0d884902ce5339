package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"github.com/riskibarqy/football-insights/internal/platform/logging"
	"github.com/spf13/cobra"
)

var logger = logging.NewJSON(logging.LevelInfo).Named("migration")

func main() {
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "migration",
		Short:        "Apply database migrations from db/migrations",
		SilenceUsage: true,
	}

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(m *migrate.Migrate, _ []string) error {
			if err := ignoreNoChange(m.Up()); err != nil {
				return err
			}
			logger.Info("migrations applied")
			return nil
		}),
	})

	root.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations (default 1 step)",
		Args:  cobra.MaximumNArgs(1),
		RunE: withMigrator(func(m *migrate.Migrate, args []string) error {
			steps, err := parseSteps(args)
			if err != nil {
				return err
			}
			if err := ignoreNoChange(m.Steps(-steps)); err != nil {
				return err
			}
			logger.Info("migrations rolled back", "steps", steps)
			return nil
		}),
	})

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(m *migrate.Migrate, _ []string) error {
			version, dirty, err := m.Version()
			if errors.Is(err, migrate.ErrNilVersion) {
				fmt.Println("version: none")
				fmt.Println("dirty: false")
				return nil
			}
			if err != nil {
				return fmt.Errorf("read version: %w", err)
			}
			fmt.Printf("version: %d\n", version)
			fmt.Printf("dirty: %t\n", dirty)
			return nil
		}),
	})

	root.AddCommand(&cobra.Command{
		Use:   "force <version>",
		Short: "Set the schema version without running migrations",
		Args:  cobra.ExactArgs(1),
		RunE: withMigrator(func(m *migrate.Migrate, args []string) error {
			version, err := parseVersion(args[0])
			if err != nil {
				return err
			}
			if err := m.Force(version); err != nil {
				return fmt.Errorf("force version %d: %w", version, err)
			}
			logger.Info("forced version", "version", version)
			return nil
		}),
	})

	root.AddCommand(&cobra.Command{
		Use:     "goto <version>",
		Aliases: []string{"migrate"},
		Short:   "Migrate up or down to a target version",
		Args:    cobra.ExactArgs(1),
		RunE: withMigrator(func(m *migrate.Migrate, args []string) error {
			target, err := parseTarget(args[0])
			if err != nil {
				return err
			}
			if err := ignoreNoChange(m.Migrate(target)); err != nil {
				return err
			}
			logger.Info("migrated", "version", target)
			return nil
		}),
	})

	return root
}

func withMigrator(fn func(m *migrate.Migrate, args []string) error) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		dbURL := strings.TrimSpace(os.Getenv("DB_URL"))
		if dbURL == "" {
			return fmt.Errorf("DB_URL is required")
		}
		dbURL = normalizeDBURL(dbURL)

		migrationsDir, err := resolveMigrationsDir()
		if err != nil {
			return fmt.Errorf("resolve migrations dir: %w", err)
		}

		sourceURL := "file://" + filepath.ToSlash(migrationsDir)
		m, err := migrate.New(sourceURL, dbURL)
		if err != nil {
			return fmt.Errorf("create migrator: %w", err)
		}
		defer closeMigrator(m)

		logger.Info("migration source", "source", sourceURL)
		return fn(m, args)
	}
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}

	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid down steps %q: %w", args[0], err)
	}
	if steps <= 0 {
		return 0, fmt.Errorf("down steps must be > 0")
	}

	return steps, nil
}

func parseVersion(raw string) (int, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("version must be >= 0")
	}
	if value > int64(^uint(0)>>1) {
		return 0, fmt.Errorf("version is too large for this platform")
	}

	return int(value), nil
}

func parseTarget(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid target version %q: %w", raw, err)
	}
	return uint(value), nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migration changes")
		return nil
	}
	return err
}

func closeMigrator(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		logger.Warn("close migration source", "error", srcErr)
	}
	if dbErr != nil {
		logger.Warn("close migration db", "error", dbErr)
	}
}

func resolveMigrationsDir() (string, error) {
	candidates := []string{
		strings.TrimSpace(os.Getenv("MIGRATIONS_DIR")),
		strings.TrimSpace(os.Getenv("MIGRATIONS_PATH")),
		"./db/migrations",
		"/app/db/migrations",
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			continue
		}
		return abs, nil
	}

	return "", fmt.Errorf("migration directory not found (checked MIGRATIONS_DIR, MIGRATIONS_PATH, ./db/migrations, /app/db/migrations)")
}

func normalizeDBURL(raw string) string {
	if !envBool("DB_DISABLE_PREPARED_BINARY_RESULT") {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed == nil {
		return raw
	}

	query := parsed.Query()
	if query.Get("disable_prepared_binary_result") == "" {
		query.Set("disable_prepared_binary_result", "yes")
		parsed.RawQuery = query.Encode()
	}

	return parsed.String()
}

func envBool(key string) bool {
	switch strings.TrimSpace(strings.ToLower(os.Getenv(key))) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	default:
		return false
	}
}
