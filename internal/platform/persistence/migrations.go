package persistence

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // PostgreSQL driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // File source driver

	"github.com/wallet-ledger/internal/config"
)

// ErrDirtySchema is returned when a previous migration failed halfway and needs manual repair
var ErrDirtySchema = errors.New("ledger schema is dirty")

// RunMigrations brings the ledger schema up to the latest version in cfg.MigrationsPath
func RunMigrations(logger *slog.Logger, cfg *config.PostgresConfig) error {
	if err := validateMigrationInput(cfg); err != nil {
		return err
	}

	m, err := migrate.New(MigrationsSourceURL(cfg.MigrationsPath), cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(logger, m)

	before, dirty, err := schemaVersion(m)
	if err != nil {
		return err
	}
	if dirty {
		return fmt.Errorf("%w at version %d", ErrDirtySchema, before)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	after, _, err := schemaVersion(m)
	if err != nil {
		return err
	}
	if after == before {
		logger.Info("Ledger schema is up to date", "version", after)
	} else {
		logger.Info("Applied ledger schema migrations", "from_version", before, "to_version", after)
	}
	return nil
}

func validateMigrationInput(cfg *config.PostgresConfig) error {
	if cfg.MigrationsPath == "" {
		return errors.New("migrations path cannot be empty")
	}
	if cfg.URL == "" {
		return errors.New("database URL cannot be empty")
	}
	return nil
}

// schemaVersion reports 0 for a database that has never been migrated
func schemaVersion(m *migrate.Migrate) (uint, bool, error) {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, dirty, nil
}

func closeMigrate(logger *slog.Logger, m *migrate.Migrate) {
	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		logger.Warn("Failed to close migration source", "error", sourceErr)
	}
	if dbErr != nil {
		logger.Warn("Failed to close migration database", "error", dbErr)
	}
}

// MigrationsSourceURL normalizes a migrations directory into a golang-migrate source URL
func MigrationsSourceURL(migrationsPath string) string {
	if strings.HasPrefix(migrationsPath, "file://") {
		return migrationsPath
	}
	return "file://" + migrationsPath
}
