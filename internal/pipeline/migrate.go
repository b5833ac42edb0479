package pipeline

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/volgapavel/parsAZ/internal/util"
)

// RunMigrations brings the articles schema up to date. Safe to call on an
// already migrated database.
func RunMigrations() error {
	source := util.GetEnvString("MIGRATIONS_PATH", "file://migrations")

	m, err := migrate.New(source, util.GetEnv("DATABASE_URL"))
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
