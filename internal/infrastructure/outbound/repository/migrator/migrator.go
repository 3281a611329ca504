package migrator

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	ports "tweetbot-service/internal/domain/ports/output"
	"tweetbot-service/internal/infrastructure/config"
	"tweetbot-service/migrations"
)

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Run applies the embedded migrations for the configured driver. The memory
// driver has no schema and is a no-op.
func Run(db config.Database, direction Direction, log ports.Logger) error {
	var dir, url string
	switch db.Driver {
	case config.DriverPostgres:
		dir = "postgres"
		url = "pgx5://" + strings.TrimPrefix(db.PostgresDSN(), "postgresql://")
	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(db.SQLitePath), 0o755); err != nil {
			return fmt.Errorf("create sqlite dir: %w", err)
		}
		dir = "sqlite"
		url = "sqlite://" + db.SQLiteDSN()
	case config.DriverMemory:
		log.Debug("Memory driver has no migrations")
		return nil
	default:
		return fmt.Errorf("unknown database driver %q", db.Driver)
	}

	src, err := iofs.New(migrations.FS, dir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			log.Warn("Failed to close migrator", slog.Any("source_error", srcErr), slog.Any("db_error", dbErr))
		}
	}()

	switch direction {
	case Up:
		err = m.Up()
	case Down:
		err = m.Down()
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate %s: %w", direction, err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", verr)
	}
	log.Info("Migrations applied",
		slog.String("driver", db.Driver),
		slog.String("direction", string(direction)),
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty))
	return nil
}
