package client

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/GoArmGo/geeklib/internal/config"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// MigrateUp применяет все доступные миграции к бд
func (c *Client) MigrateUp() error {
	m, closeFn, err := c.newMigrator()
	if err != nil {
		return err
	}
	defer closeFn()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		c.logger.Info("migrations not required, database is up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("ошибка выполнения миграций: %w", err)
	}

	c.logger.Info("migrations applied successfully")
	return nil
}

// MigrateDown откатывает последние steps миграций.
func (c *Client) MigrateDown(steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}

	m, closeFn, err := c.newMigrator()
	if err != nil {
		return err
	}
	defer closeFn()

	err = m.Steps(-steps)
	if errors.Is(err, migrate.ErrNoChange) {
		c.logger.Info("nothing to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("ошибка отката миграций: %w", err)
	}

	c.logger.Info("migrations rolled back", "steps", steps)
	return nil
}

// newMigrator собирает мигратор под текущий драйвер. Оба драйвера работают
// на общем пуле клиента, поэтому строка подключения может быть и URL, и
// key/value DSN lib/pq. Для sqlite мигратор закрывать нельзя: Close драйвера
// закрыл бы и пул клиента (а in-memory база пропала бы вместе с ним).
// Для postgres мигратор держит одно соединение из пула и возвращает его при закрытии.
func (c *Client) newMigrator() (*migrate.Migrate, func(), error) {
	if c.driver == config.DriverSQLite {
		src, err := iofs.New(migrationsFS, "migrations/sqlite")
		if err != nil {
			return nil, nil, fmt.Errorf("не удалось открыть встроенные миграции: %w", err)
		}
		drv, err := sqlite3.WithInstance(c.DB.DB, &sqlite3.Config{})
		if err != nil {
			return nil, nil, fmt.Errorf("не удалось создать драйвер миграций sqlite: %w", err)
		}
		m, err := migrate.NewWithInstance("iofs", src, "sqlite3", drv)
		if err != nil {
			return nil, nil, fmt.Errorf("не удалось создать экземпляр мигратора: %w", err)
		}
		return m, func() { _ = src.Close() }, nil
	}

	ctx := context.Background()
	conn, err := c.DB.Conn(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("не удалось получить соединение для миграций: %w", err)
	}
	drv, err := postgres.WithConnection(ctx, conn, &postgres.Config{})
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("не удалось создать драйвер миграций postgres: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations/postgres")
	if err != nil {
		_ = drv.Close()
		return nil, nil, fmt.Errorf("не удалось открыть встроенные миграции: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", drv)
	if err != nil {
		_ = src.Close()
		_ = drv.Close()
		return nil, nil, fmt.Errorf("не удалось создать экземпляр мигратора: %w", err)
	}
	return m, func() {
		// драйвер создан через WithConnection: Close возвращает соединение, пул остаётся открытым
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			c.logger.Warn("failed to close migrator", "source_error", srcErr, "database_error", dbErr)
		}
	}, nil
}
