package client

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/geeklib/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Client держит пул соединений с базой данных.
// DB (sqlx) используется миграциями и транзакциями выдачи книг,
// Gorm открыт поверх того же пула и обслуживает CRUD-хранилища.
type Client struct {
	DB     *sqlx.DB
	Gorm   *gorm.DB
	driver string
	logger *slog.Logger
}

// NewClient открывает соединение с базой, выбранной конфигурацией.
// Миграции не применяются, для этого есть MigrateUp.
func NewClient(cfg config.DatabaseConfig, logger *slog.Logger) (*Client, error) {
	start := time.Now()

	db, err := sqlx.Connect(sqlDriverName(cfg.Driver), cfg.DSN())
	if err != nil {
		logger.Error("failed to open database connection", "driver", cfg.Driver, "error", err)
		return nil, fmt.Errorf("ошибка открытия соединения с БД: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		// sqlite не любит параллельных писателей; in-memory база живёт, пока открыто соединение
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		if _, err := db.Exec(`PRAGMA busy_timeout=5000`); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("не удалось настроить sqlite: %w", err)
		}
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	gormDB, err := openGorm(cfg.Driver, db)
	if err != nil {
		_ = db.Close()
		logger.Error("failed to open gorm session", "error", err)
		return nil, fmt.Errorf("не удалось инициализировать GORM: %w", err)
	}

	logger.Info("database connection established successfully",
		"driver", cfg.Driver,
		"database", cfg.Name,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Client{
		DB:     db,
		Gorm:   gormDB,
		driver: cfg.Driver,
		logger: logger,
	}, nil
}

func sqlDriverName(driver string) string {
	if driver == config.DriverSQLite {
		return "sqlite3"
	}
	return "postgres"
}

func openGorm(driver string, db *sqlx.DB) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if driver == config.DriverSQLite {
		dialector = &sqlite.Dialector{DriverName: "sqlite3", Conn: db.DB}
	} else {
		dialector = postgres.New(postgres.Config{Conn: db.DB})
	}

	return gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
}

// Ping проверяет доступность базы (используется в /healthz).
func (c *Client) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *Client) Close() error {
	start := time.Now()
	err := c.DB.Close()
	if err != nil {
		c.logger.Error("failed to close database connection", "error", err)
		return err
	}
	c.logger.Info("database connection closed", "duration_ms", time.Since(start).Milliseconds())
	return nil
}
