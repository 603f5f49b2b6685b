package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Environment выбирает, к какой базе данных подключается процесс.
type Environment string

const (
	Production  Environment = "production"
	Development Environment = "development"
	Test        Environment = "test"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	Environment    Environment   `env:"APP_ENV" envDefault:"development"`
	ServerPort     string        `env:"SERVER_PORT" envDefault:"8080"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	Database DatabaseConfig
	RabbitMQ RabbitMQConfig
	Minio    MinioConfig
}

// DatabaseConfig описывает подключение к хранилищу.
// Если DATABASE_URL задан, остальные поля игнорируются.
type DatabaseConfig struct {
	Driver       string `env:"DATABASE_DRIVER" envDefault:"postgres"`
	URL          string `env:"DATABASE_URL"`
	Host         string `env:"DATABASE_HOST" envDefault:"localhost"`
	Port         string `env:"DATABASE_PORT" envDefault:"5432"`
	User         string `env:"DATABASE_USER" envDefault:"postgres"`
	Password     string `env:"DATABASE_PASSWORD"`
	SSLMode      string `env:"DATABASE_SSLMODE" envDefault:"disable"`
	Name         string `env:"DATABASE_NAME"`
	MaxOpenConns int    `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"25"`
}

// RabbitMQConfig: пустой URL отключает публикацию событий выдачи книг.
type RabbitMQConfig struct {
	URL       string `env:"RABBITMQ_URL"`
	QueueName string `env:"RABBITMQ_QUEUE_NAME" envDefault:"library_events"`
}

// MinioConfig: пустой endpoint отключает архивирование событий.
type MinioConfig struct {
	Endpoint        string `env:"MINIO_ENDPOINT"`
	AccessKeyID     string `env:"MINIO_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"MINIO_SECRET_ACCESS_KEY"`
	UseSSL          bool   `env:"MINIO_USE_SSL"`
	BucketName      string `env:"MINIO_BUCKET_NAME" envDefault:"library-events"`
	Region          string `env:"MINIO_REGION" envDefault:"us-east-1"`
}

// LoadConfig загружает конфигурацию из переменных окружения.
// Если рядом лежит .env файл, он загружается первым.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("ошибка загрузки .env файла: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга конфигурации из окружения: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.Database.Name == "" {
		cfg.Database.Name = "geeklib_" + string(cfg.Environment)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Environment {
	case Production, Development, Test:
	default:
		return fmt.Errorf("неизвестное окружение APP_ENV=%q (production, development, test)", c.Environment)
	}

	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("неизвестный драйвер DATABASE_DRIVER=%q (postgres, sqlite)", c.Database.Driver)
	}

	if c.Minio.Endpoint != "" && (c.Minio.AccessKeyID == "" || c.Minio.SecretAccessKey == "") {
		return fmt.Errorf("MINIO_ACCESS_KEY_ID and MINIO_SECRET_ACCESS_KEY must be set when MINIO_ENDPOINT is set")
	}

	return nil
}

// DSN возвращает строку подключения для выбранного драйвера.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}

	if d.Driver == DriverSQLite {
		return d.Name + ".db"
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(d.Host, d.Port),
		Path:   "/" + d.Name,
	}
	if d.Password != "" {
		u.User = url.UserPassword(d.User, d.Password)
	} else {
		u.User = url.User(d.User)
	}
	q := url.Values{}
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()

	return u.String()
}

// String скрывает пароли при выводе в лог.
func (c *Config) String() string {
	return fmt.Sprintf("Config{env: %s, port: %s, db: %s/%s, rabbitmq: %t, minio: %t}",
		c.Environment, c.ServerPort, c.Database.Driver, c.Database.Name,
		c.RabbitMQ.URL != "", c.Minio.Endpoint != "")
}
