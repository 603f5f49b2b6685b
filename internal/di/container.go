package di

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/geeklib/internal/adapter/storage/minio"
	"github.com/GoArmGo/geeklib/internal/app"
	"github.com/GoArmGo/geeklib/internal/config"
	"github.com/GoArmGo/geeklib/internal/core/ports"
	"github.com/GoArmGo/geeklib/internal/database/client"
	"github.com/GoArmGo/geeklib/internal/database/storage"
	"github.com/GoArmGo/geeklib/internal/handler"
	"github.com/GoArmGo/geeklib/internal/logger"
	"github.com/GoArmGo/geeklib/internal/rabbitmq"
	"github.com/GoArmGo/geeklib/internal/usecase"
)

// NewLogger создаёт основной логгер из конфигурации.
func NewLogger(cfg *config.Config) *slog.Logger {
	slogger := logger.NewSlog(logger.SlogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)
	return slogger
}

// BuildDatabase открывает соединение с базой без применения миграций.
func BuildDatabase(cfg *config.Config, slogger *slog.Logger) (*client.Client, error) {
	return client.NewClient(cfg.Database, slogger)
}

// BuildApp инициализирует все зависимости и возвращает готовый объект App.
func BuildApp(ctx context.Context, cfg *config.Config, slogger *slog.Logger) (*app.App, error) {
	var closers []func() error
	fail := func(err error) (*app.App, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
		return nil, err
	}

	// 1. База данных и схема
	dbClient, err := BuildDatabase(cfg, slogger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, dbClient.Close)

	if err := dbClient.MigrateUp(); err != nil {
		return fail(err)
	}

	// 2. Хранилища
	userStorage := storage.NewUserStorage(dbClient.Gorm, slogger)
	tokenStorage := storage.NewTokenStorage(dbClient.Gorm, slogger)
	bookStorage := storage.NewBookStorage(dbClient.Gorm, slogger)
	lendingStorage := storage.NewLendingStorage(dbClient.DB, slogger)

	// 3. RabbitMQ: без URL события не публикуются и воркеру нечего читать.
	// Интерфейсы остаются nil-интерфейсами, а не typed nil.
	var (
		publisher ports.LibraryEventPublisher
		consumer  ports.LibraryEventConsumer
	)
	if cfg.RabbitMQ.URL != "" {
		rabbitMQClient, err := rabbitmq.NewClient(cfg.RabbitMQ, slogger)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() error {
			rabbitMQClient.Close()
			return nil
		})
		publisher = rabbitMQClient
		consumer = rabbitMQClient
	} else {
		slogger.Warn("RABBITMQ_URL is not set, library events are disabled")
	}

	// 4. MinIO: без endpoint архиватор только логирует события
	var fileStorage usecase.FileStorage
	if cfg.Minio.Endpoint != "" {
		minioClient, err := minio.NewMinioClient(ctx, cfg.Minio, slogger)
		if err != nil {
			return fail(fmt.Errorf("не удалось инициализировать MinIO: %w", err))
		}
		fileStorage = minioClient
	}

	// 5. Бизнес-логика
	userUseCase := usecase.NewUserUseCase(userStorage, tokenStorage, slogger)
	bookUseCase := usecase.NewBookUseCase(bookStorage, slogger)
	lendingUseCase := usecase.NewLendingUseCase(lendingStorage, publisher, slogger)
	archiver := usecase.NewEventArchiver(fileStorage, slogger)

	// 6. HTTP
	router := handler.NewRouter(handler.RouterDeps{
		Users:          userUseCase,
		Books:          bookUseCase,
		Lending:        lendingUseCase,
		Health:         dbClient,
		Logger:         slogger,
		RequestTimeout: cfg.RequestTimeout,
	})

	slogger.Info("all dependencies initialized")
	return app.NewApp(cfg, slogger, router, consumer, archiver, closers...), nil
}
