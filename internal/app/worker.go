package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/geeklib/internal/core/ports"
	"github.com/GoArmGo/geeklib/internal/messaging/payloads"
	"github.com/GoArmGo/geeklib/internal/usecase"
)

// ErrQueueNotConfigured — воркеру нечего читать без RABBITMQ_URL
var ErrQueueNotConfigured = errors.New("RABBITMQ_URL is not set, worker has no queue to consume")

// ErrConsumerStopped — потребитель завершился без ошибки, хотя воркер не останавливали
var ErrConsumerStopped = errors.New("library event consumer stopped unexpectedly")

// runWorker потребляет события выдачи и архивирует их до отмены ctx
func runWorker(
	ctx context.Context,
	consumer ports.LibraryEventConsumer,
	archiver usecase.EventArchiver,
	logger *slog.Logger,
) error {
	if consumer == nil {
		return ErrQueueNotConfigured
	}

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	handler := func(ctx context.Context, event payloads.LibraryEvent) error {
		return archiver.ArchiveEvent(ctx, event)
	}

	stopped, err := consumer.StartConsumingLibraryEvents(workerCtx, handler)
	if err != nil {
		return fmt.Errorf("ошибка при запуске потребителя RabbitMQ: %w", err)
	}

	logger.Info("worker started, waiting for library events")

	select {
	case <-workerCtx.Done():
	case err := <-stopped:
		if workerCtx.Err() == nil {
			// процесс завершается с ошибкой, чтобы супервизор его перезапустил
			if err == nil {
				err = ErrConsumerStopped
			}
			return fmt.Errorf("потребитель RabbitMQ остановился: %w", err)
		}
	}

	logger.Info("worker stopped")
	return nil
}
