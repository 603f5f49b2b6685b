package ports

import (
	"context"

	"github.com/GoArmGo/geeklib/internal/messaging/payloads"
)

// LibraryEventPublisher публикует события выдачи и возврата книг.
// Используется use case'ом выдачи после фиксации транзакции.
type LibraryEventPublisher interface {
	PublishLibraryEvent(ctx context.Context, event payloads.LibraryEvent) error
}

// LibraryEventConsumer определяет методы для потребления событий
// будет использоваться воркером для получения задач из очереди
type LibraryEventConsumer interface {
	// StartConsumingLibraryEvents начинает прослушивание очереди;
	// handler вызывается для каждого полученного сообщения.
	// Канал получает ошибку, если потребление оборвалось до отмены ctx,
	// и закрывается после остановки потребителя.
	StartConsumingLibraryEvents(ctx context.Context, handler func(context.Context, payloads.LibraryEvent) error) (<-chan error, error)
}
