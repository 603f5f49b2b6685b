package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/GoArmGo/geeklib/internal/core/ports"
	"github.com/GoArmGo/geeklib/internal/domain"
	"github.com/GoArmGo/geeklib/internal/messaging/payloads"
	"github.com/google/uuid"
)

type lendingUseCase struct {
	lending   ports.LendingStorage
	publisher ports.LibraryEventPublisher
	logger    *slog.Logger
}

// NewLendingUseCase создает LendingUseCase. publisher может быть nil,
// тогда события никуда не отправляются.
func NewLendingUseCase(lending ports.LendingStorage, publisher ports.LibraryEventPublisher, logger *slog.Logger) LendingUseCase {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &lendingUseCase{lending: lending, publisher: publisher, logger: logger}
}

func (uc *lendingUseCase) BorrowBook(ctx context.Context, userID, bookID string) (*domain.User, *domain.Book, error) {
	user, book, err := uc.lending.BorrowBook(ctx, userID, bookID)
	if err != nil {
		return nil, nil, err
	}
	uc.publish(ctx, payloads.EventBookBorrowed, user.ID, book.ID)
	return user, book, nil
}

func (uc *lendingUseCase) ReturnBook(ctx context.Context, userID, bookID string) (*domain.User, *domain.Book, error) {
	user, book, err := uc.lending.ReturnBook(ctx, userID, bookID)
	if err != nil {
		return nil, nil, err
	}
	uc.publish(ctx, payloads.EventBookReturned, user.ID, book.ID)
	return user, book, nil
}

// publish отправляет событие после фиксации транзакции; ошибка публикации
// только логируется, статус книги уже изменён.
func (uc *lendingUseCase) publish(ctx context.Context, eventType, userID, bookID string) {
	event := payloads.LibraryEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		UserID:     userID,
		BookID:     bookID,
		OccurredAt: time.Now().UTC(),
	}
	if err := uc.publisher.PublishLibraryEvent(context.WithoutCancel(ctx), event); err != nil {
		uc.logger.Warn("failed to publish library event",
			"type", eventType,
			"book_id", bookID,
			"error", err,
		)
	}
}

type nopPublisher struct{}

func (nopPublisher) PublishLibraryEvent(context.Context, payloads.LibraryEvent) error { return nil }
