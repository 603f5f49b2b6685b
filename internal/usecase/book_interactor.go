package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/geeklib/internal/core/ports"
	"github.com/GoArmGo/geeklib/internal/credential"
	"github.com/GoArmGo/geeklib/internal/domain"
)

type bookUseCase struct {
	books  ports.BookStorage
	logger *slog.Logger
}

func NewBookUseCase(books ports.BookStorage, logger *slog.Logger) BookUseCase {
	return &bookUseCase{books: books, logger: logger}
}

func (uc *bookUseCase) RegisterBook(ctx context.Context, title, author string) (*domain.Book, error) {
	if title == "" {
		return nil, domain.ErrTitleNil
	}
	if author == "" {
		return nil, domain.ErrAuthorNil
	}

	book := &domain.Book{
		ID:     credential.NewID(),
		Title:  title,
		Author: author,
		Status: domain.BookAvailable,
	}
	if err := uc.books.SaveBook(ctx, book); err != nil {
		return nil, fmt.Errorf("usecase: регистрация книги: %w", err)
	}
	return book, nil
}

func (uc *bookUseCase) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	book, err := uc.books.GetBookByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("usecase: получение книги %s: %w", id, err)
	}
	if book == nil {
		return nil, domain.ErrBookNotFound
	}
	return book, nil
}

func (uc *bookUseCase) DeleteBook(ctx context.Context, id string) (*domain.Book, error) {
	book, err := uc.books.DeleteBook(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("usecase: удаление книги %s: %w", id, err)
	}
	if book == nil {
		return nil, domain.ErrBookNotFound
	}
	return book, nil
}
