package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/geeklib/internal/domain"
	"gorm.io/gorm"
)

// BookStorage реализует ports.BookStorage с использованием GORM
type BookStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewBookStorage(db *gorm.DB, logger *slog.Logger) *BookStorage {
	return &BookStorage{db: db, logger: logger}
}

// SaveBook сохраняет книгу в базе данных
func (s *BookStorage) SaveBook(ctx context.Context, book *domain.Book) error {
	start := time.Now()

	if book.Status == "" {
		book.Status = domain.BookAvailable
	}

	if err := s.db.WithContext(ctx).Create(book).Error; err != nil {
		s.logger.Error("failed to save book", "title", book.Title, "error", err)
		return fmt.Errorf("ошибка при сохранении книги: %w", err)
	}

	s.logger.Info("book saved successfully",
		"book_id", book.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// GetBookByID получает книгу по ID
func (s *BookStorage) GetBookByID(ctx context.Context, id string) (*domain.Book, error) {
	var book domain.Book
	err := s.db.WithContext(ctx).First(&book, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("book not found by id", "book_id", id)
			return nil, nil
		}
		s.logger.Error("failed to get book by id", "book_id", id, "error", err)
		return nil, fmt.Errorf("ошибка при получении книги по ID: %w", err)
	}
	return &book, nil
}

// DeleteBook удаляет книгу и возвращает её прежнее состояние
func (s *BookStorage) DeleteBook(ctx context.Context, id string) (*domain.Book, error) {
	book, err := s.GetBookByID(ctx, id)
	if err != nil || book == nil {
		return nil, err
	}

	result := s.db.WithContext(ctx).Delete(&domain.Book{}, "id = ?", id)
	if result.Error != nil {
		s.logger.Error("failed to delete book", "book_id", id, "error", result.Error)
		return nil, fmt.Errorf("ошибка при удалении книги: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	s.logger.Info("book deleted", "book_id", id)
	return book, nil
}
