package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/geeklib/internal/domain"
	"github.com/jmoiron/sqlx"
)

// LendingStorage выполняет выдачу и возврат книг в одной транзакции.
// Переход статуса делается условным UPDATE, поэтому из двух параллельных
// выдач одной книги успешна ровно одна.
type LendingStorage struct {
	db     *sqlx.DB
	logger *slog.Logger

	// afterBookRead вызывается между чтением книги и условным UPDATE;
	// задаётся только в тестах
	afterBookRead func(ctx context.Context, tx *sqlx.Tx, bookID string) error
}

func NewLendingStorage(db *sqlx.DB, logger *slog.Logger) *LendingStorage {
	return &LendingStorage{db: db, logger: logger}
}

// BorrowBook переводит книгу available -> borrowed и пишет запись в borrowed_logs
func (s *LendingStorage) BorrowBook(ctx context.Context, userID, bookID string) (*domain.User, *domain.Book, error) {
	return s.transition(ctx, userID, bookID, domain.BookAvailable, domain.BookBorrowed, domain.ErrBookNotAvailable)
}

// ReturnBook переводит книгу borrowed -> available; журнал не меняется
func (s *LendingStorage) ReturnBook(ctx context.Context, userID, bookID string) (*domain.User, *domain.Book, error) {
	return s.transition(ctx, userID, bookID, domain.BookBorrowed, domain.BookAvailable, domain.ErrBookNotBorrowed)
}

func (s *LendingStorage) transition(
	ctx context.Context,
	userID, bookID string,
	from, to domain.BookStatus,
	guardErr error,
) (*domain.User, *domain.Book, error) {
	start := time.Now()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("не удалось начать транзакцию: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var user domain.User
	err = tx.GetContext(ctx, &user, tx.Rebind(`SELECT id, name, digest_password FROM users WHERE id = ?`), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка при получении пользователя: %w", err)
	}

	var book domain.Book
	err = tx.GetContext(ctx, &book, tx.Rebind(`SELECT id, title, author, status FROM books WHERE id = ?`), bookID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, domain.ErrBookNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка при получении книги: %w", err)
	}

	if s.afterBookRead != nil {
		if err := s.afterBookRead(ctx, tx, bookID); err != nil {
			return nil, nil, err
		}
	}

	res, err := tx.ExecContext(ctx,
		tx.Rebind(`UPDATE books SET status = ? WHERE id = ? AND status = ?`),
		string(to), bookID, string(from),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка при обновлении статуса книги: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка при обновлении статуса книги: %w", err)
	}
	if affected == 0 {
		s.logger.Warn("book status guard failed",
			"book_id", bookID,
			"expected", from,
			"actual", book.Status,
		)
		return nil, nil, guardErr
	}

	if to == domain.BookBorrowed {
		now := time.Now().UTC()
		_, err = tx.ExecContext(ctx,
			tx.Rebind(`INSERT INTO borrowed_logs (user_id, book_id, created_at, updated_at) VALUES (?, ?, ?, ?)`),
			userID, bookID, now, now,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("ошибка при записи в журнал выдачи: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("не удалось зафиксировать транзакцию: %w", err)
	}

	book.Status = to
	s.logger.Info("book status changed",
		"book_id", bookID,
		"user_id", userID,
		"status", to,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &user, &book, nil
}
