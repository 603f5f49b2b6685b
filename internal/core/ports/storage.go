package ports

import (
	"context"

	"github.com/GoArmGo/geeklib/internal/domain"
)

// UserStorage определяет методы для взаимодействия с хранилищем пользователей.
// Методы Get* возвращают (nil, nil), если запись не найдена.
type UserStorage interface {
	// CreateUserWithToken сохраняет пользователя и его первый токен одной транзакцией.
	// Занятое имя возвращает domain.ErrNameTaken.
	CreateUserWithToken(ctx context.Context, user *domain.User, token *domain.Token) error
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByName(ctx context.Context, name string) (*domain.User, error)
	UpdateUserName(ctx context.Context, user *domain.User, name string) error
	// DeleteUser удаляет пользователя и возвращает его прежнее состояние.
	DeleteUser(ctx context.Context, id string) (*domain.User, error)
}

// TokenStorage определяет методы для работы с bearer-токенами
type TokenStorage interface {
	SaveToken(ctx context.Context, token *domain.Token) error
	GetToken(ctx context.Context, token string) (*domain.Token, error)
}

// BookStorage определяет методы для взаимодействия с хранилищем книг
type BookStorage interface {
	SaveBook(ctx context.Context, book *domain.Book) error
	GetBookByID(ctx context.Context, id string) (*domain.Book, error)
	DeleteBook(ctx context.Context, id string) (*domain.Book, error)
}

// LendingStorage выполняет переходы available <-> borrowed атомарно.
// Ошибки: domain.ErrUserNotFound, domain.ErrBookNotFound,
// domain.ErrBookNotAvailable, domain.ErrBookNotBorrowed.
type LendingStorage interface {
	BorrowBook(ctx context.Context, userID, bookID string) (*domain.User, *domain.Book, error)
	ReturnBook(ctx context.Context, userID, bookID string) (*domain.User, *domain.Book, error)
}
