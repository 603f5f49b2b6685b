package usecase

import (
	"context"
	"io"

	"github.com/GoArmGo/geeklib/internal/domain"
	"github.com/GoArmGo/geeklib/internal/messaging/payloads"
)

// UserUseCase определяет бизнес-логику работы с читателями и их токенами
type UserUseCase interface {
	// Register создаёт пользователя с дайджестом пароля и выдаёт ему первый токен
	Register(ctx context.Context, name, password string) (*domain.User, *domain.Token, error)

	GetUser(ctx context.Context, id string) (*domain.User, error)

	// RenameUser меняет имя; authorization — значение заголовка Authorization,
	// токен должен принадлежать этому же пользователю
	RenameUser(ctx context.Context, id, name, authorization string) (*domain.User, error)

	// DeleteUser удаляет пользователя и возвращает его прежнее состояние
	DeleteUser(ctx context.Context, id string) (*domain.User, error)

	// IssueToken проверяет имя и пароль и выдаёт новый токен
	IssueToken(ctx context.Context, name, password string) (*domain.User, *domain.Token, error)
}

// BookUseCase определяет бизнес-логику каталога книг
type BookUseCase interface {
	RegisterBook(ctx context.Context, title, author string) (*domain.Book, error)
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	DeleteBook(ctx context.Context, id string) (*domain.Book, error)
}

// LendingUseCase определяет выдачу и возврат книг
type LendingUseCase interface {
	BorrowBook(ctx context.Context, userID, bookID string) (*domain.User, *domain.Book, error)
	ReturnBook(ctx context.Context, userID, bookID string) (*domain.User, *domain.Book, error)
}

// EventArchiver сохраняет полученные воркером события выдачи
type EventArchiver interface {
	ArchiveEvent(ctx context.Context, event payloads.LibraryEvent) error
}

// FileStorage определяет интерфейс для работы с файловым хранилищем (AWS S3, MinIO)
type FileStorage interface {
	// UploadFile загружает объект и возвращает его URL.
	UploadFile(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
}
