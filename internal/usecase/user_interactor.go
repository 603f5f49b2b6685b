package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/GoArmGo/geeklib/internal/core/ports"
	"github.com/GoArmGo/geeklib/internal/credential"
	"github.com/GoArmGo/geeklib/internal/domain"
)

type userUseCase struct {
	users  ports.UserStorage
	tokens ports.TokenStorage
	logger *slog.Logger
}

// NewUserUseCase создает новый экземпляр UserUseCase
func NewUserUseCase(users ports.UserStorage, tokens ports.TokenStorage, logger *slog.Logger) UserUseCase {
	return &userUseCase{users: users, tokens: tokens, logger: logger}
}

func (uc *userUseCase) Register(ctx context.Context, name, password string) (*domain.User, *domain.Token, error) {
	if name == "" {
		return nil, nil, domain.ErrNameNil
	}
	if password == "" {
		return nil, nil, domain.ErrPasswordNil
	}

	id := credential.NewID()
	user := &domain.User{
		ID:             id,
		Name:           name,
		DigestPassword: credential.Digest(password, id),
	}
	token := &domain.Token{
		Token:  credential.NewToken(),
		UserID: id,
	}

	if err := uc.users.CreateUserWithToken(ctx, user, token); err != nil {
		return nil, nil, fmt.Errorf("usecase: регистрация пользователя: %w", err)
	}

	uc.logger.Info("user registered", "user_id", user.ID)
	return user, token, nil
}

func (uc *userUseCase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := uc.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("usecase: получение пользователя %s: %w", id, err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (uc *userUseCase) RenameUser(ctx context.Context, id, name, authorization string) (*domain.User, error) {
	if name == "" {
		return nil, domain.ErrNameNil
	}

	user, err := uc.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := uc.authorize(ctx, user, authorization); err != nil {
		return nil, err
	}

	if err := uc.users.UpdateUserName(ctx, user, name); err != nil {
		return nil, fmt.Errorf("usecase: смена имени пользователя %s: %w", id, err)
	}
	return user, nil
}

// authorize проверяет, что заголовок содержит токен этого пользователя.
// Отсутствующий заголовок считается недействительной авторизацией.
func (uc *userUseCase) authorize(ctx context.Context, user *domain.User, authorization string) error {
	value := bearerToken(authorization)
	if value == "" {
		uc.logger.Warn("authorization header missing", "user_id", user.ID)
		return domain.ErrAuthorizationInvalid
	}

	token, err := uc.tokens.GetToken(ctx, value)
	if err != nil {
		return fmt.Errorf("usecase: проверка токена: %w", err)
	}
	if token == nil || token.UserID != user.ID {
		uc.logger.Warn("authorization rejected", "user_id", user.ID)
		return domain.ErrAuthorizationInvalid
	}
	return nil
}

// bearerToken принимает как голый токен, так и "Bearer <token>".
func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

func (uc *userUseCase) DeleteUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := uc.users.DeleteUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("usecase: удаление пользователя %s: %w", id, err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (uc *userUseCase) IssueToken(ctx context.Context, name, password string) (*domain.User, *domain.Token, error) {
	if name == "" {
		return nil, nil, domain.ErrNameNil
	}
	if password == "" {
		return nil, nil, domain.ErrPasswordNil
	}

	user, err := uc.users.GetUserByName(ctx, name)
	if err != nil {
		return nil, nil, fmt.Errorf("usecase: поиск пользователя по имени: %w", err)
	}
	if user == nil {
		return nil, nil, domain.ErrUserNotFound
	}

	if !credential.Verify(password, user.ID, user.DigestPassword) {
		uc.logger.Warn("password mismatch", "user_id", user.ID)
		return nil, nil, domain.ErrPasswordInvalid
	}

	token := &domain.Token{Token: credential.NewToken(), UserID: user.ID}
	if err := uc.tokens.SaveToken(ctx, token); err != nil {
		return nil, nil, fmt.Errorf("usecase: выдача токена: %w", err)
	}
	return user, token, nil
}
