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

// UserStorage реализует интерфейс ports.UserStorage с использованием GORM
type UserStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewUserStorage создает новый экземпляр UserStorage
func NewUserStorage(db *gorm.DB, logger *slog.Logger) *UserStorage {
	return &UserStorage{db: db, logger: logger}
}

// CreateUserWithToken сохраняет пользователя и токен в одной транзакции
func (s *UserStorage) CreateUserWithToken(ctx context.Context, user *domain.User, token *domain.Token) error {
	start := time.Now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			s.logger.Warn("user name already taken", "name", user.Name)
			return domain.ErrNameTaken
		}
		s.logger.Error("failed to create user", "name", user.Name, "error", err)
		return fmt.Errorf("ошибка при сохранении пользователя: %w", err)
	}

	s.logger.Info("user created",
		"user_id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// GetUserByID получает пользователя по ID
func (s *UserStorage) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("user not found by id", "user_id", id)
			return nil, nil
		}
		s.logger.Error("failed to get user by id", "user_id", id, "error", err)
		return nil, fmt.Errorf("ошибка при получении пользователя по ID: %w", err)
	}
	return &user, nil
}

// GetUserByName получает пользователя по имени
func (s *UserStorage) GetUserByName(ctx context.Context, name string) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("failed to get user by name", "name", name, "error", err)
		return nil, fmt.Errorf("ошибка при получении пользователя по имени: %w", err)
	}
	return &user, nil
}

// UpdateUserName меняет имя пользователя
func (s *UserStorage) UpdateUserName(ctx context.Context, user *domain.User, name string) error {
	start := time.Now()

	result := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", user.ID).Update("name", name)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			s.logger.Warn("user name already taken", "name", name)
			return domain.ErrNameTaken
		}
		s.logger.Error("failed to update user name", "user_id", user.ID, "error", result.Error)
		return fmt.Errorf("ошибка при обновлении имени пользователя: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}

	user.Name = name
	s.logger.Info("user renamed",
		"user_id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// DeleteUser удаляет пользователя; токены и журнал выдачи остаются
func (s *UserStorage) DeleteUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil || user == nil {
		return nil, err
	}

	result := s.db.WithContext(ctx).Delete(&domain.User{}, "id = ?", id)
	if result.Error != nil {
		s.logger.Error("failed to delete user", "user_id", id, "error", result.Error)
		return nil, fmt.Errorf("ошибка при удалении пользователя: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// удалён параллельным запросом
		return nil, nil
	}

	s.logger.Info("user deleted", "user_id", id)
	return user, nil
}
