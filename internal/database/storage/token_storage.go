package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/geeklib/internal/domain"
	"gorm.io/gorm"
)

type TokenStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewTokenStorage(db *gorm.DB, logger *slog.Logger) *TokenStorage {
	return &TokenStorage{db: db, logger: logger}
}

// SaveToken сохраняет новый токен
func (s *TokenStorage) SaveToken(ctx context.Context, token *domain.Token) error {
	if err := s.db.WithContext(ctx).Create(token).Error; err != nil {
		s.logger.Error("failed to save token", "user_id", token.UserID, "error", err)
		return fmt.Errorf("ошибка при сохранении токена: %w", err)
	}
	s.logger.Info("token issued", "user_id", token.UserID)
	return nil
}

// GetToken ищет токен по его значению
func (s *TokenStorage) GetToken(ctx context.Context, token string) (*domain.Token, error) {
	var t domain.Token
	err := s.db.WithContext(ctx).First(&t, "token = ?", token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("failed to get token", "error", err)
		return nil, fmt.Errorf("ошибка при получении токена: %w", err)
	}
	return &t, nil
}
