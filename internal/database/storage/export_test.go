package storage

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// SetAfterBookRead встраивает действие между чтением книги и сменой статуса.
func SetAfterBookRead(s *LendingStorage, fn func(ctx context.Context, tx *sqlx.Tx, bookID string) error) {
	s.afterBookRead = fn
}
