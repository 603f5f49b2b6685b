// Package credential вычисляет дайджесты паролей и выдаёт токены.
//
// Дайджест унаследованный: SHA-256 применяется DigestRounds раз к предыдущему
// дайджесту, склеенному с солью из id пользователя. Формат сохранён бит в бит,
// чтобы старые дайджесты оставались валидными; это не memory-hard KDF.
package credential

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/google/uuid"
)

// DigestRounds — число раундов хеширования пароля
const DigestRounds = 30

// Salt возвращает соль пользователя: hex SHA-256 от его id
func Salt(userID string) string {
	return hexSHA256(userID)
}

// Digest вычисляет хранимый дайджест пароля пользователя userID
func Digest(password, userID string) string {
	salt := Salt(userID)
	digest := password
	for i := 0; i < DigestRounds; i++ {
		digest = hexSHA256(digest + salt)
	}
	return digest
}

// Verify сравнивает пароль с сохранённым дайджестом за постоянное время
func Verify(password, userID, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(Digest(password, userID)), []byte(digest)) == 1
}

// NewID возвращает новый идентификатор для пользователей и книг
func NewID() string {
	return uuid.NewString()
}

// NewToken возвращает новый непрозрачный токен
func NewToken() string {
	return uuid.NewString()
}

func hexSHA256(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
