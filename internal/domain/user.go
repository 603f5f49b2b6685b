package domain

import "time"

// User представляет читателя библиотеки,
// соответствует таблице users в бд.
// DigestPassword никогда не отдаётся клиенту.
type User struct {
	ID             string `gorm:"primaryKey" db:"id"`
	Name           string `gorm:"uniqueIndex;not null" db:"name"`
	DigestPassword string `gorm:"column:digest_password;not null" db:"digest_password" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// Token — bearer-токен, выданный пользователю при регистрации или входе.
// Сам токен является первичным ключом; срока действия нет.
type Token struct {
	Token     string    `gorm:"primaryKey" db:"token"`
	UserID    string    `gorm:"not null" db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (Token) TableName() string {
	return "tokens"
}
