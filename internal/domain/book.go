package domain

import "time"

// BookStatus — состояние экземпляра книги.
type BookStatus string

const (
	BookAvailable BookStatus = "available"
	BookBorrowed  BookStatus = "borrowed"
)

// Book представляет книгу, соответствует таблице books в бд.
// Status меняется только через выдачу и возврат.
type Book struct {
	ID     string     `gorm:"primaryKey" db:"id"`
	Title  string     `gorm:"not null" db:"title"`
	Author string     `gorm:"not null" db:"author"`
	Status BookStatus `gorm:"not null;default:available" db:"status"`
}

func (Book) TableName() string {
	return "books"
}

// BorrowedLog — запись журнала выдачи. Создаётся на каждую успешную выдачу
// и при возврате не изменяется.
type BorrowedLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" db:"id"`
	UserID    string    `gorm:"not null" db:"user_id"`
	BookID    string    `gorm:"not null" db:"book_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (BorrowedLog) TableName() string {
	return "borrowed_logs"
}
