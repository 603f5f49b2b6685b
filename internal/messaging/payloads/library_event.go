package payloads

import "time"

const (
	EventBookBorrowed = "book_borrowed"
	EventBookReturned = "book_returned"
)

// LibraryEvent описывает выдачу или возврат книги и передаётся через RabbitMQ.
type LibraryEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	BookID     string    `json:"book_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
