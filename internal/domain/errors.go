package domain

import "errors"

// ErrorKind классифицирует ошибки бизнес-логики; HTTP-слой
// отображает каждый вид в свой код ответа.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindConflict
	KindAuthorization
	KindDuplicate
)

// Error — ошибка, сообщение которой отдаётся клиенту как cause.
type Error struct {
	Kind  ErrorKind
	Cause string
}

func (e *Error) Error() string {
	return e.Cause
}

var (
	ErrNameNil     = &Error{Kind: KindValidation, Cause: "The name is nil"}
	ErrPasswordNil = &Error{Kind: KindValidation, Cause: "The password is nil"}
	ErrTitleNil    = &Error{Kind: KindValidation, Cause: "The title is nil"}
	ErrAuthorNil   = &Error{Kind: KindValidation, Cause: "The author is nil"}

	ErrUserNotFound = &Error{Kind: KindNotFound, Cause: "The user was not found"}
	ErrBookNotFound = &Error{Kind: KindNotFound, Cause: "The book was not found"}

	ErrBookNotAvailable = &Error{Kind: KindConflict, Cause: "The book is not available"}
	ErrBookNotBorrowed  = &Error{Kind: KindConflict, Cause: "The book is not borrowed"}

	ErrAuthorizationInvalid = &Error{Kind: KindAuthorization, Cause: "The authorization is invalid"}
	ErrPasswordInvalid      = &Error{Kind: KindAuthorization, Cause: "The password is invalid"}

	ErrNameTaken = &Error{Kind: KindDuplicate, Cause: "The name is already used"}
)

// AsError достаёт *Error из цепочки обёрток.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
