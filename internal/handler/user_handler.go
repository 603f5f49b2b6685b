package handler

import (
	"log/slog"
	"net/http"

	"github.com/GoArmGo/geeklib/internal/usecase"
	"github.com/go-chi/chi/v5"
)

// UserHandler — обработчик HTTP-запросов /users и /tokens.
type UserHandler struct {
	users   usecase.UserUseCase
	lending usecase.LendingUseCase
	logger  *slog.Logger
}

func NewUserHandler(users usecase.UserUseCase, lending usecase.LendingUseCase, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, lending: lending, logger: logger}
}

// CreateUser — POST /users/
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	user, token, err := h.users.Register(r.Context(), r.FormValue("name"), r.FormValue("password"))
	if err != nil {
		respondWithUseCaseError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, tokenResponse{Token: token.Token, User: toUserResponse(user)}, h.logger)
}

// GetUser — GET /users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithUseCaseError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, toUserResponse(user), h.logger)
}

// RenameUser — PUT /users/{id}/name, требует заголовок Authorization с токеном
func (h *UserHandler) RenameUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.RenameUser(r.Context(),
		chi.URLParam(r, "id"),
		r.FormValue("name"),
		r.Header.Get("Authorization"),
	)
	if err != nil {
		respondWithUseCaseError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, toUserResponse(user), h.logger)
}

// DeleteUser — DELETE /users/{id}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.DeleteUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithUseCaseError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, toUserResponse(user), h.logger)
}

// BorrowBook — POST /users/{id}/borrow/{bookID}
func (h *UserHandler) BorrowBook(w http.ResponseWriter, r *http.Request) {
	user, book, err := h.lending.BorrowBook(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "bookID"))
	if err != nil {
		respondWithUseCaseError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, lendingResponse{User: toUserResponse(user), Book: toBookResponse(book)}, h.logger)
}

// ReturnBook — POST /users/{id}/return/{bookID}
func (h *UserHandler) ReturnBook(w http.ResponseWriter, r *http.Request) {
	user, book, err := h.lending.ReturnBook(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "bookID"))
	if err != nil {
		respondWithUseCaseError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, lendingResponse{User: toUserResponse(user), Book: toBookResponse(book)}, h.logger)
}

// IssueToken — POST /tokens/
func (h *UserHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	user, token, err := h.users.IssueToken(r.Context(), r.FormValue("name"), r.FormValue("password"))
	if err != nil {
		respondWithUseCaseError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, tokenResponse{Token: token.Token, User: toUserResponse(user)}, h.logger)
}
