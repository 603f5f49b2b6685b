package handler

import (
	"log/slog"
	"net/http"

	"github.com/GoArmGo/geeklib/internal/usecase"
	"github.com/go-chi/chi/v5"
)

// BookHandler — обработчик HTTP-запросов /books.
type BookHandler struct {
	books  usecase.BookUseCase
	logger *slog.Logger
}

func NewBookHandler(books usecase.BookUseCase, logger *slog.Logger) *BookHandler {
	return &BookHandler{books: books, logger: logger}
}

// CreateBook — POST /books/
func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.books.RegisterBook(r.Context(), r.FormValue("title"), r.FormValue("author"))
	if err != nil {
		respondWithUseCaseError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, toBookResponse(book), h.logger)
}

// GetBook — GET /books/{id}
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.books.GetBook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithUseCaseError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, toBookResponse(book), h.logger)
}

// DeleteBook — DELETE /books/{id}
func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.books.DeleteBook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithUseCaseError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, toBookResponse(book), h.logger)
}
