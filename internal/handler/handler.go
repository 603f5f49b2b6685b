package handler

import (
	"log/slog"
	"net/http"

	"github.com/GoArmGo/geeklib/internal/domain"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// errorResponse — тело любого ответа с ошибкой.
type errorResponse struct {
	Cause string `json:"cause"`
}

// respondWithJSON — отправляет JSON-ответ клиенту.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error("failed to marshal JSON response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error("failed to write HTTP response", "error", err)
	}
}

// respondWithError — отправляет JSON-ответ с ошибкой.
func respondWithError(w http.ResponseWriter, code int, cause string, logger *slog.Logger) {
	respondWithJSON(w, code, errorResponse{Cause: cause}, logger)
}

// respondWithUseCaseError отображает ошибку бизнес-логики в HTTP-код;
// всё остальное — 500 без подробностей для клиента.
func respondWithUseCaseError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	if de, ok := domain.AsError(err); ok {
		logger.Info("request rejected",
			"method", r.Method,
			"path", r.URL.Path,
			"cause", de.Cause,
		)
		respondWithError(w, statusFor(de.Kind), de.Cause, logger)
		return
	}

	logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	respondWithError(w, http.StatusInternalServerError, "Internal server error", logger)
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation, domain.KindAuthorization:
		return http.StatusNotAcceptable
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusForbidden
	case domain.KindDuplicate:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type userResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type bookResponse struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Status string `json:"status"`
}

type tokenResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type lendingResponse struct {
	User userResponse `json:"user"`
	Book bookResponse `json:"book"`
}

// toUserResponse — единственное место, где User превращается в JSON;
// дайджест пароля сюда не попадает.
func toUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name}
}

func toBookResponse(b *domain.Book) bookResponse {
	return bookResponse{ID: b.ID, Title: b.Title, Author: b.Author, Status: string(b.Status)}
}
