package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/GoArmGo/geeklib/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// HealthChecker проверяет доступность зависимостей (база данных).
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// RouterDeps — всё, что нужно для сборки HTTP-маршрутов.
type RouterDeps struct {
	Users          usecase.UserUseCase
	Books          usecase.BookUseCase
	Lending        usecase.LendingUseCase
	Health         HealthChecker
	Logger         *slog.Logger
	RequestTimeout time.Duration
}

// NewRouter собирает chi-роутер со всеми эндпоинтами API.
func NewRouter(deps RouterDeps) http.Handler {
	userHandler := NewUserHandler(deps.Users, deps.Lending, deps.Logger)
	bookHandler := NewBookHandler(deps.Books, deps.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer)
	if deps.RequestTimeout > 0 {
		r.Use(middleware.Timeout(deps.RequestTimeout))
	}

	r.Get("/healthz", healthz(deps.Health, deps.Logger))

	r.Post("/users", userHandler.CreateUser)
	r.Post("/users/", userHandler.CreateUser)
	r.Route("/users/{id}", func(r chi.Router) {
		r.Get("/", userHandler.GetUser)
		r.Delete("/", userHandler.DeleteUser)
		r.Put("/name", userHandler.RenameUser)
		r.Post("/borrow/{bookID}", userHandler.BorrowBook)
		r.Post("/return/{bookID}", userHandler.ReturnBook)
	})

	r.Post("/books", bookHandler.CreateBook)
	r.Post("/books/", bookHandler.CreateBook)
	r.Get("/books/{id}", bookHandler.GetBook)
	r.Delete("/books/{id}", bookHandler.DeleteBook)

	r.Post("/tokens", userHandler.IssueToken)
	r.Post("/tokens/", userHandler.IssueToken)

	return r
}

func healthz(checker HealthChecker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.Ping(r.Context()); err != nil {
				logger.Error("health check failed", "error", err)
				respondWithError(w, http.StatusServiceUnavailable, "The database is unavailable", logger)
				return
			}
		}
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
	}
}
