package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/GoArmGo/geeklib/internal/database/client"
	"github.com/GoArmGo/geeklib/internal/database/storage"
	"github.com/GoArmGo/geeklib/internal/domain"
	"github.com/GoArmGo/geeklib/internal/handler"
	"github.com/GoArmGo/geeklib/internal/logger"
	"github.com/GoArmGo/geeklib/internal/testutil"
	"github.com/GoArmGo/geeklib/internal/usecase"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type testServer struct {
	t      *testing.T
	db     *client.Client
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testutil.OpenTestClient(t)
	log := logger.NewNop()

	router := handler.NewRouter(handler.RouterDeps{
		Users:          usecase.NewUserUseCase(storage.NewUserStorage(db.Gorm, log), storage.NewTokenStorage(db.Gorm, log), log),
		Books:          usecase.NewBookUseCase(storage.NewBookStorage(db.Gorm, log), log),
		Lending:        usecase.NewLendingUseCase(storage.NewLendingStorage(db.DB, log), nil, log),
		Health:         db,
		Logger:         log,
		RequestTimeout: 5 * time.Second,
	})
	return &testServer{t: t, db: db, router: router}
}

func (s *testServer) do(method, path string, form url.Values, header http.Header) *httptest.ResponseRecorder {
	s.t.Helper()

	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range header {
		req.Header[k] = v
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func assertCause(t *testing.T, rec *httptest.ResponseRecorder, status int, cause string) {
	t.Helper()
	assert.Equal(t, status, rec.Code, rec.Body.String())
	assert.Equal(t, map[string]any{"cause": cause}, decode(t, rec))
}

func (s *testServer) createUser(name, password string) (id, token string) {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/users/", url.Values{"name": {name}, "password": {password}}, nil)
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(s.t, rec)
	return body["user"].(map[string]any)["id"].(string), body["token"].(string)
}

func (s *testServer) createBook(title, author string) map[string]any {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/books/", url.Values{"title": {title}, "author": {author}}, nil)
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode(s.t, rec)
}

func TestCreateUser(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/users/", url.Values{"name": {"Hirota"}, "password": {"abcde"}}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode(t, rec)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "Hirota", user["name"])
	assert.NotEmpty(t, user["id"])
	assert.Len(t, user, 2)

	raw := rec.Body.String()
	assert.NotContains(t, raw, "abcde")
	assert.NotContains(t, raw, "digest")

	var digest string
	require.NoError(t, s.db.DB.Get(&digest, s.db.DB.Rebind(`SELECT digest_password FROM users WHERE id = ?`), user["id"]))
	assert.NotEqual(t, "abcde", digest)
	assert.NotContains(t, raw, digest)
}

func TestCreateUser_Validation(t *testing.T) {
	s := newTestServer(t)

	assertCause(t, s.do(http.MethodPost, "/users/", url.Values{"password": {"abcde"}}, nil),
		http.StatusNotAcceptable, "The name is nil")
	assertCause(t, s.do(http.MethodPost, "/users/", url.Values{"name": {"Hirota"}}, nil),
		http.StatusNotAcceptable, "The password is nil")

	s.createUser("Hirota", "abcde")
	assertCause(t, s.do(http.MethodPost, "/users", url.Values{"name": {"Hirota"}, "password": {"other"}}, nil),
		http.StatusConflict, "The name is already used")
}

func TestCreateUser_AcceptsQueryParameters(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/users/?name=Hirota&password=abcde", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Hirota", decode(t, rec)["user"].(map[string]any)["name"])
}

func TestGetUser(t *testing.T) {
	s := newTestServer(t)
	id, _ := s.createUser("Hirota", "abcde")

	rec := s.do(http.MethodGet, "/users/"+id, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"id": id, "name": "Hirota"}, decode(t, rec))
}

func TestUnknownUserIsNotFound(t *testing.T) {
	s := newTestServer(t)

	assertCause(t, s.do(http.MethodGet, "/users/missing", nil, nil),
		http.StatusNotFound, "The user was not found")
	assertCause(t, s.do(http.MethodPut, "/users/missing/name", url.Values{"name": {"X"}}, http.Header{"Authorization": {"tok"}}),
		http.StatusNotFound, "The user was not found")
	assertCause(t, s.do(http.MethodDelete, "/users/missing", nil, nil),
		http.StatusNotFound, "The user was not found")
}

func TestDeleteUserTwice(t *testing.T) {
	s := newTestServer(t)
	id, _ := s.createUser("Hirota", "abcde")

	rec := s.do(http.MethodDelete, "/users/"+id, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"id": id, "name": "Hirota"}, decode(t, rec))

	assertCause(t, s.do(http.MethodDelete, "/users/"+id, nil, nil),
		http.StatusNotFound, "The user was not found")
}

func TestRenameUser(t *testing.T) {
	s := newTestServer(t)
	id, token := s.createUser("Hirota", "abcde")
	otherID, otherToken := s.createUser("Sanshiro", "pass")

	t.Run("missing header", func(t *testing.T) {
		assertCause(t, s.do(http.MethodPut, "/users/"+id+"/name", url.Values{"name": {"New"}}, nil),
			http.StatusNotAcceptable, "The authorization is invalid")
	})

	t.Run("unknown token", func(t *testing.T) {
		assertCause(t, s.do(http.MethodPut, "/users/"+id+"/name", url.Values{"name": {"New"}}, http.Header{"Authorization": {"nope"}}),
			http.StatusNotAcceptable, "The authorization is invalid")
	})

	t.Run("token of another user", func(t *testing.T) {
		assertCause(t, s.do(http.MethodPut, "/users/"+id+"/name", url.Values{"name": {"New"}}, http.Header{"Authorization": {otherToken}}),
			http.StatusNotAcceptable, "The authorization is invalid")
	})

	t.Run("name nil", func(t *testing.T) {
		assertCause(t, s.do(http.MethodPut, "/users/"+id+"/name", url.Values{}, http.Header{"Authorization": {token}}),
			http.StatusNotAcceptable, "The name is nil")
	})

	t.Run("name taken", func(t *testing.T) {
		assertCause(t, s.do(http.MethodPut, "/users/"+otherID+"/name", url.Values{"name": {"Hirota"}}, http.Header{"Authorization": {otherToken}}),
			http.StatusConflict, "The name is already used")
	})

	t.Run("success", func(t *testing.T) {
		rec := s.do(http.MethodPut, "/users/"+id+"/name", url.Values{"name": {"Mineko"}}, http.Header{"Authorization": {"Bearer " + token}})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, map[string]any{"id": id, "name": "Mineko"}, decode(t, rec))

		rec = s.do(http.MethodGet, "/users/"+id, nil, nil)
		assert.Equal(t, "Mineko", decode(t, rec)["name"])
	})
}

func TestIssueToken(t *testing.T) {
	s := newTestServer(t)
	id, _ := s.createUser("Hirota", "abcde")

	assertCause(t, s.do(http.MethodPost, "/tokens/", url.Values{"name": {"Hirota"}, "password": {"wrong"}}, nil),
		http.StatusNotAcceptable, "The password is invalid")
	assertCause(t, s.do(http.MethodPost, "/tokens/", url.Values{"name": {"Nobody"}, "password": {"abcde"}}, nil),
		http.StatusNotFound, "The user was not found")
	assertCause(t, s.do(http.MethodPost, "/tokens/", url.Values{"password": {"abcde"}}, nil),
		http.StatusNotAcceptable, "The name is nil")

	rec := s.do(http.MethodPost, "/tokens/", url.Values{"name": {"Hirota"}, "password": {"abcde"}}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	token := body["token"].(string)
	assert.Equal(t, id, body["user"].(map[string]any)["id"])

	rec = s.do(http.MethodPut, "/users/"+id+"/name", url.Values{"name": {"Mineko"}}, http.Header{"Authorization": {token}})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestBookRoundTrip(t *testing.T) {
	s := newTestServer(t)

	created := s.do(http.MethodPost, "/books/", url.Values{"title": {"Sanshiro"}, "author": {"Natsume Soseki"}}, nil)
	require.Equal(t, http.StatusOK, created.Code)
	book := decode(t, created)
	assert.Equal(t, "available", book["status"])

	fetched := s.do(http.MethodGet, "/books/"+book["id"].(string), nil, nil)
	require.Equal(t, http.StatusOK, fetched.Code)
	assert.JSONEq(t, created.Body.String(), fetched.Body.String())
}

func TestBookValidationAndDelete(t *testing.T) {
	s := newTestServer(t)

	assertCause(t, s.do(http.MethodPost, "/books/", url.Values{"author": {"Soseki"}}, nil),
		http.StatusNotAcceptable, "The title is nil")
	assertCause(t, s.do(http.MethodPost, "/books/", url.Values{"title": {"Kokoro"}}, nil),
		http.StatusNotAcceptable, "The author is nil")
	assertCause(t, s.do(http.MethodGet, "/books/missing", nil, nil),
		http.StatusNotFound, "The book was not found")

	book := s.createBook("Kokoro", "Soseki")
	id := book["id"].(string)

	rec := s.do(http.MethodDelete, "/books/"+id, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, book, decode(t, rec))

	assertCause(t, s.do(http.MethodDelete, "/books/"+id, nil, nil),
		http.StatusNotFound, "The book was not found")
}

func TestBorrowAndReturn(t *testing.T) {
	s := newTestServer(t)
	userID, _ := s.createUser("Hirota", "abcde")
	bookID := s.createBook("Sanshiro", "Soseki")["id"].(string)

	rec := s.do(http.MethodPost, "/users/"+userID+"/borrow/"+bookID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "borrowed", body["book"].(map[string]any)["status"])
	assert.Equal(t, map[string]any{"id": userID, "name": "Hirota"}, body["user"])

	var logs int
	require.NoError(t, s.db.DB.Get(&logs, s.db.DB.Rebind(`SELECT COUNT(*) FROM borrowed_logs WHERE book_id = ?`), bookID))
	assert.Equal(t, 1, logs)

	assertCause(t, s.do(http.MethodPost, "/users/"+userID+"/borrow/"+bookID, nil, nil),
		http.StatusForbidden, "The book is not available")

	rec = s.do(http.MethodPost, "/users/"+userID+"/return/"+bookID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "available", decode(t, rec)["book"].(map[string]any)["status"])

	assertCause(t, s.do(http.MethodPost, "/users/"+userID+"/return/"+bookID, nil, nil),
		http.StatusForbidden, "The book is not borrowed")
}

func TestBorrowNotFound(t *testing.T) {
	s := newTestServer(t)
	userID, _ := s.createUser("Hirota", "abcde")
	bookID := s.createBook("Sanshiro", "Soseki")["id"].(string)

	assertCause(t, s.do(http.MethodPost, "/users/missing/borrow/"+bookID, nil, nil),
		http.StatusNotFound, "The user was not found")
	assertCause(t, s.do(http.MethodPost, "/users/"+userID+"/borrow/missing", nil, nil),
		http.StatusNotFound, "The book was not found")
	assertCause(t, s.do(http.MethodPost, "/users/"+userID+"/return/missing", nil, nil),
		http.StatusNotFound, "The book was not found")
}

// Проверяет HTTP-ответы при параллельных выдачах; гонку между чтением
// и UPDATE покрывают тесты хранилища.
func TestConcurrentBorrowHasSingleWinner(t *testing.T) {
	s := newTestServer(t)
	bookID := s.createBook("Sanshiro", "Soseki")["id"].(string)

	const readers = 8
	ids := make([]string, readers)
	for i := range ids {
		ids[i], _ = s.createUser("reader-"+string(rune('a'+i)), "pw")
	}

	codes := make([]int, readers)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = s.do(http.MethodPost, "/users/"+ids[i]+"/borrow/"+bookID, nil, nil).Code
		}(i)
	}
	wg.Wait()

	ok, forbidden := 0, 0
	for _, code := range codes {
		switch code {
		case http.StatusOK:
			ok++
		case http.StatusForbidden:
			forbidden++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, readers-1, forbidden)

	var logs int
	require.NoError(t, s.db.DB.Get(&logs, s.db.DB.Rebind(`SELECT COUNT(*) FROM borrowed_logs WHERE book_id = ?`), bookID))
	assert.Equal(t, 1, logs)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/healthz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"status": "ok"}, decode(t, rec))
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthz_DatabaseDown(t *testing.T) {
	router := handler.NewRouter(handler.RouterDeps{Health: failingPinger{}, Logger: logger.NewNop()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assertCause(t, rec, http.StatusServiceUnavailable, "The database is unavailable")
}

type brokenBooks struct{ usecase.BookUseCase }

func (brokenBooks) GetBook(context.Context, string) (*domain.Book, error) {
	return nil, errors.New("disk I/O error")
}

func TestUnexpectedErrorIsInternal(t *testing.T) {
	router := handler.NewRouter(handler.RouterDeps{Books: brokenBooks{}, Logger: logger.NewNop()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/books/any", nil))
	assertCause(t, rec, http.StatusInternalServerError, "Internal server error")
}
