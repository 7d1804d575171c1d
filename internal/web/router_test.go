package web

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/marloe/showbill/internal/discover"
	"github.com/marloe/showbill/internal/domain"
	"github.com/marloe/showbill/internal/repository"
	"github.com/marloe/showbill/internal/service/auth"
	"github.com/marloe/showbill/internal/session"
)

type userRepoStub struct {
	users map[string]domain.User
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{users: make(map[string]domain.User)}
}

func (s *userRepoStub) CreateUser(_ context.Context, user *domain.User) error {
	if _, exists := s.users[user.Username]; exists {
		return repository.ErrDuplicateUsername
	}
	s.users[user.Username] = *user
	return nil
}

func (s *userRepoStub) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	user, ok := s.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (s *userRepoStub) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}

type searcherStub struct {
	events []domain.Event
	err    error
	calls  int
}

func (s *searcherStub) SearchEvents(_ context.Context, _ string, _ int) ([]domain.Event, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.events, nil
}

func newTestRouter(t *testing.T, searcher *searcherStub) *Router {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := session.NewMemoryStore(time.Hour)
	t.Cleanup(sessions.Close)
	authSvc := auth.New(newUserRepoStub(), sessions, logger)
	eventsSvc := discover.New(searcher, logger, "concert", 30)
	cookies, err := NewCookieCodec("test-secret", "showbill_session", false)
	if err != nil {
		t.Fatalf("cookie codec: %v", err)
	}
	router, err := NewRouter(logger, authSvc, eventsSvc, cookies, time.Hour)
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	return router
}

func formRequest(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func credentials(username, password string) url.Values {
	return url.Values{"username": {username}, "password": {password}}
}

func doRequest(router *Router, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerUser(t *testing.T, router *Router, username, password string) {
	t.Helper()
	rec := doRequest(router, formRequest("/register", credentials(username, password)))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("register: expected redirect to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func loginUser(t *testing.T, router *Router, username, password string) *http.Cookie {
	t.Helper()
	rec := doRequest(router, formRequest("/login", credentials(username, password)))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/discover" {
		t.Fatalf("login: expected redirect to /discover, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "showbill_session" && cookie.Value != "" {
			return cookie
		}
	}
	t.Fatalf("login: expected session cookie")
	return nil
}

func TestRootRedirectsToLogin(t *testing.T) {
	router := newTestRouter(t, &searcherStub{})

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestDiscoverWithoutSessionRedirects(t *testing.T) {
	searcher := &searcherStub{}
	router := newTestRouter(t, searcher)

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/discover", nil))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if searcher.calls != 0 {
		t.Fatalf("external API must not be called without a session")
	}
}

func TestDiscoverWithTamperedCookieRedirects(t *testing.T) {
	searcher := &searcherStub{}
	router := newTestRouter(t, searcher)

	req := httptest.NewRequest(http.MethodGet, "/discover", nil)
	req.AddCookie(&http.Cookie{Name: "showbill_session", Value: "not-a-signed-token"})
	rec := doRequest(router, req)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if searcher.calls != 0 {
		t.Fatalf("external API must not be called with a tampered cookie")
	}
}

func TestRegisterLoginDiscoverScenario(t *testing.T) {
	searcher := &searcherStub{events: []domain.Event{{Name: "Midnight Concert", Venue: "Grand Hall"}}}
	router := newTestRouter(t, searcher)

	registerUser(t, router, "alice", "secret123")
	cookie := loginUser(t, router, "alice", "secret123")

	req := httptest.NewRequest(http.MethodGet, "/discover", nil)
	req.AddCookie(cookie)
	rec := doRequest(router, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("discover: expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Midnight Concert") || !strings.Contains(body, "alice") {
		t.Fatalf("discover page missing expected content:\n%s", body)
	}
}

func TestLoginWrongPasswordShowsMessage(t *testing.T) {
	router := newTestRouter(t, &searcherStub{})

	registerUser(t, router, "alice", "secret123")
	rec := doRequest(router, formRequest("/login", credentials("alice", "wrongpass")))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected login page re-render, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Incorrect username or password.") {
		t.Fatalf("expected mismatch message in body")
	}
	if cookies := rec.Result().Cookies(); len(cookies) != 0 {
		t.Fatalf("no session cookie may be set on mismatch, got %v", cookies)
	}
}

func TestLoginUnknownUserRedirectsToRegister(t *testing.T) {
	router := newTestRouter(t, &searcherStub{})

	rec := doRequest(router, formRequest("/login", credentials("bob", "anything")))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/register" {
		t.Fatalf("expected redirect to /register, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestRegisterDuplicateShowsMessage(t *testing.T) {
	router := newTestRouter(t, &searcherStub{})

	registerUser(t, router, "alice", "secret123")
	rec := doRequest(router, formRequest("/register", credentials("alice", "other")))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected register page re-render, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Registration failed. Please try again.") {
		t.Fatalf("expected failure message in body")
	}
}

func TestDiscoverExternalFailureRendersEmptyWithMessage(t *testing.T) {
	searcher := &searcherStub{err: errors.New("upstream 500")}
	router := newTestRouter(t, searcher)

	registerUser(t, router, "alice", "secret123")
	cookie := loginUser(t, router, "alice", "secret123")

	req := httptest.NewRequest(http.MethodGet, "/discover", nil)
	req.AddCookie(cookie)
	rec := doRequest(router, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected graceful render, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Failed to load events. Please try again later.") {
		t.Fatalf("expected failure message in body")
	}
}

func TestLogoutDestroysSession(t *testing.T) {
	router := newTestRouter(t, &searcherStub{})

	registerUser(t, router, "alice", "secret123")
	cookie := loginUser(t, router, "alice", "secret123")

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(cookie)
	rec := doRequest(router, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Logged out successfully.") {
		t.Fatalf("expected logout message in body")
	}

	// The server-side session is gone even if the client replays the cookie.
	replay := httptest.NewRequest(http.MethodGet, "/discover", nil)
	replay.AddCookie(cookie)
	rec = doRequest(router, replay)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect after logout, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}
