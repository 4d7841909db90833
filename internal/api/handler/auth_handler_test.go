package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/kopinusa/storefront/internal/api/middleware"
	"github.com/kopinusa/storefront/internal/core/domain"
	"github.com/kopinusa/storefront/internal/core/ports"
)

type stubAuthService struct {
	ports.AuthService
	loginFn   func(ctx context.Context, in ports.LoginInput) (string, *domain.Session, error)
	logoutFn  func(ctx context.Context, sess *domain.Session) error
	profileFn func(ctx context.Context, sess *domain.Session, userID string, in ports.ProfileInput) (*domain.Identity, error)
}

func (s *stubAuthService) Login(ctx context.Context, in ports.LoginInput) (string, *domain.Session, error) {
	return s.loginFn(ctx, in)
}

func (s *stubAuthService) Logout(ctx context.Context, sess *domain.Session) error {
	if s.logoutFn == nil {
		return nil
	}
	return s.logoutFn(ctx, sess)
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, sess *domain.Session, userID string, in ports.ProfileInput) (*domain.Identity, error) {
	return s.profileFn(ctx, sess, userID, in)
}

func testSession(id string, role domain.Role) *domain.Session {
	return &domain.Session{
		ID:        id,
		Identity:  domain.Identity{UserID: "u-" + id, Name: "Sari", Email: "sari@example.com", Role: role},
		Token:     "backend-token",
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Login_SetsCookieAndHonoursNext(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, in ports.LoginInput) (string, *domain.Session, error) {
			if in.Email != "sari@example.com" || in.Password != "Secret#123" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return "signed-cookie", testSession("s1", domain.RoleUser), nil
		},
	}
	handler := NewAuthHandler(stub, middleware.CookieConfig{}, zerolog.Nop())

	c, rec := newJSONContext(http.MethodPost, "/auth/login?next=%2Fcart", `{"email":"sari@example.com","password":"Secret#123"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Redirect != "/cart" {
		t.Fatalf("expected redirect to /cart, got %q", resp.Redirect)
	}
	if resp.User.Email != "sari@example.com" {
		t.Fatalf("unexpected user: %+v", resp.User)
	}

	cookie := rec.Result().Cookies()
	if len(cookie) != 1 || cookie[0].Name != middleware.SessionCookieName || cookie[0].Value != "signed-cookie" || !cookie[0].HttpOnly {
		t.Fatalf("unexpected cookies: %+v", cookie)
	}
}

func TestAuthHandler_Login_ServiceError(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(context.Context, ports.LoginInput) (string, *domain.Session, error) {
			return "", nil, &domain.RemoteError{Status: http.StatusUnauthorized, Detail: "Invalid email or password"}
		},
	}
	handler := NewAuthHandler(stub, middleware.CookieConfig{}, zerolog.Nop())

	c, rec := newJSONContext(http.MethodPost, "/auth/login", `{"email":"sari@example.com","password":"nope"}`)
	err := handler.Login(c)

	var re *domain.RemoteError
	if !errors.As(err, &re) || re.Status != http.StatusUnauthorized {
		t.Fatalf("expected remote 401, got %v", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("no cookie should be set on failure")
	}
}

func TestAuthHandler_Login_ReplacesPreviousSession(t *testing.T) {
	var loggedOut string
	stub := &stubAuthService{
		loginFn: func(context.Context, ports.LoginInput) (string, *domain.Session, error) {
			return "new-cookie", testSession("new", domain.RoleAdmin), nil
		},
		logoutFn: func(_ context.Context, sess *domain.Session) error {
			loggedOut = sess.ID
			return nil
		},
	}
	handler := NewAuthHandler(stub, middleware.CookieConfig{}, zerolog.Nop())

	c, rec := newJSONContext(http.MethodPost, "/auth/login", `{"email":"a@b.co","password":"x"}`)
	middleware.SetSession(c, testSession("old", domain.RoleUser))
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if loggedOut != "old" {
		t.Fatalf("expected previous session to be logged out, got %q", loggedOut)
	}
	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Redirect != "/admin/dashboard" {
		t.Fatalf("admin should land on the dashboard, got %q", resp.Redirect)
	}
	if got := middleware.SessionFrom(c); got == nil || got.ID != "new" {
		t.Fatalf("expected new session bound, got %+v", got)
	}
}

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	var called bool
	stub := &stubAuthService{logoutFn: func(context.Context, *domain.Session) error {
		called = true
		return nil
	}}
	handler := NewAuthHandler(stub, middleware.CookieConfig{}, zerolog.Nop())

	c, rec := newJSONContext(http.MethodPost, "/auth/logout", "")
	middleware.SetSession(c, testSession("s1", domain.RoleUser))
	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if !called {
		t.Fatal("expected service logout")
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected expired cookie, got %+v", cookies)
	}
}

func TestAuthHandler_Me_RequiresSession(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{}, middleware.CookieConfig{}, zerolog.Nop())

	c, _ := newJSONContext(http.MethodGet, "/auth/me", "")
	if err := handler.Me(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthHandler_UpdateProfile_PassesPathID(t *testing.T) {
	stub := &stubAuthService{
		profileFn: func(_ context.Context, sess *domain.Session, userID string, in ports.ProfileInput) (*domain.Identity, error) {
			if userID != "u-other" {
				t.Fatalf("expected path id, got %q", userID)
			}
			return nil, domain.ErrForbidden
		},
	}
	handler := NewAuthHandler(stub, middleware.CookieConfig{}, zerolog.Nop())

	c, _ := newJSONContext(http.MethodPut, "/profile/u-other", `{"name":"Sari","email":"sari@example.com"}`)
	c.SetParamNames("id")
	c.SetParamValues("u-other")
	middleware.SetSession(c, testSession("s1", domain.RoleUser))

	if err := handler.UpdateProfile(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestLandingPath(t *testing.T) {
	user := testSession("s", domain.RoleUser)
	cases := map[string]string{
		"":                 "/",
		"/orders":          "/orders",
		"//evil.example":   "/",
		"https://evil.com": "/",
		"/\\evil.com":      "/",
		"/\t/evil.com":     "/",
		"/menu?sort=name":  "/menu?sort=name",
	}
	for next, want := range cases {
		if got := landingPath(next, user); got != want {
			t.Errorf("landingPath(%q) = %q, want %q", next, got, want)
		}
	}
}
