package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kopinusa/storefront/internal/core/domain"
	"github.com/kopinusa/storefront/internal/core/ports"
	"github.com/kopinusa/storefront/internal/core/validation"
)

type authFixture struct {
	svc      *AuthService
	backend  *stubBackend
	sessions *stubSessionStore
	carts    *stubCartStore
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		backend:  newStubBackend(),
		sessions: newStubSessionStore(),
		carts:    newStubCartStore(),
	}
	f.svc = NewAuthService(f.backend, f.sessions, f.carts, validation.New(),
		AuthConfig{JWTSecret: "secret", SessionTTL: time.Hour}, zerolog.Nop())
	return f
}

func adminLogin() authResponse {
	return authResponse{
		AccessToken: "backend-token",
		User: domain.User{
			ID:    "u-1",
			Name:  "Ayu",
			Email: "ayu@kopi.id",
			Role:  domain.RoleAdmin,
		},
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	f := newAuthFixture(t)
	f.backend.reply("POST", "/auth/login", adminLogin())

	cookie, sess, err := f.svc.Login(context.Background(), ports.LoginInput{Email: " ayu@kopi.id ", Password: "whatever"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if cookie == "" {
		t.Fatalf("expected a cookie value")
	}
	if sess.Token != "backend-token" || sess.Identity.Role != domain.RoleAdmin || sess.Identity.UserID != "u-1" {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if _, err := f.sessions.Find(context.Background(), sess.ID); err != nil {
		t.Fatalf("session was not stored: %v", err)
	}

	got, err := f.svc.Authenticate(context.Background(), cookie)
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if got.ID != sess.ID {
		t.Fatalf("Authenticate resolved %s, want %s", got.ID, sess.ID)
	}
}

func TestAuthService_Login_Validation(t *testing.T) {
	f := newAuthFixture(t)

	_, _, err := f.svc.Login(context.Background(), ports.LoginInput{Email: "not-an-email"})
	var verrs *validation.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	if verrs.Fields["email"] == "" || verrs.Fields["password"] == "" {
		t.Fatalf("expected email and password errors, got %+v", verrs.Fields)
	}
	if len(f.backend.callsTo("POST", "/auth/login")) != 0 {
		t.Fatalf("backend must not be called for invalid input")
	}
}

func TestAuthService_Login_BackendRejects(t *testing.T) {
	f := newAuthFixture(t)
	f.backend.fail("POST", "/auth/login", &domain.RemoteError{Status: http.StatusUnauthorized, Detail: "Invalid email or password"})

	_, sess, err := f.svc.Login(context.Background(), ports.LoginInput{Email: "ayu@kopi.id", Password: "nope"})
	if !domain.IsRemoteStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected 401 remote error, got %v", err)
	}
	if sess != nil || len(f.sessions.sessions) != 0 {
		t.Fatalf("no session may exist after a failed login")
	}
}

func TestAuthService_Register_LogsInWhenNoToken(t *testing.T) {
	f := newAuthFixture(t)
	f.backend.reply("POST", "/auth/register", map[string]any{"user": map[string]string{"id": "u-9"}})
	f.backend.reply("POST", "/auth/login", authResponse{
		AccessToken: "t-9",
		User:        domain.User{ID: "u-9", Name: "Budi", Email: "budi@kopi.id", Role: domain.RoleUser},
	})

	_, sess, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Name:            "Budi",
		Email:           "budi@kopi.id",
		PhoneNumber:     "081234567890",
		Password:        "Abcdef1!",
		ConfirmPassword: "Abcdef1!",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if sess.Identity.Role != domain.RoleUser || sess.Token != "t-9" {
		t.Fatalf("unexpected session: %+v", sess)
	}
	calls := f.backend.callsTo("POST", "/auth/register")
	body := calls[0].Body.(map[string]string)
	if _, ok := body["confirm_password"]; ok {
		t.Fatalf("confirm_password must not be sent to the backend")
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	f := newAuthFixture(t)

	_, _, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Name:            "  ",
		Email:           "budi@kopi",
		PhoneNumber:     "12345",
		Password:        "abcdefgh",
		ConfirmPassword: "different",
	})
	var verrs *validation.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	for _, field := range []string{"name", "email", "phone_number", "password", "confirm_password"} {
		if verrs.Fields[field] == "" {
			t.Fatalf("expected error on %s, got %+v", field, verrs.Fields)
		}
	}
}

func TestAuthService_Authenticate_Rejects(t *testing.T) {
	f := newAuthFixture(t)
	f.backend.reply("POST", "/auth/login", adminLogin())
	cookie, sess, err := f.svc.Login(context.Background(), ports.LoginInput{Email: "ayu@kopi.id", Password: "x"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if _, err := f.svc.Authenticate(context.Background(), ""); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("empty cookie: expected ErrUnauthenticated, got %v", err)
	}
	if _, err := f.svc.Authenticate(context.Background(), cookie+"x"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("tampered cookie: expected ErrUnauthenticated, got %v", err)
	}

	f.svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := f.svc.Authenticate(context.Background(), cookie); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expired cookie: expected ErrSessionExpired, got %v", err)
	}

	f.svc.now = time.Now
	_ = f.sessions.Delete(context.Background(), sess.ID)
	if _, err := f.svc.Authenticate(context.Background(), cookie); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("deleted session: expected ErrSessionNotFound, got %v", err)
	}
}

func TestAuthService_Logout_TearsDown(t *testing.T) {
	f := newAuthFixture(t)
	f.backend.reply("POST", "/auth/login", adminLogin())
	f.backend.fail("POST", "/auth/logout", errors.New("backend down"))

	var tornDown []string
	f.svc.OnLogout(func(_ context.Context, sessionID string) { tornDown = append(tornDown, sessionID) })

	cookie, sess, err := f.svc.Login(context.Background(), ports.LoginInput{Email: "ayu@kopi.id", Password: "x"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	_ = f.carts.Save(context.Background(), &domain.Cart{SessionID: sess.ID, Lines: []domain.CartLine{{MenuItemID: "m1", Quantity: 1}}})

	if err := f.svc.Logout(context.Background(), sess); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if _, err := f.svc.Authenticate(context.Background(), cookie); err == nil {
		t.Fatalf("cookie must not authenticate after logout")
	}
	if cart, _ := f.carts.Load(context.Background(), sess.ID); !cart.IsEmpty() {
		t.Fatalf("cart must be cleared on logout")
	}
	if len(tornDown) != 1 || tornDown[0] != sess.ID {
		t.Fatalf("teardown hooks not run: %v", tornDown)
	}
	calls := f.backend.callsTo("POST", "/auth/logout")
	if len(calls) != 1 || calls[0].Token != "backend-token" {
		t.Fatalf("expected one authenticated backend logout, got %+v", calls)
	}
}

func TestAuthService_ResetPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.backend.reply("POST", "/auth/reset-password", nil)

	err := f.svc.ResetPassword(context.Background(), ports.ResetPasswordInput{Email: "ayu@kopi.id", NewPassword: "weak", Token: "tok"})
	var verrs *validation.Errors
	if !errors.As(err, &verrs) || verrs.Fields["new_password"] == "" {
		t.Fatalf("expected new_password error, got %v", err)
	}

	if err := f.svc.ResetPassword(context.Background(), ports.ResetPasswordInput{Email: "ayu@kopi.id", NewPassword: "Abcdef1!", Token: "tok"}); err != nil {
		t.Fatalf("ResetPassword returned error: %v", err)
	}
	if len(f.backend.callsTo("POST", "/auth/reset-password")) != 1 {
		t.Fatalf("expected one backend call")
	}
}

func TestAuthService_RequestPasswordReset_DefaultMessage(t *testing.T) {
	f := newAuthFixture(t)
	f.backend.reply("POST", "/auth/forgot-password", map[string]string{})

	msg, err := f.svc.RequestPasswordReset(context.Background(), "ayu@kopi.id")
	if err != nil {
		t.Fatalf("RequestPasswordReset returned error: %v", err)
	}
	if msg != resetRequestedMessage {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestAuthService_VerifyEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.backend.reply("GET", "/auth/verify-email?token=a+b", map[string]string{"message": "verified"})

	msg, err := f.svc.VerifyEmail(context.Background(), "a b")
	if err != nil || msg != "verified" {
		t.Fatalf("VerifyEmail = %q, %v", msg, err)
	}
	if _, err := f.svc.VerifyEmail(context.Background(), " "); err == nil {
		t.Fatalf("expected error for blank token")
	}
}

func TestAuthService_UpdateProfile(t *testing.T) {
	f := newAuthFixture(t)
	f.backend.reply("POST", "/auth/login", adminLogin())
	f.backend.on("PUT", "/users/u-1/profile", func(body any) (any, error) {
		b := body.(map[string]string)
		return domain.User{ID: "u-1", Name: b["name"], Email: b["email"], PhoneNumber: b["phone_number"]}, nil
	})
	_, sess, err := f.svc.Login(context.Background(), ports.LoginInput{Email: "ayu@kopi.id", Password: "x"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if _, err := f.svc.UpdateProfile(context.Background(), sess, "u-2", ports.ProfileInput{}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for another user, got %v", err)
	}

	identity, err := f.svc.UpdateProfile(context.Background(), sess, "u-1", ports.ProfileInput{
		Name:        "Ayu Lestari",
		Email:       "ayu@kopi.id",
		PhoneNumber: "+6281234567890",
	})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if identity.Name != "Ayu Lestari" || identity.Role != domain.RoleAdmin {
		t.Fatalf("unexpected identity %+v", identity)
	}
	stored, _ := f.sessions.Find(context.Background(), sess.ID)
	if stored.Identity.Name != "Ayu Lestari" {
		t.Fatalf("session identity not refreshed: %+v", stored.Identity)
	}

	calls := f.backend.callsTo("PUT", "/users/u-1/profile")
	if _, ok := calls[0].Body.(map[string]string)["password"]; ok {
		t.Fatalf("blank password must be omitted")
	}
	if calls[0].Token != "backend-token" {
		t.Fatalf("profile update must carry the session token")
	}
}
