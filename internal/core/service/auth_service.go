package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kopinusa/storefront/internal/api/metrics"
	"github.com/kopinusa/storefront/internal/core/domain"
	"github.com/kopinusa/storefront/internal/core/ports"
	"github.com/kopinusa/storefront/internal/core/validation"
)

const (
	defaultSessionTTL = 24 * time.Hour

	resetRequestedMessage = "If the email is registered, a password reset link has been sent."
	emailVerifiedMessage  = "Email verified. You can now log in."
)

// TeardownFunc releases per-session state held outside the session store.
type TeardownFunc func(ctx context.Context, sessionID string)

// AuthConfig configures session issuance.
type AuthConfig struct {
	JWTSecret  string
	SessionTTL time.Duration
}

// AuthService owns the session context: it talks to the backend's auth
// endpoints, keeps the backend token server-side and hands the browser a
// signed cookie that points at the stored session.
type AuthService struct {
	backend  ports.Backend
	sessions ports.SessionStore
	carts    ports.CartStore
	validate *validation.Validator
	secret   []byte
	ttl      time.Duration
	log      zerolog.Logger
	now      func() time.Time

	mu        sync.RWMutex
	teardowns []TeardownFunc
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(
	backend ports.Backend,
	sessions ports.SessionStore,
	carts ports.CartStore,
	validate *validation.Validator,
	cfg AuthConfig,
	log zerolog.Logger,
) *AuthService {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &AuthService{
		backend:  backend,
		sessions: sessions,
		carts:    carts,
		validate: validate,
		secret:   []byte(cfg.JWTSecret),
		ttl:      ttl,
		log:      log.With().Str("component", "auth").Logger(),
		now:      time.Now,
	}
}

// OnLogout registers fn to run whenever a session is torn down.
func (s *AuthService) OnLogout(fn TeardownFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardowns = append(s.teardowns, fn)
}

type loginForm struct {
	Email    string `json:"email" validate:"required,email_basic"`
	Password string `json:"password" validate:"required"`
}

type registerForm struct {
	Name            string `json:"name" validate:"notblank"`
	Email           string `json:"email" validate:"required,email_basic"`
	PhoneNumber     string `json:"phone_number" validate:"required,phone_id"`
	Password        string `json:"password" validate:"required,strong_password"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type resetForm struct {
	Email       string `json:"email" validate:"required,email_basic"`
	NewPassword string `json:"new_password" validate:"required,strong_password"`
	Token       string `json:"token" validate:"notblank"`
}

type profileForm struct {
	Name        string `json:"name" validate:"notblank"`
	Email       string `json:"email" validate:"required,email_basic"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,phone_id"`
	Password    string `json:"password" validate:"omitempty,strong_password"`
}

// authResponse is the backend's answer to login and register.
type authResponse struct {
	AccessToken string      `json:"access_token"`
	User        domain.User `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (string, *domain.Session, error) {
	form := loginForm{Email: strings.TrimSpace(in.Email), Password: in.Password}
	if verrs := s.validate.Struct(form); !verrs.Empty() {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return "", nil, verrs
	}

	var resp authResponse
	if err := s.backend.Post(ctx, "/auth/login", form, &resp); err != nil {
		if domain.IsRemoteStatus(err, http.StatusUnauthorized) {
			metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		} else {
			metrics.LoginsTotal.WithLabelValues("error").Inc()
		}
		return "", nil, err
	}

	cookie, sess, err := s.startSession(ctx, resp)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return "", nil, err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("user_id", sess.Identity.UserID).Str("role", string(sess.Identity.Role)).Msg("login")
	return cookie, sess, nil
}

// Register creates the account and logs it in. When the backend does not
// return a token with the new account, a regular login follows.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (string, *domain.Session, error) {
	form := registerForm{
		Name:            strings.TrimSpace(in.Name),
		Email:           strings.TrimSpace(in.Email),
		PhoneNumber:     strings.TrimSpace(in.PhoneNumber),
		Password:        in.Password,
		ConfirmPassword: in.ConfirmPassword,
	}
	if verrs := s.validate.Struct(form); !verrs.Empty() {
		return "", nil, verrs
	}

	body := map[string]string{
		"name":         form.Name,
		"email":        form.Email,
		"phone_number": form.PhoneNumber,
		"password":     form.Password,
	}
	var resp authResponse
	if err := s.backend.Post(ctx, "/auth/register", body, &resp); err != nil {
		return "", nil, err
	}
	s.log.Info().Str("email", form.Email).Msg("account registered")

	if resp.AccessToken == "" {
		return s.Login(ctx, ports.LoginInput{Email: form.Email, Password: form.Password})
	}
	return s.startSession(ctx, resp)
}

func (s *AuthService) startSession(ctx context.Context, resp authResponse) (string, *domain.Session, error) {
	if resp.AccessToken == "" || resp.User.ID == "" {
		return "", nil, errors.New("auth: backend response carries no token or user")
	}
	if _, ok := domain.ParseRole(string(resp.User.Role)); !ok {
		return "", nil, fmt.Errorf("auth: unknown role %q", resp.User.Role)
	}

	now := s.now().UTC()
	sess := &domain.Session{
		ID:        uuid.NewString(),
		Identity:  domain.IdentityFromUser(resp.User),
		Token:     resp.AccessToken,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	sess.Identity.Role, _ = domain.ParseRole(string(resp.User.Role))

	if err := s.sessions.Save(ctx, sess); err != nil {
		return "", nil, fmt.Errorf("auth: save session: %w", err)
	}
	cookie, err := signSessionToken(s.secret, sess)
	if err != nil {
		_ = s.sessions.Delete(ctx, sess.ID)
		return "", nil, fmt.Errorf("auth: sign session: %w", err)
	}
	return cookie, sess, nil
}

// Logout tears the session down: backend logout (best effort), the stored
// session, its cart and every registered teardown.
func (s *AuthService) Logout(ctx context.Context, sess *domain.Session) error {
	if sess == nil {
		return nil
	}

	if err := s.backend.WithToken(sess.Token).Post(ctx, "/auth/logout", nil, nil); err != nil {
		s.log.Warn().Err(err).Str("session_id", sess.ID).Msg("backend logout failed")
	}

	err := s.sessions.Delete(ctx, sess.ID)
	if cerr := s.carts.Clear(ctx, sess.ID); cerr != nil {
		s.log.Warn().Err(cerr).Str("session_id", sess.ID).Msg("clear cart on logout failed")
	}

	s.mu.RLock()
	teardowns := s.teardowns
	s.mu.RUnlock()
	for _, fn := range teardowns {
		fn(ctx, sess.ID)
	}

	if err != nil {
		return fmt.Errorf("auth: delete session: %w", err)
	}
	s.log.Info().Str("user_id", sess.Identity.UserID).Msg("logout")
	return nil
}

// Authenticate resolves a session cookie to its stored session.
func (s *AuthService) Authenticate(ctx context.Context, cookie string) (*domain.Session, error) {
	if cookie == "" {
		return nil, domain.ErrUnauthenticated
	}
	now := s.now()
	claims, err := parseSessionToken(s.secret, cookie, now)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Find(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if sess.Identity.UserID != claims.Subject {
		return nil, domain.ErrUnauthenticated
	}
	if sess.Expired(now) {
		return nil, domain.ErrSessionExpired
	}
	return sess, nil
}

func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	form := struct {
		Email string `json:"email" validate:"required,email_basic"`
	}{Email: strings.TrimSpace(email)}
	if verrs := s.validate.Struct(form); !verrs.Empty() {
		return "", verrs
	}

	var resp messageResponse
	if err := s.backend.Post(ctx, "/auth/forgot-password", form, &resp); err != nil {
		return "", err
	}
	if resp.Message == "" {
		return resetRequestedMessage, nil
	}
	return resp.Message, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, in ports.ResetPasswordInput) error {
	form := resetForm{
		Email:       strings.TrimSpace(in.Email),
		NewPassword: in.NewPassword,
		Token:       strings.TrimSpace(in.Token),
	}
	if verrs := s.validate.Struct(form); !verrs.Empty() {
		return verrs
	}
	return s.backend.Post(ctx, "/auth/reset-password", form, nil)
}

func (s *AuthService) VerifyEmail(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		verrs := &validation.Errors{}
		verrs.Add("token", "is required")
		return "", verrs
	}

	var resp messageResponse
	if err := s.backend.Get(ctx, "/auth/verify-email?token="+url.QueryEscape(token), &resp); err != nil {
		return "", err
	}
	if resp.Message == "" {
		return emailVerifiedMessage, nil
	}
	return resp.Message, nil
}

// UpdateProfile changes the session owner's own profile and refreshes the
// identity held by the session. Updating another user is forbidden here;
// admins do that through user management.
func (s *AuthService) UpdateProfile(ctx context.Context, sess *domain.Session, userID string, in ports.ProfileInput) (*domain.Identity, error) {
	if sess == nil {
		return nil, domain.ErrUnauthenticated
	}
	if userID != sess.Identity.UserID {
		return nil, domain.ErrForbidden
	}

	form := profileForm{
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.TrimSpace(in.Email),
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		Password:    in.Password,
	}
	if verrs := s.validate.Struct(form); !verrs.Empty() {
		return nil, verrs
	}

	body := map[string]string{
		"name":         form.Name,
		"email":        form.Email,
		"phone_number": form.PhoneNumber,
	}
	if form.Password != "" {
		body["password"] = form.Password
	}

	var updated domain.User
	if err := s.backend.WithToken(sess.Token).Put(ctx, "/users/"+url.PathEscape(userID)+"/profile", body, &updated); err != nil {
		return nil, err
	}

	identity := sess.Identity
	identity.Name = form.Name
	identity.Email = form.Email
	identity.PhoneNumber = form.PhoneNumber
	if updated.ID == userID {
		identity.Name = updated.Name
		identity.Email = updated.Email
		identity.PhoneNumber = updated.PhoneNumber
	}

	next := *sess
	next.Identity = identity
	if err := s.sessions.Save(ctx, &next); err != nil {
		return nil, fmt.Errorf("auth: save session: %w", err)
	}
	*sess = next
	return &identity, nil
}
