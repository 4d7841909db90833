package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/kopinusa/storefront/internal/api/middleware"
	"github.com/kopinusa/storefront/internal/core/domain"
	"github.com/kopinusa/storefront/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	cookies     middleware.CookieConfig
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, cookies middleware.CookieConfig, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies, log: log}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phone_number"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
	Token       string `json:"token"`
}

type profileRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

type sessionResponse struct {
	User     domain.Identity `json:"user"`
	Redirect string          `json:"redirect,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Login authenticates against the backend and starts the browser session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        next  query     string        false  "Path to continue to after login"
// @Param        body  body      loginRequest  true   "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Failure      429   {object}  ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	cookie, sess, err := h.authService.Login(c.Request().Context(), ports.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return err
	}
	h.replaceSession(c, cookie, sess)

	return c.JSON(http.StatusOK, sessionResponse{User: sess.Identity, Redirect: landingPath(c.QueryParam("next"), sess)})
}

// Register creates an account and starts the browser session.
//
// @Summary      Register
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  sessionResponse
// @Failure      409   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	cookie, sess, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		PhoneNumber:     req.PhoneNumber,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return err
	}
	h.replaceSession(c, cookie, sess)

	return c.JSON(http.StatusCreated, sessionResponse{User: sess.Identity, Redirect: landingPath("", sess)})
}

// replaceSession installs the new session cookie. A session the browser
// already had is torn down so only one stays active.
func (h *AuthHandler) replaceSession(c echo.Context, cookie string, sess *domain.Session) {
	if prev := middleware.SessionFrom(c); prev != nil && prev.ID != sess.ID {
		if err := h.authService.Logout(c.Request().Context(), prev); err != nil {
			h.log.Warn().Err(err).Str("session_id", prev.ID).Msg("replace previous session failed")
		}
	}
	h.cookies.SetSessionCookie(c, cookie, sess.ExpiresAt)
	middleware.SetSession(c, sess)
}

// landingPath picks where the browser goes after login: the guarded page it
// came from when that is a local path, else the role's home.
func landingPath(next string, sess *domain.Session) string {
	if isLocalPath(next) {
		return next
	}
	if sess.HasRole(domain.RoleAdmin) {
		return "/admin/dashboard"
	}
	return "/"
}

// isLocalPath accepts only same-origin absolute paths. Browsers read "/\" as
// "//" and drop tabs and newlines, so those never pass.
func isLocalPath(p string) bool {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.ContainsAny(p, "\\\t\r\n") {
		return false
	}
	u, err := url.Parse(p)
	return err == nil && u.Scheme == "" && u.Host == ""
}

// Logout ends the session and clears its cookie and cart.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	sess := middleware.SessionFrom(c)
	h.cookies.ClearSessionCookie(c)
	if err := h.authService.Logout(c.Request().Context(), sess); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the current identity.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{User: sess.Identity})
}

// ForgotPassword asks the backend to send a reset link.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      202   {object}  messageResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	msg, err := h.authService.RequestPasswordReset(c.Request().Context(), req.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, messageResponse{Message: msg})
}

// ResetPassword sets a new password using the emailed token.
//
// @Summary      Reset password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Reset details"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	err := h.authService.ResetPassword(c.Request().Context(), ports.ResetPasswordInput{
		Email:       req.Email,
		NewPassword: req.NewPassword,
		Token:       req.Token,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Password updated. You can now log in."})
}

// VerifyEmail confirms an email address from the emailed link.
//
// @Summary      Verify email
// @Tags         auth
// @Produce      json
// @Param        token  query     string  true  "Verification token"
// @Success      200    {object}  messageResponse
// @Failure      400    {object}  ErrorResponse
// @Router       /auth/verify-email [get]
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	msg, err := h.authService.VerifyEmail(c.Request().Context(), c.QueryParam("token"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: msg})
}

// Profile returns the session owner's profile.
//
// @Summary      Get profile
// @Tags         profile
// @Produce      json
// @Success      200  {object}  domain.Identity
// @Router       /profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sess.Identity)
}

// UpdateProfile changes the session owner's own profile.
//
// @Summary      Update profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "User ID"
// @Param        body  body      profileRequest  true  "Profile fields; empty password keeps the current one"
// @Success      200   {object}  domain.Identity
// @Failure      403   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /profile/{id} [put]
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	var req profileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	userID := c.Param("id")
	if userID == "" {
		userID = sess.Identity.UserID
	}
	identity, err := h.authService.UpdateProfile(c.Request().Context(), sess, userID, ports.ProfileInput{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, identity)
}
