package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/kopinusa/storefront/internal/core/domain"
	"github.com/kopinusa/storefront/internal/core/ports"
)

const (
	// SessionCookieName carries the signed session token.
	SessionCookieName = "storefront_session"

	sessionKey = "session"
)

// CookieConfig controls the attributes of the cookies the storefront sets.
type CookieConfig struct {
	Secure bool
	TTL    time.Duration
}

// SetSessionCookie stores the signed session token in the browser.
func (cfg CookieConfig) SetSessionCookie(c echo.Context, value string, expires time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func (cfg CookieConfig) ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Session resolves the session cookie on every request and stores the
// session in the context. Requests without a valid session continue
// anonymously. A rejected cookie is cleared; a failed lookup leaves it alone.
func Session(auth ports.AuthService, cookies CookieConfig, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			sess, err := auth.Authenticate(c.Request().Context(), cookie.Value)
			if err != nil {
				if isRejectedSession(err) {
					log.Debug().Err(err).Str("path", c.Request().URL.Path).Msg("session rejected")
					cookies.ClearSessionCookie(c)
				} else {
					// The cookie may still be good once the session store is back.
					log.Warn().Err(err).Str("path", c.Request().URL.Path).Msg("session lookup failed")
				}
				return next(c)
			}

			SetSession(c, sess)
			return next(c)
		}
	}
}

func isRejectedSession(err error) bool {
	return errors.Is(err, domain.ErrUnauthenticated) ||
		errors.Is(err, domain.ErrSessionExpired) ||
		errors.Is(err, domain.ErrSessionNotFound)
}

// SetSession binds sess to the request.
func SetSession(c echo.Context, sess *domain.Session) {
	c.Set(sessionKey, sess)
}

// SessionFrom returns the request's session, or nil when anonymous.
func SessionFrom(c echo.Context) *domain.Session {
	sess, _ := c.Get(sessionKey).(*domain.Session)
	return sess
}
