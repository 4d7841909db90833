package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// VisitorCookieName identifies one browser context across sessions.
	VisitorCookieName = "storefront_visitor"

	visitorKey = "visitor_id"
	visitorTTL = 365 * 24 * time.Hour
)

// Visitor makes sure every browser carries a stable visitor ID, issuing one
// on the first request.
func Visitor(cookies CookieConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if cookie, err := c.Cookie(VisitorCookieName); err == nil {
				if parsed, err := uuid.Parse(cookie.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     VisitorCookieName,
					Value:    id,
					Path:     "/",
					Expires:  time.Now().Add(visitorTTL),
					HttpOnly: true,
					Secure:   cookies.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			c.Set(visitorKey, id)
			return next(c)
		}
	}
}

// VisitorFrom returns the request's visitor ID.
func VisitorFrom(c echo.Context) string {
	id, _ := c.Get(visitorKey).(string)
	return id
}
