package middleware

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/kopinusa/storefront/internal/api/metrics"
	"github.com/kopinusa/storefront/internal/core/domain"
)

// Paths the guard redirects to.
const (
	LoginPath         = "/login"
	NotAuthorizedPath = "/not-authorized"
)

// Decision is the outcome of evaluating a route group's role requirement.
type Decision int

const (
	Allow Decision = iota
	RedirectLogin
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "login"
	default:
		return "forbidden"
	}
}

// Decide maps the current session onto the route group's allowed roles.
func Decide(sess *domain.Session, allowed ...domain.Role) Decision {
	if sess == nil {
		return RedirectLogin
	}
	if !sess.HasRole(allowed...) {
		return Forbidden
	}
	return Allow
}

// RequireRoles guards a route group. It is evaluated on every request from
// the session bound by Session; nothing is cached between requests.
func RequireRoles(allowed ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			decision := Decide(SessionFrom(c), allowed...)
			metrics.GuardDecisionsTotal.WithLabelValues(decision.String()).Inc()

			switch decision {
			case RedirectLogin:
				return c.Redirect(http.StatusFound, LoginPath+"?next="+url.QueryEscape(c.Request().URL.RequestURI()))
			case Forbidden:
				return c.Redirect(http.StatusFound, NotAuthorizedPath)
			}
			return next(c)
		}
	}
}
