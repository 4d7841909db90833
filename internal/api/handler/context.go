package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/kopinusa/storefront/internal/api/middleware"
	"github.com/kopinusa/storefront/internal/core/domain"
)

// requireSession returns the session bound by the session middleware. Routes
// behind the guard always have one; the check keeps handlers safe when
// mounted elsewhere.
func requireSession(c echo.Context) (*domain.Session, error) {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		return nil, domain.ErrUnauthenticated
	}
	return sess, nil
}
