package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kopinusa/storefront/internal/api/middleware"
	"github.com/kopinusa/storefront/internal/core/domain"
)

// PagesHandler serves the pages the guard redirects to.
type PagesHandler struct{}

func NewPagesHandler() *PagesHandler {
	return &PagesHandler{}
}

type loginViewResponse struct {
	Next string           `json:"next,omitempty"`
	User *domain.Identity `json:"user,omitempty"`
}

// LoginView describes the login page. A browser that is already logged in
// is told where it would land.
//
// @Summary      Login page
// @Tags         pages
// @Produce      json
// @Param        next  query     string  false  "Path to continue to after login"
// @Success      200   {object}  loginViewResponse
// @Router       /login [get]
func (h *PagesHandler) LoginView(c echo.Context) error {
	resp := loginViewResponse{Next: c.QueryParam("next")}
	if sess := middleware.SessionFrom(c); sess != nil {
		resp.User = &sess.Identity
		resp.Next = landingPath(resp.Next, sess)
	}
	return c.JSON(http.StatusOK, resp)
}

// NotAuthorizedView is where the guard sends sessions without the role.
//
// @Summary      Not authorized page
// @Tags         pages
// @Produce      json
// @Success      403  {object}  ErrorResponse
// @Router       /not-authorized [get]
func (h *PagesHandler) NotAuthorizedView(c echo.Context) error {
	return c.JSON(http.StatusForbidden, ErrorResponse{Error: "You do not have permission to view this page."})
}

// NotFound answers every unknown route.
func (h *PagesHandler) NotFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, ErrorResponse{Error: "page not found"})
}
