package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kopinusa/storefront/internal/api/middleware"
	"github.com/kopinusa/storefront/internal/core/domain"
	"github.com/kopinusa/storefront/internal/core/ports"
)

const defaultFeatured = 6

// CatalogHandler serves the public pages: home, menu, coffee detail and the
// visitor's favorites.
type CatalogHandler struct {
	catalog   ports.CatalogService
	favorites ports.FavoriteService
}

func NewCatalogHandler(catalog ports.CatalogService, favorites ports.FavoriteService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, favorites: favorites}
}

type homeResponse struct {
	Featured []domain.MenuItem `json:"featured"`
	User     *domain.Identity  `json:"user,omitempty"`
}

type menuResponse struct {
	Items     []domain.MenuItem `json:"items"`
	Favorites []string          `json:"favorites"`
}

type favoritesResponse struct {
	Favorites []string `json:"favorites"`
}

type favoriteRequest struct {
	CoffeeID string `json:"coffee_id"`
}

// Home renders the landing page.
//
// @Summary      Home page
// @Tags         catalog
// @Produce      json
// @Param        limit  query     int  false  "Number of featured items"
// @Success      200    {object}  homeResponse
// @Failure      502    {object}  ErrorResponse
// @Router       / [get]
func (h *CatalogHandler) Home(c echo.Context) error {
	limit := defaultFeatured
	if n, err := strconv.Atoi(c.QueryParam("limit")); err == nil && n > 0 {
		limit = n
	}
	items, err := h.catalog.Featured(c.Request().Context(), limit)
	if err != nil {
		return err
	}

	resp := homeResponse{Featured: items}
	if sess := middleware.SessionFrom(c); sess != nil {
		resp.User = &sess.Identity
	}
	return c.JSON(http.StatusOK, resp)
}

// Menu lists the available menu.
//
// @Summary      Menu
// @Tags         catalog
// @Produce      json
// @Param        q         query     string  false  "Free-text search"
// @Param        category  query     string  false  "Category or 'all'"
// @Param        sort      query     string  false  "newest, oldest, name, price-asc or price-desc"
// @Success      200       {object}  menuResponse
// @Router       /menu [get]
func (h *CatalogHandler) Menu(c echo.Context) error {
	ctx := c.Request().Context()
	items, err := h.catalog.Menu(ctx, ports.CatalogQuery{
		Search:   c.QueryParam("q"),
		Category: c.QueryParam("category"),
		Sort:     c.QueryParam("sort"),
	})
	if err != nil {
		return err
	}
	favs, err := h.favorites.List(ctx, middleware.VisitorFrom(c))
	if err != nil {
		favs = []string{}
	}
	return c.JSON(http.StatusOK, menuResponse{Items: items, Favorites: favs})
}

// Coffee renders one coffee with its variants.
//
// @Summary      Coffee detail
// @Tags         catalog
// @Produce      json
// @Param        id   path      string  true  "Menu item ID"
// @Success      200  {object}  ports.CoffeeDetail
// @Failure      404  {object}  ErrorResponse
// @Router       /menu/{id} [get]
func (h *CatalogHandler) Coffee(c echo.Context) error {
	detail, err := h.catalog.Coffee(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, detail)
}

// Favorites lists the visitor's favorite coffee IDs.
//
// @Summary      List favorites
// @Tags         favorites
// @Produce      json
// @Success      200  {object}  favoritesResponse
// @Router       /favorites [get]
func (h *CatalogHandler) Favorites(c echo.Context) error {
	favs, err := h.favorites.List(c.Request().Context(), middleware.VisitorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, favoritesResponse{Favorites: favs})
}

// AddFavorite marks a coffee as favorite.
//
// @Summary      Add favorite
// @Tags         favorites
// @Accept       json
// @Produce      json
// @Param        body  body      favoriteRequest  true  "Coffee to add"
// @Success      200   {object}  favoritesResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /favorites [post]
func (h *CatalogHandler) AddFavorite(c echo.Context) error {
	var req favoriteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	visitor := middleware.VisitorFrom(c)
	if err := h.favorites.Add(c.Request().Context(), visitor, req.CoffeeID); err != nil {
		return err
	}
	return h.Favorites(c)
}

// RemoveFavorite unmarks a coffee.
//
// @Summary      Remove favorite
// @Tags         favorites
// @Produce      json
// @Param        id   path      string  true  "Coffee ID"
// @Success      200  {object}  favoritesResponse
// @Router       /favorites/{id} [delete]
func (h *CatalogHandler) RemoveFavorite(c echo.Context) error {
	visitor := middleware.VisitorFrom(c)
	if err := h.favorites.Remove(c.Request().Context(), visitor, c.Param("id")); err != nil {
		return err
	}
	return h.Favorites(c)
}
