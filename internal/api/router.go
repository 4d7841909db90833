package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/kopinusa/storefront/docs"
	"github.com/kopinusa/storefront/internal/api/handler"
	"github.com/kopinusa/storefront/internal/api/middleware"
	"github.com/kopinusa/storefront/internal/core/domain"
	"github.com/kopinusa/storefront/internal/core/ports"
	"github.com/kopinusa/storefront/internal/core/validation"
)

// Dependencies are the services the router wires into handlers.
type Dependencies struct {
	Auth      ports.AuthService
	Catalog   ports.CatalogService
	Cart      ports.CartService
	Favorites ports.FavoriteService
	Admin     ports.AdminService

	Cookies            middleware.CookieConfig
	LoginRatePerMinute int
	HealthChecks       map[string]handler.HealthCheck
	Log                zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem: "storefront",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Use(middleware.Session(deps.Auth, deps.Cookies, deps.Log))
	e.Use(middleware.Visitor(deps.Cookies))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Cookies, deps.Log)
	catalogHandler := handler.NewCatalogHandler(deps.Catalog, deps.Favorites)
	cartHandler := handler.NewCartHandler(deps.Cart)
	adminHandler := handler.NewAdminHandler(deps.Admin)
	pagesHandler := handler.NewPagesHandler()
	healthHandler := handler.NewHealthHandler(deps.HealthChecks)

	// --- Public pages ---
	e.GET("/", catalogHandler.Home)
	e.GET("/menu", catalogHandler.Menu)
	e.GET("/menu/:id", catalogHandler.Coffee)
	e.GET("/favorites", catalogHandler.Favorites)
	e.POST("/favorites", catalogHandler.AddFavorite)
	e.DELETE("/favorites/:id", catalogHandler.RemoveFavorite)
	e.GET(middleware.LoginPath, pagesHandler.LoginView)
	e.GET(middleware.NotAuthorizedPath, pagesHandler.NotAuthorizedView)

	customer := middleware.RequireRoles(domain.RoleUser, domain.RoleAdmin)

	// --- Auth routes ---
	auth := e.Group("/auth")
	if deps.LoginRatePerMinute > 0 {
		auth.Use(middleware.NewRateLimiter(deps.LoginRatePerMinute, deps.Log).Middleware())
	}
	auth.POST("/login", authHandler.Login)
	auth.POST("/register", authHandler.Register)
	auth.POST("/logout", authHandler.Logout, customer)
	auth.GET("/me", authHandler.Me)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/reset-password", authHandler.ResetPassword)
	auth.GET("/verify-email", authHandler.VerifyEmail)

	// --- Customer pages ---
	e.GET("/cart", cartHandler.Cart, customer)
	e.DELETE("/cart", cartHandler.Clear, customer)
	e.POST("/cart/items", cartHandler.AddItem, customer)
	e.PUT("/cart/items/:id", cartHandler.UpdateItem, customer)
	e.DELETE("/cart/items/:id", cartHandler.RemoveItem, customer)
	e.POST("/checkout", cartHandler.Checkout, customer)
	e.POST("/payment", cartHandler.Pay, customer)
	e.GET("/orders", cartHandler.Orders, customer)
	e.GET("/profile", authHandler.Profile, customer)
	e.PUT("/profile/:id", authHandler.UpdateProfile, customer)

	// --- Back office ---
	adminHandler.Register(e.Group("/admin", middleware.RequireRoles(domain.RoleAdmin)))

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?

	e.RouteNotFound("/*", pagesHandler.NotFound)

	return e
}
