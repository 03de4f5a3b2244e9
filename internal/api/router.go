package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/userdesk/user-portal/internal/api/handler"
	"github.com/userdesk/user-portal/internal/api/middleware"
	"github.com/userdesk/user-portal/internal/core/ports"
)

// Deps carries the wired services the router mounts.
type Deps struct {
	AuthService ports.AuthService
	UserService ports.UserService
	Sessions    ports.SessionManager
	Avatars     ports.AvatarStore
	Mongo       *mongo.Database
	Redis       *redis.Client
	CookieTTL   int // seconds
	Logger      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("userportal"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.AuthService, d.Sessions, d.CookieTTL)
	userHandler := handler.NewUserHandler(d.UserService, d.Sessions)
	avatarHandler := handler.NewAvatarHandler(d.Avatars)

	withSession := middleware.WithSession(d.Sessions, d.CookieTTL)

	// --- Public routes ---
	e.POST("/signup", authHandler.Signup, withSession)
	e.POST("/login", authHandler.Login, withSession)
	e.GET("/logout", authHandler.Logout, withSession)
	e.GET("/session", authHandler.Whoami, withSession)
	e.GET("/avatars/:ref", avatarHandler.Serve)

	// --- Admin routes: session plus role check on every request ---
	admin := e.Group("/admin/users", withSession, middleware.RequireAdmin(d.Sessions))
	admin.GET("", userHandler.List)
	admin.GET("/:id", userHandler.Get)
	admin.POST("", userHandler.Create)
	admin.POST("/:id", userHandler.Update)
	admin.POST("/:id/delete", userHandler.Delete)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Mongo, d.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
