package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/primeshop/account-service/docs"
	"github.com/primeshop/account-service/internal/api/handler"
	"github.com/primeshop/account-service/internal/api/middleware"
	"github.com/primeshop/account-service/internal/core/domain"
	"github.com/primeshop/account-service/internal/core/ports"
	"github.com/primeshop/account-service/internal/core/service"
	"github.com/primeshop/account-service/internal/core/token"
	mongodb "github.com/primeshop/account-service/internal/infrastructure/db/mongo"
	redisdb "github.com/primeshop/account-service/internal/infrastructure/db/redis"
	"github.com/primeshop/account-service/internal/infrastructure/http/handlers"
)

// RouterDeps carries the externally constructed dependencies of the HTTP layer.
type RouterDeps struct {
	DB     *mongo.Database
	Redis  *redis.Client
	Issuer *token.Issuer
	Audit  ports.AuditSink
	Log    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("account"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(deps.DB)
	sessions := redisdb.NewSessionStore(deps.Redis)
	accountService := service.NewAccountService(userRepo, deps.Issuer, sessions, deps.Audit, deps.Log)
	userService := service.NewUserService(userRepo, deps.Log)

	authHandler := handler.NewAuthHandler(accountService)
	userHandler := handler.NewUserHandler(userService)

	authRequired := middleware.Auth(deps.Issuer)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/register-admin", authHandler.RegisterAdmin, authRequired, adminOnly)
	e.POST("/auth/logout", authHandler.Logout, authRequired)

	// --- User management ---
	users := e.Group("/v1/users", authRequired)
	users.GET("/me", userHandler.Me)
	users.PUT("/me/password", userHandler.ChangePassword)
	users.PUT("/:id", userHandler.Update)
	users.GET("", userHandler.List, adminOnly)
	users.GET("/search", userHandler.Search, adminOnly)
	users.GET("/:id", userHandler.Get, adminOnly)
	users.PUT("/:id/lock", userHandler.Lock, adminOnly)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.DB, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
