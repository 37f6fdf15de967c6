package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vicentemv/user-management-api/internal/api/handler"
	"github.com/vicentemv/user-management-api/internal/api/middleware"
	"github.com/vicentemv/user-management-api/internal/core/audit"
	"github.com/vicentemv/user-management-api/internal/core/domain"
	"github.com/vicentemv/user-management-api/internal/core/ports"
	"github.com/vicentemv/user-management-api/internal/core/service"
	mongodb "github.com/vicentemv/user-management-api/internal/infrastructure/db/mongo"
	redisdb "github.com/vicentemv/user-management-api/internal/infrastructure/db/redis"
)

// Options carries the settings the router needs beyond its connections.
type Options struct {
	JWTSecret         string
	TokenTTL          time.Duration
	RateLimitAttempts int
	RateLimitWindow   time.Duration
}

// NewRouter builds and returns the Echo instance with all routes registered.
// Every service sees the account store through the recording repository, so
// each mutation path is audited by construction.
func NewRouter(db *mongo.Database, rdb *redis.Client, mail ports.MailEnqueuer, log zerolog.Logger, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("users"))

	// --- Dependencies ---
	auditRepo := mongodb.NewAuditRepository(db)
	recorder := audit.NewRecorder(auditRepo, log)
	userRepo := audit.NewRecordingRepository(mongodb.NewUserRepository(db), recorder)
	limiter := redisdb.NewRateLimiter(rdb, opts.RateLimitAttempts, opts.RateLimitWindow)

	userService := service.NewUserService(userRepo, mail, limiter, opts.JWTSecret, opts.TokenTTL, log)
	adminService := service.NewAdminService(userRepo, log)
	auditService := service.NewAuditQueryService(auditRepo, log)

	userHandler := handler.NewUserHandler(userService)
	adminHandler := handler.NewAdminHandler(adminService)
	auditHandler := handler.NewAuditHandler(auditService)

	authRequired := middleware.Auth(opts.JWTSecret)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Self-service routes ---
	users := e.Group("/api/v1/users")
	users.POST("/register", userHandler.Register)
	users.POST("/login", userHandler.Login)
	users.POST("/forgot-password", userHandler.ForgotPassword)
	users.POST("/reset-password", userHandler.ResetPassword)
	users.GET("/profile", userHandler.Profile, authRequired)
	users.PUT("/profile", userHandler.UpdateProfile, authRequired)
	users.PUT("/password", userHandler.ChangePassword, authRequired)
	users.POST("/delete", userHandler.DeleteAccount, authRequired)

	// --- Admin routes ---
	admin := e.Group("/api/v1/admin", authRequired)
	admin.GET("/users", adminHandler.ListUsers, adminOnly)
	admin.POST("/users/create-admin", adminHandler.CreateAdmin, adminOnly)
	admin.GET("/users/check-admin", adminHandler.CheckAdmin)
	admin.PUT("/users/:id/role", adminHandler.UpdateRole, adminOnly)
	admin.DELETE("/users/:id", adminHandler.DeleteUser, adminOnly)
	admin.GET("/audits", auditHandler.ListAll, adminOnly)

	// --- Audit trail routes ---
	auditGroup := e.Group("/api/v1/audit", authRequired, adminOnly)
	auditGroup.GET("/:userId/logs", auditHandler.ListForSubject)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
