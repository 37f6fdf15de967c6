package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/vicentemv/user-management-api/internal/api"
	"github.com/vicentemv/user-management-api/internal/core/audit"
	"github.com/vicentemv/user-management-api/internal/core/domain"
	"github.com/vicentemv/user-management-api/internal/core/ports"
	"github.com/vicentemv/user-management-api/internal/infrastructure/config"
	mongodb "github.com/vicentemv/user-management-api/internal/infrastructure/db/mongo"
	redisdb "github.com/vicentemv/user-management-api/internal/infrastructure/db/redis"
	"github.com/vicentemv/user-management-api/internal/infrastructure/mail"
	"github.com/vicentemv/user-management-api/internal/infrastructure/queue"
	"github.com/vicentemv/user-management-api/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- MongoDB ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	userRepo := mongodb.NewUserRepository(db)
	auditRepo := mongodb.NewAuditRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure user indexes failed")
	}
	if err := auditRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure audit indexes failed")
	}

	// --- Redis ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	// --- Default admin ---
	if err := seedAdmin(ctx, userRepo, auditRepo, cfg.Admin, log); err != nil {
		log.Fatal().Err(err).Msg("admin seeding failed")
	}

	// --- Mail dispatcher ---
	dispatcher := queue.NewDispatcher(cfg.Mail.Workers, mail.NewLogMailer(log), log)
	dispatcher.Start(ctx)

	// --- HTTP server ---
	e := api.NewRouter(db, rdb, dispatcher, log, api.Options{
		JWTSecret:         cfg.JWTSecret,
		TokenTTL:          cfg.TokenTTL,
		RateLimitAttempts: cfg.RateLimitAttempts,
		RateLimitWindow:   cfg.RateLimitWindow,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// seedAdmin creates the default administrator account on first boot. The
// write goes through the recording repository so even the seeded account
// has a create entry in the trail.
func seedAdmin(ctx context.Context, users ports.UserRepository, audits ports.AuditRepository, cfg config.AdminConfig, log zerolog.Logger) error {
	if _, err := users.FindByUsername(ctx, cfg.Username); err == nil {
		log.Debug().Str("username", cfg.Username).Msg("admin user already exists")
		return nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	recording := audit.NewRecordingRepository(users, audit.NewRecorder(audits, log))
	now := time.Now().UTC()
	admin, err := recording.Create(ctx, &domain.User{
		Name:         "admin",
		Surname:      "admin",
		Email:        cfg.Email,
		Username:     cfg.Username,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return err
	}

	log.Info().Str("user_id", admin.ID).Str("email", admin.Email).Msg("default admin created")
	return nil
}
