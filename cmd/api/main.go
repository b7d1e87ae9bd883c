package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/nurox-platform/nurox/internal/admin"
	"github.com/nurox-platform/nurox/internal/api"
	"github.com/nurox-platform/nurox/internal/audit"
	"github.com/nurox-platform/nurox/internal/auth"
	"github.com/nurox-platform/nurox/internal/config"
	"github.com/nurox-platform/nurox/internal/database"
	"github.com/nurox-platform/nurox/internal/debate"
	"github.com/nurox-platform/nurox/internal/events"
	"github.com/nurox-platform/nurox/internal/llm"
	"github.com/nurox-platform/nurox/internal/middleware"
	iredis "github.com/nurox-platform/nurox/internal/redis"
	"github.com/nurox-platform/nurox/internal/server"
	"github.com/nurox-platform/nurox/internal/usage"
	"github.com/nurox-platform/nurox/internal/users"

	"github.com/google/uuid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// PostgreSQL
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.RunMigrations(cfg.DB.DSN(), "migrations"); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// NATS event trail (optional)
	var publisher *events.Publisher
	var eventTrailHealthy func() bool
	if cfg.NATS.URL != "" {
		natsClient, err := events.NewClient(ctx, cfg.NATS)
		if err != nil {
			slog.Error("connecting to NATS", "error", err)
			os.Exit(1)
		}
		defer natsClient.Close()
		publisher = events.NewPublisher(natsClient.JetStream())
		eventTrailHealthy = natsClient.Healthy

		auditRepo := audit.NewPostgresRepository(pool)
		consumer := audit.NewConsumer(events.NewConsumerManager(natsClient.JetStream()), auditRepo)
		go func() {
			if err := consumer.Start(ctx); err != nil {
				slog.Error("audit consumer stopped", "error", err)
			}
		}()
	}

	// Users
	userRepo := users.NewRepository(pool)
	userSvc := users.NewService(userRepo)

	// Auth
	jwtManager := auth.NewJWTManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)
	usernameLookup := func(ctx context.Context, userID string) (string, error) {
		id, err := uuid.Parse(userID)
		if err != nil {
			return "", err
		}
		user, err := userSvc.GetByID(ctx, id)
		if err != nil {
			return "", err
		}
		if user == nil {
			return "", auth.ErrUnknownUser
		}
		return user.Username, nil
	}
	authSvc := auth.NewService(jwtManager, auth.NewRedisRefreshStore(redisClient), usernameLookup)
	authHandler := auth.NewHandler(authSvc, userSvc)

	// Usage enforcement
	enforcer := usage.NewEnforcer(usage.NewPostgresStore(pool))

	// Debate pipeline
	llmClient := llm.NewClient(llm.Config{
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: 0.3,
		Timeout:     cfg.LLM.Timeout,
	})
	debateRepo := debate.NewPostgresRepository(pool)
	debateSvc := debate.NewService(enforcer, debateRepo, llmClient, publisher,
		cfg.LLM.BuilderAPIKey, cfg.LLM.AuditorAPIKey)
	debateHandler := debate.NewHandler(debateSvc, userSvc)

	// Admin reporting
	adminHandler := admin.NewHandler(userSvc, enforcer, debateRepo,
		audit.NewPostgresRepository(pool), publisher)

	// Per-IP rate limit on the public auth routes
	authLimiter := middleware.NewRateLimiter(redisClient,
		cfg.Auth.RateLimitMax, cfg.Auth.RateLimitWindow)

	// Router
	router := api.NewRouter(pool, redisClient, api.RouterConfig{
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
		AuthRateLimiter:    authLimiter.Middleware,
	}, api.HandlerSet{
		Register: authHandler.Register,
		Login:    authHandler.Login,
		Refresh:  authHandler.Refresh,
		Logout:   authHandler.Logout,

		Debate:  debateHandler.Debate,
		History: debateHandler.History,
		Usage:   debateHandler.Usage,

		AdminListUsers: adminHandler.ListUsers,
		AdminUpgrade:   adminHandler.Upgrade,
		AdminDisable:   adminHandler.Disable,
		AdminStats:     adminHandler.Stats,
		AdminAudit:     adminHandler.Audit,

		AuthMiddleware:  auth.Middleware(authSvc),
		AdminMiddleware: admin.Middleware(cfg.Admin.Username, cfg.Admin.Password),

		EventTrailHealthy: eventTrailHealthy,
	})

	// Start server
	srv := server.New(cfg.Server, router)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
