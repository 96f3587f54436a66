package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"
	"github.com/tendant/simple-verify/pkg/admin"
	adminapi "github.com/tendant/simple-verify/pkg/admin/api"
	"github.com/tendant/simple-verify/pkg/challenge"
	"github.com/tendant/simple-verify/pkg/config"
	"github.com/tendant/simple-verify/pkg/login"
	"github.com/tendant/simple-verify/pkg/profile"
	profileapi "github.com/tendant/simple-verify/pkg/profile/api"
	"github.com/tendant/simple-verify/pkg/verification"
	verificationapi "github.com/tendant/simple-verify/pkg/verification/api"
	"github.com/tendant/simple-verify/pkg/vonage"
	"github.com/tendant/simple-verify/pkg/websession"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting Simple Verify Service")

	// Load .env file if present
	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded .env file")
	}

	cfg := config.Config{}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to read configuration", "error", err)
		os.Exit(1)
	}

	// Storage backends
	var pool *pgxpool.Pool
	if cfg.Persistence.Type == "postgres" || cfg.Persistence.Type == "postgresql" {
		var err error
		pool, err = dbutils.NewDbPool(context.Background(), cfg.Db.ToDbConfig())
		if err != nil {
			slog.Error("Failed creating dbpool", "db", cfg.Db.Database, "host", cfg.Db.Host, "port", cfg.Db.Port, "user", cfg.Db.User)
			os.Exit(1)
		}
		defer pool.Close()
		slog.Info("Database connected", "database", cfg.Db.Database)
	}

	profileRepo, err := profile.NewProfileRepository(cfg.Persistence.Type, profile.RepositoryConfig{
		Pool:    pool,
		DataDir: cfg.Persistence.DataDir,
	})
	if err != nil {
		slog.Error("Failed to initialize profile repository", "error", err)
		os.Exit(1)
	}
	profileService := profile.NewProfileService(profileRepo)

	var redisClient *redis.Client
	if cfg.Persistence.ChallengeStore == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			slog.Error("Failed to connect to redis", "addr", cfg.Redis.Addr, "error", err)
			os.Exit(1)
		}
		slog.Info("Redis connected", "addr", cfg.Redis.Addr)
	}

	challengeRepo, err := challenge.NewChallengeRepository(cfg.Persistence.ChallengeStore, challenge.RepositoryConfig{
		RedisClient: redisClient,
		TTL:         cfg.Persistence.ChallengeTTL,
	})
	if err != nil {
		slog.Error("Failed to initialize challenge repository", "error", err)
		os.Exit(1)
	}

	loginRepo, err := login.NewFileLoginRepository(cfg.Persistence.DataDir)
	if err != nil {
		slog.Error("Failed to initialize login repository", "error", err)
		os.Exit(1)
	}
	loginService := login.NewLoginService(loginRepo)

	// Provider settings: admin-saved credentials win over the environment
	settingsRepo, err := admin.NewFileSettingsRepository(cfg.Persistence.DataDir)
	if err != nil {
		slog.Error("Failed to initialize settings repository", "error", err)
		os.Exit(1)
	}
	settingsService := admin.NewSettingsService(settingsRepo, vonage.Config{
		APIKey:    cfg.Vonage.APIKey,
		APISecret: cfg.Vonage.APISecret,
		Brand:     cfg.Vonage.Brand,
		BaseURL:   cfg.Vonage.BaseURL,
		Timeout:   cfg.Vonage.Timeout,
	})

	providerConfig, err := settingsService.ProviderConfig(context.Background())
	if err != nil {
		slog.Error("Failed to resolve provider configuration", "error", err)
		os.Exit(1)
	}
	if providerConfig.APIKey == "" || providerConfig.APISecret == "" {
		slog.Warn("Verify provider credentials not configured; logins with 2FA enabled will fail until set")
	}
	vonageClient := vonage.NewClient(providerConfig)

	verificationService := verification.NewVerificationService(vonageClient, challengeRepo, profileService)

	sessionService := websession.NewSessionService(websession.Config{
		Secret:     cfg.Session.Secret,
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.CookieSecure,
	})

	// HTTP server
	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	server.R.Route("/api", func(r chi.Router) {
		verificationapi.Routes(r, verificationapi.NewHandle(loginService, verificationService, sessionService))
		profileapi.Routes(r, profileapi.NewHandle(profileService))
	})
	server.R.Route("/api/admin", func(r chi.Router) {
		adminapi.Routes(r, adminapi.NewHandle(settingsService))
	})
	verificationapi.StaticRoutes(server.R)

	slog.Info("Simple Verify Service ready")
	server.Run()
}
