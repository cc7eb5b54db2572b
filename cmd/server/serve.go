package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vortex07x/steamsurf/internal/auth"
	"github.com/vortex07x/steamsurf/internal/config"
	"github.com/vortex07x/steamsurf/internal/handler"
	"github.com/vortex07x/steamsurf/internal/middleware"
	"github.com/vortex07x/steamsurf/internal/repository"
	"github.com/vortex07x/steamsurf/internal/router"
	"github.com/vortex07x/steamsurf/internal/service"
	"github.com/vortex07x/steamsurf/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load(envFile)
	middleware.InitLogger(cfg.LogLevel, "steamsurf-api")
	if err := cfg.EnsureJWTSecret(); err != nil {
		log.Error().Err(err).Msg("refusing to start")
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	handler.InitMetrics(reg, pool)

	cache := service.NewCacheService(cfg.RedisURL)
	defer cache.Close()
	cache.SetObserver(handler.CacheMetrics{})

	media, uploadDir, err := openMediaStore(ctx, cfg)
	if err != nil {
		return err
	}

	users := repository.NewUserRepo(pool)
	videos := repository.NewVideoRepo(pool)
	interactions := repository.NewInteractionRepo(pool)
	saved := repository.NewSavedRepo(pool)

	aggregates := service.NewAggregateService(interactions)
	catalog := service.NewCatalogService(videos, interactions, saved, aggregates, cache)
	interactionSvc := service.NewInteractionService(videos, interactions, saved, aggregates)
	cleanup := service.NewCleanupService(interactions, cfg.ViewRetention)
	cleanup.OnDeleted(handler.CountCleanup)
	adminSvc := service.NewAdminService(users, videos, interactions, aggregates, media, cache, cleanup, cfg.DefaultThumbnailURL)
	authSvc := service.NewAuthService(
		users,
		auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL),
		otpStore(cache),
		mailer(cfg),
		cfg.OTPTTL,
	)

	if cfg.CleanupOnStart {
		if _, err := cleanup.Run(ctx); err != nil {
			log.Warn().Err(err).Msg("startup view cleanup failed")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      "SteamSurf API",
		ServerHeader: "SteamSurf",
		BodyLimit:    cfg.MaxUploadBytes + 1024*1024,
	})

	router.Setup(app, &router.Handlers{
		Health: handler.NewHealthHandler(pool, cache.Client(), cfg.Environment),
		Auth:   handler.NewAuthHandler(authSvc),
		Video:  handler.NewVideoHandler(catalog, interactionSvc),
		Admin:  handler.NewAdminHandler(adminSvc, int64(cfg.MaxUploadBytes)),
	}, router.Options{
		CORSOrigins:   cfg.CORSOrigins,
		Authenticator: authSvc,
		Gatherer:      reg,
		UploadDir:     uploadDir,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Str("media", media.Name()).Msg("SteamSurf API starting")
		errCh <- app.Listen(":"+cfg.Port, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

func openMediaStore(ctx context.Context, cfg *config.Config) (storage.MediaStore, string, error) {
	if cfg.S3Enabled() {
		s3, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, "", err
		}
		return s3, "", nil
	}

	log.Warn().Str("dir", cfg.UploadDir).Msg("object storage not configured, storing media locally")
	local, err := storage.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL+"/uploads")
	if err != nil {
		return nil, "", err
	}
	return local, cfg.UploadDir, nil
}

func otpStore(cache *service.CacheService) service.OTPStore {
	if rdb := cache.Client(); rdb != nil {
		return service.NewRedisOTPStore(rdb)
	}
	return service.NewMemoryOTPStore()
}

func mailer(cfg *config.Config) service.Mailer {
	if cfg.BrevoAPIKey == "" {
		log.Warn().Msg("BREVO_API_KEY not set, one-time codes are logged instead of emailed")
		return service.LogMailer{}
	}
	return service.NewBrevoMailer(cfg.BrevoAPIKey, cfg.MailFromName, cfg.MailFromAddress, cfg.OTPTTL)
}
