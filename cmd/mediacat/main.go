package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/JustinTDCT/mediacat/internal/analytics"
	"github.com/JustinTDCT/mediacat/internal/api"
	"github.com/JustinTDCT/mediacat/internal/auth"
	"github.com/JustinTDCT/mediacat/internal/authz"
	"github.com/JustinTDCT/mediacat/internal/config"
	"github.com/JustinTDCT/mediacat/internal/db"
	"github.com/JustinTDCT/mediacat/internal/logging"
	"github.com/JustinTDCT/mediacat/internal/media"
	"github.com/JustinTDCT/mediacat/internal/telemetry"
	"github.com/JustinTDCT/mediacat/internal/users"
	"github.com/JustinTDCT/mediacat/internal/version"
	"github.com/JustinTDCT/mediacat/internal/watchhistory"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	ver := version.Load()
	logging.Info().Str("version", ver.Version).Str("environment", cfg.Server.Environment).Msg("mediacat starting")

	if err := telemetry.Init(cfg.Sentry.DSN, cfg.Server.Environment, ver.Version); err != nil {
		logging.Warn().Err(err).Msg("sentry disabled")
	}
	defer telemetry.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("database connection failed")
	}
	defer database.Close()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx, database.DB); err != nil {
			logging.Fatal().Err(err).Msg("migration failed")
		}
	}

	var revoker auth.Revoker = auth.NoopRevoker{}
	if cfg.Session.Revocation == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logging.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable")
		}
		revoker = auth.NewRedisRevoker(client)
		logging.Info().Str("addr", cfg.Redis.Addr).Msg("session revocation via redis")
	}

	enforcer, err := authz.NewEnforcer(cfg.Authz.PolicyPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("authorization policy failed to load")
	}

	sessions := auth.NewSessions(auth.SessionConfig{
		Secret:       []byte(cfg.Session.Secret),
		TTL:          cfg.Session.TTL,
		CookieName:   cfg.Session.CookieName,
		SecureCookie: cfg.Session.CookieSecure || cfg.Server.TLSEnabled(),
	}, revoker)

	stats := analytics.NewRepository(database.DB)
	if cfg.Metrics.Enabled {
		collector, err := analytics.NewCollector(stats, cfg.Metrics.CollectSchedule)
		if err != nil {
			logging.Fatal().Err(err).Msg("analytics collector")
		}
		collector.Start()
		defer collector.Stop()
	}

	srv := api.NewServer(cfg, api.Deps{
		Sessions:  sessions,
		Enforcer:  enforcer,
		Users:     users.NewRepository(database.DB),
		Media:     media.NewRepository(database.DB),
		Streams:   media.NewStreamRepository(database.DB),
		Subtitles: media.NewSubtitleRepository(database.DB),
		Watch:     watchhistory.NewRepository(database.DB),
		Stats:     stats,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			logging.Error().Err(err).Msg("server error")
		}
	case <-ctx.Done():
		logging.Info().Msg("shutting down")
		if err := srv.Shutdown(context.Background()); err != nil {
			logging.Error().Err(err).Msg("shutdown")
		}
	}
}
