package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "hotel_listings/internal/adapters/http_server"
	"hotel_listings/internal/adapters/observability"
	redisad "hotel_listings/internal/adapters/redis"
	ristrettoad "hotel_listings/internal/adapters/ristretto"
	"hotel_listings/internal/app"
	"hotel_listings/internal/domain"
	"hotel_listings/internal/shared"
	"hotel_listings/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// deps
	repo, closeRepo, err := storage.OpenRepo(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open repository failed")
	}
	defer func() { _ = closeRepo() }()

	files, err := storage.OpenFiles(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open picture storage failed")
	}

	cache, closeCache := openCache(ctx, cfg)
	defer closeCache()

	hotels := app.NewHotelService(repo, files.Store, cache)
	q := app.NewQueryService(repo, cache, cfg.CacheTTL, cfg.DefaultPerPage, cfg.MaxPerPage)

	// http
	srv := server.New(cfg.RequestTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	if files.Public != nil {
		srv.MountFiles(cfg.PublicPrefix, files.Public)
	}
	srv.MountHandlers(&server.Handlers{
		Hotels:    hotels,
		Q:         q,
		MaxUpload: cfg.MaxUploadBytes,
		WriteRPS:  cfg.WriteRPS,
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}

// openCache prefers redis; without REDIS_ADDR, or when redis is unreachable,
// hotels are cached in process.
func openCache(ctx context.Context, cfg shared.Config) (domain.Cache, func()) {
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		err := rc.Ping(pingCtx)
		if err == nil {
			log.Info().Str("addr", cfg.RedisAddr).Msg("redis cache ok")
			return rc, func() { _ = rc.Close() }
		}
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, using in-process cache")
		_ = rc.Close()
	}
	rc, err := ristrettoad.New(64 << 20)
	if err != nil {
		log.Fatal().Err(err).Msg("in-process cache init failed")
	}
	return rc, rc.Close
}
