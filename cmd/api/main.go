package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "hotel_pipeline/internal/adapters/http_server"
	"hotel_pipeline/internal/adapters/observability"
	redisad "hotel_pipeline/internal/adapters/redis"
	"hotel_pipeline/internal/adapters/s3store"
	"hotel_pipeline/internal/app"
	"hotel_pipeline/internal/domain"
	"hotel_pipeline/internal/shared"
	mysqlrepo "hotel_pipeline/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel, nil)
	if err := cfg.RequireFor("api"); err != nil {
		log.Fatal().Err(err).Msg("missing configuration")
	}

	// db
	db, err := mysqlrepo.Open(ctx, cfg.DSN(), 10)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, serving uncached")
		} else {
			cache = rc
		}
	}
	var signer domain.URLSigner
	if cfg.S3Bucket != "" {
		st, err := s3store.New(ctx, cfg.S3Region, cfg.S3Bucket, cfg.S3AccessKey, cfg.S3SecretKey, cfg.ImageRoot, cfg.S3PresignTTL)
		if err != nil {
			log.Warn().Err(err).Msg("s3 unavailable, image urls left unsigned")
		} else {
			signer = st
		}
	}
	q := app.NewQueryService(repo, cache, signer, cfg.CacheTTL)

	// http
	srv := server.New(server.Options{
		AllowedOrigins: splitList(cfg.CORSOrigins),
		RateLimit:      cfg.RateLimit,
	})
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q})

	log.Info().Str("addr", cfg.HTTPAddr).Bool("cache", cache != nil).Bool("signed_urls", signer != nil).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(sctx); err != nil {
			log.Warn().Err(err).Msg("http shutdown")
		}
	}()
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
