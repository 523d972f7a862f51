// Command pipeline runs one batch stage of the hotel image pipeline per
// invocation. Every stage is safe to re-run.
package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hotel_pipeline/internal/adapters/observability"
	redisad "hotel_pipeline/internal/adapters/redis"
	"hotel_pipeline/internal/domain"
	"hotel_pipeline/internal/shared"
	mysqlrepo "hotel_pipeline/internal/storage/mysql"
)

var rootCmd = &cobra.Command{
	Use:           "pipeline",
	Short:         "Hotel image, tag and availability batch stages",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(schemaCmd, extractCmd, acquireCmd, auditCmd, tagCmd, loadCmd, availabilityCmd, s3SyncCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("pipeline failed")
	}
}

// begin loads and checks configuration for stage, then points the global
// logger at stdout plus <LOG_DIR>/<stage>.log. Configuration problems are
// fatal before any work starts. The returned func closes the stage log.
func begin(stage string, extra ...string) (shared.Config, func()) {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	for _, s := range append([]string{stage}, extra...) {
		if err := cfg.RequireFor(s); err != nil {
			log.Fatal().Err(err).Str("stage", stage).Msg("missing configuration")
		}
	}

	f, err := observability.OpenStageLog(cfg.LogDir, stage)
	if err != nil {
		log.Fatal().Err(err).Msg("open stage log failed")
	}
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel, f).With().
		Str("run_id", uuid.NewString()).
		Str("stage", stage).
		Logger()
	observability.Serve(cfg.MetricsAddr)
	log.Info().Msg("stage starting")
	return cfg, func() {
		log.Info().Msg("stage finished")
		_ = f.Close()
	}
}

// openRepo opens the stage's own connection; callers close the *sql.DB.
func openRepo(ctx context.Context, cfg shared.Config) (*mysqlrepo.Repo, *sql.DB) {
	db, err := mysqlrepo.Open(ctx, cfg.DSN(), 1)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	log.Info().Msg("database connection ok")
	return mysqlrepo.New(db), db
}

// openCache returns nil when no Redis address is configured or it is
// unreachable; the caller then skips invalidation.
func openCache(ctx context.Context, cfg shared.Config) (domain.Cache, func()) {
	if cfg.RedisAddr == "" {
		return nil, func() {}
	}
	c := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := c.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, cache invalidation skipped")
		_ = c.Close()
		return nil, func() {}
	}
	return c, func() { _ = c.Close() }
}

// fileExists is used by stages whose inputs are optional.
func fileExists(p string) bool {
	if p == "" {
		return false
	}
	fi, err := os.Stat(p)
	return err == nil && !fi.IsDir()
}
