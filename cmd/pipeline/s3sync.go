package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hotel_pipeline/internal/adapters/observability"
	"hotel_pipeline/internal/adapters/s3store"
	"hotel_pipeline/internal/app"
)

var s3SyncCmd = &cobra.Command{
	Use:   "s3-sync",
	Short: "Upload downloaded images to the bucket, skipping existing objects",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, done := begin("s3-sync")
		defer done()
		ctx := cmd.Context()

		store, err := s3store.New(ctx, cfg.S3Region, cfg.S3Bucket, cfg.S3AccessKey, cfg.S3SecretKey, cfg.ImageRoot, cfg.S3PresignTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("s3 client init failed")
		}
		entries, _, err := app.ScanImages(cfg.ImageRoot)
		if err != nil {
			log.Fatal().Err(err).Msg("image scan failed")
		}

		var uploaded, existing, failed int
		for _, e := range entries {
			if ctx.Err() != nil {
				log.Warn().Err(ctx.Err()).Msg("sync interrupted")
				break
			}
			up, err := store.Upload(ctx, e.Path)
			switch {
			case err != nil:
				failed++
				log.Warn().Err(err).Str("path", e.Path).Msg("upload failed")
			case up:
				uploaded++
			default:
				existing++
			}
		}
		observability.AddPipeline("s3-sync", "uploaded", uploaded)
		observability.AddPipeline("s3-sync", "existing", existing)
		observability.AddPipeline("s3-sync", "failed", failed)
		log.Info().Int("uploaded", uploaded).Int("existing", existing).Int("failed", failed).
			Str("bucket", cfg.S3Bucket).Msg("s3-sync summary")
	},
}
