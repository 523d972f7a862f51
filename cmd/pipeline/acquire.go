package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hotel_pipeline/internal/adapters/files"
	"hotel_pipeline/internal/adapters/imagestore"
	"hotel_pipeline/internal/adapters/places"
	"hotel_pipeline/internal/app"
)

var acquireHotels string

var acquireCmd = &cobra.Command{
	Use:   "acquire",
	Short: "Download hotel photos from the places API",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, done := begin("acquire")
		defer done()

		in := orDefault(acquireHotels, cfg.HotelsCSV)
		hotels, err := files.ReadHotels(in)
		if err != nil {
			log.Fatal().Err(err).Str("path", in).Msg("read hotels failed")
		}

		pc, err := places.New(cfg.PlacesBaseURL, cfg.PlacesAPIKey, cfg.PlacesRPS, cfg.PhotoWidth)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize places client")
		}
		acq := app.NewImageAcquirer(pc, imagestore.New(cfg.ImageRoot), cfg.MaxPhotos)

		images, sum := acq.Run(cmd.Context(), hotels)
		if err := files.WriteImages(cfg.ImagesCSV, images); err != nil {
			log.Fatal().Err(err).Str("path", cfg.ImagesCSV).Msg("write images manifest failed")
		}
		log.Info().Interface("summary", sum).Int("images", sum.Images()).
			Str("manifest", cfg.ImagesCSV).Msg("acquire summary")
	},
}

func init() {
	acquireCmd.Flags().StringVar(&acquireHotels, "hotels", "", "hotels input (default HOTELS_CSV)")
}
