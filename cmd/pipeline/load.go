package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hotel_pipeline/internal/adapters/files"
	"hotel_pipeline/internal/app"
)

var loadFlags struct {
	chains, hotels, images, tags string
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Insert chains, hotels, images and tags, skipping existing rows",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, done := begin("load")
		defer done()
		ctx := cmd.Context()

		// any subset of inputs may be present; absent files are skipped
		var in app.LoadInput
		if p := orDefault(loadFlags.chains, cfg.ChainsCSV); fileExists(p) {
			in.Chains = readInput(p, files.ReadChains)
		}
		if p := orDefault(loadFlags.hotels, cfg.HotelsCSV); fileExists(p) {
			in.Hotels = readInput(p, files.ReadHotels)
		}
		if p := orDefault(loadFlags.images, cfg.ImagesCSV); fileExists(p) {
			in.Images = readInput(p, files.ReadImages)
		}
		if p := orDefault(loadFlags.tags, cfg.TagsCSV); fileExists(p) {
			in.Tags = readInput(p, files.ReadTags)
		}
		log.Info().Int("chains", len(in.Chains)).Int("hotels", len(in.Hotels)).
			Int("images", len(in.Images)).Int("tags", len(in.Tags)).Msg("inputs read")

		repo, db := openRepo(ctx, cfg)
		defer db.Close()
		cache, closeCache := openCache(ctx, cfg)
		defer closeCache()

		sum := app.NewLoader(repo, cache).Load(ctx, in)
		log.Info().Object("total", sum.Total()).Msg("load summary")
	},
}

func init() {
	f := loadCmd.Flags()
	f.StringVar(&loadFlags.chains, "chains", "", "chains input (default CHAINS_CSV)")
	f.StringVar(&loadFlags.hotels, "hotels", "", "hotels input (default HOTELS_CSV)")
	f.StringVar(&loadFlags.images, "images", "", "images manifest (default IMAGES_CSV)")
	f.StringVar(&loadFlags.tags, "tags", "", "tags input (default TAGS_CSV)")
}

// readInput makes a malformed input file fatal.
func readInput[T any](path string, read func(string) (T, error)) T {
	v, err := read(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("read input failed")
	}
	return v
}
