package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hotel_pipeline/internal/adapters/clip"
	"hotel_pipeline/internal/adapters/files"
	"hotel_pipeline/internal/app"
	"hotel_pipeline/internal/domain"
)

var tagFlags struct {
	fromDB, insert bool
	out            string
	topK, rps      int
	labels         []string
}

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Tag images with amenity labels from the vision model",
	Run: func(cmd *cobra.Command, args []string) {
		var extra []string
		if tagFlags.fromDB || tagFlags.insert {
			extra = append(extra, "load")
		}
		cfg, done := begin("tag", extra...)
		defer done()
		ctx := cmd.Context()

		var (
			images []domain.Image
			loader *app.Loader
			err    error
		)
		if tagFlags.fromDB || tagFlags.insert {
			repo, db := openRepo(ctx, cfg)
			defer db.Close()
			cache, closeCache := openCache(ctx, cfg)
			defer closeCache()
			loader = app.NewLoader(repo, cache)
			if tagFlags.fromDB {
				if images, err = repo.ListAllImages(ctx); err != nil {
					log.Fatal().Err(err).Msg("list images failed")
				}
			}
		}
		if !tagFlags.fromDB {
			if images, err = files.ReadImages(cfg.ImagesCSV); err != nil {
				log.Fatal().Err(err).Str("path", cfg.ImagesCSV).Msg("read images manifest failed")
			}
		}

		tagger := app.NewTagger(clip.New(cfg.ClipBaseURL, cfg.ClipAPIKey, tagFlags.rps), tagFlags.labels, tagFlags.topK)
		log.Info().Int("images", len(images)).Int("labels", len(tagger.Vocabulary())).Msg("tagging")

		results, sum := tagger.Run(ctx, images)
		out := orDefault(tagFlags.out, cfg.TagsCSV)
		if err := files.WriteTags(out, results); err != nil {
			log.Fatal().Err(err).Str("path", out).Msg("write tags failed")
		}
		log.Info().Interface("summary", sum).Str("out", out).Msg("tag summary")

		if loader != nil && tagFlags.insert {
			var tags []domain.ImageTag
			for _, r := range results {
				tags = append(tags, r.Tags...)
			}
			ls := loader.Load(ctx, app.LoadInput{Tags: tags})
			log.Info().Object("tags", ls.Tags).Msg("tags inserted")
		}
	},
}

func init() {
	f := tagCmd.Flags()
	f.BoolVar(&tagFlags.fromDB, "from-db", false, "read images from the images table instead of IMAGES_CSV")
	f.BoolVar(&tagFlags.insert, "insert", false, "insert tags into image_tags after writing the CSV")
	f.StringVar(&tagFlags.out, "out", "", "tags output (default TAGS_CSV)")
	f.IntVar(&tagFlags.topK, "top-k", app.DefaultTopK, "tags kept per image")
	f.IntVar(&tagFlags.rps, "rps", 2, "scorer requests per second")
	f.StringSliceVar(&tagFlags.labels, "labels", nil, "override the default vocabulary")
}
