package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hotel_pipeline/internal/adapters/files"
	"hotel_pipeline/internal/app"
)

var availFlags struct {
	from, to, fromCSV string
	seed              int64
}

var availabilityCmd = &cobra.Command{
	Use:   "availability",
	Short: "Generate synthetic nightly prices and availability",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, done := begin("availability")
		defer done()
		ctx := cmd.Context()

		from, to, err := app.ParseDateRange(orDefault(availFlags.from, cfg.AvailabilityStart), orDefault(availFlags.to, cfg.AvailabilityEnd))
		if err != nil {
			log.Fatal().Err(err).Msg("invalid date range")
		}

		repo, db := openRepo(ctx, cfg)
		defer db.Close()

		var ids []int64
		if availFlags.fromCSV != "" {
			hotels, err := files.ReadHotels(availFlags.fromCSV)
			if err != nil {
				log.Fatal().Err(err).Str("path", availFlags.fromCSV).Msg("read hotels failed")
			}
			for _, h := range hotels {
				ids = append(ids, h.ID)
			}
		} else if ids, err = repo.ListHotelIDs(ctx); err != nil {
			log.Fatal().Err(err).Msg("list hotels failed")
		}

		rows := app.NewAvailabilityGenerator(availFlags.seed, cfg.Currency).Generate(ids, from, to)
		log.Info().Int("hotels", len(ids)).Int("rows", len(rows)).
			Str("from", from.Format("2006-01-02")).Str("to", to.Format("2006-01-02")).Msg("generated")

		c := app.NewLoader(repo, nil).LoadAvailability(ctx, rows)
		log.Info().Object("availability", c).Msg("availability summary")
	},
}

func init() {
	f := availabilityCmd.Flags()
	f.StringVar(&availFlags.from, "from", "", "first date, YYYY-MM-DD (default AVAILABILITY_START)")
	f.StringVar(&availFlags.to, "to", "", "last date, inclusive (default AVAILABILITY_END)")
	f.StringVar(&availFlags.fromCSV, "from-csv", "", "take hotel ids from this hotels file instead of the database")
	f.Int64Var(&availFlags.seed, "seed", 0, "random seed; 0 draws a fresh one")
}
