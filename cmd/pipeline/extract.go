package main

import (
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hotel_pipeline/internal/adapters/files"
	"hotel_pipeline/internal/app"
)

var extractFlags struct {
	hotelsOut, chainsOut string
	all                  bool
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Sample hotels and keep the chains they reference",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, done := begin("extract")
		defer done()

		hotels, err := files.ReadHotels(cfg.HotelsCSV)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.HotelsCSV).Msg("read hotels failed")
		}
		chains, err := files.ReadChains(cfg.ChainsCSV)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.ChainsCSV).Msg("read chains failed")
		}

		size := cfg.SampleSize
		if extractFlags.all {
			size = 0
		}
		out := app.Extract(hotels, chains, size, cfg.SampleSeed)

		hotelsOut := orDefault(extractFlags.hotelsOut, filepath.Join(filepath.Dir(cfg.HotelsCSV), "hotel_info_filtered.csv"))
		chainsOut := orDefault(extractFlags.chainsOut, filepath.Join(filepath.Dir(cfg.ChainsCSV), "chain_info_filtered.csv"))
		if err := files.WriteHotels(hotelsOut, out.Hotels); err != nil {
			log.Fatal().Err(err).Msg("write hotels failed")
		}
		if err := files.WriteChains(chainsOut, out.Chains); err != nil {
			log.Fatal().Err(err).Msg("write chains failed")
		}
		log.Info().Int("hotels", len(out.Hotels)).Int("chains", len(out.Chains)).
			Str("hotels_out", hotelsOut).Str("chains_out", chainsOut).Msg("extract summary")
	},
}

func init() {
	f := extractCmd.Flags()
	f.StringVar(&extractFlags.hotelsOut, "hotels-out", "", "filtered hotels output (default next to HOTELS_CSV)")
	f.StringVar(&extractFlags.chainsOut, "chains-out", "", "filtered chains output (default next to CHAINS_CSV)")
	f.BoolVar(&extractFlags.all, "all", false, "keep every hotel instead of sampling SAMPLE_SIZE")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
