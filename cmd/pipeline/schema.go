package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	mysqlrepo "hotel_pipeline/internal/storage/mysql"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create or upgrade the relational schema",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, done := begin("schema")
		defer done()

		_, db := openRepo(cmd.Context(), cfg)
		defer db.Close()

		v, err := mysqlrepo.EnsureSchema(cmd.Context(), db)
		if err != nil {
			log.Fatal().Err(err).Msg("schema migration failed")
		}
		log.Info().Int("version", v).Int("latest", mysqlrepo.LatestSchemaVersion()).Msg("schema up to date")
	},
}
