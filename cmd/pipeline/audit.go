package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hotel_pipeline/internal/adapters/files"
	"hotel_pipeline/internal/app"
)

var auditFlags struct {
	expected, scanOut, infoOut, reconciledOut string
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Scan downloaded images and reconcile them with the manifest",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, done := begin("audit")
		defer done()

		scanned, ssum, err := app.ScanImages(cfg.ImageRoot)
		if err != nil {
			log.Fatal().Err(err).Msg("image scan failed")
		}
		if err := files.WriteManifest(auditFlags.scanOut, scanned); err != nil {
			log.Fatal().Err(err).Msg("write scan manifest failed")
		}
		if err := files.WriteImageInfo(auditFlags.infoOut, scanned); err != nil {
			log.Fatal().Err(err).Msg("write image info failed")
		}
		log.Info().Interface("summary", ssum).Str("manifest", auditFlags.scanOut).Msg("scan summary")

		expectedPath := orDefault(auditFlags.expected, cfg.ImagesCSV)
		if !fileExists(expectedPath) {
			log.Info().Str("path", expectedPath).Msg("no expected manifest, reconciliation skipped")
			return
		}
		expected, err := files.ReadManifest(expectedPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", expectedPath).Msg("read expected manifest failed")
		}
		rec, rsum := app.Reconcile(expected, scanned)
		if err := files.WriteReconciled(auditFlags.reconciledOut, rec); err != nil {
			log.Fatal().Err(err).Msg("write reconciled manifest failed")
		}
		log.Info().Interface("summary", rsum).Str("out", auditFlags.reconciledOut).Msg("reconcile summary")
	},
}

func init() {
	f := auditCmd.Flags()
	f.StringVar(&auditFlags.expected, "expected", "", "recorded manifest to reconcile (default IMAGES_CSV)")
	f.StringVar(&auditFlags.scanOut, "scan-out", "images_scanned.csv", "manifest of images found on disk")
	f.StringVar(&auditFlags.infoOut, "info-out", "image_info.csv", "dimensions and metadata per image")
	f.StringVar(&auditFlags.reconciledOut, "out", "images_reconciled.csv", "reconciled manifest with status column")
}
