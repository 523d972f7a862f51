package app

import (
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for DecodeConfig
	_ "image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/rwcarlsen/goexif/exif"

	"hotel_pipeline/internal/adapters/observability"
	"hotel_pipeline/internal/domain"
)

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

type ScanSummary struct {
	Images     int `json:"images"`
	BadLayout  int `json:"bad_layout"`
	Unreadable int `json:"unreadable"`
}

// ScanImages walks root for <chain_id>/<hotel_id>/<image_id>.<ext> files and
// returns one entry per image sorted by numeric image id (non-numeric ids
// last, lexically). Paths are root-joined so they compare with recorded
// manifests. Undecodable images stay in the manifest with zero dimensions.
func ScanImages(root string) ([]domain.ManifestEntry, ScanSummary, error) {
	var (
		out []domain.ManifestEntry
		sum ScanSummary
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !imageExts[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) != 3 {
			sum.BadLayout++
			log.Warn().Str("path", path).Msg("image outside <chain>/<hotel>/<file> layout, skipped")
			return nil
		}
		e := domain.ManifestEntry{
			ImageID: strings.TrimSuffix(parts[2], filepath.Ext(parts[2])),
			HotelID: parts[1],
			Path:    path,
		}
		if err := readImageMeta(path, &e); err != nil {
			sum.Unreadable++
			log.Warn().Err(err).Str("path", path).Msg("error processing image")
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, sum, fmt.Errorf("scan %s: %w", root, err)
	}
	sortManifest(out)
	sum.Images = len(out)
	observability.AddPipeline("audit", "scanned", sum.Images)
	observability.AddPipeline("audit", "unreadable", sum.Unreadable)
	return out, sum, nil
}

func readImageMeta(path string, e *domain.ManifestEntry) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if fi, err := f.Stat(); err == nil {
		e.SizeBytes = fi.Size()
	}
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	e.Width, e.Height = cfg.Width, cfg.Height

	// EXIF is optional; most API photos carry none.
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil
	}
	x, err := exif.Decode(f)
	if err != nil {
		return nil
	}
	if t, err := x.DateTime(); err == nil {
		e.TakenAt = t.Format(time.RFC3339)
	}
	if tag, err := x.Get(exif.Model); err == nil {
		if s, err := tag.StringVal(); err == nil {
			e.CameraModel = strings.TrimSpace(s)
		}
	}
	return nil
}

func sortManifest(es []domain.ManifestEntry) {
	sort.SliceStable(es, func(i, j int) bool {
		a, aErr := strconv.ParseInt(es[i].ImageID, 10, 64)
		b, bErr := strconv.ParseInt(es[j].ImageID, 10, 64)
		switch {
		case aErr == nil && bErr == nil && a != b:
			return a < b
		case aErr == nil && bErr != nil:
			return true
		case aErr != nil && bErr == nil:
			return false
		case es[i].ImageID != es[j].ImageID:
			return es[i].ImageID < es[j].ImageID
		}
		return es[i].Path < es[j].Path
	})
}

type ReconcileSummary struct {
	OK      int `json:"ok"`
	Moved   int `json:"moved"`
	Missing int `json:"missing"`
}

// Reconcile marks every expected entry against a scan, keyed by image id:
// OK when the path matches, MOVED (path replaced by the one found) when it
// differs, MISSING when the scan has no such id. Output follows expected's
// order and does not depend on the scan's order. OK entries are returned as
// recorded.
func Reconcile(expected, scanned []domain.ManifestEntry) ([]domain.ReconciledEntry, ReconcileSummary) {
	found := make(map[string][]string, len(scanned))
	for _, s := range scanned {
		found[s.ImageID] = append(found[s.ImageID], s.Path)
	}
	for id := range found {
		sort.Strings(found[id])
	}

	var sum ReconcileSummary
	out := make([]domain.ReconciledEntry, 0, len(expected))
	for _, e := range expected {
		r := domain.ReconciledEntry{ManifestEntry: e}
		paths := found[e.ImageID]
		switch {
		case len(paths) == 0:
			r.Status = domain.StatusMissing
			sum.Missing++
		case containsPath(paths, e.Path):
			r.Status = domain.StatusOK
			sum.OK++
		default:
			// the same id found in several places resolves to the first path
			r.Status = domain.StatusMoved
			r.PreviousPath = e.Path
			r.Path = paths[0]
			sum.Moved++
			log.Info().Str("image_id", e.ImageID).Str("from", e.Path).Str("to", r.Path).Msg("image moved")
		}
		out = append(out, r)
	}
	observability.AddPipeline("audit", "ok", sum.OK)
	observability.AddPipeline("audit", "moved", sum.Moved)
	observability.AddPipeline("audit", "missing", sum.Missing)
	return out, sum
}

func containsPath(paths []string, p string) bool {
	want := cleanPath(p)
	for _, q := range paths {
		if cleanPath(q) == want {
			return true
		}
	}
	return false
}

// cleanPath equates "./images/0/1/1.jpg" and "images/0/1/1.jpg".
func cleanPath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}
