package files

import (
	"strconv"

	"hotel_pipeline/internal/domain"
)

var manifestHeader = []string{"image_id", "hotel_id", "image_url"}

// ReadManifest reads image_id, hotel_id, image_url as text.
func ReadManifest(path string) ([]domain.ManifestEntry, error) {
	t, err := readTable(path, manifestHeader...)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ManifestEntry, 0, len(t.rows))
	for i := range t.rows {
		e := domain.ManifestEntry{
			ImageID: t.get(i, "image_id"),
			HotelID: t.get(i, "hotel_id"),
			Path:    t.get(i, "image_url"),
		}
		if e.ImageID == "" {
			return nil, t.rowErr(i, "image_id", "")
		}
		out = append(out, e)
	}
	return out, nil
}

func WriteManifest(path string, entries []domain.ManifestEntry) error {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.ImageID, e.HotelID, e.Path})
	}
	return writeCSV(path, manifestHeader, rows)
}

// ReadImages reads a manifest whose ids are numeric, as Loader/Tagger input.
func ReadImages(path string) ([]domain.Image, error) {
	t, err := readTable(path, manifestHeader...)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Image, 0, len(t.rows))
	for i := range t.rows {
		var img domain.Image
		raw := t.get(i, "image_id")
		if img.ID, err = parseID(raw); err != nil {
			return nil, t.rowErr(i, "image_id", raw)
		}
		raw = t.get(i, "hotel_id")
		if img.HotelID, err = parseID(raw); err != nil {
			return nil, t.rowErr(i, "hotel_id", raw)
		}
		img.URL = t.get(i, "image_url")
		out = append(out, img)
	}
	return out, nil
}

func WriteImages(path string, images []domain.Image) error {
	rows := make([][]string, 0, len(images))
	for _, img := range images {
		rows = append(rows, []string{strconv.FormatInt(img.ID, 10), strconv.FormatInt(img.HotelID, 10), img.URL})
	}
	return writeCSV(path, manifestHeader, rows)
}

// WriteReconciled writes the expected manifest with a status column. MOVED rows
// carry the actual path in image_url and the recorded one in previous_url.
func WriteReconciled(path string, entries []domain.ReconciledEntry) error {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.ImageID, e.HotelID, e.Path, string(e.Status), e.PreviousPath})
	}
	return writeCSV(path, []string{"image_id", "hotel_id", "image_url", "status", "previous_url"}, rows)
}

// WriteImageInfo writes the scan's per-file metadata report.
func WriteImageInfo(path string, entries []domain.ManifestEntry) error {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.ImageID, e.HotelID, e.Path,
			strconv.Itoa(e.Width), strconv.Itoa(e.Height), strconv.FormatInt(e.SizeBytes, 10),
			e.TakenAt, e.CameraModel,
		})
	}
	return writeCSV(path, []string{"image_id", "hotel_id", "image_path", "width", "height", "file_size", "taken_at", "camera_model"}, rows)
}
