package app_test

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_pipeline/internal/app"
	"hotel_pipeline/internal/domain"
)

func writeImage(t *testing.T, path string, w, h int, asPNG bool) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	if asPNG {
		require.NoError(t, png.Encode(f, img))
		return
	}
	require.NoError(t, jpeg.Encode(f, img, nil))
}

func TestScanImages(t *testing.T) {
	root := t.TempDir()
	writeImage(t, filepath.Join(root, "7", "1", "10.jpg"), 8, 4, false)
	writeImage(t, filepath.Join(root, "0", "2", "2.png"), 3, 5, true)
	require.NoError(t, os.WriteFile(filepath.Join(root, "7", "1", "abc.jpg"), []byte("not an image"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "7", "notes.txt"), []byte("x"), 0o644))
	writeImage(t, filepath.Join(root, "stray.jpg"), 1, 1, false)

	got, sum, err := app.ScanImages(root)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"2", "10", "abc"}, []string{got[0].ImageID, got[1].ImageID, got[2].ImageID})

	assert.Equal(t, "2", got[0].HotelID)
	assert.Equal(t, filepath.Join(root, "0", "2", "2.png"), got[0].Path)
	assert.Equal(t, [2]int{3, 5}, [2]int{got[0].Width, got[0].Height})
	assert.Equal(t, [2]int{8, 4}, [2]int{got[1].Width, got[1].Height})
	assert.Positive(t, got[1].SizeBytes)
	assert.Zero(t, got[2].Width, "undecodable image keeps zero dimensions")

	assert.Equal(t, app.ScanSummary{Images: 3, BadLayout: 1, Unreadable: 1}, sum)
}

func TestScanImages_MissingRoot(t *testing.T) {
	_, _, err := app.ScanImages(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestReconcile(t *testing.T) {
	expected := []domain.ManifestEntry{
		{ImageID: "1", HotelID: "h1", Path: "images/0/1/1.jpg"},
		{ImageID: "2", HotelID: "h1", Path: "images/0/1/2.jpg"},
		{ImageID: "3", HotelID: "h2", Path: "images/0/2/3.jpg"},
	}
	scanned := []domain.ManifestEntry{
		{ImageID: "1", HotelID: "h1", Path: "images/0/1/1.jpg"},
		{ImageID: "2", HotelID: "h1", Path: "images/5/1/2.jpg"},
	}

	got, sum := app.Reconcile(expected, scanned)

	require.Len(t, got, 3)
	assert.Equal(t, domain.StatusOK, got[0].Status)
	assert.Equal(t, expected[0], got[0].ManifestEntry, "OK entries come back unchanged")

	assert.Equal(t, domain.StatusMoved, got[1].Status)
	assert.Equal(t, "images/5/1/2.jpg", got[1].Path)
	assert.Equal(t, "images/0/1/2.jpg", got[1].PreviousPath)

	assert.Equal(t, domain.StatusMissing, got[2].Status)
	assert.Equal(t, "images/0/2/3.jpg", got[2].Path)

	assert.Equal(t, app.ReconcileSummary{OK: 1, Moved: 1, Missing: 1}, sum)
}

func TestReconcile_IndependentOfScanOrder(t *testing.T) {
	expected := []domain.ManifestEntry{
		{ImageID: "1", Path: "images/0/1/1.jpg"},
		{ImageID: "4", Path: "images/0/1/4.jpg"},
	}
	scanned := []domain.ManifestEntry{
		{ImageID: "4", Path: "images/9/1/4.jpg"},
		{ImageID: "4", Path: "images/3/1/4.jpg"},
		{ImageID: "1", Path: "./images/0/1/1.jpg"},
	}
	reversed := []domain.ManifestEntry{scanned[2], scanned[1], scanned[0]}

	a, _ := app.Reconcile(expected, scanned)
	b, _ := app.Reconcile(expected, reversed)

	assert.Equal(t, a, b)
	assert.Equal(t, domain.StatusOK, a[0].Status, "paths compare after cleaning")
	assert.Equal(t, "images/3/1/4.jpg", a[1].Path)
}

func TestReconcile_EmptyScan(t *testing.T) {
	got, sum := app.Reconcile([]domain.ManifestEntry{{ImageID: "1", Path: "a"}}, nil)
	assert.Equal(t, domain.StatusMissing, got[0].Status)
	assert.Equal(t, 1, sum.Missing)
}
