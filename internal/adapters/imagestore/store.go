// Package imagestore keeps downloaded photos on the local filesystem under
// <root>/<chain_id>/<hotel_id>/<image_id>.jpg.
package imagestore

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"hotel_pipeline/internal/domain"
)

// NoChainDir holds hotels without a chain.
const NoChainDir = "0"

type FS struct{ root string }

func New(root string) *FS { return &FS{root: root} }

var _ domain.ImageStore = (*FS)(nil)

func (s *FS) Path(chainID *int64, hotelID, imageID int64) string {
	chain := NoChainDir
	if chainID != nil {
		chain = strconv.FormatInt(*chainID, 10)
	}
	return filepath.Join(s.root, chain, strconv.FormatInt(hotelID, 10), strconv.FormatInt(imageID, 10)+".jpg")
}

func (s *FS) Exists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular() && fi.Size() > 0
}

// Save writes through a temp file so an interrupted download never leaves a
// truncated image that Exists would accept.
func (s *FS) Save(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".part-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
