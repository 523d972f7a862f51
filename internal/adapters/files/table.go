// Package files reads and writes the pipeline's tabular artifacts: hotel and
// chain reference data, image manifests, tag files and reports. Inputs may be
// CSV or XLSX (first sheet); outputs are always CSV.
package files

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"hotel_pipeline/internal/domain"
)

// table is a header-indexed view over the rows of a tabular file.
type table struct {
	path string
	cols map[string]int
	rows [][]string
}

func readTable(path string, required ...string) (*table, error) {
	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		records, err = readXLSX(path)
	default:
		records, err = readCSV(path)
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: no header row: %w", path, domain.ErrMalformedInput)
	}
	t := &table{path: path, cols: make(map[string]int, len(records[0])), rows: records[1:]}
	for i, h := range records[0] {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := t.cols[h]; !dup {
			t.cols[h] = i
		}
	}
	var missing []string
	for _, r := range required {
		if _, ok := t.cols[r]; !ok {
			missing = append(missing, r)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s: missing columns %s: %w", path, strings.Join(missing, ","), domain.ErrMalformedInput)
	}
	return t, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // short rows are reported per field
	var out [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %v", path, domain.ErrMalformedInput, err)
		}
		out = append(out, rec)
	}
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx %s: %w", path, err)
	}
	defer f.Close()
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%s: no sheets: %w", path, domain.ErrMalformedInput)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows %s: %w", path, err)
	}
	return rows, nil
}

// get returns the trimmed cell of column name in row i; cells past a short
// row's end read as empty.
func (t *table) get(i int, name string) string {
	idx, ok := t.cols[name]
	if !ok || idx >= len(t.rows[i]) {
		return ""
	}
	return strings.TrimSpace(t.rows[i][idx])
}

func (t *table) has(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// rowErr reports a malformed cell with its 1-based file line (header is line 1).
func (t *table) rowErr(i int, col, val string) error {
	return fmt.Errorf("%s line %d: bad %s %q: %w", t.path, i+2, col, val, domain.ErrMalformedInput)
}

func writeCSV(path string, header []string, rows [][]string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}
	if err := w.WriteAll(rows); err != nil { // WriteAll flushes
		f.Close()
		return err
	}
	return f.Close()
}
