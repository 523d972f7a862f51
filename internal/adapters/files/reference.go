package files

import (
	"math"
	"strconv"
	"strings"

	"hotel_pipeline/internal/domain"
)

// ReadHotels reads hotel_id, hotel_name, chain_id, latitude, longitude. Other
// columns are ignored. Empty or "nan" chain ids and coordinates read as absent.
func ReadHotels(path string) ([]domain.Hotel, error) {
	t, err := readTable(path, "hotel_id", "hotel_name", "chain_id", "latitude", "longitude")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Hotel, 0, len(t.rows))
	for i := range t.rows {
		var h domain.Hotel
		raw := t.get(i, "hotel_id")
		if h.ID, err = parseID(raw); err != nil {
			return nil, t.rowErr(i, "hotel_id", raw)
		}
		h.Name = t.get(i, "hotel_name")
		if raw = t.get(i, "chain_id"); !absent(raw) {
			id, err := parseID(raw)
			if err != nil {
				return nil, t.rowErr(i, "chain_id", raw)
			}
			h.ChainID = &id
		}
		if h.Latitude, err = optFloat(t.get(i, "latitude")); err != nil {
			return nil, t.rowErr(i, "latitude", t.get(i, "latitude"))
		}
		if h.Longitude, err = optFloat(t.get(i, "longitude")); err != nil {
			return nil, t.rowErr(i, "longitude", t.get(i, "longitude"))
		}
		out = append(out, h)
	}
	return out, nil
}

func ReadChains(path string) ([]domain.Chain, error) {
	t, err := readTable(path, "chain_id", "chain_name")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Chain, 0, len(t.rows))
	for i := range t.rows {
		raw := t.get(i, "chain_id")
		id, err := parseID(raw)
		if err != nil {
			return nil, t.rowErr(i, "chain_id", raw)
		}
		out = append(out, domain.Chain{ID: id, Name: t.get(i, "chain_name")})
	}
	return out, nil
}

func WriteHotels(path string, hotels []domain.Hotel) error {
	rows := make([][]string, 0, len(hotels))
	for _, h := range hotels {
		rows = append(rows, []string{
			strconv.FormatInt(h.ID, 10), h.Name, optIDString(h.ChainID),
			optFloatString(h.Latitude), optFloatString(h.Longitude),
		})
	}
	return writeCSV(path, []string{"hotel_id", "hotel_name", "chain_id", "latitude", "longitude"}, rows)
}

func WriteChains(path string, chains []domain.Chain) error {
	rows := make([][]string, 0, len(chains))
	for _, c := range chains {
		rows = append(rows, []string{strconv.FormatInt(c.ID, 10), c.Name})
	}
	return writeCSV(path, []string{"chain_id", "chain_name"}, rows)
}

func absent(s string) bool {
	switch strings.ToLower(s) {
	case "", "nan", "null", "none":
		return true
	}
	return false
}

// parseID accepts "12" and the float rendering "12.0" that spreadsheet tools
// produce for integer columns containing blanks.
func parseID(s string) (int64, error) {
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	// float64(math.MaxInt64) rounds up to 2^63, which is out of range.
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, domain.ErrMalformedInput
	}
	return int64(f), nil
}

func optFloat(s string) (*float64, error) {
	if absent(s) {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, domain.ErrMalformedInput
	}
	return &f, nil
}

func optIDString(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

func optFloatString(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
