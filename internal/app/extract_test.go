package app_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_pipeline/internal/app"
	"hotel_pipeline/internal/domain"
)

func hotelsFixture(n int) []domain.Hotel {
	out := make([]domain.Hotel, 0, n)
	for i := 1; i <= n; i++ {
		h := domain.Hotel{ID: int64(i), Name: "Hotel"}
		if i%3 != 0 {
			h.ChainID = pint64(int64(i%3 + 10))
		}
		out = append(out, h)
	}
	return out
}

func TestSampleHotels_DeterministicForSeed(t *testing.T) {
	hs := hotelsFixture(500)

	a := app.SampleHotels(hs, 200, 42)
	b := app.SampleHotels(hs, 200, 42)
	c := app.SampleHotels(hs, 200, 7)

	require.Len(t, a, 200)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	seen := map[int64]bool{}
	for i, h := range a {
		assert.False(t, seen[h.ID], "hotel %d sampled twice", h.ID)
		seen[h.ID] = true
		if i > 0 {
			assert.Less(t, a[i-1].ID, h.ID, "sample keeps input order")
		}
	}
}

func TestSampleHotels_Bounds(t *testing.T) {
	hs := hotelsFixture(5)
	assert.Len(t, app.SampleHotels(hs, 50, 1), 5)
	assert.Empty(t, app.SampleHotels(hs, 0, 1))
	assert.Empty(t, app.SampleHotels(nil, 3, 1))
}

func TestExtract_KeepsReferencedChainsOnly(t *testing.T) {
	hotels := []domain.Hotel{
		{ID: 1, Name: "A", ChainID: pint64(11)},
		{ID: 2, Name: "B"},
		{ID: 3, Name: "C", ChainID: pint64(12)},
	}
	chains := []domain.Chain{{ID: 12, Name: "Twelve"}, {ID: 11, Name: "Eleven"}, {ID: 99, Name: "Unused"}}

	ex := app.Extract(hotels, chains, 0, 42)

	assert.Equal(t, hotels, ex.Hotels)
	assert.Equal(t, []domain.Chain{{ID: 12, Name: "Twelve"}, {ID: 11, Name: "Eleven"}}, ex.Chains)
}

func TestExtract_SampledChainsFollowSample(t *testing.T) {
	hotels := hotelsFixture(100)
	chains := []domain.Chain{{ID: 10, Name: "x"}, {ID: 11, Name: "y"}, {ID: 12, Name: "z"}}

	ex := app.Extract(hotels, chains, 10, 3)
	require.Len(t, ex.Hotels, 10)

	want := map[int64]bool{}
	for _, h := range ex.Hotels {
		if h.ChainID != nil {
			want[*h.ChainID] = true
		}
	}
	got := map[int64]bool{}
	for _, c := range ex.Chains {
		got[c.ID] = true
	}
	assert.Equal(t, want, got)
}
