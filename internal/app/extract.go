package app

import (
	"math/rand/v2"
	"sort"

	"github.com/rs/zerolog/log"

	"hotel_pipeline/internal/adapters/observability"
	"hotel_pipeline/internal/domain"
)

type Extraction struct {
	Hotels []domain.Hotel
	Chains []domain.Chain
}

// Extract optionally downsamples hotels to sampleSize (0 keeps all) with a
// seeded generator, then keeps only the chains the hotels reference.
func Extract(hotels []domain.Hotel, chains []domain.Chain, sampleSize int, seed int64) Extraction {
	picked := hotels
	if sampleSize > 0 {
		if sampleSize >= len(hotels) {
			log.Info().Int("requested", sampleSize).Int("available", len(hotels)).Msg("sample covers every hotel")
		}
		picked = SampleHotels(hotels, sampleSize, seed)
	}
	out := Extraction{Hotels: picked, Chains: ReferencedChains(chains, picked)}
	observability.AddPipeline("extract", "hotel", len(out.Hotels))
	observability.AddPipeline("extract", "chain", len(out.Chains))
	log.Info().Int("hotels_in", len(hotels)).Int("hotels_out", len(out.Hotels)).
		Int("chains_in", len(chains)).Int("chains_out", len(out.Chains)).Msg("extract done")
	return out
}

// SampleHotels picks n hotels without replacement. The same seed and input
// always select the same hotels; they are returned in input order.
func SampleHotels(hotels []domain.Hotel, n int, seed int64) []domain.Hotel {
	if n >= len(hotels) {
		return append([]domain.Hotel(nil), hotels...)
	}
	if n <= 0 {
		return []domain.Hotel{}
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
	idx := make([]int, len(hotels))
	for i := range idx {
		idx[i] = i
	}
	// partial Fisher-Yates: the first n slots are the sample
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	sel := idx[:n]
	sort.Ints(sel)
	out := make([]domain.Hotel, 0, n)
	for _, i := range sel {
		out = append(out, hotels[i])
	}
	return out
}

// ReferencedChains keeps the chains referenced by hotels, in chain file order.
func ReferencedChains(chains []domain.Chain, hotels []domain.Hotel) []domain.Chain {
	ref := make(map[int64]struct{}, len(hotels))
	for _, h := range hotels {
		if h.ChainID != nil {
			ref[*h.ChainID] = struct{}{}
		}
	}
	out := []domain.Chain{}
	for _, c := range chains {
		if _, ok := ref[c.ID]; ok {
			out = append(out, c)
		}
	}
	return out
}
