package app

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"hotel_pipeline/internal/domain"
)

// Bounds of the synthetic calendar. This is placeholder data, not a real
// inventory feed.
const (
	minBasePrice    = 50.0
	maxBasePrice    = 500.0
	minDailyFactor  = 0.8
	maxDailyFactor  = 1.2
	maxAvailability = 20 // exclusive
)

type AvailabilityGenerator struct {
	rng      *rand.Rand
	currency string
}

// NewAvailabilityGenerator is reproducible for a non-zero seed; seed 0 draws
// from a random source.
func NewAvailabilityGenerator(seed int64, currency string) *AvailabilityGenerator {
	var src rand.Source
	if seed != 0 {
		src = rand.NewPCG(uint64(seed), uint64(seed)>>1|1)
	} else {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	if currency == "" {
		currency = "EUR"
	}
	return &AvailabilityGenerator{rng: rand.New(src), currency: currency}
}

// ParseDateRange parses inclusive YYYY-MM-DD bounds.
func ParseDateRange(from, to string) (time.Time, time.Time, error) {
	f, err := time.Parse(time.DateOnly, from)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start date: %w", err)
	}
	t, err := time.Parse(time.DateOnly, to)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end date: %w", err)
	}
	if t.Before(f) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %s before start %s", to, from)
	}
	return f, t, nil
}

// Generate yields one row per hotel per day in [from, to]. Each hotel gets a
// base price in [50,500) perturbed daily by a factor in [0.8,1.2), rounded to
// cents, and an availability in [0,20). Duplicate hotel ids are generated once.
func (g *AvailabilityGenerator) Generate(hotelIDs []int64, from, to time.Time) []domain.AvailabilityPrice {
	from, to = truncateDay(from), truncateDay(to)
	if to.Before(from) {
		return nil
	}
	days := int(to.Sub(from).Hours()/24) + 1
	seen := make(map[int64]struct{}, len(hotelIDs))
	out := make([]domain.AvailabilityPrice, 0, len(hotelIDs)*days)
	for _, id := range hotelIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		base := minBasePrice + g.rng.Float64()*(maxBasePrice-minBasePrice)
		for d := 0; d < days; d++ {
			factor := minDailyFactor + g.rng.Float64()*(maxDailyFactor-minDailyFactor)
			out = append(out, domain.AvailabilityPrice{
				HotelID:      id,
				Date:         from.AddDate(0, 0, d),
				Availability: g.rng.IntN(maxAvailability),
				Price:        math.Round(base*factor*100) / 100,
				Currency:     g.currency,
			})
		}
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
