package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"hotel_pipeline/internal/adapters/observability"
	"hotel_pipeline/internal/domain"
)

// Read-cache keys the loader invalidates and the query service fills.
const chainsCacheKey = "chains"

func hotelCacheKey(id int64) string { return fmt.Sprintf("hotel:%d", id) }

type LoadInput struct {
	Chains []domain.Chain
	Hotels []domain.Hotel
	Images []domain.Image
	Tags   []domain.ImageTag
}

type LoadSummary struct {
	Chains Counts `json:"chains"`
	Hotels Counts `json:"hotels"`
	Images Counts `json:"images"`
	Tags   Counts `json:"tags"`
}

func (s LoadSummary) Total() Counts {
	var c Counts
	for _, k := range []Counts{s.Chains, s.Hotels, s.Images, s.Tags} {
		c.add(k)
	}
	return c
}

type Loader struct {
	w     domain.CatalogWriter
	cache domain.Cache // optional
}

func NewLoader(w domain.CatalogWriter, c domain.Cache) *Loader {
	return &Loader{w: w, cache: c}
}

// Load inserts chains, hotels, images and tags in that order so every
// reference exists before its referrer. Each row is its own unit: existing
// keys count as skipped, failed rows are logged and the pass continues.
func (l *Loader) Load(ctx context.Context, in LoadInput) LoadSummary {
	var sum LoadSummary
	dirty := map[string]struct{}{}

	sum.Chains = upsertEach(ctx, "chains", in.Chains, l.w.UpsertChain,
		func(c domain.Chain) string { return fmt.Sprintf("chain_id=%d", c.ID) },
		func(domain.Chain) { dirty[chainsCacheKey] = struct{}{} })

	sum.Hotels = upsertEach(ctx, "hotels", in.Hotels, l.w.UpsertHotel,
		func(h domain.Hotel) string { return fmt.Sprintf("hotel_id=%d", h.ID) },
		func(h domain.Hotel) { dirty[hotelCacheKey(h.ID)] = struct{}{} })

	imageHotel := make(map[int64]int64, len(in.Images))
	for _, img := range in.Images {
		imageHotel[img.ID] = img.HotelID
	}
	sum.Images = upsertEach(ctx, "images", in.Images, l.w.UpsertImage,
		func(i domain.Image) string { return fmt.Sprintf("image_id=%d", i.ID) },
		func(i domain.Image) { dirty[hotelCacheKey(i.HotelID)] = struct{}{} })

	sum.Tags = upsertEach(ctx, "tags", in.Tags, l.w.UpsertImageTag,
		func(t domain.ImageTag) string { return fmt.Sprintf("image_id=%d tag=%q", t.ImageID, t.Name) },
		func(t domain.ImageTag) {
			hid, ok := imageHotel[t.ImageID]
			if !ok {
				hid, _, ok = domain.SplitImageID(t.ImageID)
			}
			if ok {
				dirty[hotelCacheKey(hid)] = struct{}{}
			}
		})

	l.invalidate(ctx, dirty)
	log.Info().Object("chains", sum.Chains).Object("hotels", sum.Hotels).
		Object("images", sum.Images).Object("tags", sum.Tags).Msg("load done")
	return sum
}

// LoadAvailability inserts synthetic calendar rows with the same skip policy.
func (l *Loader) LoadAvailability(ctx context.Context, rows []domain.AvailabilityPrice) Counts {
	return upsertEach(ctx, "availability", rows, l.w.UpsertAvailability,
		func(a domain.AvailabilityPrice) string {
			return fmt.Sprintf("hotel_id=%d date=%s", a.HotelID, a.Date.Format("2006-01-02"))
		}, nil)
}

func upsertEach[T any](
	ctx context.Context,
	kind string,
	items []T,
	upsert func(context.Context, T) (bool, error),
	key func(T) string,
	onInsert func(T),
) Counts {
	var c Counts
	for _, it := range items {
		if ctx.Err() != nil {
			log.Warn().Err(ctx.Err()).Str("kind", kind).Msg("load interrupted")
			break
		}
		created, err := upsert(ctx, it)
		switch {
		case err != nil:
			c.Failed++
			log.Warn().Err(err).Str("kind", kind).Str("key", key(it)).Msg("row failed, rolled back")
		case created:
			c.Inserted++
			if onInsert != nil {
				onInsert(it)
			}
		default:
			c.Skipped++
			log.Debug().Str("kind", kind).Str("key", key(it)).Msg("row exists, skipped")
		}
	}
	observability.AddPipeline("load."+kind, "inserted", c.Inserted)
	observability.AddPipeline("load."+kind, "skipped", c.Skipped)
	observability.AddPipeline("load."+kind, "failed", c.Failed)
	return c
}

func (l *Loader) invalidate(ctx context.Context, keys map[string]struct{}) {
	if l.cache == nil || len(keys) == 0 {
		return
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)
	for _, k := range sorted {
		if err := l.cache.Del(ctx, k); err != nil {
			log.Warn().Err(err).Str("key", k).Msg("cache invalidation failed")
		}
	}
}
