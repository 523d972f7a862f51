package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"hotel_pipeline/internal/domain"
)

type QueryService struct {
	repo     domain.CatalogReader
	cache    domain.Cache     // optional
	signer   domain.URLSigner // optional
	cacheTTL time.Duration
	sf       singleflight.Group
}

func NewQueryService(r domain.CatalogReader, c domain.Cache, s domain.URLSigner, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, signer: s, cacheTTL: ttl}
}

const fillTimeout = 30 * time.Second

// cached serves key from the cache or fills it with load. Concurrent misses
// on one key share a single load. Cache errors degrade to a direct load.
func cached[T any](ctx context.Context, s *QueryService, key string, load func(context.Context) (T, error)) (T, error) {
	var zero T
	if s.cache != nil {
		var v T
		if ok, err := s.cache.Get(ctx, key, &v); err == nil && ok {
			return v, nil
		} else if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		}
	}
	// The fill outlives any single caller so a cancelled request does not
	// fail the others sharing the flight.
	ch := s.sf.DoChan(key, func() (any, error) {
		fillCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fillTimeout)
		defer cancel()
		v, err := load(fillCtx)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(fillCtx, key, v, int(s.cacheTTL.Seconds())); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("cache set failed")
			}
		}
		return v, nil
	})
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func (s *QueryService) ListChains(ctx context.Context) ([]domain.Chain, error) {
	out, err := cached(ctx, s, chainsCacheKey, s.repo.ListChains)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Chain{}
	}
	return out, nil
}

// GetHotel returns the hotel with its chain name and images with their tags.
// Image URLs are signed per call; the cache holds unsigned paths.
func (s *QueryService) GetHotel(ctx context.Context, id int64) (domain.HotelView, error) {
	hv, err := cached(ctx, s, hotelCacheKey(id), func(ctx context.Context) (domain.HotelView, error) {
		return s.loadHotel(ctx, id)
	})
	if err != nil {
		return domain.HotelView{}, err
	}
	hv.Images = append([]domain.ImageView(nil), hv.Images...)
	for i := range hv.Images {
		hv.Images[i].URL = s.sign(ctx, hv.Images[i].URL)
	}
	return hv, nil
}

func (s *QueryService) loadHotel(ctx context.Context, id int64) (domain.HotelView, error) {
	h, err := s.repo.GetHotel(ctx, id)
	if err != nil {
		return domain.HotelView{}, err
	}
	hv := domain.HotelView{Hotel: h, Images: []domain.ImageView{}}
	if h.ChainID != nil {
		name, err := s.repo.ChainName(ctx, *h.ChainID)
		switch {
		case err == nil:
			hv.ChainName = &name
		case !errors.Is(err, domain.ErrNotFound):
			return domain.HotelView{}, err
		}
	}
	imgs, err := s.repo.ListImages(ctx, id)
	if err != nil {
		return domain.HotelView{}, err
	}
	for _, img := range imgs {
		tags, err := s.repo.ListImageTags(ctx, img.ID)
		if err != nil {
			return domain.HotelView{}, err
		}
		hv.Images = append(hv.Images, domain.ImageView{Image: img, Tags: tags})
	}
	return hv, nil
}

// ListHotels is not cached: pages are cheap and the loader cannot enumerate
// page keys to invalidate them.
func (s *QueryService) ListHotels(ctx context.Context, q domain.HotelsQuery) ([]domain.HotelView, error) {
	hs, err := s.repo.ListHotels(ctx, q)
	if err != nil {
		return nil, err
	}
	if hs == nil {
		hs = []domain.HotelView{}
	}
	for i := range hs {
		for j := range hs[i].Images {
			hs[i].Images[j].URL = s.sign(ctx, hs[i].Images[j].URL)
		}
	}
	return hs, nil
}

// ListImages returns domain.ErrNotFound for an unknown hotel.
func (s *QueryService) ListImages(ctx context.Context, hotelID int64) ([]domain.Image, error) {
	if _, err := s.repo.GetHotel(ctx, hotelID); err != nil {
		return nil, err
	}
	imgs, err := s.repo.ListImages(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Image, 0, len(imgs))
	for _, img := range imgs {
		img.URL = s.sign(ctx, img.URL)
		out = append(out, img)
	}
	return out, nil
}

func (s *QueryService) Availability(ctx context.Context, hotelID int64, from, to time.Time) ([]domain.AvailabilityPrice, error) {
	if _, err := s.repo.GetHotel(ctx, hotelID); err != nil {
		return nil, err
	}
	return s.repo.ListAvailability(ctx, hotelID, from, to)
}

// SearchImages returns an empty list without a tag.
func (s *QueryService) SearchImages(ctx context.Context, q domain.ImageSearch) ([]domain.ImageHit, error) {
	if q.Tag == "" {
		return []domain.ImageHit{}, nil
	}
	hits, err := s.repo.SearchImages(ctx, q)
	if err != nil {
		return nil, err
	}
	for i := range hits {
		hits[i].ImageURL = s.sign(ctx, hits[i].ImageURL)
	}
	if hits == nil {
		hits = []domain.ImageHit{}
	}
	return hits, nil
}

// sign falls back to the stored path when no signer is set or signing fails.
func (s *QueryService) sign(ctx context.Context, p string) string {
	if s.signer == nil || p == "" {
		return p
	}
	u, err := s.signer.SignURL(ctx, p)
	if err != nil {
		log.Warn().Err(err).Str("path", p).Msg("sign url failed")
		return p
	}
	return u
}
