package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"hotel_pipeline/internal/adapters/observability"
	"hotel_pipeline/internal/domain"
)

type AcquireSummary struct {
	Hotels     int `json:"hotels"`
	NoCoords   int `json:"no_coords"`
	NotFound   int `json:"not_found"`
	NoPhotos   int `json:"no_photos"`
	HotelError int `json:"hotel_errors"`
	Downloaded int `json:"downloaded"`
	Existing   int `json:"existing"`
	Failed     int `json:"failed_photos"`
}

func (s AcquireSummary) Images() int { return s.Downloaded + s.Existing }

type ImageAcquirer struct {
	places    domain.PlacesClient
	store     domain.ImageStore
	maxPhotos int
}

func NewImageAcquirer(p domain.PlacesClient, s domain.ImageStore, maxPhotos int) *ImageAcquirer {
	switch {
	case maxPhotos <= 0:
		maxPhotos = 20
	case maxPhotos > domain.MaxPhotosPerHotel:
		maxPhotos = domain.MaxPhotosPerHotel
	}
	return &ImageAcquirer{places: p, store: s, maxPhotos: maxPhotos}
}

// Run fetches photos hotel by hotel. Failures never abort the run: a hotel
// that cannot be resolved is skipped, a photo that cannot be fetched is
// skipped. Photos already on disk are recorded without refetching.
func (a *ImageAcquirer) Run(ctx context.Context, hotels []domain.Hotel) ([]domain.Image, AcquireSummary) {
	var (
		out []domain.Image
		sum AcquireSummary
	)
	for _, h := range hotels {
		if ctx.Err() != nil {
			log.Warn().Err(ctx.Err()).Msg("acquisition interrupted")
			break
		}
		sum.Hotels++
		imgs := a.acquireHotel(ctx, h, &sum)
		out = append(out, imgs...)
	}
	observability.AddPipeline("acquire", "downloaded", sum.Downloaded)
	observability.AddPipeline("acquire", "existing", sum.Existing)
	observability.AddPipeline("acquire", "failed", sum.Failed)
	observability.AddPipeline("acquire", "hotel_skipped", sum.NoCoords+sum.NotFound+sum.NoPhotos+sum.HotelError)
	return out, sum
}

func (a *ImageAcquirer) acquireHotel(ctx context.Context, h domain.Hotel, sum *AcquireSummary) []domain.Image {
	l := log.With().Int64("hotel_id", h.ID).Str("hotel", h.Name).Logger()
	if !h.HasCoords() {
		sum.NoCoords++
		l.Info().Msg("skipping hotel due to missing coordinates")
		return nil
	}

	placeID, err := a.places.FindPlace(ctx, h.Name, *h.Latitude, *h.Longitude)
	if errors.Is(err, domain.ErrNotFound) {
		sum.NotFound++
		l.Info().Msg("hotel not found")
		return nil
	}
	if err != nil {
		sum.HotelError++
		l.Warn().Err(err).Msg("place search failed")
		return nil
	}

	refs, err := a.places.PlacePhotos(ctx, placeID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		sum.HotelError++
		l.Warn().Err(err).Str("place_id", placeID).Msg("place details failed")
		return nil
	}
	if len(refs) == 0 {
		sum.NoPhotos++
		l.Info().Str("place_id", placeID).Msg("no photos available")
		return nil
	}
	if len(refs) > a.maxPhotos {
		refs = refs[:a.maxPhotos]
	}

	out := make([]domain.Image, 0, len(refs))
	for i, ref := range refs {
		id, err := domain.ImageID(h.ID, i+1)
		if err != nil { // unreachable with maxPhotos bounded
			l.Error().Err(err).Msg("image id")
			break
		}
		path := a.store.Path(h.ChainID, h.ID, id)
		if a.store.Exists(path) {
			sum.Existing++
			out = append(out, domain.Image{ID: id, HotelID: h.ID, URL: path})
			l.Debug().Int64("image_id", id).Str("path", path).Msg("photo already on disk")
			continue
		}
		data, err := a.places.FetchPhoto(ctx, ref)
		if err != nil {
			sum.Failed++
			l.Error().Err(err).Int("photo", i+1).Msg("failed to download photo")
			continue
		}
		if err := a.store.Save(path, data); err != nil {
			sum.Failed++
			l.Error().Err(err).Int("photo", i+1).Str("path", path).Msg("failed to save photo")
			continue
		}
		sum.Downloaded++
		out = append(out, domain.Image{ID: id, HotelID: h.ID, URL: path})
		l.Info().Int("photo", i+1).Int64("image_id", id).Str("path", path).Msg("saved photo")
	}
	return out
}
