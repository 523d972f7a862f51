package domain

import (
	"context"
	"time"
)

// CatalogWriter inserts records, skipping rows whose key already exists.
// created reports whether a new row was written.
type CatalogWriter interface {
	UpsertChain(ctx context.Context, c Chain) (created bool, err error)
	UpsertHotel(ctx context.Context, h Hotel) (created bool, err error)
	UpsertImage(ctx context.Context, i Image) (created bool, err error)
	UpsertImageTag(ctx context.Context, t ImageTag) (created bool, err error)
	UpsertAvailability(ctx context.Context, a AvailabilityPrice) (created bool, err error)
}

type CatalogReader interface {
	ListChains(ctx context.Context) ([]Chain, error)
	GetHotel(ctx context.Context, id int64) (Hotel, error)
	ChainName(ctx context.Context, chainID int64) (string, error)
	ListHotels(ctx context.Context, q HotelsQuery) ([]HotelView, error)
	ListHotelIDs(ctx context.Context) ([]int64, error)
	ListImages(ctx context.Context, hotelID int64) ([]Image, error)
	ListAllImages(ctx context.Context) ([]Image, error)
	ListImageTags(ctx context.Context, imageID int64) ([]ImageTag, error)
	SearchImages(ctx context.Context, q ImageSearch) ([]ImageHit, error)
	ListAvailability(ctx context.Context, hotelID int64, from, to time.Time) ([]AvailabilityPrice, error)
}

// PlacesClient is the external place search / photo API.
type PlacesClient interface {
	FindPlace(ctx context.Context, name string, lat, lon float64) (placeID string, err error)
	PlacePhotos(ctx context.Context, placeID string) ([]string, error)
	FetchPhoto(ctx context.Context, photoRef string) ([]byte, error)
}

// ImageStore persists downloaded image bytes under chain/hotel/image.
type ImageStore interface {
	Path(chainID *int64, hotelID, imageID int64) string
	Exists(path string) bool
	Save(path string, data []byte) error
}

// Scorer is the pretrained image-text model: one raw similarity per label,
// aligned with labels.
type Scorer interface {
	Score(ctx context.Context, image []byte, labels []string) ([]float64, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// URLSigner turns a stored image path into a URL a client can fetch.
type URLSigner interface {
	SignURL(ctx context.Context, imagePath string) (string, error)
}

// Read models & queries

type HotelView struct {
	Hotel
	ChainName *string     `json:"chain_name,omitempty"`
	Images    []ImageView `json:"images"`
}

type ImageView struct {
	Image
	Tags []ImageTag `json:"tags,omitempty"`
}

type HotelsQuery struct {
	Limit  int
	Offset int
}

type ImageSearch struct {
	Tag                string
	MinPrice, MaxPrice float64
	From, To           time.Time
	Limit              int
}

type ImageHit struct {
	ImageID   int64      `json:"image_id"`
	ImageURL  string     `json:"image_url"`
	HotelID   int64      `json:"hotel_id"`
	HotelName string     `json:"hotel_name"`
	Latitude  *float64   `json:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty"`
	AvgPrice  float64    `json:"avg_price_per_night"`
	Tags      []ImageTag `json:"tags"`
}
