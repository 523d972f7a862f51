package domain

import "time"

type Chain struct {
	ID   int64  `json:"chain_id"`
	Name string `json:"chain_name"`
}

// Hotel belongs to at most one Chain. Absent coordinates mean no image search.
type Hotel struct {
	ID        int64    `json:"hotel_id"`
	Name      string   `json:"hotel_name"`
	ChainID   *int64   `json:"chain_id,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

func (h Hotel) HasCoords() bool { return h.Latitude != nil && h.Longitude != nil }

type Image struct {
	ID      int64  `json:"image_id"`
	HotelID int64  `json:"hotel_id"`
	URL     string `json:"image_url"` // local path or remote URL
}

type ImageTag struct {
	ImageID    int64   `json:"image_id"`
	Name       string  `json:"tag_name"`
	Confidence float64 `json:"confidence_score"` // 0..1
}

// AvailabilityPrice is one synthetic calendar cell; unique on (HotelID, Date).
type AvailabilityPrice struct {
	ID           int64     `json:"id,omitempty"`
	HotelID      int64     `json:"hotel_id"`
	Date         time.Time `json:"date"`
	Availability int       `json:"availability"`
	Price        float64   `json:"price"`
	Currency     string    `json:"currency"`
}
