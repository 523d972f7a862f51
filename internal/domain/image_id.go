package domain

import "fmt"

// MaxPhotosPerHotel bounds the per-hotel sequence so ids never collide across hotels.
const MaxPhotosPerHotel = 999

const imageIDStride = MaxPhotosPerHotel + 1

// ImageID derives a stable image id from (hotel_id, sequence_in_hotel), seq starting at 1.
func ImageID(hotelID int64, seq int) (int64, error) {
	if seq < 1 || seq > MaxPhotosPerHotel {
		return 0, fmt.Errorf("image sequence %d out of range [1,%d]", seq, MaxPhotosPerHotel)
	}
	if hotelID < 0 {
		return 0, fmt.Errorf("negative hotel id %d", hotelID)
	}
	return hotelID*imageIDStride + int64(seq), nil
}

// SplitImageID reverses ImageID. Ids assigned by older runs (a global counter)
// do not round-trip and report ok=false.
func SplitImageID(id int64) (hotelID int64, seq int, ok bool) {
	if id <= 0 {
		return 0, 0, false
	}
	seq = int(id % imageIDStride)
	if seq == 0 {
		return 0, 0, false
	}
	return id / imageIDStride, seq, true
}
