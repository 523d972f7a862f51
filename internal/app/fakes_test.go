package app_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"hotel_pipeline/internal/domain"
)

// ---- catalog: in-memory store with the relational constraints ----

type fakeCatalog struct {
	mu     sync.Mutex
	chains map[int64]domain.Chain
	hotels map[int64]domain.Hotel
	images map[int64]domain.Image
	tags   map[string]domain.ImageTag
	avail  map[string]domain.AvailabilityPrice

	failHotel int64 // UpsertHotel of this id errors
	reads     int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		chains: map[int64]domain.Chain{},
		hotels: map[int64]domain.Hotel{},
		images: map[int64]domain.Image{},
		tags:   map[string]domain.ImageTag{},
		avail:  map[string]domain.AvailabilityPrice{},
	}
}

func (f *fakeCatalog) UpsertChain(_ context.Context, c domain.Chain) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.chains[c.ID]; ok {
		return false, nil
	}
	f.chains[c.ID] = c
	return true, nil
}

func (f *fakeCatalog) UpsertHotel(_ context.Context, h domain.Hotel) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failHotel != 0 && h.ID == f.failHotel {
		return false, fmt.Errorf("boom")
	}
	if h.ChainID != nil {
		if _, ok := f.chains[*h.ChainID]; !ok {
			return false, domain.ErrMissingParent
		}
	}
	if _, ok := f.hotels[h.ID]; ok {
		return false, nil
	}
	f.hotels[h.ID] = h
	return true, nil
}

func (f *fakeCatalog) UpsertImage(_ context.Context, i domain.Image) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.hotels[i.HotelID]; !ok {
		return false, domain.ErrMissingParent
	}
	if _, ok := f.images[i.ID]; ok {
		return false, nil
	}
	f.images[i.ID] = i
	return true, nil
}

func (f *fakeCatalog) UpsertImageTag(_ context.Context, t domain.ImageTag) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.images[t.ImageID]; !ok {
		return false, domain.ErrMissingParent
	}
	if t.Confidence < 0 || t.Confidence > 1 {
		return false, domain.ErrInvalidRecord
	}
	k := fmt.Sprintf("%d/%s", t.ImageID, t.Name)
	if _, ok := f.tags[k]; ok {
		return false, nil
	}
	f.tags[k] = t
	return true, nil
}

func (f *fakeCatalog) UpsertAvailability(_ context.Context, a domain.AvailabilityPrice) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.hotels[a.HotelID]; !ok {
		return false, domain.ErrMissingParent
	}
	if a.Price < 0 || a.Availability < 0 {
		return false, domain.ErrInvalidRecord
	}
	k := fmt.Sprintf("%d/%s", a.HotelID, a.Date.Format(time.DateOnly))
	if _, ok := f.avail[k]; ok {
		return false, nil
	}
	a.ID = int64(len(f.avail) + 1)
	f.avail[k] = a
	return true, nil
}

func (f *fakeCatalog) ListChains(context.Context) ([]domain.Chain, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	out := make([]domain.Chain, 0, len(f.chains))
	for _, c := range f.chains {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCatalog) GetHotel(_ context.Context, id int64) (domain.Hotel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	h, ok := f.hotels[id]
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return h, nil
}

func (f *fakeCatalog) ChainName(_ context.Context, id int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.chains[id]
	if !ok {
		return "", domain.ErrNotFound
	}
	return c.Name, nil
}

func (f *fakeCatalog) ListHotels(ctx context.Context, q domain.HotelsQuery) ([]domain.HotelView, error) {
	ids, _ := f.ListHotelIDs(ctx)
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.HotelView
	for i, id := range ids {
		if i < q.Offset || len(out) == q.Limit {
			continue
		}
		hv := domain.HotelView{Hotel: f.hotels[id], Images: []domain.ImageView{}}
		for _, img := range f.sortedImages(id) {
			hv.Images = append(hv.Images, domain.ImageView{Image: img})
		}
		out = append(out, hv)
	}
	return out, nil
}

func (f *fakeCatalog) ListHotelIDs(context.Context) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int64, 0, len(f.hotels))
	for id := range f.hotels {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (f *fakeCatalog) sortedImages(hotelID int64) []domain.Image {
	var out []domain.Image
	for _, img := range f.images {
		if hotelID == 0 || img.HotelID == hotelID {
			out = append(out, img)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeCatalog) ListImages(_ context.Context, hotelID int64) ([]domain.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sortedImages(hotelID), nil
}

func (f *fakeCatalog) ListAllImages(context.Context) ([]domain.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sortedImages(0), nil
}

func (f *fakeCatalog) ListImageTags(_ context.Context, imageID int64) ([]domain.ImageTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ImageTag
	for _, t := range f.tags {
		if t.ImageID == imageID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	return out, nil
}

func (f *fakeCatalog) SearchImages(_ context.Context, q domain.ImageSearch) ([]domain.ImageHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ImageHit
	for _, img := range f.sortedImages(0) {
		var tags []domain.ImageTag
		for _, t := range f.tags {
			if t.ImageID == img.ID && strings.Contains(strings.ToLower(t.Name), strings.ToLower(q.Tag)) {
				tags = append(tags, t)
			}
		}
		if len(tags) > 0 {
			h := f.hotels[img.HotelID]
			out = append(out, domain.ImageHit{ImageID: img.ID, ImageURL: img.URL, HotelID: h.ID, HotelName: h.Name, Tags: tags})
		}
	}
	return out, nil
}

func (f *fakeCatalog) ListAvailability(_ context.Context, hotelID int64, from, to time.Time) ([]domain.AvailabilityPrice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.AvailabilityPrice
	for _, a := range f.avail {
		if a.HotelID == hotelID && !a.Date.Before(from) && !a.Date.After(to) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// ---- cache: JSON round-trip like the redis adapter ----

type fakeCache struct {
	mu      sync.Mutex
	store   map[string][]byte
	deleted []string
}

func (c *fakeCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(_ context.Context, key string, v any, _ int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	c.deleted = append(c.deleted, key)
	return nil
}

// ---- places / store / scorer ----

type fakePlaces struct {
	places    map[string]string   // hotel name -> place id
	photos    map[string][]string // place id -> refs
	failRef   string
	findCalls []string
	fetched   []string
}

func (p *fakePlaces) FindPlace(_ context.Context, name string, _, _ float64) (string, error) {
	p.findCalls = append(p.findCalls, name)
	id, ok := p.places[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return id, nil
}

func (p *fakePlaces) PlacePhotos(_ context.Context, placeID string) ([]string, error) {
	return p.photos[placeID], nil
}

func (p *fakePlaces) FetchPhoto(_ context.Context, ref string) ([]byte, error) {
	if ref == p.failRef {
		return nil, fmt.Errorf("remote 500")
	}
	p.fetched = append(p.fetched, ref)
	return []byte("jpeg:" + ref), nil
}

type memStore struct{ files map[string][]byte }

func newMemStore() *memStore { return &memStore{files: map[string][]byte{}} }

func (s *memStore) Path(chainID *int64, hotelID, imageID int64) string {
	chain := int64(0)
	if chainID != nil {
		chain = *chainID
	}
	return fmt.Sprintf("images/%d/%d/%d.jpg", chain, hotelID, imageID)
}

func (s *memStore) Exists(p string) bool {
	_, ok := s.files[p]
	return ok
}

func (s *memStore) Save(p string, b []byte) error {
	s.files[p] = b
	return nil
}

// scorer returns a fixed score per label, or an error for images in fail.
type fakeScorer struct {
	scores map[string]float64
	fail   map[string]bool
	calls  int
}

func (s *fakeScorer) Score(_ context.Context, image []byte, labels []string) ([]float64, error) {
	s.calls++
	if s.fail[string(image)] {
		return nil, fmt.Errorf("cannot identify image file")
	}
	out := make([]float64, len(labels))
	for i, l := range labels {
		out[i] = s.scores[l]
	}
	return out, nil
}

// ---- signer ----

type prefixSigner struct{}

func (prefixSigner) SignURL(_ context.Context, p string) (string, error) {
	return "https://signed.example/" + p, nil
}

func pint64(i int64) *int64 { return &i }
func pfloat(f float64) *float64 { return &f }
