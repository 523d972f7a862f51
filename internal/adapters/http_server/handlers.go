package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"hotel_pipeline/internal/domain"
)

// Queries is the read side the handlers serve; app.QueryService implements it.
type Queries interface {
	ListChains(ctx context.Context) ([]domain.Chain, error)
	ListHotels(ctx context.Context, q domain.HotelsQuery) ([]domain.HotelView, error)
	GetHotel(ctx context.Context, id int64) (domain.HotelView, error)
	ListImages(ctx context.Context, hotelID int64) ([]domain.Image, error)
	Availability(ctx context.Context, hotelID int64, from, to time.Time) ([]domain.AvailabilityPrice, error)
	SearchImages(ctx context.Context, q domain.ImageSearch) ([]domain.ImageHit, error)
}

type Handlers struct{ Q Queries }

const (
	defaultLimit = 50
	maxLimit     = 200
)

var (
	minDate = time.Date(1000, 1, 1, 0, 0, 0, 0, time.UTC)
	maxDate = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
)

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/chains", h.listChains)
		r.Get("/hotels", h.listHotels)
		r.Get("/hotels/{id}", h.getHotel)
		r.Get("/hotels/{id}/images", h.listImages)
		r.Get("/hotels/{id}/availability", h.availability)
		r.Get("/images", h.searchImages)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeQueryErr maps service errors; anything unexpected is a 500 and logged.
func writeQueryErr(w http.ResponseWriter, r *http.Request, err error, what string) {
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", what+" not found")
		return
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		writeProblem(w, http.StatusServiceUnavailable, "Unavailable", "request cancelled")
		return
	}
	log.Error().Err(err).Str("path", r.URL.Path).Msg("query failed")
	writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "encode response")
		return
	}
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func hotelID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return 0, false
	}
	return id, true
}

func intParam(r *http.Request, name string, def, min, max int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < min || n > max {
		return 0, errors.New(name + " must be an integer between " + strconv.Itoa(min) + " and " + strconv.Itoa(max))
	}
	return n, nil
}

func floatParam(r *http.Request, name string) (float64, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0, errors.New(name + " must be a non-negative number")
	}
	return f, nil
}

func dateParam(r *http.Request, name string, def time.Time) (time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, errors.New(name + " must be YYYY-MM-DD")
	}
	return t, nil
}

func (h *Handlers) listChains(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.ListChains(r.Context())
	if err != nil {
		writeQueryErr(w, r, err, "chains")
		return
	}
	writeJSON(w, r, out)
}

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", defaultLimit, 1, maxLimit)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid limit", err.Error())
		return
	}
	offset, err := intParam(r, "offset", 0, 0, 1<<31-1)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid offset", err.Error())
		return
	}
	out, err := h.Q.ListHotels(r.Context(), domain.HotelsQuery{Limit: limit, Offset: offset})
	if err != nil {
		writeQueryErr(w, r, err, "hotels")
		return
	}
	writeJSON(w, r, out)
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	id, ok := hotelID(w, r)
	if !ok {
		return
	}
	resp, err := h.Q.GetHotel(r.Context(), id)
	if err != nil {
		writeQueryErr(w, r, err, "hotel")
		return
	}
	writeJSON(w, r, resp)
}

func (h *Handlers) listImages(w http.ResponseWriter, r *http.Request) {
	id, ok := hotelID(w, r)
	if !ok {
		return
	}
	out, err := h.Q.ListImages(r.Context(), id)
	if err != nil {
		writeQueryErr(w, r, err, "hotel")
		return
	}
	writeJSON(w, r, out)
}

func (h *Handlers) availability(w http.ResponseWriter, r *http.Request) {
	id, ok := hotelID(w, r)
	if !ok {
		return
	}
	from, err := dateParam(r, "from", minDate)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid date", err.Error())
		return
	}
	to, err := dateParam(r, "to", maxDate)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid date", err.Error())
		return
	}
	if to.Before(from) {
		writeProblem(w, http.StatusBadRequest, "Invalid date", "to is before from")
		return
	}
	out, err := h.Q.Availability(r.Context(), id, from, to)
	if err != nil {
		writeQueryErr(w, r, err, "hotel")
		return
	}
	writeJSON(w, r, out)
}

func (h *Handlers) searchImages(w http.ResponseWriter, r *http.Request) {
	q := domain.ImageSearch{Tag: strings.TrimSpace(r.URL.Query().Get("tag"))}
	var err error
	if q.MinPrice, err = floatParam(r, "min_price"); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid price", err.Error())
		return
	}
	if q.MaxPrice, err = floatParam(r, "max_price"); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid price", err.Error())
		return
	}
	if q.MaxPrice > 0 && q.MaxPrice < q.MinPrice {
		writeProblem(w, http.StatusBadRequest, "Invalid price", "max_price is below min_price")
		return
	}
	if q.From, err = dateParam(r, "start_date", time.Time{}); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid date", err.Error())
		return
	}
	if q.To, err = dateParam(r, "end_date", time.Time{}); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid date", err.Error())
		return
	}
	if q.Limit, err = intParam(r, "limit", 100, 1, 500); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid limit", err.Error())
		return
	}
	out, err := h.Q.SearchImages(r.Context(), q)
	if err != nil {
		writeQueryErr(w, r, err, "images")
		return
	}
	writeJSON(w, r, out)
}
