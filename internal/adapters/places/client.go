// Package places is a client for the Google Places web service (find place,
// details, photo).
package places

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"hotel_pipeline/internal/adapters/httpclient"
	"hotel_pipeline/internal/domain"
)

type Client struct {
	base     string
	key      string
	maxWidth int
	http     *httpclient.Client
}

func New(base, key string, rps, maxWidth int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("places: API key is required")
	}
	if maxWidth <= 0 {
		maxWidth = 1280
	}
	return &Client{
		base:     base,
		key:      key,
		maxWidth: maxWidth,
		http:     httpclient.New("places", rps, 30*time.Second),
	}, nil
}

var _ domain.PlacesClient = (*Client)(nil)

type findPlaceResponse struct {
	Candidates []struct {
		PlaceID string `json:"place_id"`
	} `json:"candidates"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

type detailsResponse struct {
	Result struct {
		Photos []struct {
			PhotoReference string `json:"photo_reference"`
		} `json:"photos"`
	} `json:"result"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

// FindPlace returns the first candidate's place id; domain.ErrNotFound when
// the search has no candidates.
func (c *Client) FindPlace(ctx context.Context, name string, lat, lon float64) (string, error) {
	q := url.Values{}
	q.Set("input", name)
	q.Set("inputtype", "textquery")
	q.Set("locationbias", "point:"+strconv.FormatFloat(lat, 'f', -1, 64)+","+strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("fields", "place_id")

	var out findPlaceResponse
	if err := c.getJSON(ctx, "findplacefromtext", "/findplacefromtext/json", q, &out); err != nil {
		return "", err
	}
	if err := statusErr(out.Status, out.ErrorMessage); err != nil {
		return "", err
	}
	if len(out.Candidates) == 0 || out.Candidates[0].PlaceID == "" {
		return "", domain.ErrNotFound
	}
	return out.Candidates[0].PlaceID, nil
}

// PlacePhotos lists photo references in the order the API returns them. A
// place without photos is an empty slice, not an error.
func (c *Client) PlacePhotos(ctx context.Context, placeID string) ([]string, error) {
	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", "photos")

	var out detailsResponse
	if err := c.getJSON(ctx, "details", "/details/json", q, &out); err != nil {
		return nil, err
	}
	if err := statusErr(out.Status, out.ErrorMessage); err != nil {
		return nil, err
	}
	refs := make([]string, 0, len(out.Result.Photos))
	for _, p := range out.Result.Photos {
		if p.PhotoReference != "" {
			refs = append(refs, p.PhotoReference)
		}
	}
	return refs, nil
}

// FetchPhoto downloads the image bytes (the API answers with a redirect to the
// image host, followed by net/http).
func (c *Client) FetchPhoto(ctx context.Context, ref string) ([]byte, error) {
	q := url.Values{}
	q.Set("maxwidth", strconv.Itoa(c.maxWidth))
	q.Set("photo_reference", ref)
	b, err := c.get(ctx, "photo", "/photo", q)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("places: empty photo body for %s", ref)
	}
	return b, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, q url.Values) ([]byte, error) {
	q.Set("key", c.key)
	u := c.base + path + "?" + q.Encode()
	return c.http.Do(ctx, endpoint, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		if endpoint != "photo" {
			req.Header.Set("Accept", "application/json")
		}
		return req, nil
	})
}

func (c *Client) getJSON(ctx context.Context, endpoint, path string, q url.Values, out any) error {
	b, err := c.get(ctx, endpoint, path, q)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("places %s: decode: %w", endpoint, err)
	}
	return nil
}

// statusErr maps the Places "status" field; its HTTP status is 200 even for
// failed lookups.
func statusErr(status, msg string) error {
	switch status {
	case "", "OK":
		return nil
	case "ZERO_RESULTS", "NOT_FOUND":
		return domain.ErrNotFound
	case "REQUEST_DENIED":
		return fmt.Errorf("places: %s: %w", msg, domain.ErrUnauthorized)
	default: // OVER_QUERY_LIMIT, INVALID_REQUEST, UNKNOWN_ERROR
		return fmt.Errorf("places: status %s: %s", status, msg)
	}
}
