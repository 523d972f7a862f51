// Package clip calls a CLIP inference service for image/label similarities.
//
// Wire format: POST <base>/score with {"image": <base64>, "labels": [...]},
// answered by {"scores": [...]} aligned with labels. Scores are raw
// similarities (logits); normalization happens in the tagger.
package clip

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"hotel_pipeline/internal/adapters/httpclient"
	"hotel_pipeline/internal/domain"
)

type Scorer struct {
	base string
	key  string
	http *httpclient.Client
}

func New(base, key string, rps int) *Scorer {
	return &Scorer{base: base, key: key, http: httpclient.New("clip", rps, time.Minute)}
}

var _ domain.Scorer = (*Scorer)(nil)

type scoreRequest struct {
	Image  string   `json:"image"`
	Labels []string `json:"labels"`
}

type scoreResponse struct {
	Scores []float64 `json:"scores"`
}

func (s *Scorer) Score(ctx context.Context, image []byte, labels []string) ([]float64, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("clip: empty image: %w", domain.ErrMalformedInput)
	}
	body, err := json.Marshal(scoreRequest{Image: base64.StdEncoding.EncodeToString(image), Labels: labels})
	if err != nil {
		return nil, err
	}
	b, err := s.http.Do(ctx, "score", func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.base+"/score", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		if s.key != "" {
			req.Header.Set("Authorization", "Bearer "+s.key)
		}
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	var out scoreResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("clip: decode: %w", err)
	}
	if len(out.Scores) != len(labels) {
		return nil, fmt.Errorf("clip: got %d scores for %d labels", len(out.Scores), len(labels))
	}
	return out.Scores, nil
}
