package clip_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_pipeline/internal/adapters/clip"
)

func TestScorer_Score(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/score", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		var in struct {
			Image  string   `json:"image"`
			Labels []string `json:"labels"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		raw, err := base64.StdEncoding.DecodeString(in.Image)
		require.NoError(t, err)
		assert.Equal(t, []byte("img"), raw)

		scores := make([]float64, len(in.Labels))
		for i := range scores {
			scores[i] = float64(i)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"scores": scores})
	}))
	defer ts.Close()

	s := clip.New(ts.URL, "secret", 100)
	got, err := s.Score(context.Background(), []byte("img"), []string{"pool", "bar", "spa"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2}, got)
}

func TestScorer_MisalignedResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"scores":[0.5]}`))
	}))
	defer ts.Close()

	_, err := clip.New(ts.URL, "", 100).Score(context.Background(), []byte("img"), []string{"a", "b"})
	require.Error(t, err)
}

func TestScorer_EmptyImage(t *testing.T) {
	_, err := clip.New("http://unused", "", 100).Score(context.Background(), nil, []string{"a"})
	require.Error(t, err)
}
