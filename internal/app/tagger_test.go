package app_test

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_pipeline/internal/app"
	"hotel_pipeline/internal/domain"
)

func TestSoftmax(t *testing.T) {
	p, err := app.Softmax([]float64{1000, 1000, 999})
	require.NoError(t, err, "large inputs must not overflow")

	var sum float64
	for _, v := range p {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.InDelta(t, p[0], p[1], 1e-12)

	_, err = app.Softmax(nil)
	assert.ErrorIs(t, err, domain.ErrMalformedInput)
	_, err = app.Softmax([]float64{1, math.NaN()})
	assert.ErrorIs(t, err, domain.ErrMalformedInput)
}

func TestTopK_StableOnTies(t *testing.T) {
	assert.Equal(t, []int{1, 3, 0}, app.TopK([]float64{0.2, 0.5, 0.1, 0.5}, 3))
	assert.Equal(t, []int{0, 1}, app.TopK([]float64{3, 1}, 10))
}

func TestDefaultVocabularyHasNoRepeats(t *testing.T) {
	v := app.DefaultVocabulary()
	require.Greater(t, len(v), app.DefaultTopK)
	seen := map[string]bool{}
	for _, l := range v {
		assert.False(t, seen[l], "repeated label %q", l)
		seen[l] = true
	}
	assert.Equal(t, []string{"pool", "spa"}, app.Dedupe([]string{"pool", "", "spa", "pool"}))
}

func TestTagImage_TopTenFromVocabulary(t *testing.T) {
	vocab := app.DefaultVocabulary()
	sc := &fakeScorer{scores: map[string]float64{"pool": 9, "bathroom": 8, "spa": 7}}
	tg := app.NewTagger(sc, nil, 0)

	tags, err := tg.TagImage(context.Background(), 1001, []byte("img"))
	require.NoError(t, err)

	require.Len(t, tags, app.DefaultTopK)
	assert.Equal(t, []string{"pool", "bathroom", "spa"}, []string{tags[0].Name, tags[1].Name, tags[2].Name})

	inVocab := map[string]bool{}
	for _, l := range vocab {
		inVocab[l] = true
	}
	var sum float64
	for i, tag := range tags {
		assert.Equal(t, int64(1001), tag.ImageID)
		assert.True(t, inVocab[tag.Name])
		assert.GreaterOrEqual(t, tag.Confidence, 0.0)
		assert.LessOrEqual(t, tag.Confidence, 1.0)
		if i > 0 {
			assert.GreaterOrEqual(t, tags[i-1].Confidence, tag.Confidence)
		}
		sum += tag.Confidence
	}
	assert.LessOrEqual(t, sum, 1.0+1e-9)
}

func TestTagImage_SmallVocabulary(t *testing.T) {
	tg := app.NewTagger(&fakeScorer{scores: map[string]float64{"b": 1}}, []string{"a", "b", "a"}, 5)
	assert.Equal(t, []string{"a", "b"}, tg.Vocabulary())

	tags, err := tg.TagImage(context.Background(), 1, nil)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "b", tags[0].Name)
}

func TestTaggerRun_SkipsMissingAndFailedImages(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "1001.jpg")
	bad := filepath.Join(dir, "1002.jpg")
	require.NoError(t, os.WriteFile(good, []byte("good"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("corrupt"), 0o644))

	sc := &fakeScorer{scores: map[string]float64{"gym": 2}, fail: map[string]bool{"corrupt": true}}
	tg := app.NewTagger(sc, []string{"gym", "bar", "spa"}, 2)

	out, sum := tg.Run(context.Background(), []domain.Image{
		{ID: 1002, HotelID: 1, URL: bad},
		{ID: 1003, HotelID: 1, URL: filepath.Join(dir, "gone.jpg")},
		{ID: 1001, HotelID: 1, URL: good},
	})

	require.Len(t, out, 1)
	assert.Equal(t, int64(1001), out[0].ImageID)
	assert.Len(t, out[0].Tags, 2)
	assert.Equal(t, "gym", out[0].Tags[0].Name)
	assert.Equal(t, app.TagSummary{Images: 3, Tagged: 1, Missing: 1, Failed: 1}, sum)
	assert.Equal(t, 2, sc.calls, "missing files never reach the scorer")
}
