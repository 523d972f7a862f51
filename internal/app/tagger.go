package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/rs/zerolog/log"

	"hotel_pipeline/internal/adapters/observability"
	"hotel_pipeline/internal/domain"
)

// DefaultTopK is how many tags each image keeps.
const DefaultTopK = 10

type TagSummary struct {
	Images  int `json:"images"`
	Tagged  int `json:"tagged"`
	Missing int `json:"missing_files"`
	Failed  int `json:"failed"`
}

type Tagger struct {
	scorer domain.Scorer
	labels []string
	k      int
	read   func(string) ([]byte, error)
}

// NewTagger uses DefaultVocabulary when labels is empty and DefaultTopK when
// k <= 0. Labels are deduplicated so (image_id, tag_name) stays unique.
func NewTagger(s domain.Scorer, labels []string, k int) *Tagger {
	if len(labels) == 0 {
		labels = DefaultVocabulary()
	} else {
		labels = Dedupe(labels)
	}
	if k <= 0 {
		k = DefaultTopK
	}
	return &Tagger{scorer: s, labels: labels, k: k, read: os.ReadFile}
}

func (t *Tagger) Vocabulary() []string { return append([]string(nil), t.labels...) }

// TagImage scores data against the vocabulary, normalizes the scores with a
// softmax and returns the top k, highest first.
func (t *Tagger) TagImage(ctx context.Context, imageID int64, data []byte) ([]domain.ImageTag, error) {
	raw, err := t.scorer.Score(ctx, data, t.labels)
	if err != nil {
		return nil, err
	}
	if len(raw) != len(t.labels) {
		return nil, fmt.Errorf("scorer returned %d scores for %d labels", len(raw), len(t.labels))
	}
	probs, err := Softmax(raw)
	if err != nil {
		return nil, err
	}
	ranked := TopK(probs, t.k)
	out := make([]domain.ImageTag, 0, len(ranked))
	for _, i := range ranked {
		out = append(out, domain.ImageTag{ImageID: imageID, Name: t.labels[i], Confidence: probs[i]})
	}
	return out, nil
}

// Run tags every image whose file exists. A missing or untaggable image is
// logged and left out; it never stops the run.
func (t *Tagger) Run(ctx context.Context, images []domain.Image) ([]domain.TaggedImage, TagSummary) {
	var (
		out []domain.TaggedImage
		sum TagSummary
	)
	for _, img := range images {
		if ctx.Err() != nil {
			log.Warn().Err(ctx.Err()).Msg("tagging interrupted")
			break
		}
		sum.Images++
		data, err := t.read(img.URL)
		if errors.Is(err, os.ErrNotExist) {
			sum.Missing++
			log.Info().Int64("image_id", img.ID).Str("path", img.URL).Msg("image not found")
			continue
		}
		if err != nil {
			sum.Failed++
			log.Warn().Err(err).Int64("image_id", img.ID).Str("path", img.URL).Msg("error reading image")
			continue
		}
		tags, err := t.TagImage(ctx, img.ID, data)
		if err != nil {
			sum.Failed++
			log.Warn().Err(err).Int64("image_id", img.ID).Str("path", img.URL).Msg("error tagging image")
			continue
		}
		sum.Tagged++
		out = append(out, domain.TaggedImage{ImageID: img.ID, Tags: tags})
		log.Info().Int64("image_id", img.ID).Str("top", tags[0].Name).Float64("score", tags[0].Confidence).Msg("tagged image")
	}
	observability.AddPipeline("tag", "tagged", sum.Tagged)
	observability.AddPipeline("tag", "missing", sum.Missing)
	observability.AddPipeline("tag", "failed", sum.Failed)
	return out, sum
}

// Softmax maps raw similarities to probabilities summing to 1.
func Softmax(xs []float64) ([]float64, error) {
	if len(xs) == 0 {
		return nil, fmt.Errorf("softmax of no scores: %w", domain.ErrMalformedInput)
	}
	m := math.Inf(-1)
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("non-finite score %v: %w", x, domain.ErrMalformedInput)
		}
		m = math.Max(m, x)
	}
	out := make([]float64, len(xs))
	var sum float64
	for i, x := range xs {
		out[i] = math.Exp(x - m) // shifted so the largest term is exp(0)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out, nil
}

// TopK returns the indices of the k largest values, descending. Ties keep
// the lower index first.
func TopK(xs []float64, k int) []int {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return xs[idx[a]] > xs[idx[b]] })
	if k < len(idx) {
		idx = idx[:k]
	}
	return idx
}
