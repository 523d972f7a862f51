package files

import (
	"bytes"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"hotel_pipeline/internal/domain"
)

// ReadTags reads image_id, tags where tags is an object {tag: score}. Python
// dict quoting ({'pool': 0.4}) is accepted as well. Tags of one image come
// back ordered by score, highest first.
func ReadTags(path string) ([]domain.ImageTag, error) {
	t, err := readTable(path, "image_id", "tags")
	if err != nil {
		return nil, err
	}
	var out []domain.ImageTag
	for i := range t.rows {
		raw := t.get(i, "image_id")
		id, err := parseID(raw)
		if err != nil {
			return nil, t.rowErr(i, "image_id", raw)
		}
		scores, err := parseTagObject(t.get(i, "tags"))
		if err != nil {
			return nil, t.rowErr(i, "tags", t.get(i, "tags"))
		}
		tags := make([]domain.ImageTag, 0, len(scores))
		for name, s := range scores {
			tags = append(tags, domain.ImageTag{ImageID: id, Name: name, Confidence: s})
		}
		sort.Slice(tags, func(a, b int) bool {
			if tags[a].Confidence != tags[b].Confidence {
				return tags[a].Confidence > tags[b].Confidence
			}
			return tags[a].Name < tags[b].Name
		})
		out = append(out, tags...)
	}
	return out, nil
}

func parseTagObject(s string) (map[string]float64, error) {
	if s == "" {
		return map[string]float64{}, nil
	}
	var m map[string]float64
	if err := json.Unmarshal([]byte(s), &m); err == nil {
		return m, nil
	}
	if err := json.Unmarshal([]byte(strings.ReplaceAll(s, "'", `"`)), &m); err != nil {
		return nil, err
	}
	return m, nil
}

// WriteTags writes one row per image; the tags object keeps rank order.
func WriteTags(path string, results []domain.TaggedImage) error {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		obj, err := tagObject(r.Tags)
		if err != nil {
			return err
		}
		rows = append(rows, []string{strconv.FormatInt(r.ImageID, 10), obj})
	}
	return writeCSV(path, []string{"image_id", "tags"}, rows)
}

func tagObject(tags []domain.ImageTag) (string, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, t := range tags {
		if i > 0 {
			b.WriteString(", ")
		}
		k, err := json.Marshal(t.Name)
		if err != nil {
			return "", err
		}
		b.Write(k)
		b.WriteString(": ")
		b.WriteString(strconv.FormatFloat(t.Confidence, 'g', -1, 64))
	}
	b.WriteByte('}')
	return b.String(), nil
}
