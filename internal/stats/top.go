package stats

import (
	"sort"

	"github.com/verte-zerg/decodeur/internal/model"
)

// TopEmotionsByFrequency returns the n most answered emotion ids.
func TopEmotionsByFrequency(aggs []model.EmotionAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	sorted := make([]model.EmotionAggregate, len(aggs))
	copy(sorted, aggs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Total == sorted[j].Total {
			return sorted[i].EmotionID < sorted[j].EmotionID
		}
		return sorted[i].Total > sorted[j].Total
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	out := make([]string, n)
	for i := range out {
		out[i] = sorted[i].EmotionID
	}
	return out
}
