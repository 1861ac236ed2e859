package stats

import (
	"sort"

	"github.com/verte-zerg/decodeur/internal/model"
)

// SelectWeakEmotions returns the ids of the lowest-accuracy emotions, weakest
// first. top <= 0 returns all of them.
func SelectWeakEmotions(aggs []model.EmotionAggregate, top int) []string {
	sorted := sortByAccuracy(aggs)
	if top <= 0 || top > len(sorted) {
		top = len(sorted)
	}
	out := make([]string, 0, top)
	for _, agg := range sorted[:top] {
		out = append(out, agg.EmotionID)
	}
	return out
}

func sortByAccuracy(aggs []model.EmotionAggregate) []model.EmotionAggregate {
	out := make([]model.EmotionAggregate, len(aggs))
	copy(out, aggs)
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := accuracy(out[i]), accuracy(out[j])
		if ai == aj {
			return out[i].EmotionID < out[j].EmotionID
		}
		return ai < aj
	})
	return out
}

// Emotions never answered count as fully accurate so they are not flagged.
func accuracy(agg model.EmotionAggregate) float64 {
	if agg.Total == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(agg.Total)
}
