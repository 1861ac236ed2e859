package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/verte-zerg/decodeur/internal/model"
)

func TestTopEmotionsByFrequency(t *testing.T) {
	aggs := []model.EmotionAggregate{
		{EmotionID: "joy", Correct: 3, Total: 4},
		{EmotionID: "anger", Correct: 2, Total: 4},
		{EmotionID: "fear", Correct: 1, Total: 1},
	}
	assert.Equal(t, []string{"anger", "joy"}, TopEmotionsByFrequency(aggs, 2))
	assert.Nil(t, TopEmotionsByFrequency(aggs, 0))
}

func TestSelectWeakEmotions(t *testing.T) {
	aggs := []model.EmotionAggregate{
		{EmotionID: "joy", Correct: 4, Total: 4},
		{EmotionID: "fear", Correct: 1, Total: 4},
		{EmotionID: "anger", Correct: 1, Total: 4},
		{EmotionID: "pride", Correct: 0, Total: 0},
	}
	assert.Equal(t, []string{"anger", "fear"}, SelectWeakEmotions(aggs, 2))
	all := SelectWeakEmotions(aggs, 0)
	assert.Len(t, all, 4)
	assert.Equal(t, []string{"joy", "pride"}, all[2:])
}
