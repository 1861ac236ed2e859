package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/decodeur/internal/model"
)

func TestSessionMetrics(t *testing.T) {
	acc, pace := SessionMetrics(7, 10, 60000)
	assert.InDelta(t, 0.7, acc, 1e-9)
	assert.InDelta(t, 10, pace, 1e-9)

	acc, pace = SessionMetrics(0, 0, 0)
	assert.Zero(t, acc)
	assert.Zero(t, pace)
}

func TestMovingAverage(t *testing.T) {
	assert.Equal(t, []float64{2, 3, 5, 7}, MovingAverage([]float64{2, 4, 6, 8}, 2))
	assert.Equal(t, []float64{1, 5}, MovingAverage([]float64{1, 5}, 1))
}

func TestSparkline(t *testing.T) {
	assert.Empty(t, Sparkline(nil))
	got := Sparkline([]float64{0, 50, 100})
	require.Len(t, got, 3)
	assert.Equal(t, byte(' '), got[0])
	assert.Equal(t, byte('@'), got[2])
	assert.Equal(t, "++", Sparkline([]float64{3, 3}))
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSummary(&buf, nil))
	assert.Contains(t, buf.String(), "No sessions found.")

	buf.Reset()
	sessions := []model.SessionAggregate{
		{SessionID: "a", Correct: 5, Total: 10, ResponseTimeMs: 30000, BestRun: 3},
		{SessionID: "b", Correct: 10, Total: 10, ResponseTimeMs: 60000, BestRun: 10},
	}
	require.NoError(t, RenderSummary(&buf, sessions))
	out := buf.String()
	for _, want := range []string{"Sessions: 2", "Answers: 20", "Avg Accuracy: 75.00%", "Avg Pace: 15.00 answers/min", "Best Run: 10"} {
		assert.Contains(t, out, want)
	}
}

func TestRenderEmotionTableUsesNames(t *testing.T) {
	var buf bytes.Buffer
	aggs := []model.EmotionAggregate{
		{EmotionID: "joy", Correct: 2, Total: 2, ResponseTimeMs: 1000},
		{EmotionID: "fear", Correct: 0, Total: 2, ResponseTimeMs: 3000},
	}
	require.NoError(t, RenderEmotionTable(&buf, aggs, map[string]string{"joy": "Joy"}))
	lines := strings.Split(buf.String(), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.True(t, strings.HasPrefix(lines[2], "fear"), "expected weakest first, got %q", lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "Joy"), "unexpected row %q", lines[3])
	assert.Contains(t, lines[3], "500.0")
}

func TestRenderProgress(t *testing.T) {
	last := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	p := model.Progress{
		TotalQuestions:        10,
		CorrectAnswers:        7,
		StreakCount:           2,
		BestStreak:            4,
		AverageResponseTimeMs: 1250,
		EmotionStats: map[string]model.EmotionStat{
			"joy": {Correct: 3, Total: 4, AverageTimeMs: 1000},
		},
		Badges:          []string{"first-session"},
		LastSessionDate: &last,
	}
	var buf bytes.Buffer
	err := RenderProgress(&buf, p, map[string]string{"joy": "Joy"}, func(id string) string {
		return strings.ToUpper(id)
	})
	require.NoError(t, err)
	out := buf.String()
	for _, want := range []string{"Accuracy: 70.00%", "Streak: 2 (best 4)", "Avg Response: 1250 ms", "Badges: FIRST-SESSION", "Joy", "75.00%"} {
		assert.Contains(t, out, want)
	}
}
