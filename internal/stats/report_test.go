package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/decodeur/internal/model"
	"github.com/verte-zerg/decodeur/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "decodeur.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	ids := []string{"s1", "s2", "s3"}
	for i, id := range ids {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		sess := &model.Session{ID: id, Mode: model.ModeQuiz, Difficulty: 1, StartedAt: start}
		for j, emotionID := range []string{"joy", "fear"} {
			q := model.Question{Emotion: model.Emotion{ID: emotionID}, CorrectAnswerID: emotionID}
			sess.Questions = append(sess.Questions, q)
			sess.Answers = append(sess.Answers, model.Answer{
				Question:         q,
				SelectedAnswerID: emotionID,
				CorrectAnswerID:  emotionID,
				IsCorrect:        j == 0,
				ResponseTimeMs:   500,
			})
		}
		sess.CurrentQuestionIndex = len(sess.Questions)
		_, _, err := st.CompleteSession(ctx, sess, start.Add(30*time.Second))
		require.NoError(t, err)
	}

	report, err := BuildReport(ctx, st, model.StatsConfig{Last: 2, CurveWindow: 1})
	require.NoError(t, err)
	require.Len(t, report.Sessions, 2)
	assert.Equal(t, "s2", report.Sessions[0].SessionID)
	assert.Equal(t, "s3", report.Sessions[1].SessionID)
	assert.Equal(t, []string{"s3"}, report.WindowSessionIDs)
	assert.Len(t, report.EmotionAggsAll, 2)
	assert.Len(t, report.CurveEmotions, 2)
	assert.Equal(t, 1, report.PerSession["s2"]["fear"].Total)
}
