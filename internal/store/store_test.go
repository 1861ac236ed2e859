package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/decodeur/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "decodeur.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func testSession(id string, level int, start time.Time, results ...bool) *model.Session {
	ids := []string{"joy", "fear", "anger"}
	sess := &model.Session{
		ID:         id,
		Mode:       model.ModeQuiz,
		Difficulty: level,
		StartedAt:  start,
	}
	for i, correct := range results {
		emotionID := ids[i%len(ids)]
		q := model.Question{Emotion: model.Emotion{ID: emotionID}, CorrectAnswerID: emotionID}
		selected := emotionID
		if !correct {
			selected = "other"
		}
		sess.Questions = append(sess.Questions, q)
		sess.Answers = append(sess.Answers, model.Answer{
			Question:         q,
			SelectedAnswerID: selected,
			CorrectAnswerID:  emotionID,
			IsCorrect:        correct,
			ResponseTimeMs:   int64(100 * (i + 1)),
		})
	}
	sess.CurrentQuestionIndex = len(sess.Questions)
	return sess
}

func TestLoadSnapshotDefaultsWhenEmpty(t *testing.T) {
	st := openTestStore(t)
	snap := st.LoadSnapshot(context.Background())
	assert.Equal(t, SnapshotVersion, snap.Version)
	assert.True(t, snap.User.IsAnonymous)
	assert.Equal(t, 70, snap.User.Preferences.AudioVolume)
	assert.Zero(t, snap.Progress.TotalQuestions)
	assert.NotNil(t, snap.Progress.EmotionStats)
}

func TestSnapshotRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	last := time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC)

	snap := DefaultSnapshot()
	snap.User.Name = "Ada"
	snap.Progress.TotalQuestions = 42
	snap.Progress.CorrectAnswers = 30
	snap.Progress.StreakCount = 3
	snap.Progress.BestStreak = 7
	snap.Progress.AverageResponseTimeMs = 1523.25
	snap.Progress.EmotionStats["joy"] = model.EmotionStat{Correct: 4, Total: 5, AverageTimeMs: 900.5}
	snap.Progress.Badges = []string{"first-session"}
	snap.Progress.LastSessionDate = &last
	require.NoError(t, st.SaveSnapshot(ctx, snap))

	got := st.LoadSnapshot(ctx)
	assert.Equal(t, "Ada", got.User.Name)
	assert.Equal(t, 42, got.Progress.TotalQuestions)
	assert.Equal(t, 30, got.Progress.CorrectAnswers)
	assert.Equal(t, 3, got.Progress.StreakCount)
	assert.Equal(t, 7, got.Progress.BestStreak)
	assert.Equal(t, 1523.25, got.Progress.AverageResponseTimeMs)
	assert.Equal(t, snap.Progress.EmotionStats, got.Progress.EmotionStats)
	assert.Equal(t, []string{"first-session"}, got.Progress.Badges)
	require.NotNil(t, got.Progress.LastSessionDate)
	assert.True(t, last.Equal(*got.Progress.LastSessionDate))
}

func TestLoadSnapshotFallsBackOnCorruptValue(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	_, err := st.db.Exec(`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)`, StorageKey, "{not json", "x")
	require.NoError(t, err)
	snap := st.LoadSnapshot(ctx)
	assert.Zero(t, snap.Progress.TotalQuestions)

	_, err = st.db.Exec(`UPDATE kv SET value = ? WHERE key = ?`, `{"version": 99}`, StorageKey)
	require.NoError(t, err)
	snap = st.LoadSnapshot(ctx)
	assert.Equal(t, SnapshotVersion, snap.Version)
}

func TestCompleteSessionUpdatesProgressAndHistory(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	start := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)

	sess := testSession("s1", 1, start, true, true, false, true)
	before, after, err := st.CompleteSession(ctx, sess, start.Add(time.Minute))
	require.NoError(t, err)
	assert.Zero(t, before.TotalQuestions)
	assert.Equal(t, 4, after.TotalQuestions)
	assert.Equal(t, 3, after.CorrectAnswers)
	assert.Equal(t, 1, after.StreakCount)

	stored := st.LoadSnapshot(ctx).Progress
	assert.Equal(t, after.TotalQuestions, stored.TotalQuestions)
	assert.Equal(t, after.EmotionStats, stored.EmotionStats)

	sessions, err := st.ListSessions(ctx, model.StatsConfig{})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "s1", sessions[0].SessionID)
	assert.Equal(t, 4, sessions[0].Total)
	assert.Equal(t, 3, sessions[0].Correct)
	assert.Equal(t, 2, sessions[0].BestRun)
	assert.Equal(t, int64(1000), sessions[0].ResponseTimeMs)

	aggs, err := st.ListEmotionAggregatesForSessions(ctx, []string{"s1"})
	require.NoError(t, err)
	byID := map[string]model.EmotionAggregate{}
	for _, a := range aggs {
		byID[a.EmotionID] = a
	}
	assert.Equal(t, 2, byID["joy"].Total)
	assert.Equal(t, 2, byID["joy"].Correct)
	assert.Equal(t, 0, byID["anger"].Correct)
}

func TestCompleteSessionRejectsEmpty(t *testing.T) {
	st := openTestStore(t)
	_, _, err := st.CompleteSession(context.Background(), &model.Session{ID: "x"}, time.Now())
	assert.True(t, errors.Is(err, ErrEmptySession))
}

func TestCompleteSessionRejectsIncomplete(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	sess := testSession("partial", 1, time.Now(), true, false, true)
	sess.Answers = sess.Answers[:1]
	sess.CurrentQuestionIndex = 1
	sess.IsActive = true

	_, _, err := st.CompleteSession(ctx, sess, time.Now())
	assert.True(t, errors.Is(err, ErrSessionIncomplete))

	snap := st.LoadSnapshot(ctx)
	assert.Zero(t, snap.Progress.TotalQuestions)
	sessions, err := st.ListSessions(ctx, model.StatsConfig{})
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestResetProgressKeepsUser(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	_, err := st.UpdateUser(ctx, func(u *model.User) {
		u.Name = "Lin"
		u.IsAnonymous = false
	})
	require.NoError(t, err)
	_, _, err = st.CompleteSession(ctx, testSession("s1", 1, time.Now(), true), time.Now())
	require.NoError(t, err)

	require.NoError(t, st.ResetProgress(ctx))
	snap := st.LoadSnapshot(ctx)
	assert.Zero(t, snap.Progress.TotalQuestions)
	assert.Empty(t, snap.Progress.Badges)
	assert.Equal(t, "Lin", snap.User.Name)

	sessions, err := st.ListSessions(ctx, model.StatsConfig{})
	require.NoError(t, err)
	assert.Empty(t, sessions)
	weak, err := st.GetWeakEmotions(ctx, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, weak)
	aggs, err := st.ListEmotionAggregatesForSessions(ctx, []string{"s1"})
	require.NoError(t, err)
	assert.Empty(t, aggs)
}

func TestListSessionsFilters(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for i, level := range []int{1, 2, 1} {
		start := base.Add(time.Duration(i) * 24 * time.Hour)
		_, _, err := st.CompleteSession(ctx, testSession(string(rune('a'+i)), level, start, true, false), start.Add(time.Minute))
		require.NoError(t, err)
	}

	all, err := st.ListSessions(ctx, model.StatsConfig{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	level1, err := st.ListSessions(ctx, model.StatsConfig{Level: 1})
	require.NoError(t, err)
	assert.Len(t, level1, 2)

	since := base.Add(36 * time.Hour)
	recent, err := st.ListSessions(ctx, model.StatsConfig{Since: &since})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "c", recent[0].SessionID)

	weak, err := st.GetWeakEmotions(ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, weak, 2)

	per, err := st.ListEmotionStatsForSessions(ctx, []string{"a", "b"}, []string{"fear"})
	require.NoError(t, err)
	assert.Equal(t, 1, per["a"]["fear"].Total)
	assert.Equal(t, 0, per["b"]["fear"].Correct)
}
