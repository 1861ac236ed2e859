package tui

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/decodeur/internal/model"
	"github.com/verte-zerg/decodeur/internal/progress"
	"github.com/verte-zerg/decodeur/internal/session"
)

type fakeCatalog []model.Emotion

func (c fakeCatalog) ByLevel(level int) []model.Emotion {
	var out []model.Emotion
	for _, e := range c {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

type fakeRecorder struct {
	calls int
	err   error
	saved *model.Session
}

func (r *fakeRecorder) CompleteSession(_ context.Context, sess *model.Session, endedAt time.Time) (model.Progress, model.Progress, error) {
	r.calls++
	r.saved = sess
	if r.err != nil {
		return model.Progress{}, model.Progress{}, r.err
	}
	before := progress.New()
	return before, progress.Apply(before, sess.Answers, endedAt), nil
}

type countingNotifier struct {
	correct, incorrect int
	spoken             []string
}

func (n *countingNotifier) NotifyCorrect()    { n.correct++ }
func (n *countingNotifier) NotifyIncorrect()  { n.incorrect++ }
func (n *countingNotifier) Speak(text string) { n.spoken = append(n.spoken, text) }

func testCatalog() fakeCatalog {
	return fakeCatalog{
		{ID: "joy", Name: "Joy", Level: 1, FacialCues: map[string]string{"mouth": "smile"}, KeyIndicators: []string{"eye wrinkles"}, Tips: "Look at the eyes."},
		{ID: "fear", Name: "Fear", Level: 1, FacialCues: map[string]string{"eyes": "wide"}, CommonMistakes: []string{"Confused with surprise"}},
		{ID: "anger", Name: "Anger", Level: 1, FacialCues: map[string]string{"eyebrows": "lowered"}},
		{ID: "sadness", Name: "Sadness", Level: 1, FacialCues: map[string]string{"mouth": "down"}},
	}
}

func newTestModel(t *testing.T, mode model.Mode, rec Recorder, n *countingNotifier) *Model {
	t.Helper()
	engine := session.NewEngine(testCatalog(), rand.New(rand.NewSource(7)))
	m, err := NewModel(Options{
		Config:   model.Config{Mode: mode, Level: 1, Questions: 2},
		Level:    model.LevelInfo{Level: 1, Name: "Beginner"},
		Engine:   engine,
		Recorder: rec,
		Notifier: n,
	})
	require.NoError(t, err)
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func correctIndex(m *Model) int {
	q, _ := m.sess.Current()
	for i, opt := range q.Options {
		if opt.ID == q.CorrectAnswerID {
			return i
		}
	}
	return -1
}

func TestQuizFlowRecordsSession(t *testing.T) {
	rec := &fakeRecorder{}
	n := &countingNotifier{}
	m := newTestModel(t, model.ModeQuiz, rec, n)
	assert.False(t, m.showHint, "hints start hidden in quiz mode")

	idx := correctIndex(m)
	m.Update(key(string(rune('1' + idx))))
	require.Equal(t, phaseFeedback, m.phase)
	assert.Contains(t, m.View(), "Correct!")
	m.Update(key("enter"))
	require.Equal(t, phaseQuestion, m.phase)
	require.Equal(t, 2, m.questionNumber())

	wrong := (correctIndex(m) + 1) % 4
	m.Update(key(string(rune('1' + wrong))))
	assert.Zero(t, rec.calls, "no save before summary")
	m.Update(key("enter"))
	require.Equal(t, phaseSummary, m.phase)
	require.Equal(t, 1, rec.calls)
	assert.Len(t, rec.saved.Answers, 2)
	assert.Equal(t, 1, n.correct)
	assert.Equal(t, 1, n.incorrect)
	assert.Len(t, n.spoken, 2)
	view := m.View()
	for _, want := range []string{"Score: 1/2", "Accuracy: 50.0%", "First Steps"} {
		assert.Contains(t, view, want)
	}

	m.Update(key("r"))
	assert.Equal(t, phaseQuestion, m.phase)
	assert.Empty(t, m.sess.Answers)
}

func TestArrowKeysAndEnterAnswer(t *testing.T) {
	m := newTestModel(t, model.ModeQuiz, nil, &countingNotifier{})
	m.Update(key("down"))
	m.Update(key("down"))
	require.Equal(t, 2, m.cursor)
	q, _ := m.sess.Current()
	m.Update(key("enter"))
	assert.Equal(t, q.Options[2].ID, m.lastAnswer.SelectedAnswerID)
}

func TestHintsToggle(t *testing.T) {
	m := newTestModel(t, model.ModeLearning, nil, &countingNotifier{})
	assert.True(t, m.showHint, "hints start shown in learning mode")
	m.Update(key("h"))
	assert.False(t, m.showHint)
	m.Update(key("9"))
	assert.Equal(t, phaseQuestion, m.phase, "out of range option is ignored")
}

func TestQuitAbandonsWithoutSaving(t *testing.T) {
	rec := &fakeRecorder{}
	m := newTestModel(t, model.ModeQuiz, rec, &countingNotifier{})
	m.Update(key("1"))
	_, cmd := m.Update(key("q"))
	assert.NotNil(t, cmd)
	assert.False(t, m.sess.IsActive)
	assert.Zero(t, rec.calls)
}

func TestQuitOnFinalFeedbackSavesSession(t *testing.T) {
	rec := &fakeRecorder{}
	m := newTestModel(t, model.ModeQuiz, rec, &countingNotifier{})
	m.Update(key("1"))
	m.Update(key("enter"))
	m.Update(key("1"))
	require.Equal(t, phaseFeedback, m.phase)
	require.True(t, m.sess.Complete())

	_, cmd := m.Update(key("q"))
	assert.NotNil(t, cmd)
	require.Equal(t, 1, rec.calls)
	assert.Len(t, rec.saved.Answers, 2)
}

func TestSaveErrorIsShown(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("disk full")}
	m := newTestModel(t, model.ModeQuiz, rec, &countingNotifier{})
	for i := 0; i < 2; i++ {
		m.Update(key("1"))
		m.Update(key("enter"))
	}
	assert.Contains(t, m.View(), "Progress was not saved: disk full")
}

func TestTickUpdatesElapsed(t *testing.T) {
	m := newTestModel(t, model.ModeQuiz, nil, &countingNotifier{})
	m.Update(tickMsg(m.askedAt.Add(3 * time.Second)))
	assert.Equal(t, 3*time.Second, m.elapsed)
}
