package statsui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/decodeur/internal/model"
)

type fakeSource struct {
	sessions []model.SessionAggregate
	aggs     []model.EmotionAggregate
	err      error
	lastCfg  model.StatsConfig
}

func (f *fakeSource) ListSessions(_ context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	f.lastCfg = cfg
	return f.sessions, f.err
}

func (f *fakeSource) ListEmotionAggregatesForSessions(context.Context, []string) ([]model.EmotionAggregate, error) {
	return f.aggs, nil
}

func (f *fakeSource) ListEmotionStatsForSessions(context.Context, []string, []string) (map[string]map[string]model.EmotionAggregate, error) {
	return map[string]map[string]model.EmotionAggregate{}, nil
}

func testSource() *fakeSource {
	return &fakeSource{
		sessions: []model.SessionAggregate{
			{SessionID: "a", Correct: 3, Total: 4, ResponseTimeMs: 4000, BestRun: 3},
			{SessionID: "b", Correct: 4, Total: 4, ResponseTimeMs: 2000, BestRun: 4},
		},
		aggs: []model.EmotionAggregate{
			{EmotionID: "joy", Correct: 4, Total: 4, ResponseTimeMs: 2000},
			{EmotionID: "fear", Correct: 3, Total: 4, ResponseTimeMs: 4000},
		},
	}
}

func TestOverviewShowsMetricsAndWeakEmotions(t *testing.T) {
	m := NewModel(testSource(), model.StatsConfig{CurveWindow: 1}, map[string]string{"fear": "Fear"})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	view := m.View()
	for _, want := range []string{"Overview", "Sessions", "87.5%", "Best Run", "Needs practice (recent): Fear, joy"} {
		assert.Contains(t, view, want)
	}
	assert.Len(t, strings.Split(view, "\n"), 30)
}

func TestTabsAndTable(t *testing.T) {
	m := NewModel(testSource(), model.StatsConfig{CurveWindow: 1}, nil)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	require.Equal(t, tabEmotionTable, m.activeTab)
	rows := m.table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "fear", rows[0][0])

	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, tabCurves, m.activeTab, "left from the first tab wraps to curves")
	assert.Contains(t, m.View(), "Learning Curves")
}

func TestCurveWindowKeys(t *testing.T) {
	m := NewModel(testSource(), model.StatsConfig{CurveWindow: 1}, nil)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("=")})
	assert.Equal(t, 5, m.cfg.CurveWindow)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("=")})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("-")})
	assert.Equal(t, 5, m.cfg.CurveWindow)
}

func TestFilterForm(t *testing.T) {
	src := testSource()
	m := NewModel(src, model.StatsConfig{CurveWindow: 1}, nil)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	require.True(t, m.filterMode)
	m.filterInputs[0].SetValue("2")
	m.filterInputs[1].SetValue("2026-01-05")
	m.filterInputs[2].SetValue("10")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, m.filterMode, "filter error %q", m.filterError)
	assert.Equal(t, 2, src.lastCfg.Level)
	assert.NotNil(t, src.lastCfg.Since)
	assert.Equal(t, 10, m.cfg.Last)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	m.filterInputs[3].SetValue("0")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.filterMode)
	assert.Contains(t, m.filterError, "curve window")
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.filterMode)
}

func TestLoadErrorIsShown(t *testing.T) {
	src := testSource()
	src.err = errors.New("db locked")
	m := NewModel(src, model.StatsConfig{CurveWindow: 1}, nil)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	view := m.View()
	assert.Contains(t, view, "Failed to load stats.")
	assert.Contains(t, view, "db locked")
}
