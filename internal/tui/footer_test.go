package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/decodeur/internal/model"
)

func TestRenderFooterFormats(t *testing.T) {
	m := &Model{
		theme: NewTheme(false),
		sess: &model.Session{
			Questions: make([]model.Question, 4),
			Answers: []model.Answer{
				{IsCorrect: false},
				{IsCorrect: true},
			},
			CurrentQuestionIndex: 2,
			IsActive:             true,
		},
		phase:   phaseQuestion,
		elapsed: 75 * time.Second,
	}
	out := m.renderFooter()
	require.NotEmpty(t, out)
	for _, want := range []string{"Question 3/4", "Score 1", "Streak 1", "01:15", "h hints"} {
		assert.Contains(t, out, want)
	}

	m.reduced = true
	assert.NotContains(t, m.renderFooter(), "01:15")
}
