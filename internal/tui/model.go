// Package tui provides the Bubble Tea quiz interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/decodeur/internal/audio"
	"github.com/verte-zerg/decodeur/internal/logging"
	"github.com/verte-zerg/decodeur/internal/model"
	"github.com/verte-zerg/decodeur/internal/progress"
	"github.com/verte-zerg/decodeur/internal/session"
)

// Recorder persists a completed session.
type Recorder interface {
	CompleteSession(ctx context.Context, sess *model.Session, endedAt time.Time) (before, after model.Progress, err error)
}

type phase int

const (
	phaseQuestion phase = iota
	phaseFeedback
	phaseSummary
)

type tickMsg time.Time

// Options configures a quiz Model.
type Options struct {
	Config   model.Config
	Level    model.LevelInfo
	Engine   *session.Engine
	Recorder Recorder
	Notifier audio.Notifier
	Prefs    model.Preferences
	Logger   logrus.FieldLogger
}

// Model implements the Bubble Tea quiz UI.
type Model struct {
	config   model.Config
	level    model.LevelInfo
	engine   *session.Engine
	recorder Recorder
	notifier audio.Notifier
	logger   logrus.FieldLogger
	theme    Theme
	reduced  bool
	now      func() time.Time

	width  int
	height int

	sess       *model.Session
	phase      phase
	cursor     int
	showHint   bool
	askedAt    time.Time
	elapsed    time.Duration
	lastAnswer model.Answer

	before    model.Progress
	after     model.Progress
	newBadges []string
	saveErr   error
}

// NewModel constructs a quiz TUI model and starts the first session.
func NewModel(opts Options) (*Model, error) {
	if opts.Notifier == nil {
		opts.Notifier = audio.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	m := &Model{
		config:   opts.Config,
		level:    opts.Level,
		engine:   opts.Engine,
		recorder: opts.Recorder,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		theme:    NewTheme(opts.Prefs.HighContrast),
		reduced:  opts.Prefs.ReducedMotion,
		now:      time.Now,
	}
	if err := m.startSession(); err != nil {
		return nil, err
	}
	return m, nil
}

// Session returns the session currently shown.
func (m *Model) Session() *model.Session {
	return m.sess
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.phase == phaseQuestion {
			m.elapsed = time.Time(msg).Sub(m.askedAt)
		}
		return m, m.tick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" || key == "q" || key == "esc" {
		switch {
		case m.phase == phaseFeedback && m.sess.Complete():
			m.finishSession()
		case m.phase != phaseSummary:
			m.sess.Abandon()
			m.logger.WithField("session_id", m.sess.ID).Info("session abandoned")
		}
		return m, tea.Quit
	}

	switch m.phase {
	case phaseQuestion:
		m.handleQuestionKey(key)
	case phaseFeedback:
		if key == "enter" || key == " " || key == "n" || key == "right" {
			m.advance()
		}
	case phaseSummary:
		if key == "r" {
			if err := m.startSession(); err != nil {
				m.logger.WithError(err).Error("failed to restart session")
				m.saveErr = err
			}
		}
	}
	return m, nil
}

func (m *Model) handleQuestionKey(key string) {
	q, ok := m.sess.Current()
	if !ok {
		return
	}
	switch key {
	case "h":
		m.showHint = !m.showHint
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(q.Options)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.answer(q, m.cursor)
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			idx := int(key[0] - '1')
			if idx < len(q.Options) {
				m.answer(q, idx)
			}
		}
	}
}

func (m *Model) answer(q model.Question, idx int) {
	responseMs := m.now().Sub(m.askedAt).Milliseconds()
	res, err := m.engine.Submit(m.sess, q.Options[idx].ID, responseMs)
	if err != nil {
		m.logger.WithError(err).Warn("answer rejected")
		return
	}
	m.lastAnswer = res.Answer
	m.cursor = idx
	m.phase = phaseFeedback
	if res.IsCorrect {
		m.notifier.NotifyCorrect()
	} else {
		m.notifier.NotifyIncorrect()
	}
	m.notifier.Speak(q.Emotion.Name)
}

func (m *Model) advance() {
	if !m.sess.Complete() {
		m.beginQuestion()
		return
	}
	m.finishSession()
}

func (m *Model) finishSession() {
	m.phase = phaseSummary
	if m.recorder == nil {
		return
	}
	before, after, err := m.recorder.CompleteSession(context.Background(), m.sess, m.now())
	if err != nil {
		m.logger.WithError(err).Error("failed to save session")
		m.saveErr = err
		return
	}
	m.before = before
	m.after = after
	m.newBadges = progress.NewBadges(before, after)
}

func (m *Model) startSession() error {
	sess, err := m.engine.Start(m.config.Mode, m.config.Level, m.config.Questions)
	if err != nil {
		return err
	}
	m.sess = sess
	m.saveErr = nil
	m.newBadges = nil
	m.logger.WithFields(logrus.Fields{
		"session_id": sess.ID,
		"mode":       sess.Mode,
		"level":      sess.Difficulty,
		"questions":  len(sess.Questions),
	}).Info("session started")
	m.beginQuestion()
	return nil
}

func (m *Model) beginQuestion() {
	m.phase = phaseQuestion
	m.cursor = 0
	m.showHint = m.sess.Mode == model.ModeLearning
	m.askedAt = m.now()
	m.elapsed = 0
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.sess == nil {
		return ""
	}
	var body string
	switch m.phase {
	case phaseSummary:
		body = m.renderSummary()
	case phaseFeedback:
		body = m.renderQuestion() + "\n\n" + m.renderFeedback()
	default:
		body = m.renderQuestion()
	}
	if m.width == 0 || m.height == 0 {
		return body + "\n" + m.renderFooter()
	}
	content := lipgloss.NewStyle().Width(m.contentWidth()).Render(body)
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	main := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footer := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, m.renderFooter())
	return main + "\n" + footer
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 0
	}
	return max(int(float64(m.width)*0.70), 1)
}

func (m *Model) renderQuestion() string {
	q, ok := m.currentOrLast()
	if !ok {
		return ""
	}
	width := m.contentWidth()
	lines := []string{
		m.theme.Title.Render(m.levelTitle()),
		m.theme.Muted.Render(fmt.Sprintf("Question %d of %d", m.questionNumber(), len(m.sess.Questions))),
		"",
		m.theme.Text.Render("Which emotion does this face show?"),
	}
	for _, cue := range CueLines(q.Emotion) {
		lines = append(lines, WrapItem("  • ", cue, width)...)
	}
	if m.showHint && m.phase == phaseQuestion {
		lines = append(lines, "", m.theme.Accent.Render("Hints"))
		for _, ind := range q.Emotion.KeyIndicators {
			lines = append(lines, WrapItem("  - ", ind, width)...)
		}
		if q.Emotion.Tips != "" {
			lines = append(lines, WrapItem("  ", q.Emotion.Tips, width)...)
		}
	}
	lines = append(lines, "")
	for i, opt := range q.Options {
		lines = append(lines, m.renderOption(i, opt, q))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderOption(i int, opt model.Emotion, q model.Question) string {
	label := fmt.Sprintf("%d. %s", i+1, opt.Name)
	if m.phase == phaseFeedback {
		switch {
		case opt.ID == q.CorrectAnswerID:
			return m.theme.Correct.Render("✓ " + label)
		case opt.ID == m.lastAnswer.SelectedAnswerID:
			return m.theme.Incorrect.Render("✗ " + label)
		default:
			return m.theme.Muted.Render("  " + label)
		}
	}
	if i == m.cursor {
		return m.theme.Selected.Render("> " + label)
	}
	return m.theme.Text.Render("  " + label)
}

func (m *Model) renderFeedback() string {
	a := m.lastAnswer
	e := a.Question.Emotion
	width := m.contentWidth()
	var lines []string
	if a.IsCorrect {
		lines = append(lines, m.theme.Correct.Render(fmt.Sprintf("Correct! That is %s.", e.Name)))
	} else {
		lines = append(lines, m.theme.Incorrect.Render(fmt.Sprintf("Not quite. That was %s.", e.Name)))
	}
	lines = append(lines, m.theme.Muted.Render(fmt.Sprintf("Answered in %.1fs", float64(a.ResponseTimeMs)/1000)))
	if e.Tips != "" {
		lines = append(lines, "")
		lines = append(lines, WrapItem("Tip: ", e.Tips, width)...)
	}
	if !a.IsCorrect && len(e.CommonMistakes) > 0 {
		lines = append(lines, "", m.theme.Accent.Render("Common mistakes"))
		for _, mistake := range e.CommonMistakes {
			lines = append(lines, WrapItem("  - ", mistake, width)...)
		}
	}
	next := "Press enter for the next question"
	if m.sess.Complete() {
		next = "Press enter to see your results"
	}
	lines = append(lines, "", m.theme.Muted.Render(next))
	return strings.Join(lines, "\n")
}

func (m *Model) renderSummary() string {
	total := len(m.sess.Answers)
	correct := m.sess.CorrectCount()
	acc := 0.0
	if total > 0 {
		acc = float64(correct) / float64(total) * 100
	}
	lines := []string{
		m.theme.Title.Render("Session complete"),
		m.theme.Muted.Render(m.levelTitle()),
		"",
		fmt.Sprintf("Score: %d/%d", correct, total),
		fmt.Sprintf("Accuracy: %.1f%%", acc),
		fmt.Sprintf("Best run: %d", progress.LongestRun(m.sess.Answers)),
	}
	if m.saveErr != nil {
		lines = append(lines, "", m.theme.Incorrect.Render("Progress was not saved: "+m.saveErr.Error()))
	} else if m.recorder != nil {
		lines = append(lines,
			fmt.Sprintf("Overall accuracy: %.1f%% over %d answers", progress.AccuracyRate(m.after), m.after.TotalQuestions),
			fmt.Sprintf("Streak: %d (best %d)", m.after.StreakCount, m.after.BestStreak),
		)
	}
	if len(m.newBadges) > 0 {
		lines = append(lines, "", m.theme.Accent.Render("New badges"))
		for _, id := range m.newBadges {
			label := id
			if def, ok := progress.BadgeByID(id); ok {
				label = fmt.Sprintf("%s: %s", def.Name, def.Description)
			}
			lines = append(lines, "  ★ "+label)
		}
	}
	lines = append(lines, "", m.theme.Muted.Render("r: new session  q: quit"))
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter() string {
	segments := []string{
		fmt.Sprintf("Question %d/%d", m.questionNumber(), len(m.sess.Questions)),
		fmt.Sprintf("Score %d", m.sess.CorrectCount()),
		fmt.Sprintf("Streak %d", progress.TrailingStreak(m.sess.Answers)),
	}
	if !m.reduced {
		segments = append(segments, formatElapsed(m.elapsed))
	}
	switch m.phase {
	case phaseQuestion:
		segments = append(segments, "1-4 answer · h hints · q quit")
	case phaseFeedback:
		segments = append(segments, "enter next · q quit")
	}
	return m.theme.Footer.Render(strings.Join(segments, "  "))
}

func (m *Model) currentOrLast() (model.Question, bool) {
	if q, ok := m.sess.Current(); ok && m.phase == phaseQuestion {
		return q, true
	}
	if len(m.sess.Answers) == 0 {
		return model.Question{}, false
	}
	return m.sess.Answers[len(m.sess.Answers)-1].Question, true
}

func (m *Model) questionNumber() int {
	if m.phase == phaseQuestion {
		return m.sess.CurrentQuestionIndex + 1
	}
	return len(m.sess.Answers)
}

func (m *Model) levelTitle() string {
	mode := "Quiz"
	if m.sess.Mode == model.ModeLearning {
		mode = "Learning"
	}
	if m.level.Name == "" {
		return fmt.Sprintf("%s · Level %d", mode, m.sess.Difficulty)
	}
	return fmt.Sprintf("%s · Level %d · %s", mode, m.sess.Difficulty, m.level.Name)
}

func formatElapsed(d time.Duration) string {
	secs := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
