// Package learnui provides the Bubble Tea emotion card browser.
package learnui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/decodeur/internal/audio"
	"github.com/verte-zerg/decodeur/internal/catalog"
	"github.com/verte-zerg/decodeur/internal/model"
	"github.com/verte-zerg/decodeur/internal/tui"
)

type viewMode int

const (
	viewGuided viewMode = iota
	viewList
)

var categoryCycle = []model.Category{"", model.CategoryPositive, model.CategoryNegative, model.CategoryNeutral}

// Options configures the card browser.
type Options struct {
	Emotions []model.Emotion
	Level    model.LevelInfo
	// Weak lists emotion ids weakest first, used by the weak-first ordering.
	Weak     []string
	Prefs    model.Preferences
	Notifier audio.Notifier
}

// Model implements the Bubble Tea card browser.
type Model struct {
	all      []model.Emotion
	level    model.LevelInfo
	weakRank map[string]int
	notifier audio.Notifier
	theme    tui.Theme

	cards   []model.Emotion
	index   int
	view    viewMode
	catIdx  int
	hints   bool
	weak    bool
	visited map[string]bool

	searching bool
	search    textinput.Model
	body      viewport.Model

	width  int
	height int
}

// NewModel constructs a card browser over the given emotions.
func NewModel(opts Options) *Model {
	if opts.Notifier == nil {
		opts.Notifier = audio.Nop{}
	}
	rank := make(map[string]int, len(opts.Weak))
	for i, id := range opts.Weak {
		rank[id] = i
	}
	input := textinput.New()
	input.Prompt = "Search: "
	input.Placeholder = "name or description"

	m := &Model{
		all:      append([]model.Emotion(nil), opts.Emotions...),
		level:    opts.Level,
		weakRank: rank,
		notifier: opts.Notifier,
		theme:    tui.NewTheme(opts.Prefs.HighContrast),
		hints:    true,
		visited:  map[string]bool{},
		search:   input,
		body:     viewport.New(0, 0),
	}
	m.refilter()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.refilter()
			return m, nil
		}
		return m, tea.Quit
	case "v":
		if m.view == viewGuided {
			m.view = viewList
		} else {
			m.view = viewGuided
		}
	case "c":
		m.catIdx = (m.catIdx + 1) % len(categoryCycle)
		m.refilter()
	case "h":
		m.hints = !m.hints
	case "w":
		m.weak = !m.weak
		m.refilter()
	case "s":
		if card, ok := m.current(); ok {
			m.notifier.Speak(card.Name)
		}
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "right", "n", "l":
		m.move(1)
	case "left", "p":
		m.move(-1)
	case "down", "j":
		if m.view == viewList {
			m.move(1)
			return m, nil
		}
		return m.scrollBody(msg)
	case "up", "k":
		if m.view == viewList {
			m.move(-1)
			return m, nil
		}
		return m.scrollBody(msg)
	case "enter":
		if m.view == viewList {
			m.view = viewGuided
		}
	default:
		if m.view == viewGuided {
			return m.scrollBody(msg)
		}
		return m, nil
	}
	m.markVisited()
	m.renderBody()
	return m, nil
}

func (m *Model) scrollBody(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.body, cmd = m.body.Update(msg)
	return m, cmd
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.refilter()
		return m, nil
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		m.refilter()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.refilter()
	return m, cmd
}

func (m *Model) move(delta int) {
	if len(m.cards) == 0 {
		return
	}
	m.index = (m.index + delta + len(m.cards)) % len(m.cards)
	m.body.GotoTop()
}

func (m *Model) current() (model.Emotion, bool) {
	if m.index < 0 || m.index >= len(m.cards) {
		return model.Emotion{}, false
	}
	return m.cards[m.index], true
}

func (m *Model) markVisited() {
	if m.view != viewGuided {
		return
	}
	if card, ok := m.current(); ok {
		m.visited[card.ID] = true
	}
}

// refilter rebuilds the visible cards, keeping the current card selected
// when it survives the filters.
func (m *Model) refilter() {
	keep := ""
	if card, ok := m.current(); ok {
		keep = card.ID
	}
	cards := catalog.FilterCategory(m.all, categoryCycle[m.catIdx])
	cards = catalog.Search(cards, m.search.Value())
	if m.weak {
		cards = weakFirst(cards, m.weakRank)
	}
	m.cards = cards
	m.index = 0
	for i, card := range cards {
		if card.ID == keep {
			m.index = i
			break
		}
	}
	m.markVisited()
	m.renderBody()
}

// weakFirst moves ranked emotions to the front in rank order; the rest keep
// their relative order.
func weakFirst(cards []model.Emotion, rank map[string]int) []model.Emotion {
	ranked := make([]model.Emotion, 0, len(cards))
	rest := make([]model.Emotion, 0, len(cards))
	for _, card := range cards {
		if _, ok := rank[card.ID]; ok {
			ranked = append(ranked, card)
			continue
		}
		rest = append(rest, card)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return rank[ranked[i].ID] < rank[ranked[j].ID]
	})
	return append(ranked, rest...)
}

func (m *Model) updateLayout() {
	_, bodyHeight, _ := m.layoutHeights()
	m.body.Width = m.width
	m.body.Height = bodyHeight
	m.search.Width = max(10, m.width-lipgloss.Width(m.search.Prompt)-2)
	m.renderBody()
}

func (m *Model) layoutHeights() (header, body, footer int) {
	header, footer = 2, 1
	if m.searching {
		footer++
	}
	body = max(m.height-header-footer, 1)
	return header, body, footer
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 0
	}
	return max(min(m.width-2, 90), 10)
}

func (m *Model) renderBody() {
	m.body.SetContent(m.renderCard())
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return m.renderHeader() + "\n" + m.renderMain(0) + "\n" + m.renderFooter()
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := tui.FitLines(m.renderHeader(), m.width, headerHeight)
	body := tui.FitLines(m.renderMain(bodyHeight), m.width, bodyHeight)
	footer := tui.FitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) renderMain(height int) string {
	if len(m.cards) == 0 {
		return m.theme.Muted.Render("No emotions match the current filters.")
	}
	if m.view == viewList {
		return m.renderList(height)
	}
	if height == 0 {
		return m.renderCard()
	}
	return m.body.View()
}

func (m *Model) renderHeader() string {
	title := fmt.Sprintf("Learn · Level %d", m.level.Level)
	if m.level.Name != "" {
		title += " · " + m.level.Name
	}
	if m.level.Description != "" {
		title += " · " + m.level.Description
	}
	category := "all"
	if c := categoryCycle[m.catIdx]; c != "" {
		category = string(c)
	}
	order := "catalog"
	if m.weak {
		order = "weak first"
	}
	settings := fmt.Sprintf("Category: %s  Order: %s  Visited: %d/%d", category, order, m.visitedCount(), len(m.all))
	if term := m.search.Value(); term != "" {
		settings += fmt.Sprintf("  Search: %q", term)
	}
	return m.theme.Title.Render(tui.Truncate(title, m.width)) + "\n" + m.theme.Muted.Render(tui.Truncate(settings, m.width))
}

func (m *Model) renderFooter() string {
	help := "←/→ cards  v list  c category  / search  h hints  w weak first  s speak  q quit"
	if m.view == viewList {
		help = "↑/↓ select  enter open  v guided  c category  / search  w weak first  q quit"
	}
	help = m.theme.Footer.Render(tui.Truncate(help, m.width))
	if m.searching {
		return m.search.View() + "\n" + help
	}
	return help
}

func (m *Model) renderList(height int) string {
	lines := make([]string, 0, len(m.cards))
	for i, card := range m.cards {
		mark := " "
		if m.visited[card.ID] {
			mark = "✓"
		}
		line := fmt.Sprintf("%s %-14s %-8s %s", mark, card.Name, card.Category, card.Description)
		line = tui.Truncate(line, m.contentWidth())
		if i == m.index {
			line = m.theme.Selected.Render(line)
		}
		lines = append(lines, line)
	}
	if height > 0 && len(lines) > height {
		start := min(max(m.index-height/2, 0), len(lines)-height)
		lines = lines[start : start+height]
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderCard() string {
	card, ok := m.current()
	if !ok {
		return ""
	}
	width := m.contentWidth()
	lines := []string{
		m.theme.Title.Render(card.Name) + m.theme.Muted.Render(fmt.Sprintf("  (%d/%d)", m.index+1, len(m.cards))),
		m.theme.Muted.Render(cardMeta(card)),
		"",
	}
	lines = append(lines, tui.WrapText(card.Description, width)...)
	lines = append(lines, "", m.theme.Accent.Render("Facial cues"))
	for _, cue := range tui.CueLines(card) {
		lines = append(lines, tui.WrapItem("  • ", cue, width)...)
	}
	if !m.hints {
		lines = append(lines, "", m.theme.Muted.Render("Hints hidden (h to show)"))
		return strings.Join(lines, "\n")
	}
	if len(card.KeyIndicators) > 0 {
		lines = append(lines, "", m.theme.Accent.Render("Key indicators"))
		for _, ind := range card.KeyIndicators {
			lines = append(lines, tui.WrapItem("  - ", ind, width)...)
		}
	}
	if card.Tips != "" {
		lines = append(lines, "", m.theme.Accent.Render("Tip"))
		lines = append(lines, tui.WrapItem("  ", card.Tips, width)...)
	}
	if len(card.CommonMistakes) > 0 {
		lines = append(lines, "", m.theme.Accent.Render("Common mistakes"))
		for _, mistake := range card.CommonMistakes {
			lines = append(lines, tui.WrapItem("  - ", mistake, width)...)
		}
	}
	return strings.Join(lines, "\n")
}

func cardMeta(card model.Emotion) string {
	parts := []string{string(card.Category)}
	if card.Intensity != "" {
		parts = append(parts, "intensity "+card.Intensity)
	}
	if card.Duration != "" {
		parts = append(parts, card.Duration)
	}
	return strings.Join(parts, " · ")
}

func (m *Model) visitedCount() int {
	return len(m.visited)
}
