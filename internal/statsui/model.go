// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/decodeur/internal/model"
	"github.com/verte-zerg/decodeur/internal/stats"
	"github.com/verte-zerg/decodeur/internal/tui"
)

const (
	tabOverview = iota
	tabEmotionTable
	tabCurves
)

const plotHeight = 8

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	source stats.HistorySource
	cfg    model.StatsConfig
	names  map[string]string

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	viewports []viewport.Model
	table     table.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a stats UI model. names maps emotion ids to display
// names.
func NewModel(src stats.HistorySource, cfg model.StatsConfig, names map[string]string) *Model {
	m := &Model{
		source: src,
		cfg:    cfg,
		names:  names,
		tabs:   []string{"Overview", "Emotion Table", "Curves"},
	}
	m.filterInputs = []textinput.Model{
		newFilterInput("Level (0 = all): "),
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Last: "),
		newFilterInput("Curve window: "),
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.table = table.New(table.WithColumns(tableColumns()), table.WithHeight(1))
	m.table.SetStyles(tableStyles())
	m.refreshReport()
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
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=", "+":
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			return m, nil
		case "-":
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			return m, nil
		case "/":
			return m.startFilter()
		}
		if m.activeTab == tabEmotionTable {
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := tui.FitLines(m.renderHeader(), m.width, headerHeight)
	body := tui.FitLines(m.renderBody(), m.width, bodyHeight)
	footer := tui.FitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	return input
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = max(lipgloss.Height(activeNavStyle.Render("X")), 1) + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(m.height-headerHeight-footerHeight, 1)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.table.SetWidth(m.width)
	m.table.SetHeight(max(bodyHeight-1, 1))
	for i := range m.filterInputs {
		m.filterInputs[i].Width = max(10, m.width-lipgloss.Width(m.filterInputs[i].Prompt)-2)
	}
}

func (m *Model) moveTab(delta int) {
	m.activeTab = (m.activeTab + delta + len(m.tabs)) % len(m.tabs)
	if m.activeTab == tabEmotionTable {
		m.table.Focus()
	} else {
		m.table.Blur()
	}
}

func (m *Model) renderHeader() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	tabs := tui.PadLines(lipgloss.JoinHorizontal(lipgloss.Top, parts...), m.width)
	return tabs + "\n" + headerStyle.Render(tui.Truncate(m.filterSummary(), m.width))
}

func (m *Model) filterSummary() string {
	level := "all"
	if m.cfg.Level > 0 {
		level = strconv.Itoa(m.cfg.Level)
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	return fmt.Sprintf("Settings: level=%s  since=%s  last=%s  window=%d", level, since, last, m.cfg.CurveWindow)
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	help := headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Settings: /  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderBody() string {
	if m.filterMode {
		lines := []string{"Settings (enter to apply, esc to cancel)"}
		for _, input := range m.filterInputs {
			lines = append(lines, input.View())
		}
		if m.filterError != "" {
			lines = append(lines, errorStyle.Render(m.filterError))
		}
		return strings.Join(lines, "\n")
	}
	if m.activeTab == tabEmotionTable {
		if len(m.report.EmotionAggsAll) == 0 {
			return "No emotion stats found."
		}
		return m.table.View()
	}
	return m.viewports[m.activeTab].View()
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.source, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.report = stats.Report{}
	} else {
		m.errMsg = ""
		m.report = report
	}
	m.table.SetRows(tableRows(m.report.EmotionAggsAll, m.names))
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if m.errMsg != "" {
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report, m.names, width))
	m.viewports[tabCurves].SetContent(renderCurves(m.report, m.names, m.cfg.CurveWindow, width))
}

func renderOverview(report stats.Report, names map[string]string, width int) string {
	sessions := report.Sessions
	if len(sessions) == 0 {
		return "No sessions found."
	}
	answers, correct, best := 0, 0, 0
	var totalTime int64
	for _, s := range sessions {
		answers += s.Total
		correct += s.Correct
		totalTime += s.ResponseTimeMs
		best = max(best, s.BestRun)
	}
	acc, pace := stats.SessionMetrics(correct, answers, totalTime)
	avgTime := 0.0
	if answers > 0 {
		avgTime = float64(totalTime) / float64(answers)
	}
	cards := []string{
		metricCard("Sessions", strconv.Itoa(len(sessions))),
		metricCard("Answers", strconv.Itoa(answers)),
		metricCard("Accuracy", fmt.Sprintf("%.1f%%", acc*100)),
		metricCard("Avg Time", fmt.Sprintf("%.0f ms", avgTime)),
		metricCard("Pace", fmt.Sprintf("%.1f/min", pace)),
		metricCard("Best Run", strconv.Itoa(best)),
	}
	var summary string
	if width < 80 {
		summary = strings.Join(cards, "\n")
	} else {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[:3]...)
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3:]...)
		summary = lipgloss.JoinVertical(lipgloss.Left, row1, row2)
	}

	weak := stats.SelectWeakEmotions(report.EmotionAggsWindow, 3)
	if len(weak) == 0 {
		return summary
	}
	labels := make([]string, len(weak))
	for i, id := range weak {
		labels[i] = displayName(id, names)
	}
	return summary + "\n\n" + "Needs practice (recent): " + strings.Join(labels, ", ")
}

func metricCard(label, value string) string {
	return cardStyle.Render(cardTitleStyle.Render(label) + "\n" + cardValueStyle.Render(value))
}

func renderCurves(report stats.Report, names map[string]string, window, width int) string {
	if len(report.Sessions) == 0 {
		return "No sessions found."
	}
	var buf bytes.Buffer
	if err := stats.RenderCurvesWithSize(&buf, report.Sessions, window, width, plotHeight); err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	labels := make([]string, len(report.CurveEmotions))
	for i, id := range report.CurveEmotions {
		labels[i] = displayName(id, names)
	}
	if len(labels) > 0 {
		buf.WriteString(headerStyle.Render("Most practiced: "+strings.Join(labels, ", ")) + "\n")
	}
	if err := stats.RenderEmotionCurves(&buf, report.Sessions, report.PerSession, report.CurveEmotions, window, width, plotHeight); err != nil {
		return fmt.Sprintf("Failed to render emotion curves: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func tableColumns() []table.Column {
	return []table.Column{
		{Title: "Emotion", Width: 16},
		{Title: "Accuracy", Width: 9},
		{Title: "Avg Time (ms)", Width: 14},
		{Title: "Correct", Width: 7},
		{Title: "Total", Width: 6},
	}
}

func tableRows(aggs []model.EmotionAggregate, names map[string]string) []table.Row {
	_, formatted := stats.EmotionTableRows(aggs, names)
	rows := make([]table.Row, len(formatted))
	for i, r := range formatted {
		rows[i] = table.Row(r)
	}
	return rows
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.filterInputs[0].SetValue(strconv.Itoa(m.cfg.Level))
	m.filterInputs[1].SetValue("")
	if m.cfg.Since != nil {
		m.filterInputs[1].SetValue(m.cfg.Since.Format("2006-01-02"))
	}
	m.filterInputs[2].SetValue(strconv.Itoa(m.cfg.Last))
	m.filterInputs[3].SetValue(strconv.Itoa(m.cfg.CurveWindow))
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		return m, nil
	case tea.KeyEnter:
		cfg, err := parseFilter(m.filterInputs)
		if err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.cfg = cfg
		m.filterMode = false
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	m.filterIndex = (idx + count) % count
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func parseFilter(inputs []textinput.Model) (model.StatsConfig, error) {
	var cfg model.StatsConfig
	atoi := func(s string) (int, bool) {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, true
		}
		n, err := strconv.Atoi(s)
		return n, err == nil && n >= 0
	}
	level, ok := atoi(inputs[0].Value())
	if !ok {
		return cfg, fmt.Errorf("invalid level (use 0 or a positive integer)")
	}
	cfg.Level = level
	if raw := strings.TrimSpace(inputs[1].Value()); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return cfg, fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		cfg.Since = &parsed
	}
	last, ok := atoi(inputs[2].Value())
	if !ok {
		return cfg, fmt.Errorf("invalid last value (use 0 or a positive integer)")
	}
	cfg.Last = last
	window, ok := atoi(inputs[3].Value())
	if !ok || window < 1 {
		return cfg, fmt.Errorf("invalid curve window (use integer >= 1)")
	}
	cfg.CurveWindow = window
	return cfg, nil
}

func displayName(id string, names map[string]string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return id
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	return (n/5 + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}
