package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/decodeur/internal/model"
)

// WrapText breaks text into lines no wider than width display cells.
// Words wider than a line are split.
func WrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if width <= 0 {
		return []string{strings.Join(words, " ")}
	}
	var lines []string
	var line strings.Builder
	lineWidth := 0
	flush := func() {
		lines = append(lines, line.String())
		line.Reset()
		lineWidth = 0
	}
	for _, word := range words {
		for runewidth.StringWidth(word) > width {
			if lineWidth > 0 {
				flush()
			}
			head := runewidth.Truncate(word, width, "")
			if head == "" {
				head = string([]rune(word)[:1])
			}
			lines = append(lines, head)
			word = word[len(head):]
		}
		if word == "" {
			continue
		}
		w := runewidth.StringWidth(word)
		switch {
		case lineWidth == 0:
		case lineWidth+1+w > width:
			flush()
		default:
			line.WriteByte(' ')
			lineWidth++
		}
		line.WriteString(word)
		lineWidth += w
	}
	if lineWidth > 0 {
		flush()
	}
	return lines
}

// WrapItem wraps text behind a bullet, indenting continuation lines.
func WrapItem(bullet, text string, width int) []string {
	indent := strings.Repeat(" ", runewidth.StringWidth(bullet))
	inner := width - runewidth.StringWidth(bullet)
	if width <= 0 {
		inner = 0
	}
	lines := WrapText(text, inner)
	for i := range lines {
		if i == 0 {
			lines[i] = bullet + lines[i]
			continue
		}
		lines[i] = indent + lines[i]
	}
	return lines
}

var featureOrder = []string{"eyebrows", "eyes", "cheeks", "nose", "mouth", "forehead"}

// CueLines returns "Feature: cue" lines for an emotion's facial cues in a
// stable top-to-bottom order.
func CueLines(e model.Emotion) []string {
	seen := map[string]bool{}
	lines := make([]string, 0, len(e.FacialCues))
	add := func(feature string) {
		cue, ok := e.FacialCues[feature]
		if !ok || seen[feature] {
			return
		}
		seen[feature] = true
		lines = append(lines, fmt.Sprintf("%s: %s", capitalize(feature), cue))
	}
	for _, feature := range featureOrder {
		add(feature)
	}
	rest := make([]string, 0)
	for feature := range e.FacialCues {
		if !seen[feature] {
			rest = append(rest, feature)
		}
	}
	sort.Strings(rest)
	for _, feature := range rest {
		add(feature)
	}
	return lines
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
