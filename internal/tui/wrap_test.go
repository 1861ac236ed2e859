package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/verte-zerg/decodeur/internal/model"
)

func TestWrapTextBreaksOnWords(t *testing.T) {
	assert.Equal(t, []string{"Narrowed eyes", "with smile", "wrinkles"}, WrapText("Narrowed eyes with smile wrinkles", 14))
}

func TestWrapTextSplitsLongWords(t *testing.T) {
	assert.Equal(t, []string{"ab", "abcd", "efgh"}, WrapText("ab abcdefgh", 4))
}

func TestWrapTextNoWidth(t *testing.T) {
	assert.Equal(t, []string{"one two"}, WrapText("  one   two ", 0))
	assert.Nil(t, WrapText("   ", 10))
}

func TestWrapTextWideRunes(t *testing.T) {
	assert.Equal(t, []string{"喜び", "驚き"}, WrapText("喜び 驚き", 4))
}

func TestWrapItemIndentsContinuation(t *testing.T) {
	assert.Equal(t, []string{"- one two", "  three"}, WrapItem("- ", "one two three", 9))
}

func TestCueLinesOrder(t *testing.T) {
	e := model.Emotion{FacialCues: map[string]string{
		"mouth":    "smile",
		"posture":  "upright",
		"eyebrows": "raised",
		"chin":     "up",
	}}
	want := []string{"Eyebrows: raised", "Mouth: smile", "Chin: up", "Posture: upright"}
	assert.Equal(t, want, CueLines(e))
}

func TestFitLines(t *testing.T) {
	assert.Equal(t, "ab \ncd ", FitLines("ab\ncd\nef", 3, 2))
	assert.Equal(t, "x \n  \n  ", FitLines("x", 2, 3))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Embar...", Truncate("Embarrassment", 8))
	assert.Equal(t, "Joy", Truncate("Joy", 8))
}
