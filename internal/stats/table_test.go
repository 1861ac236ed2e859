package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Emotion", "Accuracy", "Total"}
	rows := [][]string{
		{"Joy", "97.50%", "12"},
		{"Embarrassment", "8.00%", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	assert.Equal(t, []string{
		"Emotion       Accuracy Total",
		"Joy             97.50%    12",
		"Embarrassment    8.00%     3",
	}, formatTable(headers, rows, rightAlign))
}

func TestFormatTableWideRunes(t *testing.T) {
	assert.Equal(t, []string{"A    B", "喜び x"}, formatTable([]string{"A", "B"}, [][]string{{"喜び", "x"}}, nil))
}
