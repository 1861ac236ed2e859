package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlotSeries(t *testing.T) {
	var buf bytes.Buffer
	err := PlotSeries(&buf, "Test Plot", []Series{
		{Name: "A", Values: []float64{1, 2, 3, 2, 1}},
		{Name: "B", Values: []float64{1, 1, 2, 3, 4}},
	}, 12, 4)
	require.NoError(t, err)
	out := buf.String()
	for _, want := range []string{"Test Plot", scaleNote, "* A: min=1.00 max=3.00", "o B: min=1.00 max=4.00"} {
		assert.Contains(t, out, want)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// title + note + 2 legends + 4 rows + axis
	require.Len(t, lines, 9, out)
	assert.True(t, strings.HasPrefix(lines[4], " max | "), "unexpected top row: %q", lines[4])
}

func TestPlotSeriesSkipsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PlotSeries(&buf, "Empty", []Series{{Name: "A"}}, 20, 4))
	assert.Zero(t, buf.Len())
}

func TestPlotWidthFor(t *testing.T) {
	assert.Equal(t, 80-axisLabelWidth-len(axisSeparator), PlotWidthFor(80))
	assert.Equal(t, minPlotWidth, PlotWidthFor(0))
	assert.Equal(t, minPlotWidth, PlotWidthFor(5))
}

func TestResample(t *testing.T) {
	assert.Equal(t, []float64{2, 6}, resample([]float64{1, 3, 5, 7}, 2))
	assert.Equal(t, []float64{0, 5, 10}, resample([]float64{0, 10}, 3))
}
