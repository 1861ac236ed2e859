package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Series represents a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisLabelWidth      = 4
	axisSeparator       = " | "
	terminalWidthBackup = 80
	scaleNote           = "Each series is scaled to its own min/max."
)

var seriesMarkers = []rune{'*', 'o', '+', 'x', '#'}

// PlotSeries renders a text plot of the series. Each series is scaled to its
// own range and drawn with its own marker; later series never overwrite
// earlier ones.
func PlotSeries(w io.Writer, title string, series []Series, width, height int) error {
	series = nonEmpty(series)
	if len(series) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	width = max(width, minPlotWidth)

	grid := make([][]rune, height)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", width))
	}

	header := []string{}
	if title != "" {
		header = append(header, title)
	}
	header = append(header, scaleNote)
	for i, s := range series {
		values := resample(s.Values, width)
		lo, hi := minMax(s.Values)
		header = append(header, fmt.Sprintf("%c %s: min=%.2f max=%.2f", seriesMarkers[i%len(seriesMarkers)], s.Name, lo, hi))
		if hi-lo < 1e-9 {
			lo--
			hi++
		}
		marker := seriesMarkers[i%len(seriesMarkers)]
		for x, v := range values {
			y := rowFor(v, lo, hi, height)
			if grid[y][x] == ' ' {
				grid[y][x] = marker
			}
		}
	}

	lines := header
	for y, row := range grid {
		lines = append(lines, runewidth.FillLeft(axisLabel(y, height), axisLabelWidth)+axisSeparator+string(row))
	}
	lines = append(lines, strings.Repeat(" ", axisLabelWidth)+" +"+strings.Repeat("-", width+1), "")
	return writeLines(w, lines)
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	return max(totalWidth-axisLabelWidth-runewidth.StringWidth(axisSeparator), minPlotWidth)
}

func plotWidthOrAuto(totalWidth int) int {
	if totalWidth <= 0 {
		return 0
	}
	return PlotWidthFor(totalWidth)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func axisLabel(y, height int) string {
	switch {
	case y == 0:
		return "max"
	case y == height-1:
		return "min"
	default:
		return ""
	}
}

func rowFor(v, lo, hi float64, height int) int {
	if height <= 1 {
		return 0
	}
	pos := (v - lo) / (hi - lo)
	return clamp(int(math.Round((1-pos)*float64(height-1))), 0, height-1)
}

func nonEmpty(series []Series) []Series {
	out := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// resample stretches or averages values onto width columns.
func resample(values []float64, width int) []float64 {
	out := make([]float64, width)
	n := len(values)
	switch {
	case n == 0:
		return out
	case n == 1:
		for i := range out {
			out[i] = values[0]
		}
	case n > width:
		for i := range out {
			start := i * n / width
			end := max((i+1)*n/width, start+1)
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	default:
		for i := range out {
			pos := 0.0
			if width > 1 {
				pos = float64(i) * float64(n-1) / float64(width-1)
			}
			idx := int(pos)
			if idx >= n-1 {
				out[i] = values[n-1]
				continue
			}
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}
