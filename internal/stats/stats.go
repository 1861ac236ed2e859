// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/decodeur/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionMetrics computes accuracy (0..1) and answers per minute for a
// session. durationMs is the summed answer time.
func SessionMetrics(correct, total int, durationMs int64) (accuracy, perMinute float64) {
	if total > 0 {
		accuracy = float64(correct) / float64(total)
	}
	if durationMs > 0 {
		perMinute = float64(total) / (float64(durationMs) / 60000.0)
	}
	return accuracy, perMinute
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := minMax(values)
	if math.Abs(hi-lo) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	last := len(sparkChars) - 1
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(last)))
		b.WriteByte(sparkChars[clamp(idx, 0, last)])
	}
	return b.String()
}

// RenderSummary prints a summary block for sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var totalAcc, totalPace float64
	answers, best := 0, 0
	accs := make([]float64, len(sessions))
	for i, s := range sessions {
		acc, pace := SessionMetrics(s.Correct, s.Total, s.ResponseTimeMs)
		totalAcc += acc
		totalPace += pace
		answers += s.Total
		accs[i] = acc * 100
		if s.BestRun > best {
			best = s.BestRun
		}
	}
	count := float64(len(sessions))
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(sessions)),
		fmt.Sprintf("Answers: %d", answers),
		fmt.Sprintf("Avg Accuracy: %.2f%%", totalAcc/count*100),
		fmt.Sprintf("Avg Pace: %.2f answers/min", totalPace/count),
		fmt.Sprintf("Best Run: %d", best),
		fmt.Sprintf("Trend: %s", Sparkline(accs)),
		"",
	}
	return writeLines(w, lines)
}

// RenderCurves prints learning curves for accuracy and response time.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window int) error {
	return RenderCurvesWithSize(w, sessions, window, 0, defaultPlotHeight)
}

// RenderCurvesWithSize prints learning curves sized to a given total width.
func RenderCurvesWithSize(w io.Writer, sessions []model.SessionAggregate, window, totalWidth, height int) error {
	if len(sessions) == 0 {
		return nil
	}
	accs := make([]float64, len(sessions))
	times := make([]float64, len(sessions))
	for i, s := range sessions {
		acc, _ := SessionMetrics(s.Correct, s.Total, s.ResponseTimeMs)
		accs[i] = acc * 100
		if s.Total > 0 {
			times[i] = float64(s.ResponseTimeMs) / float64(s.Total)
		}
	}
	return PlotSeries(w, "Learning Curves", []Series{
		{Name: "Accuracy %", Values: MovingAverage(accs, window)},
		{Name: "Avg Time (ms)", Values: MovingAverage(times, window)},
	}, plotWidthOrAuto(totalWidth), height)
}

// RenderEmotionCurves prints per-emotion accuracy curves across sessions.
func RenderEmotionCurves(w io.Writer, sessions []model.SessionAggregate, perSession map[string]map[string]model.EmotionAggregate, emotionIDs []string, window, totalWidth, height int) error {
	if len(emotionIDs) == 0 || len(sessions) == 0 {
		return nil
	}
	for _, id := range emotionIDs {
		series := make([]float64, len(sessions))
		for i, s := range sessions {
			if agg, ok := perSession[s.SessionID][id]; ok && agg.Total > 0 {
				series[i] = float64(agg.Correct) / float64(agg.Total) * 100
			}
		}
		if err := PlotSeries(w, "Emotion "+id, []Series{
			{Name: "Accuracy %", Values: MovingAverage(series, window)},
		}, plotWidthOrAuto(totalWidth), height); err != nil {
			return err
		}
	}
	return nil
}

// RenderEmotionTable prints per-emotion aggregates, weakest first. names
// maps emotion ids to display names; missing ids print as-is.
func RenderEmotionTable(w io.Writer, aggs []model.EmotionAggregate, names map[string]string) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No emotion stats found.")
		return err
	}
	headers, rows := EmotionTableRows(aggs, names)
	lines := append([]string{"Per-Emotion"}, formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true, 4: true})...)
	return writeLines(w, append(lines, ""))
}

// EmotionTableRows returns headers and formatted rows for per-emotion
// aggregates, weakest first.
func EmotionTableRows(aggs []model.EmotionAggregate, names map[string]string) ([]string, [][]string) {
	sorted := sortByAccuracy(aggs)
	headers := []string{"Emotion", "Accuracy", "Avg Time (ms)", "Correct", "Total"}
	rows := make([][]string, 0, len(sorted))
	for _, agg := range sorted {
		label := agg.EmotionID
		if name, ok := names[agg.EmotionID]; ok && name != "" {
			label = name
		}
		avg := 0.0
		if agg.Total > 0 {
			avg = float64(agg.ResponseTimeMs) / float64(agg.Total)
		}
		rows = append(rows, []string{
			label,
			fmt.Sprintf("%.2f%%", accuracy(agg)*100),
			fmt.Sprintf("%.1f", avg),
			fmt.Sprintf("%d", agg.Correct),
			fmt.Sprintf("%d", agg.Total),
		})
	}
	return headers, rows
}

// RenderProgress prints the cumulative progress record.
func RenderProgress(w io.Writer, p model.Progress, names map[string]string, badgeName func(string) string) error {
	acc := 0.0
	if p.TotalQuestions > 0 {
		acc = float64(p.CorrectAnswers) / float64(p.TotalQuestions) * 100
	}
	last := "never"
	if p.LastSessionDate != nil {
		last = p.LastSessionDate.Local().Format("2006-01-02 15:04")
	}
	lines := []string{
		"Progress",
		fmt.Sprintf("Questions: %d", p.TotalQuestions),
		fmt.Sprintf("Correct: %d", p.CorrectAnswers),
		fmt.Sprintf("Accuracy: %.2f%%", acc),
		fmt.Sprintf("Streak: %d (best %d)", p.StreakCount, p.BestStreak),
		fmt.Sprintf("Avg Response: %.0f ms", p.AverageResponseTimeMs),
		fmt.Sprintf("Last Session: %s", last),
	}
	if len(p.Badges) > 0 {
		labels := make([]string, len(p.Badges))
		for i, id := range p.Badges {
			labels[i] = id
			if badgeName != nil {
				labels[i] = badgeName(id)
			}
		}
		lines = append(lines, "Badges: "+strings.Join(labels, ", "))
	}
	lines = append(lines, "")
	if err := writeLines(w, lines); err != nil {
		return err
	}
	if len(p.EmotionStats) == 0 {
		return nil
	}
	ids := make([]string, 0, len(p.EmotionStats))
	for id := range p.EmotionStats {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	aggs := make([]model.EmotionAggregate, 0, len(ids))
	for _, id := range ids {
		st := p.EmotionStats[id]
		aggs = append(aggs, model.EmotionAggregate{
			EmotionID:      id,
			Correct:        st.Correct,
			Total:          st.Total,
			ResponseTimeMs: int64(math.Round(st.AverageTimeMs * float64(st.Total))),
		})
	}
	return RenderEmotionTable(w, aggs, names)
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func minMax(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
