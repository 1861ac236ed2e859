// Package progress folds completed sessions into cumulative statistics.
package progress

import (
	"time"

	"github.com/samber/lo"

	"github.com/verte-zerg/decodeur/internal/model"
)

// New returns an empty Progress.
func New() model.Progress {
	return model.Progress{
		EmotionStats: map[string]model.EmotionStat{},
		Badges:       []string{},
	}
}

// Reset returns the zero state used after an explicit progress reset.
func Reset() model.Progress {
	return New()
}

// Apply folds a session answer log into p and returns the result. p is not
// modified.
//
// StreakCount becomes the trailing run of correct answers in this log and
// replaces the previous value; runs are not carried across sessions.
func Apply(p model.Progress, answers []model.Answer, now time.Time) model.Progress {
	next := Clone(p)
	stamp := now
	next.LastSessionDate = &stamp
	if len(answers) == 0 {
		next.Badges = awardBadges(next, answers)
		return next
	}

	correctCount := 0
	var totalTime int64
	for _, a := range answers {
		if a.IsCorrect {
			correctCount++
		}
		totalTime += a.ResponseTimeMs

		id := a.CorrectAnswerID
		stat := next.EmotionStats[id]
		prevTotal := stat.Total
		stat.Total++
		if a.IsCorrect {
			stat.Correct++
		}
		stat.AverageTimeMs = runningMean(stat.AverageTimeMs, prevTotal, float64(a.ResponseTimeMs), 1)
		next.EmotionStats[id] = stat
	}

	streak := TrailingStreak(answers)
	prevTotal := p.TotalQuestions
	next.AverageResponseTimeMs = runningMean(p.AverageResponseTimeMs, prevTotal, float64(totalTime), len(answers))
	next.TotalQuestions = prevTotal + len(answers)
	next.CorrectAnswers = p.CorrectAnswers + correctCount
	next.StreakCount = streak
	if streak > next.BestStreak {
		next.BestStreak = streak
	}
	next.Badges = awardBadges(next, answers)
	return next
}

// TrailingStreak counts consecutive correct answers at the end of the log.
func TrailingStreak(answers []model.Answer) int {
	streak := 0
	for i := len(answers) - 1; i >= 0; i-- {
		if !answers[i].IsCorrect {
			break
		}
		streak++
	}
	return streak
}

// LongestRun counts the longest run of correct answers anywhere in the log.
func LongestRun(answers []model.Answer) int {
	best, run := 0, 0
	for _, a := range answers {
		if a.IsCorrect {
			run++
			if run > best {
				best = run
			}
			continue
		}
		run = 0
	}
	return best
}

// AccuracyRate returns the overall percentage of correct answers.
func AccuracyRate(p model.Progress) float64 {
	return percent(p.CorrectAnswers, p.TotalQuestions)
}

// EmotionAccuracy returns the percentage of correct answers for one emotion.
func EmotionAccuracy(p model.Progress, emotionID string) float64 {
	stat, ok := p.EmotionStats[emotionID]
	if !ok {
		return 0
	}
	return percent(stat.Correct, stat.Total)
}

// Clone deep-copies p.
func Clone(p model.Progress) model.Progress {
	out := p
	out.EmotionStats = make(map[string]model.EmotionStat, len(p.EmotionStats))
	for k, v := range p.EmotionStats {
		out.EmotionStats[k] = v
	}
	out.Badges = append([]string{}, p.Badges...)
	if p.LastSessionDate != nil {
		t := *p.LastSessionDate
		out.LastSessionDate = &t
	}
	return out
}

// NewBadges returns badge ids present in after but not in before.
func NewBadges(before, after model.Progress) []string {
	return lo.Without(after.Badges, before.Badges...)
}

// runningMean extends a mean over prevCount samples with sum spread over n
// new samples.
func runningMean(prevMean float64, prevCount int, sum float64, n int) float64 {
	total := prevCount + n
	if total == 0 {
		return 0
	}
	return (prevMean*float64(prevCount) + sum) / float64(total)
}

func percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
