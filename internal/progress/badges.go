package progress

import (
	"github.com/samber/lo"

	"github.com/verte-zerg/decodeur/internal/model"
)

// BadgeDef defines an achievement and the condition unlocking it. The
// predicate sees the progress after the session was applied and the
// session's own answer log.
type BadgeDef struct {
	ID          string
	Name        string
	Description string
	Predicate   func(p model.Progress, session []model.Answer) bool
}

// Badges lists every achievement in display order.
var Badges = []BadgeDef{
	{
		ID:          "first-session",
		Name:        "First Steps",
		Description: "Complete a first session",
		Predicate: func(p model.Progress, _ []model.Answer) bool {
			return p.TotalQuestions > 0
		},
	},
	{
		ID:          "ten-answers",
		Name:        "Getting Warm",
		Description: "Answer 10 questions",
		Predicate: func(p model.Progress, _ []model.Answer) bool {
			return p.TotalQuestions >= 10
		},
	},
	{
		ID:          "hundred-answers",
		Name:        "Face Reader",
		Description: "Answer 100 questions",
		Predicate: func(p model.Progress, _ []model.Answer) bool {
			return p.TotalQuestions >= 100
		},
	},
	{
		ID:          "streak-5",
		Name:        "On a Roll",
		Description: "Finish a session with 5 correct answers in a row",
		Predicate: func(p model.Progress, _ []model.Answer) bool {
			return p.BestStreak >= 5
		},
	},
	{
		ID:          "streak-10",
		Name:        "Unstoppable",
		Description: "Finish a session with 10 correct answers in a row",
		Predicate: func(p model.Progress, _ []model.Answer) bool {
			return p.BestStreak >= 10
		},
	},
	{
		ID:          "perfect-session",
		Name:        "Flawless",
		Description: "Answer every question of a session of at least 5 correctly",
		Predicate: func(_ model.Progress, session []model.Answer) bool {
			return len(session) >= 5 && lo.EveryBy(session, func(a model.Answer) bool {
				return a.IsCorrect
			})
		},
	},
	{
		ID:          "sharp-eye",
		Name:        "Sharp Eye",
		Description: "Keep 80% accuracy over at least 50 answers",
		Predicate: func(p model.Progress, _ []model.Answer) bool {
			return p.TotalQuestions >= 50 && AccuracyRate(p) >= 80
		},
	},
}

// BadgeByID returns the definition of a badge.
func BadgeByID(id string) (BadgeDef, bool) {
	return lo.Find(Badges, func(b BadgeDef) bool {
		return b.ID == id
	})
}

// awardBadges returns p.Badges with newly satisfied badges appended.
// Unlocked badges are never removed.
func awardBadges(p model.Progress, session []model.Answer) []string {
	out := append([]string{}, p.Badges...)
	for _, def := range Badges {
		if lo.Contains(out, def.ID) {
			continue
		}
		if def.Predicate(p, session) {
			out = append(out, def.ID)
		}
	}
	return out
}
