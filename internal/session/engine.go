// Package session runs learning and quiz sessions over the emotion catalog.
//
// A session is built once by Engine.Start and then advanced one answer at a
// time by Engine.Submit. The engine never touches Progress; callers hand the
// completed answer log to the progress package.
//
// Session length is bounded by the catalog: a level with fewer emotions
// than the requested question count yields a shorter session, never
// repeated questions. A level with fewer than four emotions yields
// questions whose options are every emotion of the level.
package session

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/verte-zerg/decodeur/internal/model"
)

// Sentinel errors for the session package.
var (
	ErrInvalidDifficulty      = errors.New("session: difficulty has no catalog entries")
	ErrInvalidMode            = errors.New("session: unknown mode")
	ErrSessionAlreadyComplete = errors.New("session: session already complete")
	ErrNoActiveSession        = errors.New("session: no active session")
)

const (
	// DefaultQuestionCount is the session length used when none is given.
	DefaultQuestionCount = 10
	// OptionCount is the number of answer options per question.
	OptionCount = 4
)

// Catalog is the subset of the emotion catalog the engine depends on.
type Catalog interface {
	ByLevel(level int) []model.Emotion
}

// Result reports the outcome of a submitted answer.
type Result struct {
	IsCorrect         bool
	IsSessionComplete bool
	Answer            model.Answer
}

// Engine builds and advances sessions.
type Engine struct {
	catalog Catalog
	rnd     *rand.Rand
	now     func() time.Time
}

// NewEngine returns an Engine drawing from cat. A nil rnd is seeded with the
// current time.
func NewEngine(cat Catalog, rnd *rand.Rand) *Engine {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{catalog: cat, rnd: rnd, now: time.Now}
}

// Start builds a new active session for the given difficulty level.
func (e *Engine) Start(mode model.Mode, difficulty, questionCount int) (*model.Session, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	pool := e.catalog.ByLevel(difficulty)
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: level %d", ErrInvalidDifficulty, difficulty)
	}
	if questionCount <= 0 {
		questionCount = DefaultQuestionCount
	}

	order := shuffled(e.rnd, pool)
	if questionCount > len(order) {
		questionCount = len(order)
	}
	questions := make([]model.Question, 0, questionCount)
	for _, target := range order[:questionCount] {
		questions = append(questions, e.buildQuestion(target, pool))
	}

	return &model.Session{
		ID:         uuid.NewString(),
		Mode:       mode,
		Difficulty: difficulty,
		Questions:  questions,
		Answers:    make([]model.Answer, 0, len(questions)),
		IsActive:   true,
		StartedAt:  e.now(),
	}, nil
}

// Submit records an answer for the current question and advances the
// session.
func (e *Engine) Submit(s *model.Session, selectedEmotionID string, responseTimeMs int64) (Result, error) {
	if s == nil {
		return Result{}, ErrNoActiveSession
	}
	if !s.IsActive || s.CurrentQuestionIndex >= len(s.Questions) {
		return Result{}, ErrSessionAlreadyComplete
	}
	if responseTimeMs < 0 {
		responseTimeMs = 0
	}

	q := s.Questions[s.CurrentQuestionIndex]
	answer := model.Answer{
		Question:         q,
		SelectedAnswerID: selectedEmotionID,
		CorrectAnswerID:  q.CorrectAnswerID,
		IsCorrect:        selectedEmotionID == q.CorrectAnswerID,
		ResponseTimeMs:   responseTimeMs,
		Timestamp:        e.now(),
	}
	s.Answers = append(s.Answers, answer)
	s.CurrentQuestionIndex++
	if s.CurrentQuestionIndex >= len(s.Questions) {
		s.IsActive = false
	}
	return Result{
		IsCorrect:         answer.IsCorrect,
		IsSessionComplete: !s.IsActive,
		Answer:            answer,
	}, nil
}

func (e *Engine) buildQuestion(target model.Emotion, pool []model.Emotion) model.Question {
	others := lo.Filter(pool, func(candidate model.Emotion, _ int) bool {
		return candidate.ID != target.ID
	})
	distractors := shuffled(e.rnd, others)
	if len(distractors) > OptionCount-1 {
		distractors = distractors[:OptionCount-1]
	}
	options := append([]model.Emotion{target}, distractors...)
	shuffleInPlace(e.rnd, options)
	return model.Question{
		Emotion:         target,
		Options:         options,
		CorrectAnswerID: target.ID,
	}
}

func shuffled(rnd *rand.Rand, in []model.Emotion) []model.Emotion {
	out := make([]model.Emotion, len(in))
	copy(out, in)
	shuffleInPlace(rnd, out)
	return out
}

// shuffleInPlace is a Fisher-Yates shuffle.
func shuffleInPlace(rnd *rand.Rand, items []model.Emotion) {
	for i := len(items) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}
