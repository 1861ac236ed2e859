// Package model defines shared data structures.
package model

import "time"

// Category groups emotions by valence.
type Category string

// Emotion categories.
const (
	CategoryPositive Category = "positive"
	CategoryNegative Category = "negative"
	CategoryNeutral  Category = "neutral"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryPositive, CategoryNegative, CategoryNeutral:
		return true
	}
	return false
}

// Mode selects how a session is presented.
type Mode string

// Session modes.
const (
	ModeLearning Mode = "learning"
	ModeQuiz     Mode = "quiz"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeLearning || m == ModeQuiz
}

// Emotion is one catalog entry. Values are never mutated after load.
type Emotion struct {
	ID             string            `yaml:"id" json:"id"`
	Name           string            `yaml:"name" json:"name"`
	Description    string            `yaml:"description" json:"description"`
	Level          int               `yaml:"level" json:"level"`
	Category       Category          `yaml:"category" json:"category"`
	FacialCues     map[string]string `yaml:"facial_cues" json:"facialCues"`
	KeyIndicators  []string          `yaml:"key_indicators" json:"keyIndicators"`
	CommonMistakes []string          `yaml:"common_mistakes" json:"commonMistakes,omitempty"`
	Tips           string            `yaml:"tips" json:"tips"`
	Intensity      string            `yaml:"intensity" json:"intensity,omitempty"`
	Duration       string            `yaml:"duration" json:"duration,omitempty"`
	ImageURL       string            `yaml:"image_url" json:"imageUrl,omitempty"`
	VideoURL       string            `yaml:"video_url" json:"videoUrl,omitempty"`
}

// LevelInfo describes a difficulty tier.
type LevelInfo struct {
	Level       int    `yaml:"level"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Question is one identification challenge.
type Question struct {
	Emotion         Emotion
	Options         []Emotion
	CorrectAnswerID string
}

// Degraded reports whether the question has fewer than the usual four options.
func (q Question) Degraded() bool {
	return len(q.Options) < 4
}

// Answer records the outcome of one response. Immutable once created.
type Answer struct {
	Question         Question
	SelectedAnswerID string
	CorrectAnswerID  string
	IsCorrect        bool
	ResponseTimeMs   int64
	Timestamp        time.Time
}

// Session is one bounded learning or quiz run.
type Session struct {
	ID                   string
	Mode                 Mode
	Difficulty           int
	Questions            []Question
	Answers              []Answer
	CurrentQuestionIndex int
	IsActive             bool
	StartedAt            time.Time
}

// Current returns the question awaiting an answer.
func (s *Session) Current() (Question, bool) {
	if s == nil || !s.IsActive || s.CurrentQuestionIndex >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.CurrentQuestionIndex], true
}

// Remaining returns the number of unanswered questions.
func (s *Session) Remaining() int {
	if s == nil {
		return 0
	}
	return len(s.Questions) - s.CurrentQuestionIndex
}

// CorrectCount counts correct answers so far.
func (s *Session) CorrectCount() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, a := range s.Answers {
		if a.IsCorrect {
			n++
		}
	}
	return n
}

// Complete reports whether every question has been answered.
func (s *Session) Complete() bool {
	return s != nil && len(s.Questions) > 0 && s.CurrentQuestionIndex >= len(s.Questions)
}

// Abandon stops the session without recording anything.
func (s *Session) Abandon() {
	if s != nil {
		s.IsActive = false
	}
}

// EmotionStat holds cumulative per-emotion results.
type EmotionStat struct {
	Correct       int     `json:"correct"`
	Total         int     `json:"total"`
	AverageTimeMs float64 `json:"avgTime"`
}

// Progress holds cumulative statistics across sessions.
type Progress struct {
	TotalQuestions        int                    `json:"totalQuestions"`
	CorrectAnswers        int                    `json:"correctAnswers"`
	StreakCount           int                    `json:"streakCount"`
	BestStreak            int                    `json:"bestStreak"`
	AverageResponseTimeMs float64                `json:"averageResponseTime"`
	EmotionStats          map[string]EmotionStat `json:"emotionStats"`
	Badges                []string               `json:"badges"`
	LastSessionDate       *time.Time             `json:"lastSessionDate"`
}

// Preferences are user-facing presentation toggles.
type Preferences struct {
	AudioEnabled        bool   `json:"audioEnabled"`
	AudioVolume         int    `json:"audioVolume"`
	SpeechEnabled       bool   `json:"speechEnabled"`
	SoundEffectsEnabled bool   `json:"soundEffectsEnabled"`
	HighContrast        bool   `json:"highContrast"`
	ReducedMotion       bool   `json:"reducedMotion"`
	FontSize            string `json:"fontSize"`
}

// User is the local profile.
type User struct {
	Name        string      `json:"name"`
	IsAnonymous bool        `json:"isAnonymous"`
	Preferences Preferences `json:"preferences"`
}

// Snapshot is the persisted state record.
type Snapshot struct {
	Version  int      `json:"version"`
	User     User     `json:"user"`
	Progress Progress `json:"progress"`
}

// DefaultUser returns the profile used before any customization.
func DefaultUser() User {
	return User{
		IsAnonymous: true,
		Preferences: Preferences{
			AudioVolume:         70,
			SoundEffectsEnabled: true,
			FontSize:            "medium",
		},
	}
}

// Config defines session settings.
type Config struct {
	Mode        Mode
	Level       int
	Questions   int
	CatalogPath string
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Level       int
	Since       *time.Time
	Last        int
	CurveWindow int
}

// SessionAggregate summarizes a stored session for reporting.
type SessionAggregate struct {
	SessionID      string
	Mode           Mode
	Level          int
	EndedAt        time.Time
	Correct        int
	Total          int
	ResponseTimeMs int64
	BestRun        int
}

// EmotionAggregate aggregates emotion results across stored sessions.
type EmotionAggregate struct {
	EmotionID      string
	Correct        int
	Total          int
	ResponseTimeMs int64
}
