package models

import "time"

// Default SM-2 values for a word the learner has never answered.
const (
	DefaultEasinessFactor = 2.5
	DefaultInterval       = 1
)

// MemoryState tracks a learner's SM-2 parameters for a specific word
type MemoryState struct {
	UserID         int64      `json:"user_id" db:"user_id"`
	WordID         int64      `json:"word_id" db:"word_id"`
	EasinessFactor float64    `json:"easiness_factor" db:"easiness_factor"` // SM-2 EF parameter, never below 1.3
	Interval       int        `json:"interval" db:"interval_days"`          // Current interval in days
	Repetition     int        `json:"repetition" db:"repetition"`           // Consecutive successful reviews since the last lapse
	NextReviewDate time.Time  `json:"next_review_date" db:"next_review_date"`
	LastReviewDate *time.Time `json:"last_review_date,omitempty" db:"last_review_date"`

	// IsLearned is set by the scheduler once the word is judged mastered.
	IsLearned bool `json:"is_learned" db:"is_learned"`
	// LearnedOverride is the learner's own "I know this" mark. The scheduler
	// reads it but never writes it.
	LearnedOverride bool `json:"learned_override" db:"learned_override"`

	Quality   *int      `json:"quality,omitempty" db:"quality"` // Last recorded grade, for diagnostics
	Version   int       `json:"version" db:"version"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewMemoryState returns the default state for a word first shown at now.
func NewMemoryState(userID, wordID int64, now time.Time) MemoryState {
	return MemoryState{
		UserID:         userID,
		WordID:         wordID,
		EasinessFactor: DefaultEasinessFactor,
		Interval:       DefaultInterval,
		Repetition:     0,
		NextReviewDate: now,
	}
}

// IsDue reports whether the word is eligible for review at now.
func (s MemoryState) IsDue(now time.Time) bool {
	return !s.NextReviewDate.After(now)
}
