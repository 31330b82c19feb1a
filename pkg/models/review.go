package models

import "time"

// ReviewRecord is one graded answer given by a learner for a word
type ReviewRecord struct {
	ID             int64     `json:"id" db:"id"`
	UserID         int64     `json:"user_id" db:"user_id"`
	WordID         int64     `json:"word_id" db:"word_id"`
	Quality        int       `json:"quality" db:"quality"`
	IsCorrect      bool      `json:"is_correct" db:"is_correct"`
	ResponseTimeMs int64     `json:"response_time_ms" db:"response_time_ms"`
	Attempts       int       `json:"attempts" db:"attempts"`
	ReviewedAt     time.Time `json:"reviewed_at" db:"reviewed_at"`
}
