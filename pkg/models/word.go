package models

import "time"

// Word represents a vocabulary item to be learned
type Word struct {
	ID          int64     `json:"id" db:"id"`
	SectionID   int64     `json:"section_id" db:"section_id"`
	Word        string    `json:"word" db:"word"`
	Translation string    `json:"translation" db:"translation"`
	Context     string    `json:"context" db:"context"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
