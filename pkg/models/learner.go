package models

import "time"

// Learner is a person studying words. Account management lives elsewhere;
// only what the scheduler and session sizing need is kept here.
type Learner struct {
	ID                  int64     `json:"id" db:"id"`
	Username            string    `json:"username" db:"username"`
	WordsPerSession     int       `json:"words_per_session" db:"words_per_session"`
	NotificationEnabled bool      `json:"notification_enabled" db:"notification_enabled"`
	NotificationHour    int       `json:"notification_hour" db:"notification_hour"` // Hour of day for reminders (0-23, UTC)
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}
