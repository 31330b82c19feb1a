package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/wordgo/pkg/models"
)

const learnerColumns = `id, username, words_per_session, notification_enabled, notification_hour, created_at, updated_at`

// LearnerRepository handles database operations for learners
type LearnerRepository struct {
	db sqlx.ExtContext
}

// NewLearnerRepository creates a new repository instance
func NewLearnerRepository(db sqlx.ExtContext) *LearnerRepository {
	return &LearnerRepository{db: db}
}

// Create inserts a new learner
func (r *LearnerRepository) Create(ctx context.Context, learner *models.Learner) error {
	now := time.Now().UTC()
	if learner.WordsPerSession <= 0 {
		learner.WordsPerSession = 10
	}

	id, err := insertReturningID(ctx, r.db, `
		INSERT INTO learners (username, words_per_session, notification_enabled, notification_hour, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		learner.Username,
		learner.WordsPerSession,
		learner.NotificationEnabled,
		learner.NotificationHour,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create learner: %w", err)
	}

	learner.ID = id
	learner.CreatedAt = now
	learner.UpdatedAt = now
	return nil
}

// GetByID returns a learner by ID
func (r *LearnerRepository) GetByID(ctx context.Context, id int64) (*models.Learner, error) {
	var learner models.Learner
	query := r.db.Rebind(`SELECT ` + learnerColumns + ` FROM learners WHERE id = ?`)

	err := sqlx.GetContext(ctx, r.db, &learner, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get learner by ID: %w", err)
	}
	return &learner, nil
}

// GetForNotification returns learners who asked for reminders at the given hour
func (r *LearnerRepository) GetForNotification(ctx context.Context, hour int) ([]models.Learner, error) {
	var learners []models.Learner
	query := r.db.Rebind(`
		SELECT ` + learnerColumns + `
		FROM learners
		WHERE notification_enabled = ? AND notification_hour = ?
		ORDER BY id`)

	if err := sqlx.SelectContext(ctx, r.db, &learners, query, true, hour); err != nil {
		return nil, fmt.Errorf("failed to get learners for notification: %w", err)
	}
	return learners, nil
}
