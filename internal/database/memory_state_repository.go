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

const memoryStateColumns = `ms.user_id, ms.word_id, ms.easiness_factor, ms.interval_days, ms.repetition,
	ms.next_review_date, ms.last_review_date, ms.is_learned, ms.learned_override,
	ms.quality, ms.version, ms.created_at, ms.updated_at`

// MemoryStateRepository handles database operations for per-word memory states
type MemoryStateRepository struct {
	db sqlx.ExtContext
}

// NewMemoryStateRepository creates a new repository instance
func NewMemoryStateRepository(db sqlx.ExtContext) *MemoryStateRepository {
	return &MemoryStateRepository{db: db}
}

// GetByUserAndWord gets the memory state for a specific user and word
func (r *MemoryStateRepository) GetByUserAndWord(ctx context.Context, userID, wordID int64) (*models.MemoryState, error) {
	var state models.MemoryState
	query := r.db.Rebind(`SELECT ` + memoryStateColumns + ` FROM memory_states ms WHERE ms.user_id = ? AND ms.word_id = ?`)

	err := sqlx.GetContext(ctx, r.db, &state, query, userID, wordID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get memory state: %w", err)
	}
	return &state, nil
}

// GetByUserAndSection returns the stored states of a user's words in a section, keyed by word ID
func (r *MemoryStateRepository) GetByUserAndSection(ctx context.Context, userID, sectionID int64) (map[int64]*models.MemoryState, error) {
	var states []models.MemoryState
	query := r.db.Rebind(`
		SELECT ` + memoryStateColumns + `
		FROM memory_states ms
		JOIN words w ON w.id = ms.word_id
		WHERE ms.user_id = ? AND w.section_id = ?`)

	if err := sqlx.SelectContext(ctx, r.db, &states, query, userID, sectionID); err != nil {
		return nil, fmt.Errorf("failed to get memory states by section: %w", err)
	}

	byWord := make(map[int64]*models.MemoryState, len(states))
	for i := range states {
		byWord[states[i].WordID] = &states[i]
	}
	return byWord, nil
}

// Insert stores the first memory state for a word. If another writer created
// the row first, ErrVersionConflict is returned.
func (r *MemoryStateRepository) Insert(ctx context.Context, state *models.MemoryState, now time.Time) error {
	now = now.UTC()
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO memory_states (
			user_id, word_id, easiness_factor, interval_days, repetition,
			next_review_date, last_review_date, is_learned, learned_override,
			quality, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT (user_id, word_id) DO NOTHING`),
		state.UserID,
		state.WordID,
		state.EasinessFactor,
		state.Interval,
		state.Repetition,
		state.NextReviewDate.UTC(),
		utcPtr(state.LastReviewDate),
		state.IsLearned,
		state.LearnedOverride,
		state.Quality,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert memory state: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrVersionConflict
	}

	state.Version = 1
	state.CreatedAt = now
	state.UpdatedAt = now
	return nil
}

// Update writes state back if its version still matches the stored row and
// bumps the version. A stale version yields ErrVersionConflict.
func (r *MemoryStateRepository) Update(ctx context.Context, state *models.MemoryState, now time.Time) error {
	now = now.UTC()
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE memory_states
		SET easiness_factor = ?, interval_days = ?, repetition = ?,
			next_review_date = ?, last_review_date = ?, is_learned = ?,
			learned_override = ?, quality = ?, version = version + 1, updated_at = ?
		WHERE user_id = ? AND word_id = ? AND version = ?`),
		state.EasinessFactor,
		state.Interval,
		state.Repetition,
		state.NextReviewDate.UTC(),
		utcPtr(state.LastReviewDate),
		state.IsLearned,
		state.LearnedOverride,
		state.Quality,
		now,
		state.UserID,
		state.WordID,
		state.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update memory state: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrVersionConflict
	}

	state.Version++
	state.UpdatedAt = now
	return nil
}

// CountDue returns how many of the user's words are due for review at now
func (r *MemoryStateRepository) CountDue(ctx context.Context, userID int64, now time.Time) (int, error) {
	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM memory_states WHERE user_id = ? AND next_review_date <= ?`)

	if err := sqlx.GetContext(ctx, r.db, &count, query, userID, now.UTC()); err != nil {
		return 0, fmt.Errorf("failed to count due words: %w", err)
	}
	return count, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
