package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/wordgo/pkg/models"
)

// ReviewRepository handles database operations for the review log
type ReviewRepository struct {
	db sqlx.ExtContext
}

// NewReviewRepository creates a new repository instance
func NewReviewRepository(db sqlx.ExtContext) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create appends a graded answer to the log
func (r *ReviewRepository) Create(ctx context.Context, record *models.ReviewRecord) error {
	record.ReviewedAt = record.ReviewedAt.UTC()

	id, err := insertReturningID(ctx, r.db, `
		INSERT INTO review_records (user_id, word_id, quality, is_correct, response_time_ms, attempts, reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.UserID,
		record.WordID,
		record.Quality,
		record.IsCorrect,
		record.ResponseTimeMs,
		record.Attempts,
		record.ReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create review record: %w", err)
	}

	record.ID = id
	return nil
}

// GetByUserAndWord returns the review history of a word, oldest first
func (r *ReviewRepository) GetByUserAndWord(ctx context.Context, userID, wordID int64) ([]models.ReviewRecord, error) {
	var records []models.ReviewRecord
	query := r.db.Rebind(`
		SELECT id, user_id, word_id, quality, is_correct, response_time_ms, attempts, reviewed_at
		FROM review_records
		WHERE user_id = ? AND word_id = ?
		ORDER BY reviewed_at, id`)

	if err := sqlx.SelectContext(ctx, r.db, &records, query, userID, wordID); err != nil {
		return nil, fmt.Errorf("failed to get review records: %w", err)
	}
	return records, nil
}

// CountByUserAndSection returns how many times each word in a section was reviewed, keyed by word ID
func (r *ReviewRepository) CountByUserAndSection(ctx context.Context, userID, sectionID int64) (map[int64]int, error) {
	var rows []struct {
		WordID int64 `db:"word_id"`
		Count  int   `db:"review_count"`
	}
	query := r.db.Rebind(`
		SELECT rr.word_id, COUNT(*) AS review_count
		FROM review_records rr
		JOIN words w ON w.id = rr.word_id
		WHERE rr.user_id = ? AND w.section_id = ?
		GROUP BY rr.word_id`)

	if err := sqlx.SelectContext(ctx, r.db, &rows, query, userID, sectionID); err != nil {
		return nil, fmt.Errorf("failed to count review records: %w", err)
	}

	counts := make(map[int64]int, len(rows))
	for _, row := range rows {
		counts[row.WordID] = row.Count
	}
	return counts, nil
}
