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

const wordColumns = `id, section_id, word, translation, context, created_at, updated_at`

// WordRepository handles database operations for words
type WordRepository struct {
	db sqlx.ExtContext
}

// NewWordRepository creates a new repository instance
func NewWordRepository(db sqlx.ExtContext) *WordRepository {
	return &WordRepository{db: db}
}

// Create inserts a new word
func (r *WordRepository) Create(ctx context.Context, word *models.Word) error {
	now := time.Now().UTC()

	id, err := insertReturningID(ctx, r.db, `
		INSERT INTO words (section_id, word, translation, context, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		word.SectionID,
		word.Word,
		word.Translation,
		word.Context,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create word: %w", err)
	}

	word.ID = id
	word.CreatedAt = now
	word.UpdatedAt = now
	return nil
}

// GetByID returns a word by ID
func (r *WordRepository) GetByID(ctx context.Context, id int64) (*models.Word, error) {
	var word models.Word
	query := r.db.Rebind(`SELECT ` + wordColumns + ` FROM words WHERE id = ?`)

	err := sqlx.GetContext(ctx, r.db, &word, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word by ID: %w", err)
	}
	return &word, nil
}

// GetBySection returns the words of a section in insertion order
func (r *WordRepository) GetBySection(ctx context.Context, sectionID int64) ([]models.Word, error) {
	var words []models.Word
	query := r.db.Rebind(`SELECT ` + wordColumns + ` FROM words WHERE section_id = ? ORDER BY id`)

	if err := sqlx.SelectContext(ctx, r.db, &words, query, sectionID); err != nil {
		return nil, fmt.Errorf("failed to get words by section: %w", err)
	}
	return words, nil
}

// Delete removes a word. Memory states and review records go with it.
func (r *WordRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM words WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete word: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
