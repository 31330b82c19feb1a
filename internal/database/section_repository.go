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

// SectionRepository handles database operations for sections
type SectionRepository struct {
	db sqlx.ExtContext
}

// NewSectionRepository creates a new repository instance
func NewSectionRepository(db sqlx.ExtContext) *SectionRepository {
	return &SectionRepository{db: db}
}

// Create creates a new section
func (r *SectionRepository) Create(ctx context.Context, section *models.Section) error {
	now := time.Now().UTC()

	id, err := insertReturningID(ctx, r.db,
		`INSERT INTO sections (name, created_at, updated_at) VALUES (?, ?, ?)`,
		section.Name, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create section: %w", err)
	}

	section.ID = id
	section.CreatedAt = now
	section.UpdatedAt = now
	return nil
}

// GetByID returns a section by ID
func (r *SectionRepository) GetByID(ctx context.Context, id int64) (*models.Section, error) {
	var section models.Section
	query := r.db.Rebind(`SELECT id, name, created_at, updated_at FROM sections WHERE id = ?`)

	err := sqlx.GetContext(ctx, r.db, &section, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get section: %w", err)
	}
	return &section, nil
}

// List returns all sections ordered by name
func (r *SectionRepository) List(ctx context.Context) ([]models.Section, error) {
	var sections []models.Section
	err := sqlx.SelectContext(ctx, r.db, &sections, `SELECT id, name, created_at, updated_at FROM sections ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to get sections: %w", err)
	}
	return sections, nil
}
