package study

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/example/wordgo/internal/database"
	sr "github.com/example/wordgo/internal/spaced_repetition"
	"github.com/example/wordgo/pkg/models"
)

// maxWriteAttempts bounds how often a state write is retried after losing a version race.
const maxWriteAttempts = 3

// Answer is one answer given during a session.
type Answer struct {
	LearnerID      int64
	WordID         int64
	IsCorrect      bool
	ResponseTimeMs int64
	Attempts       int // tries for this word in the current session, counting this one
}

// AnswerResult is what a recorded answer did to the word.
type AnswerResult struct {
	Quality sr.QualityResponse
	State   models.MemoryState
	Review  models.ReviewRecord
}

// Service ties the scheduling core to storage.
type Service struct {
	db          *sqlx.DB
	sm2         *sr.SM2
	sessionSize int
	logger      *zap.Logger
}

// NewService creates a study service. sessionSize is used when neither the
// caller nor the learner asks for a specific size.
func NewService(db *sqlx.DB, sessionSize int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:          db,
		sm2:         sr.NewSM2(),
		sessionSize: sessionSize,
		logger:      logger,
	}
}

// StartSession picks the words a learner should study next in a section.
func (s *Service) StartSession(ctx context.Context, learnerID, sectionID int64, limit int, now time.Time) ([]sr.SessionWord, error) {
	learner, err := database.NewLearnerRepository(s.db).GetByID(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load learner %d: %w", learnerID, err)
	}
	if _, err := database.NewSectionRepository(s.db).GetByID(ctx, sectionID); err != nil {
		return nil, fmt.Errorf("failed to load section %d: %w", sectionID, err)
	}

	if limit <= 0 {
		limit = learner.WordsPerSession
	}
	if limit <= 0 {
		limit = s.sessionSize
	}

	words, err := database.NewWordRepository(s.db).GetBySection(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	states, err := database.NewMemoryStateRepository(s.db).GetByUserAndSection(ctx, learnerID, sectionID)
	if err != nil {
		return nil, err
	}
	counts, err := database.NewReviewRepository(s.db).CountByUserAndSection(ctx, learnerID, sectionID)
	if err != nil {
		return nil, err
	}

	session := sr.SelectSession(sr.SessionInput{
		LearnerID:    learnerID,
		Words:        words,
		States:       states,
		ReviewCounts: counts,
		Limit:        limit,
		Now:          now,
	})

	s.logger.Debug("session selected",
		zap.Int64("learner_id", learnerID),
		zap.Int64("section_id", sectionID),
		zap.Int("pool", len(words)),
		zap.Int("selected", len(session)),
	)
	return session, nil
}

// RecordAnswer grades an answer, advances the word's memory state and logs
// the review, all in one transaction.
func (s *Service) RecordAnswer(ctx context.Context, answer Answer, now time.Time) (*AnswerResult, error) {
	if _, err := database.NewWordRepository(s.db).GetByID(ctx, answer.WordID); err != nil {
		return nil, fmt.Errorf("failed to load word %d: %w", answer.WordID, err)
	}

	quality := sr.MapQuality(answer.IsCorrect, answer.ResponseTimeMs, answer.Attempts)
	attempts := answer.Attempts
	if attempts < 1 {
		attempts = 1
	}
	ms := answer.ResponseTimeMs
	if ms < 0 {
		ms = 0
	}

	var result AnswerResult
	err := s.withRetry(ctx, answer.LearnerID, answer.WordID, func(ctx context.Context, tx *sqlx.Tx) error {
		states := database.NewMemoryStateRepository(tx)
		current, persisted, err := loadState(ctx, states, answer.LearnerID, answer.WordID, now)
		if err != nil {
			return err
		}

		next := s.sm2.ApplyAnswer(current, quality, now)
		if err := saveState(ctx, states, &next, persisted, now); err != nil {
			return err
		}

		review := models.ReviewRecord{
			UserID:         answer.LearnerID,
			WordID:         answer.WordID,
			Quality:        int(quality),
			IsCorrect:      answer.IsCorrect,
			ResponseTimeMs: ms,
			Attempts:       attempts,
			ReviewedAt:     now,
		}
		if err := database.NewReviewRepository(tx).Create(ctx, &review); err != nil {
			return err
		}

		result = AnswerResult{Quality: quality, State: next, Review: review}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("answer recorded",
		zap.Int64("learner_id", answer.LearnerID),
		zap.Int64("word_id", answer.WordID),
		zap.Int("quality", int(quality)),
		zap.Int("interval_days", result.State.Interval),
		zap.Bool("learned", result.State.IsLearned),
	)
	return &result, nil
}

// MarkLearned sets or clears the learner's own "learned" mark on a word.
// Clearing it falls back to what the review history says. Marking a
// never-answered word stores it as not due until the next day; clearing the
// mark on such a word writes nothing.
func (s *Service) MarkLearned(ctx context.Context, learnerID, wordID int64, learned bool, now time.Time) (*models.MemoryState, error) {
	if _, err := database.NewWordRepository(s.db).GetByID(ctx, wordID); err != nil {
		return nil, fmt.Errorf("failed to load word %d: %w", wordID, err)
	}

	var state models.MemoryState
	err := s.withRetry(ctx, learnerID, wordID, func(ctx context.Context, tx *sqlx.Tx) error {
		states := database.NewMemoryStateRepository(tx)
		current, persisted, err := loadState(ctx, states, learnerID, wordID, now)
		if err != nil {
			return err
		}

		current.LearnedOverride = learned
		current.IsLearned = s.sm2.IsWordMastered(current)
		if !persisted {
			if !learned {
				// Nothing to clear; a never-answered word keeps its presentation-only default.
				state = current
				return nil
			}
			current.NextReviewDate = sr.NextReviewDate(now, models.DefaultInterval)
		}
		if err := saveState(ctx, states, &current, persisted, now); err != nil {
			return err
		}
		state = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("learned mark changed",
		zap.Int64("learner_id", learnerID),
		zap.Int64("word_id", wordID),
		zap.Bool("override", learned),
	)
	return &state, nil
}

// SectionProgress summarizes how far a learner is through a section.
func (s *Service) SectionProgress(ctx context.Context, learnerID, sectionID int64, now time.Time) (sr.SectionProgress, error) {
	if _, err := database.NewSectionRepository(s.db).GetByID(ctx, sectionID); err != nil {
		return sr.SectionProgress{}, fmt.Errorf("failed to load section %d: %w", sectionID, err)
	}

	words, err := database.NewWordRepository(s.db).GetBySection(ctx, sectionID)
	if err != nil {
		return sr.SectionProgress{}, err
	}
	states, err := database.NewMemoryStateRepository(s.db).GetByUserAndSection(ctx, learnerID, sectionID)
	if err != nil {
		return sr.SectionProgress{}, err
	}
	return sr.SummarizeSection(words, states, now), nil
}

func (s *Service) withRetry(ctx context.Context, learnerID, wordID int64, fn database.TxFn) error {
	var err error
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		err = database.RunInTransaction(ctx, s.db, fn)
		if !errors.Is(err, database.ErrVersionConflict) {
			return err
		}
		s.logger.Warn("memory state changed concurrently, retrying",
			zap.Int64("learner_id", learnerID),
			zap.Int64("word_id", wordID),
			zap.Int("attempt", attempt),
		)
	}
	return fmt.Errorf("giving up after %d attempts: %w", maxWriteAttempts, err)
}

func loadState(ctx context.Context, repo *database.MemoryStateRepository, learnerID, wordID int64, now time.Time) (models.MemoryState, bool, error) {
	state, err := repo.GetByUserAndWord(ctx, learnerID, wordID)
	if errors.Is(err, database.ErrNotFound) {
		return models.NewMemoryState(learnerID, wordID, now), false, nil
	}
	if err != nil {
		return models.MemoryState{}, false, err
	}
	return *state, true, nil
}

func saveState(ctx context.Context, repo *database.MemoryStateRepository, state *models.MemoryState, persisted bool, now time.Time) error {
	if persisted {
		return repo.Update(ctx, state, now)
	}
	return repo.Insert(ctx, state, now)
}
