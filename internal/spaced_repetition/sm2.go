package spaced_repetition

import (
	"math"
	"time"

	"github.com/example/wordgo/pkg/models"
)

// MinEasinessFactor is the SM-2 floor for the easiness factor.
const MinEasinessFactor = 1.3

// DefaultMaxInterval caps intervals at roughly a century.
const DefaultMaxInterval = 36500

// SM2 implements the SuperMemo-2 algorithm for spaced repetition
type SM2 struct {
	// Grades at or above this value are successful recalls
	PassThreshold QualityResponse
	// Consecutive successful reviews after which a word counts as learned
	MasteryRepetitions int
	// Maximum interval in days
	MaxInterval int
	// Fixed intervals in days for the first successful repetitions
	InitialIntervals []int
}

// NewSM2 returns an SM2 with the classic settings.
func NewSM2() *SM2 {
	return &SM2{
		PassThreshold:      QualityCorrectDifficult,
		MasteryRepetitions: 2,
		MaxInterval:        DefaultMaxInterval,
		InitialIntervals:   []int{1, 6},
	}
}

var defaultSM2 = NewSM2()

// Result is the memory state produced by one SM-2 step.
type Result struct {
	EasinessFactor float64
	Interval       int
	Repetition     int
	IsLearned      bool
}

// UpdateSM2 runs one SM-2 step with the default settings.
func UpdateSM2(quality QualityResponse, easinessFactor float64, interval, repetition int) Result {
	return defaultSM2.Update(quality, easinessFactor, interval, repetition)
}

// Update computes the next easiness factor, interval and repetition count for
// a grade. Inputs outside their domain are clamped. The function reads no
// clock and holds no state.
func (sm *SM2) Update(quality QualityResponse, easinessFactor float64, interval, repetition int) Result {
	quality = quality.clamp()
	if math.IsNaN(easinessFactor) || easinessFactor < MinEasinessFactor {
		easinessFactor = MinEasinessFactor
	}
	if interval < 1 {
		interval = 1
	}
	if sm.MaxInterval > 0 && interval > sm.MaxInterval {
		interval = sm.MaxInterval
	}
	if repetition < 0 {
		repetition = 0
	}

	q := float64(quality)
	newEF := easinessFactor + (0.1 - (5.0-q)*(0.08+(5.0-q)*0.02))
	if newEF < MinEasinessFactor {
		newEF = MinEasinessFactor
	}

	if quality < sm.PassThreshold {
		return Result{
			EasinessFactor: newEF,
			Interval:       1,
			Repetition:     0,
			IsLearned:      false,
		}
	}

	newRepetition := repetition + 1
	var newInterval int
	if newRepetition <= len(sm.InitialIntervals) {
		newInterval = sm.InitialIntervals[newRepetition-1]
	} else {
		grown := math.Round(float64(interval) * newEF)
		if sm.MaxInterval > 0 && grown > float64(sm.MaxInterval) {
			grown = float64(sm.MaxInterval)
		}
		newInterval = int(grown)
	}
	if newInterval < 1 {
		newInterval = 1
	}

	return Result{
		EasinessFactor: newEF,
		Interval:       newInterval,
		Repetition:     newRepetition,
		IsLearned:      newRepetition >= sm.MasteryRepetitions,
	}
}

// NextReviewDate returns the instant a word scheduled interval days after now
// becomes due.
func NextReviewDate(now time.Time, interval int) time.Time {
	if interval < 1 {
		interval = 1
	}
	return now.AddDate(0, 0, interval)
}

// ApplyAnswer returns a copy of state updated for a graded answer given at now.
// LearnedOverride is carried through untouched and keeps IsLearned set.
func (sm *SM2) ApplyAnswer(state models.MemoryState, quality QualityResponse, now time.Time) models.MemoryState {
	res := sm.Update(quality, state.EasinessFactor, state.Interval, state.Repetition)

	next := state
	next.EasinessFactor = res.EasinessFactor
	next.Interval = res.Interval
	next.Repetition = res.Repetition
	next.NextReviewDate = NextReviewDate(now, res.Interval)
	next.IsLearned = res.IsLearned || state.LearnedOverride

	reviewedAt := now
	next.LastReviewDate = &reviewedAt
	grade := int(quality.clamp())
	next.Quality = &grade

	return next
}

// IsWordMastered reports whether a stored state counts as learned, either
// through the learner's override or through its own review history.
func (sm *SM2) IsWordMastered(state models.MemoryState) bool {
	if state.LearnedOverride {
		return true
	}
	if state.Quality == nil {
		return false
	}
	return state.Repetition >= sm.MasteryRepetitions && QualityResponse(*state.Quality) >= sm.PassThreshold
}
