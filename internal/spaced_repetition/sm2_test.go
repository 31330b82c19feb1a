package spaced_repetition

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/wordgo/pkg/models"
)

func TestUpdateSM2EasinessFactor(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		quality  QualityResponse
		ef       float64
		expected float64
	}{
		{"perfect raises ef", QualityPerfect, 2.5, 2.6},
		{"hesitation keeps ef", QualityCorrectHesitation, 2.5, 2.5},
		{"difficult lowers ef", QualityCorrectDifficult, 2.5, 2.36},
		{"familiar lowers ef", QualityIncorrectFamiliar, 2.5, 2.18},
		{"incorrect lowers ef", QualityIncorrect, 2.5, 1.96},
		{"blackout lowers ef", QualityBlackout, 2.5, 1.7},
		{"floor is enforced", QualityBlackout, 1.4, MinEasinessFactor},
		{"below floor input is clamped first", QualityCorrectHesitation, 0.5, MinEasinessFactor},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res := UpdateSM2(tc.quality, tc.ef, 1, 0)
			assert.InDelta(t, tc.expected, res.EasinessFactor, 1e-9)
		})
	}
}

func TestUpdateSM2LapseResets(t *testing.T) {
	t.Parallel()

	for q := QualityBlackout; q < QualityCorrectDifficult; q++ {
		for _, rep := range []int{0, 1, 2, 7, 40} {
			for _, interval := range []int{1, 6, 15, 200} {
				res := UpdateSM2(q, 2.5, interval, rep)
				assert.Equal(t, 0, res.Repetition, "q=%d rep=%d interval=%d", q, rep, interval)
				assert.Equal(t, 1, res.Interval, "q=%d rep=%d interval=%d", q, rep, interval)
				assert.False(t, res.IsLearned)
			}
		}
	}
}

func TestUpdateSM2IntervalSchedule(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		quality    QualityResponse
		ef         float64
		interval   int
		repetition int
		expected   Result
	}{
		{
			name:     "first success",
			quality:  QualityCorrectHesitation,
			ef:       2.5,
			interval: 1,
			expected: Result{EasinessFactor: 2.5, Interval: 1, Repetition: 1},
		},
		{
			name:       "second success is learned",
			quality:    QualityCorrectHesitation,
			ef:         2.5,
			interval:   1,
			repetition: 1,
			expected:   Result{EasinessFactor: 2.5, Interval: 6, Repetition: 2, IsLearned: true},
		},
		{
			name:       "third success multiplies by ef",
			quality:    QualityCorrectHesitation,
			ef:         2.5,
			interval:   6,
			repetition: 2,
			expected:   Result{EasinessFactor: 2.5, Interval: 15, Repetition: 3, IsLearned: true},
		},
		{
			name:       "rounding goes to nearest day",
			quality:    QualityCorrectHesitation,
			ef:         2.5,
			interval:   7,
			repetition: 4,
			expected:   Result{EasinessFactor: 2.5, Interval: 18, Repetition: 5, IsLearned: true},
		},
		{
			name:       "new ef is used for growth",
			quality:    QualityPerfect,
			ef:         2.5,
			interval:   10,
			repetition: 3,
			expected:   Result{EasinessFactor: 2.6, Interval: 26, Repetition: 4, IsLearned: true},
		},
		{
			name:       "invalid interval clamps to one",
			quality:    QualityCorrectHesitation,
			ef:         2.5,
			interval:   -4,
			repetition: 2,
			expected:   Result{EasinessFactor: 2.5, Interval: 3, Repetition: 3, IsLearned: true},
		},
		{
			name:       "negative repetition clamps to zero",
			quality:    QualityCorrectHesitation,
			ef:         2.5,
			interval:   1,
			repetition: -2,
			expected:   Result{EasinessFactor: 2.5, Interval: 1, Repetition: 1},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res := UpdateSM2(tc.quality, tc.ef, tc.interval, tc.repetition)
			assert.InDelta(t, tc.expected.EasinessFactor, res.EasinessFactor, 1e-9)
			assert.Equal(t, tc.expected.Interval, res.Interval)
			assert.Equal(t, tc.expected.Repetition, res.Repetition)
			assert.Equal(t, tc.expected.IsLearned, res.IsLearned)
		})
	}
}

func TestUpdateSM2Invariants(t *testing.T) {
	t.Parallel()

	efs := []float64{-1, 0, 1.3, 1.31, 2.5, 3.7, math.NaN()}
	for q := QualityResponse(-2); q <= 7; q++ {
		for _, ef := range efs {
			for _, interval := range []int{-5, 0, 1, 6, 100} {
				for _, rep := range []int{-1, 0, 1, 2, 3, 10} {
					res := UpdateSM2(q, ef, interval, rep)
					assert.GreaterOrEqual(t, res.EasinessFactor, MinEasinessFactor)
					assert.GreaterOrEqual(t, res.Interval, 1)
					assert.GreaterOrEqual(t, res.Repetition, 0)

					again := UpdateSM2(q, ef, interval, rep)
					assert.Equal(t, res, again, "update must be deterministic")
				}
			}
		}
	}
}

func TestUpdateSM2CapsInterval(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		interval int
	}{
		{"growth past the cap", DefaultMaxInterval - 10},
		{"stored value at the cap", DefaultMaxInterval},
		{"corrupt huge value", math.MaxInt},
		{"value that would overflow on growth", math.MaxInt / 2},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res := UpdateSM2(QualityPerfect, 2.5, tc.interval, 5)
			assert.Equal(t, DefaultMaxInterval, res.Interval)
			assert.Equal(t, 6, res.Repetition)
		})
	}

	// The cap does not interfere with a lapse.
	res := UpdateSM2(QualityBlackout, 2.5, math.MaxInt, 5)
	assert.Equal(t, 1, res.Interval)
}

func TestNextReviewDate(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, now.AddDate(0, 0, 1), NextReviewDate(now, 1))
	assert.Equal(t, now.AddDate(0, 0, 6), NextReviewDate(now, 6))
	assert.Equal(t, now.AddDate(0, 0, 1), NextReviewDate(now, 0))
}

func TestApplyAnswer(t *testing.T) {
	t.Parallel()

	sm := NewSM2()
	now := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)
	state := models.NewMemoryState(7, 42, now)
	state.Version = 3

	first := sm.ApplyAnswer(state, QualityPerfect, now)
	assert.Equal(t, 1, first.Repetition)
	assert.Equal(t, 1, first.Interval)
	assert.False(t, first.IsLearned)
	assert.Equal(t, now.AddDate(0, 0, 1), first.NextReviewDate)
	require.NotNil(t, first.LastReviewDate)
	assert.Equal(t, now, *first.LastReviewDate)
	require.NotNil(t, first.Quality)
	assert.Equal(t, 5, *first.Quality)
	assert.Equal(t, 3, first.Version, "version is owned by the store")

	// The input is a value and stays untouched.
	assert.Equal(t, 0, state.Repetition)
	assert.Nil(t, state.LastReviewDate)

	later := now.AddDate(0, 0, 1)
	second := sm.ApplyAnswer(first, QualityCorrectHesitation, later)
	assert.Equal(t, 2, second.Repetition)
	assert.Equal(t, 6, second.Interval)
	assert.True(t, second.IsLearned)

	lapse := sm.ApplyAnswer(second, QualityIncorrect, later)
	assert.Equal(t, 0, lapse.Repetition)
	assert.Equal(t, 1, lapse.Interval)
	assert.False(t, lapse.IsLearned)
}

func TestApplyAnswerKeepsOverride(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)
	state := models.NewMemoryState(1, 2, now)
	state.LearnedOverride = true
	state.IsLearned = true

	next := NewSM2().ApplyAnswer(state, QualityBlackout, now)
	assert.True(t, next.LearnedOverride)
	assert.True(t, next.IsLearned)
	assert.Equal(t, 0, next.Repetition)
}

func TestIsWordMastered(t *testing.T) {
	t.Parallel()

	sm := NewSM2()
	now := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	state := models.NewMemoryState(1, 1, now)

	assert.False(t, sm.IsWordMastered(state))

	state.LearnedOverride = true
	assert.True(t, sm.IsWordMastered(state))
	state.LearnedOverride = false

	state = sm.ApplyAnswer(state, QualityPerfect, now)
	assert.False(t, sm.IsWordMastered(state))
	state = sm.ApplyAnswer(state, QualityCorrectHesitation, now)
	assert.True(t, sm.IsWordMastered(state))
	assert.Equal(t, state.IsLearned, sm.IsWordMastered(state))

	state = sm.ApplyAnswer(state, QualityIncorrect, now)
	assert.False(t, sm.IsWordMastered(state))
}
