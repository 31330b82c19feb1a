package spaced_repetition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/wordgo/pkg/models"
)

func learnedState(wordID int64, learned bool) *models.MemoryState {
	s := models.NewMemoryState(1, wordID, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	s.IsLearned = learned
	return &s
}

func TestIsSectionComplete(t *testing.T) {
	t.Parallel()

	section := []int64{1, 2, 3}

	testCases := []struct {
		name     string
		states   map[int64]*models.MemoryState
		expected bool
	}{
		{
			name: "all learned",
			states: map[int64]*models.MemoryState{
				1: learnedState(1, true), 2: learnedState(2, true), 3: learnedState(3, true),
			},
			expected: true,
		},
		{
			name: "one not learned",
			states: map[int64]*models.MemoryState{
				1: learnedState(1, true), 2: learnedState(2, false), 3: learnedState(3, true),
			},
			expected: false,
		},
		{
			name: "one never answered",
			states: map[int64]*models.MemoryState{
				1: learnedState(1, true), 3: learnedState(3, true),
			},
			expected: false,
		},
		{
			name: "nil entry",
			states: map[int64]*models.MemoryState{
				1: learnedState(1, true), 2: nil, 3: learnedState(3, true),
			},
			expected: false,
		},
		{
			name:     "nothing answered",
			states:   map[int64]*models.MemoryState{},
			expected: false,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, IsSectionComplete(section, tc.states))
		})
	}
}

func TestIsSectionCompleteEmptySection(t *testing.T) {
	t.Parallel()

	assert.False(t, IsSectionComplete(nil, map[int64]*models.MemoryState{1: learnedState(1, true)}))
}

func TestSummarizeSection(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	words := makeWords(1, 4)

	due := learnedState(2, false)
	due.NextReviewDate = now.Add(-time.Hour)
	notDue := learnedState(3, false)
	notDue.NextReviewDate = now.Add(time.Hour)
	learned := learnedState(4, true)
	learned.NextReviewDate = now.AddDate(0, 0, 6)

	states := map[int64]*models.MemoryState{2: due, 3: notDue, 4: learned}

	p := SummarizeSection(words, states, now)
	assert.Equal(t, 4, p.Total)
	assert.Equal(t, 1, p.New)
	assert.Equal(t, 2, p.InProgress)
	assert.Equal(t, 1, p.Learned)
	assert.Equal(t, 1, p.Due)
	assert.False(t, p.Complete)
	assert.InDelta(t, 25.0, p.CompletionPercentage, 1e-9)

	for _, s := range states {
		s.IsLearned = true
	}
	states[1] = learnedState(1, true)

	p = SummarizeSection(words, states, now)
	assert.True(t, p.Complete)
	assert.Equal(t, 4, p.Learned)
	assert.InDelta(t, 100.0, p.CompletionPercentage, 1e-9)
}

func TestSummarizeSectionEmpty(t *testing.T) {
	t.Parallel()

	p := SummarizeSection(nil, nil, time.Now())
	assert.Equal(t, SectionProgress{}, p)
}
