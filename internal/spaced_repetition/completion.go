package spaced_repetition

import (
	"time"

	"github.com/example/wordgo/pkg/models"
)

// SectionProgress summarises a learner's state across the words of a section.
type SectionProgress struct {
	Total      int
	Learned    int
	InProgress int // answered at least once but not learned
	New        int // never answered
	Due        int
	// Complete is true when the section has words and every one is learned.
	Complete             bool
	CompletionPercentage float64
}

// IsSectionComplete reports whether every word in the section has a stored
// state with IsLearned set. A section without words is never complete.
func IsSectionComplete(wordIDs []int64, states map[int64]*models.MemoryState) bool {
	if len(wordIDs) == 0 {
		return false
	}
	for _, id := range wordIDs {
		s, ok := states[id]
		if !ok || s == nil || !s.IsLearned {
			return false
		}
	}
	return true
}

// SummarizeSection counts learned, in-progress, new and due words.
func SummarizeSection(words []models.Word, states map[int64]*models.MemoryState, now time.Time) SectionProgress {
	var p SectionProgress
	ids := make([]int64, 0, len(words))
	seen := make(map[int64]struct{}, len(words))

	for _, w := range words {
		if _, ok := seen[w.ID]; ok {
			continue
		}
		seen[w.ID] = struct{}{}
		ids = append(ids, w.ID)
		p.Total++

		s := states[w.ID]
		switch {
		case s == nil:
			p.New++
			continue
		case s.IsLearned:
			p.Learned++
		default:
			p.InProgress++
		}
		if s.IsDue(now) {
			p.Due++
		}
	}

	p.Complete = IsSectionComplete(ids, states)
	if p.Total > 0 {
		p.CompletionPercentage = float64(p.Learned) / float64(p.Total) * 100
	}
	return p
}
