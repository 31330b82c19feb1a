package spaced_repetition

import (
	"sort"
	"time"

	"github.com/example/wordgo/pkg/models"
)

// Tier identifies which pool a session word was drawn from.
type Tier string

const (
	TierDue      Tier = "due"
	TierNew      Tier = "new"
	TierFallback Tier = "fallback"
)

// SessionWord is a word prepared for presentation together with the memory
// state it will be shown with.
type SessionWord struct {
	Word  models.Word
	State models.MemoryState
	Tier  Tier
	// Persisted is false for never-seen words whose default state exists
	// only for this session.
	Persisted bool
}

// SessionInput is a read-only snapshot of everything the selector needs.
type SessionInput struct {
	LearnerID int64
	Words     []models.Word
	// States holds the learner's stored state by word id. Words without an
	// entry have never been answered.
	States map[int64]*models.MemoryState
	// ReviewCounts holds the number of prior review records by word id.
	ReviewCounts map[int64]int
	Limit        int
	Now          time.Time
}

type candidate struct {
	pos   int
	word  models.Word
	state *models.MemoryState
}

// SelectSession assembles at most Limit words in three tiers: due words,
// never-seen words, then seen-but-not-due words with the fewest reviews. Each
// tier only fills what the previous tiers left. The input is not modified.
func SelectSession(in SessionInput) []SessionWord {
	out := make([]SessionWord, 0, capacity(in.Limit, len(in.Words)))
	if in.Limit <= 0 || len(in.Words) == 0 {
		return out
	}

	var due, fresh, rest []candidate
	seen := make(map[int64]struct{}, len(in.Words))
	for i, w := range in.Words {
		if _, ok := seen[w.ID]; ok {
			continue
		}
		seen[w.ID] = struct{}{}

		c := candidate{pos: i, word: w, state: in.States[w.ID]}
		switch {
		case c.state == nil:
			fresh = append(fresh, c)
		case c.state.IsDue(in.Now):
			due = append(due, c)
		default:
			rest = append(rest, c)
		}
	}

	// Most overdue first.
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].state.NextReviewDate.Before(due[j].state.NextReviewDate)
	})

	// Fewest prior reviews first, then whichever comes due soonest.
	sort.SliceStable(rest, func(i, j int) bool {
		ci, cj := in.ReviewCounts[rest[i].word.ID], in.ReviewCounts[rest[j].word.ID]
		if ci != cj {
			return ci < cj
		}
		return rest[i].state.NextReviewDate.Before(rest[j].state.NextReviewDate)
	})

	remaining := in.Limit
	out, remaining = takeStored(out, due, TierDue, remaining)
	out, remaining = takeNew(out, fresh, in.LearnerID, in.Now, remaining)
	out, _ = takeStored(out, rest, TierFallback, remaining)

	return out
}

// takeStored appends up to remaining candidates that already have a state.
func takeStored(out []SessionWord, cands []candidate, tier Tier, remaining int) ([]SessionWord, int) {
	for _, c := range cands {
		if remaining <= 0 {
			break
		}
		out = append(out, SessionWord{
			Word:      c.word,
			State:     *c.state,
			Tier:      tier,
			Persisted: true,
		})
		remaining--
	}
	return out, remaining
}

// takeNew appends up to remaining never-seen words with session-local defaults.
func takeNew(out []SessionWord, cands []candidate, learnerID int64, now time.Time, remaining int) ([]SessionWord, int) {
	for _, c := range cands {
		if remaining <= 0 {
			break
		}
		out = append(out, SessionWord{
			Word:  c.word,
			State: models.NewMemoryState(learnerID, c.word.ID, now),
			Tier:  TierNew,
		})
		remaining--
	}
	return out, remaining
}

func capacity(limit, pool int) int {
	if limit <= 0 {
		return 0
	}
	if pool < limit {
		return pool
	}
	return limit
}
