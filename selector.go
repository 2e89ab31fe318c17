package quizgame

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"
)

// maxSelectAttempts bounds re-counting when quizzes disappear between count and fetch
const maxSelectAttempts = 3

// Uniform is a source of uniform draws in [0, 1). *rand.Rand satisfies it.
type Uniform interface {
	Float64() float64
}

// QuizFinder is the read side of the quiz store used for selection
type QuizFinder interface {
	CountQuizzes(ctx context.Context, filter Filter) (int, error)
	FindQuizzes(ctx context.Context, filter Filter, offset, limit int) ([]QuizItem, error)
}

// Selector picks a random quiz that is not in the solved set
type Selector struct {
	store QuizFinder

	mu  sync.Mutex
	rnd Uniform
}

// NewSelector creates a selector. A nil rnd uses a time-seeded generator.
func NewSelector(store QuizFinder, rnd Uniform) *Selector {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Selector{store: store, rnd: rnd}
}

// SelectNext returns a uniformly drawn quiz whose id is not in solved,
// or ErrExhausted when every quiz has been solved.
func (s *Selector) SelectNext(ctx context.Context, solved []int64) (*QuizItem, error) {
	filter := Filter{ExcludeIDs: solved}

	for attempt := 0; attempt < maxSelectAttempts; attempt++ {
		count, err := s.store.CountQuizzes(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("selection failed: %w", err)
		}
		if count == 0 {
			return nil, ErrExhausted
		}

		offset := s.offset(count)
		quizzes, err := s.store.FindQuizzes(ctx, filter, offset, 1)
		if err != nil {
			return nil, fmt.Errorf("selection failed: %w", err)
		}
		if len(quizzes) > 0 {
			VerboseLog("Selected quiz %d at offset %d of %d unseen", quizzes[0].ID, offset, count)
			return &quizzes[0], nil
		}

		VerboseLog("Quiz set shrank during selection (count=%d, offset=%d), retrying", count, offset)
	}

	return nil, fmt.Errorf("selection failed: quiz set kept changing: %w", ErrStoreUnavailable)
}

// offset draws floor(count * U), clamped to [0, count)
func (s *Selector) offset(count int) int {
	s.mu.Lock()
	u := s.rnd.Float64()
	s.mu.Unlock()

	n := int(math.Floor(float64(count) * u))
	if n >= count {
		n = count - 1
	}
	if n < 0 {
		n = 0
	}
	return n
}
