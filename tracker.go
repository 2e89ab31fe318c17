package quizgame

import (
	"context"
	"errors"
	"slices"
)

// Phase is where a session's game stands, derived from its solved set
type Phase int

const (
	// PhaseIdle means nothing has been solved in the current game
	PhaseIdle Phase = iota
	// PhaseInProgress means at least one quiz has been solved
	PhaseInProgress
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseInProgress:
		return "in_progress"
	default:
		return "unknown"
	}
}

// GameState is the per-session random play state. The score is always len(Solved).
type GameState struct {
	Solved []int64 `json:"solved"`
}

// Score returns the number of quizzes solved in the current game
func (g GameState) Score() int {
	return len(g.Solved)
}

// Phase derives the game phase. Exhaustion is never stored: it is reported
// once by ContinueGame and the state goes straight back to idle.
func (g GameState) Phase() Phase {
	if len(g.Solved) == 0 {
		return PhaseIdle
	}
	return PhaseInProgress
}

// Has reports whether id was already solved in this game
func (g GameState) Has(id int64) bool {
	return slices.Contains(g.Solved, id)
}

func (g GameState) with(id int64) GameState {
	solved := make([]int64, len(g.Solved), len(g.Solved)+1)
	copy(solved, g.Solved)
	return GameState{Solved: append(solved, id)}
}

// NextSelector is what the tracker needs from the selector
type NextSelector interface {
	SelectNext(ctx context.Context, solved []int64) (*QuizItem, error)
}

// Tracker drives the random play game over explicit GameState values
type Tracker struct {
	selector NextSelector
}

// NewTracker creates a tracker backed by the given selector
func NewTracker(selector NextSelector) *Tracker {
	return &Tracker{selector: selector}
}

// ContinueGame offers the next unseen quiz together with the current score.
// When nothing is left the game finishes: the final score is reported and the
// returned state is empty.
func (t *Tracker) ContinueGame(ctx context.Context, state GameState) (GameState, Turn, error) {
	quiz, err := t.selector.SelectNext(ctx, state.Solved)
	if errors.Is(err, ErrExhausted) {
		VerboseLog("Random play finished with score %d", state.Score())
		return GameState{}, Turn{Finished: true, Score: state.Score()}, nil
	}
	if err != nil {
		return state, Turn{}, err
	}
	return state, Turn{Quiz: quiz.Prompt(), Score: state.Score()}, nil
}

// SubmitAnswer scores an answer for quiz.
//
// A correct answer for a quiz not yet solved adds it to the state. A correct
// answer for an already solved quiz changes nothing and is reported as a
// duplicate with the unchanged score. A wrong answer reports the score reached
// so far and resets the state.
func SubmitAnswer(state GameState, quiz *QuizItem, rawAnswer string) (GameState, Verdict) {
	verdict := Verdict{QuizID: quiz.ID, Answer: rawAnswer}

	if !AnswerMatches(rawAnswer, quiz.Answer) {
		verdict.Score = state.Score()
		VerboseLog("Wrong answer for quiz %d, game over with score %d", quiz.ID, verdict.Score)
		return GameState{}, verdict
	}

	verdict.Correct = true
	if state.Has(quiz.ID) {
		verdict.Duplicate = true
		verdict.Score = state.Score()
		return state, verdict
	}

	next := state.with(quiz.ID)
	verdict.Score = next.Score()
	return next, verdict
}
