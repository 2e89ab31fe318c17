package quizgame

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a quiz id does not resolve to a stored quiz
	ErrNotFound = errors.New("quiz not found")

	// ErrStoreUnavailable wraps every I/O failure of the quiz store
	ErrStoreUnavailable = errors.New("quiz store unavailable")

	// ErrExhausted is returned by the selector when every quiz has been solved
	ErrExhausted = errors.New("no unseen quizzes left")
)

// QuizItem is a single question/answer pair
type QuizItem struct {
	ID        int64     `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	AuthorID  int64     `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QuizPrompt is the player-facing view of a quiz, without its answer
type QuizPrompt struct {
	ID       int64  `json:"id"`
	Question string `json:"question"`
	AuthorID int64  `json:"author_id"`
}

// Prompt strips the answer from the quiz
func (q *QuizItem) Prompt() *QuizPrompt {
	return &QuizPrompt{ID: q.ID, Question: q.Question, AuthorID: q.AuthorID}
}

// Filter restricts which quizzes a store query sees. Zero values mean "no restriction".
type Filter struct {
	ExcludeIDs []int64
	Search     string
	AuthorID   int64
}

// Turn is the result of asking for the next random quiz
type Turn struct {
	Quiz     *QuizPrompt `json:"quiz,omitempty"`
	Finished bool        `json:"finished"`
	Score    int         `json:"score"`
}

// Verdict is the result of answering a random quiz
type Verdict struct {
	QuizID    int64  `json:"quiz_id"`
	Answer    string `json:"answer"`
	Correct   bool   `json:"correct"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Score     int    `json:"score"`
}

// GenerationRequest represents a request to generate quizzes with the LLM
type GenerationRequest struct {
	Topic          string `json:"topic"`
	NumQuestions   int    `json:"num_questions"`
	SourceMaterial string `json:"source_material,omitempty"`
	Difficulty     string `json:"difficulty,omitempty"`
	AuthorID       int64  `json:"author_id,omitempty"`
}
