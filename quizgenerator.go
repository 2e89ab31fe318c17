package quizgame

import (
	"context"
	"fmt"
	"log"
)

const (
	// existingPageSize is how many stored quizzes are read per page when loading known questions
	existingPageSize = 500
	// maxIdleRounds stops generation after this many batches in a row without a new quiz
	maxIdleRounds = 5
)

// QuestionSource produces candidate quizzes
type QuestionSource interface {
	GenerateQuestions(ctx context.Context, req GenerationRequest, batchSize int) ([]*QuizItem, error)
}

// QuizChecker reviews a generated quiz before it is stored
type QuizChecker interface {
	CheckQuestion(ctx context.Context, topic string, quiz *QuizItem) (*CheckResult, error)
}

// QuizWriter is the part of the quiz store the generator writes through
type QuizWriter interface {
	QuizFinder
	CreateQuiz(ctx context.Context, quiz *QuizItem) error
}

// QuizGenerator fills the quiz store with generated, de-duplicated quizzes
type QuizGenerator struct {
	maker   QuestionSource
	checker QuizChecker
	store   QuizWriter
	logger  *GenerationLog
}

// NewQuizGenerator creates a new quiz generator
func NewQuizGenerator(maker QuestionSource, store QuizWriter) *QuizGenerator {
	return &QuizGenerator{
		maker: maker,
		store: store,
	}
}

// SetLogger sets the generation log accepted and skipped quizzes are written to
func (qg *QuizGenerator) SetLogger(logger *GenerationLog) {
	qg.logger = logger
}

// SetChecker enables review of every new quiz before it is stored
func (qg *QuizGenerator) SetChecker(checker QuizChecker) {
	qg.checker = checker
}

// GenerateQuiz generates and stores req.NumQuestions new quizzes. Questions
// that already exist (ignoring case and surrounding spaces) are skipped.
func (qg *QuizGenerator) GenerateQuiz(ctx context.Context, req GenerationRequest) ([]QuizItem, error) {
	log.Printf("Starting quiz generation for topic: %s, target questions: %d", req.Topic, req.NumQuestions)

	known, err := qg.knownQuestions(ctx)
	if err != nil {
		return nil, err
	}

	created := make([]QuizItem, 0, req.NumQuestions)
	batchSize := 5
	idleRounds := 0

	for len(created) < req.NumQuestions {
		if err := ctx.Err(); err != nil {
			return created, err
		}

		candidates, err := qg.maker.GenerateQuestions(ctx, req, batchSize)
		if err != nil {
			return created, fmt.Errorf("failed to generate questions: %w", err)
		}

		accepted := 0
		for _, quiz := range candidates {
			if len(created) >= req.NumQuestions {
				break
			}

			key := NormalizeAnswer(quiz.Question)
			if known[key] {
				qg.logResult(quiz.Question, "skip", "duplicate question")
				continue
			}

			if qg.checker != nil {
				checked, ok := qg.review(ctx, req.Topic, quiz)
				if !ok {
					continue
				}
				quiz = checked
				key = NormalizeAnswer(quiz.Question)
				if known[key] {
					qg.logResult(quiz.Question, "skip", "duplicate question after revision")
					continue
				}
			}

			quiz.AuthorID = req.AuthorID
			if err := qg.store.CreateQuiz(ctx, quiz); err != nil {
				return created, err
			}
			known[key] = true
			created = append(created, *quiz)
			accepted++
			qg.logResult(quiz.Question, "accept", fmt.Sprintf("stored as quiz %d", quiz.ID))
		}

		log.Printf("Processed %d questions: %d accepted", len(candidates), accepted)

		// If we're not making progress, increase batch size
		if accepted == 0 {
			idleRounds++
			if idleRounds >= maxIdleRounds {
				return created, fmt.Errorf("no new questions after %d batches", idleRounds)
			}
			batchSize = min(batchSize+2, 10)
			log.Printf("No questions accepted, increasing batch size to %d", batchSize)
		} else {
			idleRounds = 0
		}
	}

	log.Printf("Quiz generation complete: %d questions for topic '%s'", len(created), req.Topic)
	return created, nil
}

// review runs the checker on quiz and returns the quiz to store, if any
func (qg *QuizGenerator) review(ctx context.Context, topic string, quiz *QuizItem) (*QuizItem, bool) {
	result, err := qg.checker.CheckQuestion(ctx, topic, quiz)
	if err != nil {
		log.Printf("Failed to check question %q: %v", quiz.Question, err)
		qg.logResult(quiz.Question, "skip", "check failed")
		return nil, false
	}

	switch result.Action {
	case ActionAccept:
		return quiz, true
	case ActionRevise:
		qg.logResult(quiz.Question, "revise", result.Reason)
		return result.Revised, true
	default:
		qg.logResult(quiz.Question, "reject", result.Reason)
		return nil, false
	}
}

// knownQuestions loads the normalised text of every stored question
func (qg *QuizGenerator) knownQuestions(ctx context.Context) (map[string]bool, error) {
	known := make(map[string]bool)
	for offset := 0; ; offset += existingPageSize {
		page, err := qg.store.FindQuizzes(ctx, Filter{}, offset, existingPageSize)
		if err != nil {
			return nil, err
		}
		for _, quiz := range page {
			known[NormalizeAnswer(quiz.Question)] = true
		}
		if len(page) < existingPageSize {
			return known, nil
		}
	}
}

func (qg *QuizGenerator) logResult(question, action, reason string) {
	if qg.logger != nil {
		qg.logger.LogQuizResult(question, action, reason)
	}
	VerboseLog("Question %q: %s - %s", question, action, reason)
}
