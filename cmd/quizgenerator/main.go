package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"quizgame"
)

func main() {
	cfg := quizgame.ConfigFromEnv()

	var (
		topic          = flag.String("topic", "", "Quiz topic (required)")
		numQuestions   = flag.Int("questions", 10, "Number of questions to generate")
		sourceMaterial = flag.String("source", "", "Source material to base questions on")
		difficulty     = flag.String("difficulty", "medium", "Difficulty level (easy, medium, hard)")
		authorID       = flag.Int64("author", 0, "Author id stored on the generated quizzes")
		driver         = flag.String("driver", cfg.DBDriver, "Database driver (sqlite3, sqlite, postgres)")
		dsn            = flag.String("db", cfg.DBDSN, "Database DSN or file path")
		logDir         = flag.String("log-dir", "log", "Directory for the generation log")
		apiKey         = flag.String("api-key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
		check          = flag.Bool("check", true, "Review every generated quiz with a second LLM pass")
		verbose        = flag.Bool("verbose", cfg.Verbose, "Enable verbose debugging output")
	)

	flag.Parse()

	quizgame.SetVerbose(*verbose)

	if *topic == "" {
		log.Fatal("Topic is required. Use -topic flag.")
	}
	if *numQuestions <= 0 {
		log.Fatal("Number of questions must be positive.")
	}

	// Get API key from flag or environment
	if *apiKey == "" {
		*apiKey = cfg.OpenAIAPIKey
		if *apiKey == "" {
			log.Fatal("OpenAI API key is required. Use -api-key flag or set OPENAI_API_KEY environment variable.")
		}
	}

	// Generate quiz with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := quizgame.OpenDB(ctx, *driver, *dsn)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.CloseDB()

	if err := db.CreateTables(ctx); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	req := quizgame.GenerationRequest{
		Topic:          *topic,
		NumQuestions:   *numQuestions,
		SourceMaterial: *sourceMaterial,
		Difficulty:     *difficulty,
		AuthorID:       *authorID,
	}

	maker := quizgame.NewQuestionMaker(*apiKey)
	generator := quizgame.NewQuizGenerator(maker, db)

	var checker *quizgame.QuestionChecker
	if *check {
		checker = quizgame.NewQuestionChecker(*apiKey)
		generator.SetChecker(checker)
	}

	runID := time.Now().Format("20060102-150405")
	logger, err := quizgame.NewGenerationLog(*logDir, runID, req)
	if err != nil {
		log.Printf("Failed to create generation log: %v", err)
		// Continue without logging rather than failing
	} else {
		maker.SetLogger(logger)
		generator.SetLogger(logger)
		if checker != nil {
			checker.SetLogger(logger)
		}
		defer logger.Close()
	}

	if *verbose {
		log.Printf("Target questions: %d, Difficulty: %s", *numQuestions, *difficulty)
		if *sourceMaterial != "" {
			log.Printf("Using source material: %d characters", len(*sourceMaterial))
		}
	}

	created, err := generator.GenerateQuiz(ctx, req)
	if err != nil {
		if len(created) == 0 {
			log.Fatalf("Failed to generate quizzes: %v", err)
		}
		log.Printf("Generation stopped early after %d quizzes: %v", len(created), err)
	}

	output, err := json.MarshalIndent(created, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal quizzes: %v", err)
	}
	fmt.Println(string(output))

	if logger != nil {
		log.Printf("Generation log written to %s", logger.Path())
	}
}
