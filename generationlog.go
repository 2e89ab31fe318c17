package quizgame

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// GenerationLog records the LLM traffic of one generation run in its own file
type GenerationLog struct {
	file  *os.File
	mu    sync.Mutex
	runID string
}

// NewGenerationLog creates dir/<runID>.log and writes the run header
func NewGenerationLog(dir, runID string, req GenerationRequest) (*GenerationLog, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s.log", runID))
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	gl := &GenerationLog{
		file:  file,
		runID: runID,
	}

	gl.Logf("=== Quiz Generation Log ===\n")
	gl.Logf("Run ID: %s\n", runID)
	gl.Logf("Topic: %s\n", req.Topic)
	gl.Logf("Number of Questions: %d\n", req.NumQuestions)
	gl.Logf("Author ID: %d\n", req.AuthorID)
	if req.Difficulty != "" {
		gl.Logf("Difficulty: %s\n", req.Difficulty)
	}
	if req.SourceMaterial != "" {
		gl.Logf("Source Material Length: %d characters\n", len(req.SourceMaterial))
	}
	gl.Logf("Started: %s\n", time.Now().Format(time.RFC3339))
	gl.Logf("========================\n\n")

	return gl, nil
}

// Logf writes a formatted log entry with timestamp
func (gl *GenerationLog) Logf(format string, args ...interface{}) {
	gl.mu.Lock()
	defer gl.mu.Unlock()
	gl.writef(format, args...)
}

func (gl *GenerationLog) writef(format string, args ...interface{}) {
	if gl.file == nil {
		return
	}
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(gl.file, "[%s] %s", timestamp, fmt.Sprintf(format, args...))
	gl.file.Sync()
}

// LogLLMRequest logs an LLM request
func (gl *GenerationLog) LogLLMRequest(module, prompt string) {
	gl.Logf("=== LLM REQUEST (%s) ===\nPrompt:\n%s\n=====================\n\n", module, prompt)
}

// LogLLMResponse logs an LLM response
func (gl *GenerationLog) LogLLMResponse(module, response string) {
	gl.Logf("=== LLM RESPONSE (%s) ===\nResponse:\n%s\n======================\n\n", module, response)
}

// LogQuizResult logs what happened to a generated quiz
func (gl *GenerationLog) LogQuizResult(question, action, reason string) {
	gl.Logf("Question %q: %s - %s\n", question, action, reason)
}

// Path returns the log file location
func (gl *GenerationLog) Path() string {
	if gl.file == nil {
		return ""
	}
	return gl.file.Name()
}

// Close writes the footer and closes the log file
func (gl *GenerationLog) Close() error {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	if gl.file == nil {
		return nil
	}
	gl.writef("=== Quiz Generation Complete ===\n")
	gl.writef("Completed: %s\n", time.Now().Format(time.RFC3339))
	err := gl.file.Close()
	gl.file = nil
	return err
}
