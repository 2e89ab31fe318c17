package quizgame

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// CheckAction is what the checker decided to do with a generated quiz
type CheckAction string

const (
	ActionAccept CheckAction = "accept"
	ActionReject CheckAction = "reject"
	ActionRevise CheckAction = "revise"
)

// CheckResult is the outcome of reviewing a generated quiz
type CheckResult struct {
	Action  CheckAction `json:"action"`
	Reason  string      `json:"reason"`
	Revised *QuizItem   `json:"revised,omitempty"`
}

// QuestionChecker reviews generated quizzes with GPT-4o before they are stored
type QuestionChecker struct {
	client *openai.Client
	logger *GenerationLog
}

// NewQuestionChecker creates a new question checker with OpenAI client
func NewQuestionChecker(apiKey string) *QuestionChecker {
	return NewQuestionCheckerWithClient(openai.NewClient(apiKey))
}

// NewQuestionCheckerWithClient creates a question checker around an existing client
func NewQuestionCheckerWithClient(client *openai.Client) *QuestionChecker {
	return &QuestionChecker{client: client}
}

// SetLogger sets the generation log prompts and responses are written to
func (qc *QuestionChecker) SetLogger(logger *GenerationLog) {
	qc.logger = logger
}

// CheckQuestion reviews a single quiz. A revise result carries a replacement
// question and answer; everything else about the quiz is kept.
func (qc *QuestionChecker) CheckQuestion(ctx context.Context, topic string, quiz *QuizItem) (*CheckResult, error) {
	prompt := qc.buildPrompt(topic, quiz)
	if qc.logger != nil {
		qc.logger.LogLLMRequest("QuestionChecker", prompt)
	}

	resp, err := qc.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are an expert quiz question validator. Evaluate questions for correctness, clarity and fairness.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Tools: []openai.Tool{
				{
					Type: openai.ToolTypeFunction,
					Function: &openai.FunctionDefinition{
						Name:        "evaluate_question",
						Description: "Evaluate a quiz question and decide whether to accept, reject, or revise it",
						Parameters: map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"reason": map[string]interface{}{
									"type":        "string",
									"description": "Explanation for the decision",
								},
								"action": map[string]interface{}{
									"type":        "string",
									"enum":        []string{"accept", "reject", "revise"},
									"description": "What to do with this question",
								},
								"revised_question": map[string]interface{}{
									"type":        "string",
									"description": "The revised question text (only if action is 'revise')",
								},
								"revised_answer": map[string]interface{}{
									"type":        "string",
									"description": "The revised answer (only if action is 'revise')",
								},
							},
							"required": []string{"reason", "action"},
						},
					},
				},
			},
			ToolChoice: openai.ToolChoice{
				Type: openai.ToolTypeFunction,
				Function: openai.ToolFunction{
					Name: "evaluate_question",
				},
			},
		},
	)

	if err != nil {
		return nil, fmt.Errorf("failed to check question: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from GPT-4o")
	}

	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) == 0 {
		return nil, fmt.Errorf("no tool calls in response")
	}

	toolCall := choice.Message.ToolCalls[0]
	if toolCall.Function.Name != "evaluate_question" {
		return nil, fmt.Errorf("unexpected tool call: %s", toolCall.Function.Name)
	}
	if qc.logger != nil {
		qc.logger.LogLLMResponse("QuestionChecker", toolCall.Function.Arguments)
	}

	var toolArgs struct {
		Reason          string `json:"reason"`
		Action          string `json:"action"`
		RevisedQuestion string `json:"revised_question"`
		RevisedAnswer   string `json:"revised_answer"`
	}

	if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &toolArgs); err != nil {
		return nil, fmt.Errorf("failed to parse tool arguments: %w", err)
	}

	result := &CheckResult{Action: CheckAction(toolArgs.Action), Reason: toolArgs.Reason}
	switch result.Action {
	case ActionAccept, ActionReject:
	case ActionRevise:
		question := strings.TrimSpace(toolArgs.RevisedQuestion)
		answer := strings.TrimSpace(toolArgs.RevisedAnswer)
		if question == "" || answer == "" {
			// a revision without content is not usable
			result.Action = ActionReject
			result.Reason = "incomplete revision: " + result.Reason
			break
		}
		revised := *quiz
		revised.Question, revised.Answer = question, answer
		result.Revised = &revised
	default:
		return nil, fmt.Errorf("unexpected action: %q", toolArgs.Action)
	}

	VerboseLog("Question %q: %s - %s", quiz.Question, result.Action, result.Reason)
	return result, nil
}

func (qc *QuestionChecker) buildPrompt(topic string, quiz *QuizItem) string {
	var sb strings.Builder

	sb.WriteString("Evaluate the following quiz question:\n\n")
	sb.WriteString(fmt.Sprintf("Quiz Topic: %s\n\n", topic))
	sb.WriteString(fmt.Sprintf("Question: %s\n", quiz.Question))
	sb.WriteString(fmt.Sprintf("Answer: %s\n\n", quiz.Answer))

	sb.WriteString("Players type the answer and it is compared ignoring case and surrounding spaces.\n\n")

	sb.WriteString("Reject the question if:\n")
	sb.WriteString("- the answer appears in the question text or is obvious from it\n")
	sb.WriteString("- the question is not relevant to the quiz topic\n")
	sb.WriteString("- the answer is wrong\n\n")

	sb.WriteString("Revise the question if:\n")
	sb.WriteString("- the answer is long or has several common spellings and a shorter form exists\n")
	sb.WriteString("- the question is ambiguous but can be made precise\n\n")

	sb.WriteString("Otherwise accept it. A plain question with a correct short answer is better than no question at all.\n")
	sb.WriteString("If you choose to revise, provide both the revised question and the revised answer.")

	return sb.String()
}
