package quizgame

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// QuestionMaker generates question/answer pairs using GPT-4o
type QuestionMaker struct {
	client *openai.Client
	logger *GenerationLog
}

// NewQuestionMaker creates a new question maker with OpenAI client
func NewQuestionMaker(apiKey string) *QuestionMaker {
	return NewQuestionMakerWithClient(openai.NewClient(apiKey))
}

// NewQuestionMakerWithClient creates a question maker around an existing client
func NewQuestionMakerWithClient(client *openai.Client) *QuestionMaker {
	return &QuestionMaker{client: client}
}

// SetLogger sets the generation log prompts and responses are written to
func (qm *QuestionMaker) SetLogger(logger *GenerationLog) {
	qm.logger = logger
}

// GenerateQuestions generates a batch of quizzes for the given topic
func (qm *QuestionMaker) GenerateQuestions(ctx context.Context, req GenerationRequest, batchSize int) ([]*QuizItem, error) {
	log.Printf("Generating %d questions for topic: %s", batchSize, req.Topic)

	prompt := qm.buildPrompt(req, batchSize)
	if qm.logger != nil {
		qm.logger.LogLLMRequest("QuestionMaker", prompt)
	}

	resp, err := qm.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are an expert quiz writer. Write short questions whose answer is a single word, number or short name.",
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
						Name:        "submit_questions",
						Description: "Submit generated quiz questions",
						Parameters: map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"questions": map[string]interface{}{
									"type": "array",
									"items": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"question": map[string]interface{}{
												"type":        "string",
												"description": "The question text",
											},
											"answer": map[string]interface{}{
												"type":        "string",
												"description": "The expected answer, as short as possible",
											},
										},
										"required": []string{"question", "answer"},
									},
								},
							},
							"required": []string{"questions"},
						},
					},
				},
			},
			ToolChoice: openai.ToolChoice{
				Type: openai.ToolTypeFunction,
				Function: openai.ToolFunction{
					Name: "submit_questions",
				},
			},
		},
	)

	if err != nil {
		return nil, fmt.Errorf("failed to generate questions: %w", err)
	}

	VerboseLog("Received response from GPT-4o with %d choices", len(resp.Choices))

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from GPT-4o")
	}

	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) == 0 {
		return nil, fmt.Errorf("no tool calls in response")
	}

	toolCall := choice.Message.ToolCalls[0]
	if toolCall.Function.Name != "submit_questions" {
		return nil, fmt.Errorf("unexpected tool call: %s", toolCall.Function.Name)
	}
	if qm.logger != nil {
		qm.logger.LogLLMResponse("QuestionMaker", toolCall.Function.Arguments)
	}

	var toolArgs struct {
		Questions []struct {
			Question string `json:"question"`
			Answer   string `json:"answer"`
		} `json:"questions"`
	}

	if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &toolArgs); err != nil {
		return nil, fmt.Errorf("failed to parse tool arguments: %w", err)
	}

	quizzes := make([]*QuizItem, 0, len(toolArgs.Questions))
	for _, q := range toolArgs.Questions {
		question := strings.TrimSpace(q.Question)
		answer := strings.TrimSpace(q.Answer)
		if question == "" || answer == "" {
			VerboseLog("Skipping incomplete question %q", q.Question)
			continue
		}
		quizzes = append(quizzes, &QuizItem{
			Question: question,
			Answer:   answer,
			AuthorID: req.AuthorID,
		})
	}

	log.Printf("Generated %d questions", len(quizzes))
	return quizzes, nil
}

func (qm *QuestionMaker) buildPrompt(req GenerationRequest, batchSize int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Generate %d quiz questions about: %s\n\n", batchSize, req.Topic))

	if req.SourceMaterial != "" {
		sb.WriteString("Use the following source material as reference:\n")
		sb.WriteString(req.SourceMaterial)
		sb.WriteString("\n\n")
	}

	if req.Difficulty != "" {
		sb.WriteString(fmt.Sprintf("Difficulty level: %s\n\n", req.Difficulty))
	}

	sb.WriteString("Requirements:\n")
	sb.WriteString("- Each question has exactly one correct answer\n")
	sb.WriteString("- Answers are typed by the player, so keep them to one or two words or a number\n")
	sb.WriteString("- Avoid answers with several accepted spellings\n")
	sb.WriteString("- Avoid questions where the answer is given away in the question text\n")
	sb.WriteString("- Use the submit_questions tool to return your questions\n")

	return sb.String()
}
