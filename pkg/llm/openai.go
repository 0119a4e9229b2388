package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/sashabaranov/go-openai"
)

type OpenAIClient struct {
	client              *openai.Client
	model               string
	maxCompletionTokens int
	temperature         float64
	plannerSchema       json.RawMessage
}

func NewOpenAIClient(config Config) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	client := openai.NewClient(config.APIKey)
	model := config.Model
	if model == "" {
		model = openai.GPT4o
	}

	var schema json.RawMessage
	if config.PlannerSchema != nil {
		raw, ok := config.PlannerSchema.(string)
		if !ok {
			return nil, fmt.Errorf("OpenAI planner schema must be a JSON schema string")
		}
		schema = json.RawMessage(raw)
	}

	return &OpenAIClient{
		client:              client,
		model:               model,
		maxCompletionTokens: config.MaxCompletionTokens,
		temperature:         config.Temperature,
		plannerSchema:       schema,
	}, nil
}

func (c *OpenAIClient) GenerateResponse(ctx context.Context, req CompletionRequest) (string, error) {
	// Check if the context is cancelled
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	openAIMessages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)

	if req.SystemPrompt != "" {
		openAIMessages = append(openAIMessages, openai.ChatCompletionMessage{
			Role:    "system",
			Content: req.SystemPrompt,
		})
	}

	for _, msg := range req.History {
		if msg.Content == "" {
			continue
		}
		openAIMessages = append(openAIMessages, openai.ChatCompletionMessage{
			Role:    mapRole(msg.Role),
			Content: msg.Content,
		})
	}

	openAIMessages = append(openAIMessages, openai.ChatCompletionMessage{
		Role:    "user",
		Content: req.Prompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:               c.model,
		Messages:            openAIMessages,
		MaxCompletionTokens: c.maxCompletionTokens,
		Temperature:         float32(c.temperature),
	}

	// Planner calls are constrained to the structured-output schema so the
	// model cannot answer with free-form code
	if req.ForceJSON && c.plannerSchema != nil {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        "datachat-planner-response",
				Description: "A structured tabular query or a conversational intent",
				Schema:      c.plannerSchema,
				Strict:      false,
			},
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		log.Printf("GenerateResponse -> err: %v", err)
		return "", classifyTransportError(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no response from OpenAI", ErrModelUnavailable)
	}

	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) GetModelInfo() ModelInfo {
	return ModelInfo{
		Name:                c.model,
		Provider:            "openai",
		MaxCompletionTokens: c.maxCompletionTokens,
	}
}
