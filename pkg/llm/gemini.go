package llm

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type GeminiClient struct {
	client              *genai.Client
	model               string
	maxCompletionTokens int
	temperature         float64
	plannerSchema       *genai.Schema
}

func NewGeminiClient(config Config) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	// Create the Gemini SDK client using the provided API key.
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %v", err)
	}

	var schema *genai.Schema
	if config.PlannerSchema != nil {
		s, ok := config.PlannerSchema.(*genai.Schema)
		if !ok {
			return nil, fmt.Errorf("gemini planner schema must be a *genai.Schema")
		}
		schema = s
	}

	return &GeminiClient{
		client:              client,
		model:               config.Model,
		maxCompletionTokens: config.MaxCompletionTokens,
		temperature:         config.Temperature,
		plannerSchema:       schema,
	}, nil
}

func (c *GeminiClient) GenerateResponse(ctx context.Context, req CompletionRequest) (string, error) {
	// Check if the context is cancelled
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	history := make([]*genai.Content, 0, len(req.History))
	for _, msg := range req.History {
		if msg.Content == "" {
			continue
		}
		role := "user"
		if msg.Role == "assistant" {
			role = "model"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	model := c.client.GenerativeModel(c.model)
	if c.maxCompletionTokens > 0 {
		maxTokens := int32(c.maxCompletionTokens)
		model.MaxOutputTokens = &maxTokens
	}
	model.SetTemperature(float32(c.temperature))
	if req.SystemPrompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.SystemPrompt)},
		}
	}
	if req.ForceJSON && c.plannerSchema != nil {
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = c.plannerSchema
	}
	model.SafetySettings = []*genai.SafetySetting{
		{
			Category:  genai.HarmCategoryHarassment,
			Threshold: genai.HarmBlockNone,
		},
		{
			Category:  genai.HarmCategoryHateSpeech,
			Threshold: genai.HarmBlockNone,
		},
	}

	session := model.StartChat()
	session.History = history

	// Check if the context is cancelled
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	result, err := session.SendMessage(ctx, genai.Text(req.Prompt))
	if err != nil {
		log.Printf("Gemini API error: %v", err)
		return "", classifyTransportError(err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response from Gemini", ErrModelUnavailable)
	}

	responseText := fmt.Sprintf("%v", result.Candidates[0].Content.Parts[0])
	responseText = strings.ReplaceAll(responseText, "```json", "")
	responseText = strings.ReplaceAll(responseText, "```", "")

	return strings.TrimSpace(responseText), nil
}

// GetModelInfo returns information about the Gemini model.
func (c *GeminiClient) GetModelInfo() ModelInfo {
	return ModelInfo{
		Name:                c.model,
		Provider:            "gemini",
		MaxCompletionTokens: c.maxCompletionTokens,
	}
}
