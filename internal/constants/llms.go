package constants

const (
	OpenAI = "openai"
	Gemini = "gemini"
)

const (
	OpenAIModel               = "gpt-4o"
	OpenAITemperature         = 0.3
	OpenAIMaxCompletionTokens = 4096
	OpenAIEmbeddingModel      = "text-embedding-3-small"
)

const (
	GeminiModel               = "gemini-2.5-flash"
	GeminiTemperature         = 0.3
	GeminiMaxCompletionTokens = 4096
	GeminiEmbeddingModel      = "text-embedding-004"
)

// GetPlannerSchema returns the provider-specific structured-output schema
// for planner calls
func GetPlannerSchema(provider string) interface{} {
	switch provider {
	case OpenAI:
		return OpenAIPlannerResponseSchema
	case Gemini:
		return GeminiPlannerResponseSchema()
	}
	return nil
}
