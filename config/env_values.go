package config

import (
	"datachat-ai/internal/constants"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Environment struct {
	// Server configs
	IsDocker          bool
	Port              string
	Environment       string
	CorsAllowedOrigin string

	// Database configs
	MongoURI          string
	MongoDatabaseName string

	// Redis configs
	RedisHost     string
	RedisPort     string
	RedisPassword string

	// Archival database configs (optional, datasets stay in memory when unset)
	ArchiveEnabled  bool
	ArchiveType     string
	ArchiveHost     string
	ArchivePort     string
	ArchiveName     string
	ArchiveUsername string
	ArchivePassword string

	// LLM configs
	DefaultLLMClient string

	// OpenAI configs
	OpenAIAPIKey              string
	OpenAIModel               string
	OpenAIMaxCompletionTokens int
	OpenAITemperature         float64
	OpenAIEmbeddingModel      string

	// Gemini configs
	GeminiAPIKey              string
	GeminiModel               string
	GeminiMaxCompletionTokens int
	GeminiTemperature         float64
	GeminiEmbeddingModel      string

	// Pipeline configs
	HistoryWindow  int
	RetrieverTopK  int
	PreviewRows    int
	MaxSentences   int
	LLMTimeoutSecs int
}

var Env Environment

// LoadEnv loads environment variables from .env file if present
// and validates required variables
func LoadEnv() error {
	// Check if running in Docker
	Env.IsDocker = os.Getenv("IS_DOCKER") == "true"

	// Load .env file only if not running in Docker
	if !Env.IsDocker {
		if err := godotenv.Load(); err != nil {
			fmt.Printf("Warning: .env file not found: %v\n", err)
		}
	}

	// Server configs
	Env.Port = getEnvWithDefault("PORT", "3000")
	Env.Environment = getEnvWithDefault("ENVIRONMENT", "DEVELOPMENT")
	Env.CorsAllowedOrigin = getEnvWithDefault("CORS_ALLOWED_ORIGIN", "http://localhost:5173")

	// Database configs
	Env.MongoURI = getEnvWithDefault("DATACHAT_MONGODB_URI", "mongodb://localhost:27017/datachat")
	Env.MongoDatabaseName = getEnvWithDefault("DATACHAT_MONGODB_NAME", "datachat")
	Env.RedisHost = getEnvWithDefault("DATACHAT_REDIS_HOST", "localhost")
	Env.RedisPort = getEnvWithDefault("DATACHAT_REDIS_PORT", "6379")
	Env.RedisPassword = getEnvWithDefault("DATACHAT_REDIS_PASSWORD", "")

	// Archival database configs
	Env.ArchiveEnabled = os.Getenv("ARCHIVE_DB_ENABLED") == "true"
	Env.ArchiveType = getEnvWithDefault("ARCHIVE_DB_TYPE", constants.DatabaseTypePostgreSQL)
	Env.ArchiveHost = getEnvWithDefault("ARCHIVE_DB_HOST", "localhost")
	Env.ArchivePort = getEnvWithDefault("ARCHIVE_DB_PORT", "5432")
	Env.ArchiveName = getEnvWithDefault("ARCHIVE_DB_NAME", "datachat")
	Env.ArchiveUsername = getEnvWithDefault("ARCHIVE_DB_USERNAME", "")
	Env.ArchivePassword = getEnvWithDefault("ARCHIVE_DB_PASSWORD", "")

	// LLM configs
	Env.DefaultLLMClient = getEnvWithDefault("DEFAULT_LLM_CLIENT", constants.OpenAI)

	// OpenAI configs
	Env.OpenAIAPIKey = getEnvWithDefault("OPENAI_API_KEY", "")
	Env.OpenAIModel = getEnvWithDefault("OPENAI_MODEL", constants.OpenAIModel)
	Env.OpenAIMaxCompletionTokens = getIntEnvWithDefault("OPENAI_MAX_COMPLETION_TOKENS", constants.OpenAIMaxCompletionTokens)
	Env.OpenAITemperature = getFloatEnvWithDefault("OPENAI_TEMPERATURE", constants.OpenAITemperature)
	Env.OpenAIEmbeddingModel = getEnvWithDefault("OPENAI_EMBEDDING_MODEL", constants.OpenAIEmbeddingModel)

	// Gemini configs
	Env.GeminiAPIKey = getEnvWithDefault("GEMINI_API_KEY", "")
	Env.GeminiModel = getEnvWithDefault("GEMINI_MODEL", constants.GeminiModel)
	Env.GeminiMaxCompletionTokens = getIntEnvWithDefault("GEMINI_MAX_COMPLETION_TOKENS", constants.GeminiMaxCompletionTokens)
	Env.GeminiTemperature = getFloatEnvWithDefault("GEMINI_TEMPERATURE", constants.GeminiTemperature)
	Env.GeminiEmbeddingModel = getEnvWithDefault("GEMINI_EMBEDDING_MODEL", constants.GeminiEmbeddingModel)

	// Pipeline configs
	Env.HistoryWindow = getIntEnvWithDefault("HISTORY_WINDOW", constants.DefaultHistoryWindow)
	Env.RetrieverTopK = getIntEnvWithDefault("RETRIEVER_TOP_K", constants.DefaultRetrieverTopK)
	Env.PreviewRows = getIntEnvWithDefault("PREVIEW_ROWS", constants.DefaultPreviewRows)
	Env.MaxSentences = getIntEnvWithDefault("MAX_SENTENCES", constants.DefaultMaxSentences)
	Env.LLMTimeoutSecs = getIntEnvWithDefault("LLM_TIMEOUT_SECONDS", int(constants.DefaultLLMTimeout.Seconds()))

	return validateConfig()
}

// Helper functions to get environment variables with defaults and validation
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnvWithDefault(key string, defaultValue int) int {
	strValue := os.Getenv(key)
	if strValue == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(strValue)
	if err != nil {
		fmt.Printf("Warning: Invalid value for %s, using default: %d\n", key, defaultValue)
		return defaultValue
	}
	return value
}

func getFloatEnvWithDefault(key string, defaultValue float64) float64 {
	strValue := os.Getenv(key)
	if strValue == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		fmt.Printf("Warning: Invalid value for %s, using default: %f\n", key, defaultValue)
		return defaultValue
	}
	return value
}

func validateConfig() error {
	// Validate MongoDB URI format
	if !isValidURI(Env.MongoURI) {
		return fmt.Errorf("invalid DATACHAT_MONGODB_URI format: %s", Env.MongoURI)
	}

	switch Env.DefaultLLMClient {
	case constants.OpenAI, constants.Gemini:
	default:
		return fmt.Errorf("unsupported DEFAULT_LLM_CLIENT: %s", Env.DefaultLLMClient)
	}

	if Env.HistoryWindow <= 0 {
		return fmt.Errorf("HISTORY_WINDOW must be positive, got: %d", Env.HistoryWindow)
	}
	if Env.RetrieverTopK <= 0 {
		return fmt.Errorf("RETRIEVER_TOP_K must be positive, got: %d", Env.RetrieverTopK)
	}

	return nil
}

func isValidURI(uri string) bool {
	return len(uri) > 10
}
