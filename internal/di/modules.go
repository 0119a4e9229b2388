package di

import (
	"datachat-ai/config"
	"datachat-ai/internal/apis/handlers"
	"datachat-ai/internal/constants"
	"datachat-ai/internal/repositories"
	"datachat-ai/internal/services"
	"datachat-ai/pkg/datastore"
	"datachat-ai/pkg/embedder"
	"datachat-ai/pkg/llm"
	"datachat-ai/pkg/mongodb"
	"datachat-ai/pkg/redis"
	"log"

	"go.uber.org/dig"
)

var DiContainer *dig.Container

func Initialize() {
	DiContainer = dig.New()

	// Initialize MongoDB
	dbConfig := mongodb.MongoDbConfigModel{
		ConnectionUrl: config.Env.MongoURI,
		DatabaseName:  config.Env.MongoDatabaseName,
	}
	mongodbClient := mongodb.InitializeDatabaseConnection(dbConfig)

	// Initialize Redis
	redisClient, err := redis.RedisClient(config.Env.RedisHost, config.Env.RedisPort, config.Env.RedisPassword)
	if err != nil {
		log.Fatalf("Failed to initialize Redis client: %v", err)
	}
	cacheRepo := redis.NewCacheRepository(redisClient)

	sessionRepo := repositories.NewSessionRepository(mongodbClient)

	// Provide all dependencies to the container
	if err := DiContainer.Provide(func() *mongodb.MongoDBClient { return mongodbClient }); err != nil {
		log.Fatalf("Failed to provide MongoDB client: %v", err)
	}

	if err := DiContainer.Provide(func() redis.ICacheRepository { return cacheRepo }); err != nil {
		log.Fatalf("Failed to provide cache repository: %v", err)
	}

	if err := DiContainer.Provide(func() repositories.SessionRepository { return sessionRepo }); err != nil {
		log.Fatalf("Failed to provide session repository: %v", err)
	}

	// Provide datastore manager with the archival drivers registered
	if err := DiContainer.Provide(func() *datastore.Manager {
		manager := datastore.NewManager()
		manager.RegisterDriver(constants.DatabaseTypePostgreSQL, datastore.NewPostgresDriver())
		manager.RegisterDriver(constants.DatabaseTypeMySQL, datastore.NewMySQLDriver())
		manager.RegisterDriver(constants.DatabaseTypeClickhouse, datastore.NewClickHouseDriver())
		return manager
	}); err != nil {
		log.Fatalf("Failed to provide datastore manager: %v", err)
	}

	// Add LLM Manager
	if err := DiContainer.Provide(func() *llm.Manager {
		manager := llm.NewManager()

		switch config.Env.DefaultLLMClient {
		case constants.OpenAI:
			err := manager.RegisterClient(constants.OpenAI, llm.Config{
				Provider:            constants.OpenAI,
				Model:               config.Env.OpenAIModel,
				APIKey:              config.Env.OpenAIAPIKey,
				MaxCompletionTokens: config.Env.OpenAIMaxCompletionTokens,
				Temperature:         config.Env.OpenAITemperature,
				PlannerSchema:       constants.GetPlannerSchema(constants.OpenAI),
			})
			if err != nil {
				log.Printf("Warning: Failed to register OpenAI client: %v", err)
			}
		case constants.Gemini:
			err := manager.RegisterClient(constants.Gemini, llm.Config{
				Provider:            constants.Gemini,
				Model:               config.Env.GeminiModel,
				APIKey:              config.Env.GeminiAPIKey,
				MaxCompletionTokens: config.Env.GeminiMaxCompletionTokens,
				Temperature:         config.Env.GeminiTemperature,
				PlannerSchema:       constants.GetPlannerSchema(constants.Gemini),
			})
			if err != nil {
				log.Printf("Warning: Failed to register Gemini client: %v", err)
			}
		}
		return manager
	}); err != nil {
		log.Fatalf("Failed to provide LLM manager: %v", err)
	}

	// Provide the embedder, cached through Redis
	if err := DiContainer.Provide(func(cache redis.ICacheRepository) embedder.Embedder {
		cfg := embedder.Config{Provider: config.Env.DefaultLLMClient}
		switch cfg.Provider {
		case constants.OpenAI:
			cfg.APIKey = config.Env.OpenAIAPIKey
			cfg.Model = config.Env.OpenAIEmbeddingModel
		case constants.Gemini:
			cfg.APIKey = config.Env.GeminiAPIKey
			cfg.Model = config.Env.GeminiEmbeddingModel
		}

		emb, err := embedder.NewEmbedder(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize embedder: %v", err)
		}
		return embedder.NewCachedEmbedder(emb, cache, cfg.Model, constants.EmbeddingCacheTTL)
	}); err != nil {
		log.Fatalf("Failed to provide embedder: %v", err)
	}

	// Provide services
	if err := DiContainer.Provide(func(store *datastore.Manager, emb embedder.Embedder) services.DatasetService {
		return services.NewDatasetService(store, emb)
	}); err != nil {
		log.Fatalf("Failed to provide dataset service: %v", err)
	}

	if err := DiContainer.Provide(func(
		sessionRepo repositories.SessionRepository,
		datasetService services.DatasetService,
		llmManager *llm.Manager,
	) services.ChatService {
		return services.NewChatService(sessionRepo, datasetService, llmManager)
	}); err != nil {
		log.Fatalf("Failed to provide chat service: %v", err)
	}

	// Provide handlers
	if err := DiContainer.Provide(func(datasetService services.DatasetService) *handlers.DatasetHandler {
		return handlers.NewDatasetHandler(datasetService)
	}); err != nil {
		log.Fatalf("Failed to provide dataset handler: %v", err)
	}

	if err := DiContainer.Provide(func(chatService services.ChatService) *handlers.SessionHandler {
		return handlers.NewSessionHandler(chatService)
	}); err != nil {
		log.Fatalf("Failed to provide session handler: %v", err)
	}
}

// GetDatasetHandler retrieves the DatasetHandler from the DI container
func GetDatasetHandler() (*handlers.DatasetHandler, error) {
	var handler *handlers.DatasetHandler
	err := DiContainer.Invoke(func(h *handlers.DatasetHandler) {
		handler = h
	})
	if err != nil {
		return nil, err
	}
	return handler, nil
}

// GetSessionHandler retrieves the SessionHandler from the DI container
func GetSessionHandler() (*handlers.SessionHandler, error) {
	var handler *handlers.SessionHandler
	err := DiContainer.Invoke(func(h *handlers.SessionHandler) {
		handler = h
	})
	if err != nil {
		return nil, err
	}
	return handler, nil
}
