package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI string
	DBName   string

	// Weaviate vector store
	WeaviateURL     string
	WeaviateAPIKey  string
	VectorClass     string
	VectorDimension int

	// Embeddings
	EmbeddingsProvider    string // "google" (default), "openai", "cohere"
	GeminiAPIKey          string
	GoogleEmbeddingsModel string // e.g., "text-embedding-004"
	OpenAIAPIKey          string
	OpenAIEmbeddingsModel string
	CohereAPIKey          string
	CohereEmbeddingsModel string

	// Chat completion model used for answer synthesis
	ModelName string

	// Auth
	SecretKey    string
	Algorithm    string
	JWTExpiresIn string
	BcryptCost   int

	// HTTP
	Port         string
	GinMode      string
	CORSOrigins  []string
	MaxFileSize  int64
	AllowedTypes []string

	// Ingestion
	FileStorageDir string
	RetrievalTopK  int

	// Every outbound call (embeddings, vector store, Mongo) runs under
	// this deadline.
	RemoteTimeoutSecs int

	// Redis (rate limiting)
	RedisURL      string
	RedisPassword string
	RedisDB       int
	RateLimitReqs int
	RateLimitWin  int

	// Telemetry
	TracingEnabled bool
	OTLPEndpoint   string
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017/rag_chatbot"),
		DBName:   getEnv("DB_NAME", "rag_chatbot"),

		WeaviateURL:     getEnv("WEAVIATE_URL", ""),
		WeaviateAPIKey:  getEnv("WEAVIATE_API_KEY", ""),
		VectorClass:     getEnv("VECTOR_CLASS", "Document"),
		VectorDimension: getEnvInt("VECTOR_DIM", 768),

		EmbeddingsProvider:    getEnv("EMBEDDINGS_PROVIDER", "google"),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GoogleEmbeddingsModel: getEnv("GOOGLE_EMBEDDINGS_MODEL", "text-embedding-004"),
		OpenAIAPIKey:          getEnv("OPENAI_API_KEY", ""),
		OpenAIEmbeddingsModel: getEnv("OPENAI_EMBEDDINGS_MODEL", "text-embedding-3-small"),
		CohereAPIKey:          getEnv("COHERE_API_KEY", ""),
		CohereEmbeddingsModel: getEnv("COHERE_EMBEDDINGS_MODEL", "embed-english-v3.0"),

		ModelName: getEnv("MODEL_NAME", "gemini-2.0-flash"),

		SecretKey:    getEnv("SECRET_KEY", ""),
		Algorithm:    getEnv("ALGORITHM", "HS256"),
		JWTExpiresIn: getEnv("JWT_EXPIRES_IN", "24h"),
		BcryptCost:   getEnvInt("BCRYPT_COST", 12),

		Port:         getEnv("PORT", "8080"),
		GinMode:      getEnv("GIN_MODE", "debug"),
		CORSOrigins:  strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		MaxFileSize:  getEnvInt64("MAX_FILE_SIZE", 20971520), // 20MB
		AllowedTypes: strings.Split(getEnv("ALLOWED_FILE_TYPES", "application/pdf"), ","),

		FileStorageDir: getEnv("FILE_STORAGE_DIR", "./uploaded_pdfs"),
		RetrievalTopK:  getEnvInt("RETRIEVAL_TOP_K", 3),

		RemoteTimeoutSecs: getEnvInt("REMOTE_TIMEOUT_SECONDS", 30),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RateLimitReqs: getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWin:  getEnvInt("RATE_LIMIT_WINDOW", 60),

		TracingEnabled: getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", "localhost:4317"),
	}

	// Validate required fields - a missing option must fail startup, not a
	// later request.
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("SECRET_KEY is required - set it in .env file")
	}

	if cfg.Algorithm != "HS256" && cfg.Algorithm != "HS384" && cfg.Algorithm != "HS512" {
		return nil, fmt.Errorf("unsupported ALGORITHM: %s", cfg.Algorithm)
	}

	if cfg.WeaviateURL == "" {
		return nil, fmt.Errorf("WEAVIATE_URL is required - set it in .env file")
	}

	switch cfg.EmbeddingsProvider {
	case "google":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for the google embeddings provider")
		}
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai embeddings provider")
		}
	case "cohere":
		if cfg.CohereAPIKey == "" {
			return nil, fmt.Errorf("COHERE_API_KEY is required for the cohere embeddings provider")
		}
	default:
		return nil, fmt.Errorf("unknown embeddings provider: %s", cfg.EmbeddingsProvider)
	}

	if cfg.VectorDimension <= 0 {
		return nil, fmt.Errorf("VECTOR_DIM must be positive, got %d", cfg.VectorDimension)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
