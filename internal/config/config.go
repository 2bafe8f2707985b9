package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Qdrant   QdrantConfig
	Gemini   GeminiConfig
	Groq     GroqConfig
	Storage  StorageConfig
	Worker   WorkerConfig
	Retry    RetryConfig
	Limits   LimitsConfig
	RunLog   RunLogConfig
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// QdrantConfig points at the guidance collection. An empty URL disables retrieval.
type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	VectorSize int
}

type GeminiConfig struct {
	APIKey     string
	Model      string
	EmbedModel string
}

type GroqConfig struct {
	APIKey  string
	BaseURL string
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
}

type WorkerConfig struct {
	Concurrency int
}

type RetryConfig struct {
	MaxRetries    int
	BaseDelay     time.Duration
	RateLimitStep time.Duration
}

// LimitsConfig caps how much text is put into each prompt.
type LimitsConfig struct {
	AnalysisResumeChars    int
	AnalysisJobChars       int
	OptimizeResumeChars    int
	OptimizeJobChars       int
	OptimizeContextChars   int
	InterviewResumeChars   int
	OfflineResumeEchoChars int
	MaxRequestTextChars    int
}

type RunLogConfig struct {
	Path string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Info("⚠️  No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port:     getEnv("PORT", "3000"),
			Env:      getEnv("ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "ats_agent"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", ""),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "resume_guidance"),
			VectorSize: getEnvAsInt("QDRANT_VECTOR_SIZE", 768),
		},
		Gemini: GeminiConfig{
			APIKey:     getEnv("GOOGLE_API_KEY", ""),
			Model:      getEnv("GOOGLE_MODEL", "gemini-2.5-flash"),
			EmbedModel: getEnv("EMBEDDING_MODEL", "text-embedding-004"),
		},
		Groq: GroqConfig{
			APIKey:  getEnv("GROQ_API_KEY", ""),
			BaseURL: getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1/"),
		},
		Storage: StorageConfig{
			UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Worker: WorkerConfig{
			Concurrency: getEnvAsInt("WORKER_CONCURRENCY", 3),
		},
		Retry: RetryConfig{
			MaxRetries:    getEnvAsInt("MAX_RETRIES", 3),
			BaseDelay:     getEnvAsDuration("RETRY_BASE_DELAY", "2s"),
			RateLimitStep: getEnvAsDuration("RATE_LIMIT_STEP", "5s"),
		},
		Limits: LimitsConfig{
			AnalysisResumeChars:    getEnvAsInt("ANALYSIS_RESUME_CHARS", 4000),
			AnalysisJobChars:       getEnvAsInt("ANALYSIS_JOB_CHARS", 3000),
			OptimizeResumeChars:    getEnvAsInt("OPTIMIZE_RESUME_CHARS", 3500),
			OptimizeJobChars:       getEnvAsInt("OPTIMIZE_JOB_CHARS", 2500),
			OptimizeContextChars:   getEnvAsInt("OPTIMIZE_CONTEXT_CHARS", 1500),
			InterviewResumeChars:   getEnvAsInt("INTERVIEW_RESUME_CHARS", 1000),
			OfflineResumeEchoChars: getEnvAsInt("OFFLINE_RESUME_ECHO_CHARS", 2000),
			MaxRequestTextChars:    getEnvAsInt("MAX_REQUEST_TEXT_CHARS", 50000),
		},
		RunLog: RunLogConfig{
			Path: getEnv("RUN_LOG_PATH", "./analysis_log.csv"),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
