package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string

	// Database
	DatabaseURL string
	MongoDBURL  string
	MongoDBName string
	RedisURL    string

	// OpenAI
	OpenAIAPIKey   string
	LLMModel       string
	LLMMaxTokens   int
	LLMTemperature float64
	LLMTimeoutSec  int
	LLMMaxRetries  int

	// OAuth - Google
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	GoogleTokenPath    string

	// Processing
	BatchMaxMessages  int
	FetchConcurrency  int
	ProcessTimeout    time.Duration
	BodyPreviewLength int

	// Behavior flags
	SaveToDB     bool
	CreateDrafts bool

	// Webhook
	WebhookDedupeTTL time.Duration
	WebhookAudience  string

	// Snapshot retention (MongoDB TTL)
	SnapshotTTL time.Duration

	// CORS
	AllowedOrigins []string
}

// Load reads configuration from the environment. CreateDrafts defaults
// to SaveToDB so a dry run stays fully side-effect free unless drafts
// are enabled explicitly.
func Load() (*Config, error) {
	saveToDB := getEnvBool("SAVE_TO_DB", true)

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		MongoDBURL:  getEnv("MONGODB_URL", ""),
		MongoDBName: getEnv("MONGODB_DATABASE", "automail"),
		RedisURL:    getEnv("REDIS_URL", ""),

		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		LLMModel:       getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMMaxTokens:   getEnvInt("LLM_MAX_TOKENS", 2048),
		LLMTemperature: getEnvFloat("LLM_TEMPERATURE", 0.2),
		LLMTimeoutSec:  getEnvInt("LLM_TIMEOUT_SEC", 60),
		LLMMaxRetries:  getEnvInt("LLM_MAX_RETRIES", 3),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		GoogleTokenPath:    getEnv("GOOGLE_TOKEN_PATH", "token.json"),

		BatchMaxMessages:  getEnvInt("BATCH_MAX_MESSAGES", 25),
		FetchConcurrency:  getEnvInt("FETCH_CONCURRENCY", 5),
		ProcessTimeout:    time.Duration(getEnvInt("PROCESS_TIMEOUT_SEC", 120)) * time.Second,
		BodyPreviewLength: getEnvInt("BODY_PREVIEW_LENGTH", 2000),

		SaveToDB:     saveToDB,
		CreateDrafts: getEnvBool("CREATE_DRAFTS", saveToDB),

		WebhookDedupeTTL: time.Duration(getEnvInt("WEBHOOK_DEDUPE_TTL_SEC", 600)) * time.Second,
		WebhookAudience:  getEnv("WEBHOOK_AUDIENCE", ""),
		SnapshotTTL:      time.Duration(getEnvInt("SNAPSHOT_TTL_HOURS", 24*30)) * time.Hour,

		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fails fast on configuration the server cannot run without.
func (c *Config) Validate() error {
	var missing []string
	if c.OpenAIAPIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if c.DatabaseURL == "" && c.SaveToDB {
		missing = append(missing, "DATABASE_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if c.BatchMaxMessages < 1 {
		return fmt.Errorf("BATCH_MAX_MESSAGES must be positive, got %d", c.BatchMaxMessages)
	}
	if c.FetchConcurrency < 1 {
		return fmt.Errorf("FETCH_CONCURRENCY must be positive, got %d", c.FetchConcurrency)
	}
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE out of range [0,2]: %f", c.LLMTemperature)
	}
	return nil
}

// IsProduction reports whether the server runs in a production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment reports whether the server runs in a development environment.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
