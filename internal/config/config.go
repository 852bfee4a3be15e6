package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Replicate API
	ReplicateAPIToken             string
	ReplicateAPIBaseURL           string
	EmojiModelVersion             string
	BackgroundRemovalModelVersion string

	// Supabase
	SupabaseURL            string
	SupabasePublishableKey string
	SupabaseStorageBucket  string

	// Webhook
	WebhookBaseURL        string
	CallbackSigningSecret string
	CallbackTokenTTL      time.Duration

	// Creation form
	FormTokenSecret string
	PromptMaxLength int

	// Safety
	ModerationAPIKey     string
	ModerationAPIBaseURL string
	SafetyThreshold      int

	// Database
	DatabaseURL string

	// Cache and events
	RedisAddr        string
	RedisCacheTTL    time.Duration
	KafkaBrokers     string
	KafkaEventsTopic string

	// Outbound calls (downloads, blob puts, provider submissions)
	OutboundTimeout time.Duration

	// Server
	Port        string
	Environment string
	BaseURL     string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ReplicateAPIToken:             getEnv("REPLICATE_API_TOKEN", ""),
		ReplicateAPIBaseURL:           getEnv("REPLICATE_API_BASE_URL", "https://api.replicate.com/v1/"),
		EmojiModelVersion:             getEnv("EMOJI_MODEL_VERSION", "dee76b5afde21b0f01ed7925f0665b7e879c50ee718c5f78a9d38e04d523cc5e"),
		BackgroundRemovalModelVersion: getEnv("BACKGROUND_REMOVAL_MODEL_VERSION", "fb8af171cfa1616ddcf1242c093f9c46bcada5ad4cf6f2fbe8b81b330ec5c003"),

		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabasePublishableKey: getEnv("SUPABASE_PUBLISHABLE_KEY", ""),
		SupabaseStorageBucket:  getEnv("SUPABASE_STORAGE_BUCKET", "emojis"),

		WebhookBaseURL:        getEnv("WEBHOOK_BASE_URL", ""),
		CallbackSigningSecret: getEnv("CALLBACK_SIGNING_SECRET", ""),
		CallbackTokenTTL:      getEnvDuration("CALLBACK_TOKEN_TTL", 24*time.Hour),

		FormTokenSecret: getEnv("FORM_TOKEN_SECRET", ""),
		PromptMaxLength: getEnvInt("PROMPT_MAX_LENGTH", 200),

		ModerationAPIKey:     getEnv("MODERATION_API_KEY", ""),
		ModerationAPIBaseURL: getEnv("MODERATION_API_BASE_URL", "https://api.openai.com/v1/"),
		SafetyThreshold:      getEnvInt("SAFETY_THRESHOLD", 80),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisCacheTTL:    getEnvDuration("REDIS_CACHE_TTL", 10*time.Minute),
		KafkaBrokers:     getEnv("KAFKA_BROKERS", ""),
		KafkaEventsTopic: getEnv("KAFKA_EVENTS_TOPIC", "emoji_events"),

		OutboundTimeout: getEnvDuration("OUTBOUND_TIMEOUT", 15*time.Second),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ReplicateAPIToken == "" {
		return fmt.Errorf("REPLICATE_API_TOKEN is required")
	}
	if c.WebhookBaseURL == "" {
		return fmt.Errorf("WEBHOOK_BASE_URL is required")
	}
	if c.CallbackSigningSecret == "" {
		return fmt.Errorf("CALLBACK_SIGNING_SECRET is required")
	}
	if c.SupabaseURL != "" && c.SupabasePublishableKey == "" {
		return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required when SUPABASE_URL is set")
	}
	if c.SafetyThreshold < 0 || c.SafetyThreshold > 100 {
		return fmt.Errorf("SAFETY_THRESHOLD must be between 0 and 100, got %d", c.SafetyThreshold)
	}
	if c.PromptMaxLength <= 0 {
		return fmt.Errorf("PROMPT_MAX_LENGTH must be positive")
	}
	if c.OutboundTimeout <= 0 {
		return fmt.Errorf("OUTBOUND_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// KafkaBrokerList splits the comma separated KAFKA_BROKERS value.
func (c *Config) KafkaBrokerList() []string {
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
