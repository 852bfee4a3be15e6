package config_test

import (
	"testing"
	"time"

	"emoji-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *config.Config {
	return &config.Config{
		ReplicateAPIToken:     "r8_token",
		WebhookBaseURL:        "https://emoji.example.com",
		CallbackSigningSecret: "secret",
		PromptMaxLength:       200,
		SafetyThreshold:       80,
		OutboundTimeout:       15 * time.Second,
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	tests := map[string]func(*config.Config){
		"missing replicate token": func(c *config.Config) { c.ReplicateAPIToken = "" },
		"missing webhook base":    func(c *config.Config) { c.WebhookBaseURL = "" },
		"missing signing secret":  func(c *config.Config) { c.CallbackSigningSecret = "" },
		"supabase without key":    func(c *config.Config) { c.SupabaseURL = "https://x.supabase.co" },
		"threshold out of range":  func(c *config.Config) { c.SafetyThreshold = 101 },
		"zero prompt length":      func(c *config.Config) { c.PromptMaxLength = 0 },
		"zero timeout":            func(c *config.Config) { c.OutboundTimeout = 0 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := validConfig()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("REPLICATE_API_TOKEN", "r8_token")
	t.Setenv("WEBHOOK_BASE_URL", "https://emoji.example.com")
	t.Setenv("CALLBACK_SIGNING_SECRET", "secret")
	t.Setenv("SAFETY_THRESHOLD", "70")
	t.Setenv("OUTBOUND_TIMEOUT", "5s")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("PROMPT_MAX_LENGTH", "")
	t.Setenv("SUPABASE_STORAGE_BUCKET", "")
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("ENVIRONMENT", "development")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 70, cfg.SafetyThreshold)
	assert.Equal(t, 200, cfg.PromptMaxLength)
	assert.Equal(t, 5*time.Second, cfg.OutboundTimeout)
	assert.Equal(t, "emojis", cfg.SupabaseStorageBucket)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokerList())
	assert.False(t, cfg.IsProduction())
}
