package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultOpenAIModel    = "gpt-5-mini"
	defaultAnthropicModel = "claude-3-5-sonnet-20241022"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	LogLevel        string
	DatabaseURL     string
	CORSAllowOrigin []string

	OpenAIAPIKey    string
	OpenAIModel     string
	AnthropicAPIKey string
	AnthropicModel  string
	LLMTimeout      time.Duration

	MeiliHost        string
	MeiliAPIKey      string
	MeiliEmailsIndex string
	MeiliTeamsIndex  string

	SeedMockData bool

	SQSQueueURL string
	AWSRegion   string
	NATSURL     string
	NATSSubject string
	RedisURL    string

	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:             getEnv("PORT", "8080"),
		Env:              env,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DatabaseURL:      dbURL,
		CORSAllowOrigin:  splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		OpenAIAPIKey:     strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:      getEnv("OPENAI_MODEL", defaultOpenAIModel),
		AnthropicAPIKey:  strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")),
		AnthropicModel:   getEnv("ANTHROPIC_MODEL", defaultAnthropicModel),
		LLMTimeout:       time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", 30)) * time.Second,
		MeiliHost:        getEnv("MEILI_HOST", ""),
		MeiliAPIKey:      getEnv("MEILI_API_KEY", ""),
		MeiliEmailsIndex: getEnv("MEILI_EMAILS_INDEX", "emails_index"),
		MeiliTeamsIndex:  getEnv("MEILI_TEAMS_INDEX", "teams_index"),
		SeedMockData:     getEnvBool("SEED_MOCK_DATA", false),
		SQSQueueURL:      getEnv("MS_SQS_QUEUE_URL", ""),
		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		NATSURL:          getEnv("NATS_URL", ""),
		NATSSubject:      getEnv("NATS_SUBJECT", "mailsplit.assign"),
		RedisURL:         getEnv("REDIS_URL", ""),
		RateLimitRPS:     getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:   getEnvInt("RATE_LIMIT_BURST", 20),
	}
}

// Credentials returns the provider credentials for the extraction pipeline.
func (c Config) Credentials() ProviderCredentials {
	return ProviderCredentials{
		OpenAIKey:    c.OpenAIAPIKey,
		AnthropicKey: c.AnthropicAPIKey,
	}
}

// ProviderCredentials holds one opaque API key per AI provider. An empty key
// means the provider is not configured.
type ProviderCredentials struct {
	OpenAIKey    string
	AnthropicKey string
}

// Any reports whether at least one provider is configured.
func (p ProviderCredentials) Any() bool {
	return p.OpenAIKey != "" || p.AnthropicKey != ""
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		log.Printf("config env %s invalid int %q, using %d", key, raw, def)
		return def
	}
	return val
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil || val < 0 {
		log.Printf("config env %s invalid float %q, using %v", key, raw, def)
		return def
	}
	return val
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "test":
		return "test"
	default:
		return "dev"
	}
}

// IsDevLike reports whether env allows in-memory fallbacks.
func IsDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}
