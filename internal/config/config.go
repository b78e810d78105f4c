package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName              string
	AppEnv               string
	AppPort              string
	DatabaseURL          string
	RedisURL             string
	NATSURL              string
	JWTSecret            string
	CORSOrigins          []string
	SummaryCacheTTL      time.Duration
	AIProvider           string
	AIModel              string
	AIBaseURL            string
	AITimeout            time.Duration
	AIMaxTokens          int
	AITemperature        float32
	GeminiAPIKey         string
	OpenAIAPIKey         string
	AnthropicAPIKey      string
	EvaluationRateLimit  int
	EvaluationRateWindow time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// AIAPIKey returns the key of the configured provider.
func (c Config) AIAPIKey() string {
	switch c.AIProvider {
	case "openai":
		return c.OpenAIAPIKey
	case "anthropic":
		return c.AnthropicAPIKey
	default:
		return c.GeminiAPIKey
	}
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PROFILEIQ")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "ProfileIQ API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cors.origins", "*")
	v.SetDefault("summary.cache_ttl", "5m")
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.timeout_ms", 60000)
	v.SetDefault("ai.max_tokens", 2000)
	v.SetDefault("ai.temperature", 0.2)
	v.SetDefault("evaluation.rate_limit", 5)
	v.SetDefault("evaluation.rate_window", "24h")

	ttl, err := parseDuration(v.GetString("summary.cache_ttl"), 5*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid summary cache ttl: %w", err)
	}

	window, err := parseDuration(v.GetString("evaluation.rate_window"), 24*time.Hour)
	if err != nil {
		return Config{}, fmt.Errorf("invalid evaluation rate window: %w", err)
	}

	timeoutMs := v.GetInt("ai.timeout_ms")
	if timeoutMs <= 0 {
		timeoutMs = 60000
	}

	cfg := Config{
		AppName:              v.GetString("app.name"),
		AppEnv:               v.GetString("app.env"),
		AppPort:              v.GetString("app.port"),
		DatabaseURL:          v.GetString("database.url"),
		RedisURL:             v.GetString("redis.url"),
		NATSURL:              v.GetString("nats.url"),
		JWTSecret:            v.GetString("jwt.secret"),
		CORSOrigins:          splitList(v.GetString("cors.origins")),
		SummaryCacheTTL:      ttl,
		AIProvider:           strings.ToLower(strings.TrimSpace(v.GetString("ai.provider"))),
		AIModel:              v.GetString("ai.model"),
		AIBaseURL:            v.GetString("ai.base_url"),
		AITimeout:            time.Duration(timeoutMs) * time.Millisecond,
		AIMaxTokens:          v.GetInt("ai.max_tokens"),
		AITemperature:        float32(v.GetFloat64("ai.temperature")),
		GeminiAPIKey:         v.GetString("gemini_api_key"),
		OpenAIAPIKey:         v.GetString("openai_api_key"),
		AnthropicAPIKey:      v.GetString("anthropic_api_key"),
		EvaluationRateLimit:  v.GetInt("evaluation.rate_limit"),
		EvaluationRateWindow: window,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.AIMaxTokens <= 0 {
		cfg.AIMaxTokens = 2000
	}

	if cfg.EvaluationRateLimit <= 0 {
		cfg.EvaluationRateLimit = 5
	}

	return cfg, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}

func splitList(input string) []string {
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
