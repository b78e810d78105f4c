package ai

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Supported oracle providers.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Default model per provider.
const (
	DefaultGeminiModel    = "gemini-2.5-flash-lite"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-sonnet-4-20250514"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultMaxTokens = 2000
)

// Config defines the options shared by every evaluator.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
	Logger      zerolog.Logger
}

func (c Config) withDefaults(model string) Config {
	if c.Model == "" {
		c.Model = model
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = defaultMaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Logger.GetLevel() == zerolog.Disabled {
		c.Logger = zerolog.Nop()
	}
	return c
}

// NewEvaluator builds the evaluator for cfg.Provider, defaulting to Gemini.
func NewEvaluator(cfg Config) (Evaluator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderGemini:
		return NewGeminiEvaluator(cfg)
	case ProviderOpenAI:
		return NewOpenAIEvaluator(cfg)
	case ProviderAnthropic:
		return NewAnthropicEvaluator(cfg)
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}
}
