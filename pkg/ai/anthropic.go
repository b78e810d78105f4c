package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion        = "2023-06-01"
)

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// AnthropicEvaluator calls the Anthropic messages API.
type AnthropicEvaluator struct {
	client *resty.Client
	cfg    Config
}

// NewAnthropicEvaluator constructs a new messages API evaluator.
func NewAnthropicEvaluator(cfg Config) (*AnthropicEvaluator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	cfg = cfg.withDefaults(DefaultAnthropicModel)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-api-key", cfg.APIKey).
		SetHeader("anthropic-version", anthropicVersion).
		SetTimeout(cfg.Timeout)

	return &AnthropicEvaluator{client: client, cfg: cfg}, nil
}

// Evaluate sends the profile as the sole user message and reads the first text block.
func (e *AnthropicEvaluator) Evaluate(parent context.Context, payload ProfilePayload) (EvaluationResult, error) {
	userMessage, err := marshalPayload(payload)
	if err != nil {
		return EvaluationResult{}, err
	}

	ctx, done, call := startCall(parent, ProviderAnthropic, e.cfg.Model, e.cfg.Timeout, e.cfg.Logger)
	defer done()

	body := anthropicRequest{
		Model:     e.cfg.Model,
		MaxTokens: e.cfg.MaxTokens,
		System:    SystemPrompt,
		Messages:  []anthropicMessage{{Role: "user", Content: userMessage}},
	}

	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(&body).
		Post("/v1/messages")
	elapsed := call.elapsed()
	if err != nil {
		return EvaluationResult{}, call.unavailable(ctx, err)
	}
	if !resp.IsSuccess() {
		return EvaluationResult{}, call.unavailable(ctx, fmt.Errorf("anthropic status %d: %s", resp.StatusCode(), resp.String()))
	}

	var decoded anthropicResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return EvaluationResult{}, call.fail("malformed", fmt.Errorf("%w: decode envelope: %v", ErrMalformedResponse, err))
	}

	for _, block := range decoded.Content {
		if block.Type == "text" {
			return call.finish(block.Text, elapsed)
		}
	}

	return EvaluationResult{}, call.fail("malformed", fmt.Errorf("%w: no text block in reply", ErrMalformedResponse))
}
