package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float32 `json:"temperature,omitempty"`
}

type geminiRequest struct {
	SystemInstruction geminiContent          `json:"system_instruction"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// GeminiEvaluator calls the Gemini generateContent REST endpoint.
type GeminiEvaluator struct {
	client *resty.Client
	cfg    Config
}

// NewGeminiEvaluator builds the default evaluator.
func NewGeminiEvaluator(cfg Config) (*GeminiEvaluator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	cfg = cfg.withDefaults(DefaultGeminiModel)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-goog-api-key", cfg.APIKey).
		SetTimeout(cfg.Timeout)

	return &GeminiEvaluator{client: client, cfg: cfg}, nil
}

// Evaluate sends the profile to Gemini with the ProfileIQ system instruction.
func (e *GeminiEvaluator) Evaluate(parent context.Context, payload ProfilePayload) (EvaluationResult, error) {
	userMessage, err := marshalPayload(payload)
	if err != nil {
		return EvaluationResult{}, err
	}

	ctx, done, call := startCall(parent, ProviderGemini, e.cfg.Model, e.cfg.Timeout, e.cfg.Logger)
	defer done()

	body := geminiRequest{
		SystemInstruction: geminiContent{Parts: []geminiPart{{Text: SystemPrompt}}},
		Contents:          []geminiContent{{Role: "user", Parts: []geminiPart{{Text: userMessage}}}},
		GenerationConfig: geminiGenerationConfig{
			MaxOutputTokens: e.cfg.MaxTokens,
			Temperature:     e.cfg.Temperature,
		},
	}

	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(&body).
		Post("/v1beta/models/" + url.PathEscape(e.cfg.Model) + ":generateContent")
	elapsed := call.elapsed()
	if err != nil {
		return EvaluationResult{}, call.unavailable(ctx, err)
	}
	if !resp.IsSuccess() {
		return EvaluationResult{}, call.unavailable(ctx, fmt.Errorf("gemini status %d: %s", resp.StatusCode(), resp.String()))
	}

	var decoded geminiResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return EvaluationResult{}, call.fail("malformed", fmt.Errorf("%w: decode envelope: %v", ErrMalformedResponse, err))
	}

	var text strings.Builder
	if len(decoded.Candidates) > 0 {
		for _, part := range decoded.Candidates[0].Content.Parts {
			text.WriteString(part.Text)
		}
	}

	return call.finish(text.String(), elapsed)
}
