package ai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIEvaluator implements Evaluator against the OpenAI chat completion API.
type OpenAIEvaluator struct {
	client *openai.Client
	cfg    Config
}

// NewOpenAIEvaluator builds a new evaluator using the provided configuration.
func NewOpenAIEvaluator(cfg Config) (*OpenAIEvaluator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	cfg = cfg.withDefaults(DefaultOpenAIModel)

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &OpenAIEvaluator{
		client: openai.NewClientWithConfig(config),
		cfg:    cfg,
	}, nil
}

// Evaluate sends the profile to OpenAI and decodes the reply.
func (e *OpenAIEvaluator) Evaluate(parent context.Context, payload ProfilePayload) (EvaluationResult, error) {
	userMessage, err := marshalPayload(payload)
	if err != nil {
		return EvaluationResult{}, err
	}

	ctx, done, call := startCall(parent, ProviderOpenAI, e.cfg.Model, e.cfg.Timeout, e.cfg.Logger)
	defer done()

	request := openai.ChatCompletionRequest{
		Model:       e.cfg.Model,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := e.client.CreateChatCompletion(ctx, request)
	elapsed := call.elapsed()
	if err != nil {
		return EvaluationResult{}, call.unavailable(ctx, err)
	}

	if len(resp.Choices) == 0 {
		return EvaluationResult{}, call.fail("malformed", fmt.Errorf("%w: no choices returned", ErrMalformedResponse))
	}

	return call.finish(strings.TrimSpace(resp.Choices[0].Message.Content), elapsed)
}
