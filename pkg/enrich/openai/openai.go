// Package openai implements pkg/enrich's Completer against the OpenAI
// chat completions API.
package openai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultModel is the chat model used for enrichment calls.
	DefaultModel = "gpt-4o-mini"

	maxTokens   = 100
	temperature = 0.3
)

// Completer wraps an OpenAI client for single-prompt completions.
type Completer struct {
	client *openai.Client
	model  string
}

// Config holds configuration for the OpenAI completer.
type Config struct {
	// APIKey authenticates against the OpenAI API. Required.
	APIKey string

	// BaseURL overrides the API endpoint, e.g. for a compatible proxy.
	BaseURL string

	// Model is the chat model to use. Defaults to DefaultModel.
	Model string
}

// NewCompleter creates an OpenAI-backed completer.
func NewCompleter(cfg Config) (*Completer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("API key is required")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Completer{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}, nil
}

// Name returns the provider identifier.
func (c *Completer) Name() string {
	return "openai"
}

// Complete sends the prompt as a single user message and returns the text
// of the first choice.
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
