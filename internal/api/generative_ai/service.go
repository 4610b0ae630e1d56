package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// ErrNoAPIKey signals that no model credential is configured. Callers
// treat this as a designed degradation path, not a failure.
var ErrNoAPIKey = errors.New("no model provider API key configured")

// Client issues a single chat-style completion: one fixed system
// instruction plus one user prompt, no streaming, no history.
type Client interface {
	Complete(ctx context.Context, systemInstruction, prompt string) (string, error)
}

// Options are the fixed generation knobs shared by both backends.
// Temperature is kept low so the JSON-only output stays parseable.
type Options struct {
	Model       string
	BaseURL     string
	Temperature float32
	MaxTokens   int
}

// NewClient builds the configured provider backend. The credential is
// read from the environment once, here; an absent key yields
// ErrNoAPIKey so the caller can fall back without a network attempt.
func NewClient(ctx context.Context, provider string, opts Options) (Client, error) {
	switch strings.ToLower(provider) {
	case "openai":
		apiKey := os.Getenv("OPENROUTER_API_KEY")
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, ErrNoAPIKey
		}
		cfg := openai.DefaultConfig(apiKey)
		if opts.BaseURL != "" {
			cfg.BaseURL = opts.BaseURL
		}
		return &OpenAIClient{
			client: openai.NewClientWithConfig(cfg),
			opts:   opts,
		}, nil
	case "gemini":
		apiKey := os.Getenv("GOOGLE_GEMINI_API_KEY")
		if apiKey == "" {
			return nil, ErrNoAPIKey
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		return &GeminiClient{client: client, opts: opts}, nil
	default:
		return nil, fmt.Errorf("unsupported model provider: %s", provider)
	}
}

// OpenAIClient talks to any OpenAI-compatible chat completion endpoint
// (OpenAI, OpenRouter, ...).
type OpenAIClient struct {
	client *openai.Client
	opts   Options
}

func (c *OpenAIClient) Complete(ctx context.Context, systemInstruction, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.opts.Model,
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("chat completion returned no content")
	}
	return resp.Choices[0].Message.Content, nil
}

// GeminiClient backs the same contract with the Gemini API.
type GeminiClient struct {
	client *genai.Client
	opts   Options
}

func (c *GeminiClient) Complete(ctx context.Context, systemInstruction, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(c.opts.Temperature),
		MaxOutputTokens: int32(c.opts.MaxTokens),
	}
	if systemInstruction != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		}
	}
	result, err := c.client.Models.GenerateContent(ctx, c.opts.Model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("gemini generation returned no content")
	}
	return text, nil
}
