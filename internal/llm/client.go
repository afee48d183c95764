package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/threatsketch/threatsketch/internal/config"
)

// ErrNilConfig is returned when a nil config is provided.
var ErrNilConfig = errors.New("llm config is nil")

// ErrEmptyResponse is returned when the LLM returns an empty response.
var ErrEmptyResponse = errors.New("llm returned empty response")

// ErrUnavailable is returned by the Disabled gateway. It means the
// LLM integration was not configured at process start; no network
// I/O is attempted.
var ErrUnavailable = errors.New("llm integration is not configured")

// Gateway is the boundary to the external LLM provider. Exactly one
// outbound call per Complete invocation, never retried.
type Gateway interface {
	// Available reports whether calls can be attempted at all.
	Available() bool
	// Complete sends a system and user instruction and returns the
	// raw assistant text.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// Model returns the configured model identifier.
	Model() string
}

// Client is the network-backed Gateway over an OpenAI-compatible API.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
}

// NewClient creates a new LLM client from a ProviderConfig.
func NewClient(cfg *config.ProviderConfig) (*Client, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("llm base_url is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("llm api_key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     timeout,
	}, nil
}

// Available always reports true for a network-backed client.
func (c *Client) Available() bool { return true }

// Complete sends the prompts as a single chat completion and returns
// the assistant response text. The call is bounded by the configured
// timeout; on timeout or provider failure the error is returned as-is
// for the caller to degrade gracefully.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := []openai.ChatCompletionMessage{}
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userPrompt,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Temperature returns the configured sampling temperature.
func (c *Client) Temperature() float32 { return c.temperature }

// Disabled is the Gateway used when no provider credentials are
// configured. Every call fails immediately with ErrUnavailable.
type Disabled struct{}

// Available always reports false.
func (Disabled) Available() bool { return false }

// Complete fails with ErrUnavailable without attempting network I/O.
func (Disabled) Complete(context.Context, string, string) (string, error) {
	return "", ErrUnavailable
}

// Model returns an empty model identifier.
func (Disabled) Model() string { return "" }
