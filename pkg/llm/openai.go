package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/snow-ghost/validator/pkg/limiter"
)

// OpenAIClient calls an OpenAI compatible chat completion endpoint.
type OpenAIClient struct {
	client *openai.Client
	model  string
	opts   options
}

// NewOpenAIClient creates a client for baseURL. An empty baseURL uses the
// public OpenAI endpoint.
func NewOpenAIClient(baseURL, apiKey, model string, opts ...Option) *OpenAIClient {
	o := buildOptions(limiter.OpenAIPolicy(), opts)

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	config.HTTPClient = o.httpClient

	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
		opts:   o,
	}
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string { return c.model }

// Complete sends prompt as a single user message under the "openai" policy.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := limiter.Do(ctx, c.opts.protection, "openai", func(ctx context.Context) (string, error) {
		return c.chat(ctx, prompt)
	})
	observe(c.opts.recorder, "openai", start, err)
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	return out, nil
}

func (c *OpenAIClient) chat(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: Temperature,
		TopP:        TopP,
		MaxTokens:   MaxTokens,
		Stop:        []string{StopSequence},
	})
	if err != nil {
		return "", asHTTPError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrUnexpectedResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

// asHTTPError maps go-openai status errors to limiter.HTTPError so the
// retry policy can see the status code.
func asHTTPError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return limiter.NewHTTPError(apiErr.HTTPStatusCode, apiErr.Message, "")
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return limiter.NewHTTPError(reqErr.HTTPStatusCode, reqErr.Error(), "")
	}
	return err
}
