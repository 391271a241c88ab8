package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/snow-ghost/validator/pkg/limiter"
)

// ErrUnexpectedResponse is returned when a backend answers without a completion.
var ErrUnexpectedResponse = errors.New("unexpected API response format")

// OllamaClient calls the Ollama generate API.
type OllamaClient struct {
	baseURL string
	model   string
	opts    options
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	NumCtx      int      `json:"num_ctx"`
	NumPredict  int      `json:"num_predict"`
	Temperature float64  `json:"temperature"`
	TopK        int      `json:"top_k"`
	TopP        float64  `json:"top_p"`
	Stop        []string `json:"stop"`
}

type ollamaResponse struct {
	Model    string  `json:"model"`
	Response *string `json:"response"`
	Done     bool    `json:"done"`
}

// NewOllamaClient creates a client for the Ollama server at baseURL.
func NewOllamaClient(baseURL, model string, opts ...Option) *OllamaClient {
	return &OllamaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		opts:    buildOptions(limiter.OllamaPolicy(), opts),
	}
}

// Model returns the configured model name.
func (c *OllamaClient) Model() string { return c.model }

// Complete generates a completion under the "ollama" protection policy.
func (c *OllamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := limiter.Do(ctx, c.opts.protection, "ollama", func(ctx context.Context) (string, error) {
		return c.generate(ctx, prompt)
	})
	observe(c.opts.recorder, "ollama", start, err)
	if err != nil {
		return "", fmt.Errorf("ollama completion: %w", err)
	}
	return out, nil
}

func (c *OllamaClient) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ollamaRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Options: ollamaOptions{
			NumCtx:      ContextWindow,
			NumPredict:  MaxTokens,
			Temperature: Temperature,
			TopK:        TopK,
			TopP:        TopP,
			Stop:        []string{StopSequence},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.opts.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama API request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read ollama response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", limiter.NewHTTPError(resp.StatusCode, http.StatusText(resp.StatusCode), string(data))
	}

	var out ollamaResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("failed to decode ollama response: %w", err)
	}
	if out.Response == nil {
		return "", fmt.Errorf("%w: %s", ErrUnexpectedResponse, string(data))
	}
	return *out.Response, nil
}
