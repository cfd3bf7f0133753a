// Package openaicompat is a minimal chat-completions client for any
// OpenAI-compatible API. The LLM coordinator, the recovery suggester and
// the city normalizer share it; none of them needs streaming or tool calls.
package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/trailnote/organizer"
)

// ChatMessage is one entry of a chat transcript.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionFn is the signature agents depend on. Tests substitute a stub;
// production wires Client.Complete or Client.CompleteJSON.
type CompletionFn func(ctx context.Context, messages []ChatMessage) (string, error)

// Client talks to a chat completions endpoint.
//
// baseURL is the API base (e.g. "https://api.openai.com/v1"); the
// /chat/completions path is appended automatically. Works with OpenAI,
// OpenRouter, Groq, Ollama and any other compatible server.
type Client struct {
	apiKey      string
	model       string
	baseURL     string
	client      *http.Client
	temperature float64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.client = c
		}
	}
}

// WithTemperature sets the sampling temperature. Default 0 keeps routing
// and recovery output stable.
func WithTemperature(t float64) Option {
	return func(cl *Client) { cl.temperature = t }
}

// NewClient creates a chat client.
func NewClient(apiKey, model, baseURL string, opts ...Option) *Client {
	cl := &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends a chat request and returns the assistant text.
func (c *Client) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	return c.complete(ctx, messages, nil)
}

// CompleteJSON is Complete with JSON mode enabled, for callers that parse
// the reply as a JSON object.
func (c *Client) CompleteJSON(ctx context.Context, messages []ChatMessage) (string, error) {
	return c.complete(ctx, messages, &responseFormat{Type: "json_object"})
}

func (c *Client) complete(ctx context.Context, messages []ChatMessage, format *responseFormat) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:          c.model,
		Messages:       messages,
		Temperature:    c.temperature,
		ResponseFormat: format,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return "", &organizer.HTTPError{Status: resp.StatusCode, Body: string(body)}
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return chatResp.Choices[0].Message.Content, nil
}
